package extract

import (
	"regexp"
	"strings"
)

var (
	labeledDateRe = regexp.MustCompile(`(?i)\b(date|ngay|ngày)\b\s*[:\-]?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{4}|\d{4}[/-]\d{1,2}[/-]\d{1,2})(?:\s+(\d{1,2}:\d{2}))?`)

	// Day first is tried before year first: phone numbers rarely carry a
	// trailing four digit group.
	unlabeledDateRes = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{4})(?:\s+\d{1,2}:\d{2})?\b`),
		regexp.MustCompile(`\b(\d{4}[/-]\d{1,2}[/-]\d{1,2})(?:\s+\d{1,2}:\d{2})?\b`),
	}

	moneyTokenRe = regexp.MustCompile(`\d[\d., ]{2,}`)
	totalWordRe  = regexp.MustCompile(`(?i)\b(total|tổng|thành\s*toán|amount)\b`)
	subtotalRe   = regexp.MustCompile(`(?i)\b(sub\s*total|subtotal)\b`)
	taxRe        = regexp.MustCompile(`(?i)\b(tax|vat)\b`)

	totalKeywords = []string{"tong", "tổng", "total", "thanh toan", "thành toán", "pay", "amount"}
)

type (
	dateStage  func(doc *Document) *string
	totalStage func(doc *Document) *float64
)

var (
	dateStages  = []dateStage{labeledDate, unlabeledDate}
	totalStages = []totalStage{strictTotal, keywordTotal, largestAmount}
)

// Fields derives store name, date and total amount from doc.
func (e *Extractor) Fields(doc *Document) Fields {
	return Fields{
		StoreName:   storeName(doc),
		Date:        firstDate(doc),
		TotalAmount: firstTotal(doc),
	}
}

// storeName is the first line: merchants print their name at the top.
// Address and phone lines that follow are ignored.
func storeName(doc *Document) *string {
	if len(doc.lines) == 0 {
		return nil
	}
	name := truncate(doc.lines[0], maxNameLength)
	return &name
}

func firstDate(doc *Document) *string {
	for _, stage := range dateStages {
		if d := stage(doc); d != nil {
			return d
		}
	}
	return nil
}

func firstTotal(doc *Document) *float64 {
	for _, stage := range totalStages {
		if v := stage(doc); v != nil {
			return v
		}
	}
	return nil
}

// labeledDate finds "Date: 02/09/2026 14:45" or "Ngày 2026-09-02".
func labeledDate(doc *Document) *string {
	for _, line := range doc.lines {
		m := labeledDateRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		d := m[2]
		if m[3] != "" {
			d += " " + m[3]
		}
		return &d
	}
	return nil
}

// unlabeledDate returns the first date with a four digit year anywhere.
func unlabeledDate(doc *Document) *string {
	for _, re := range unlabeledDateRes {
		if m := re.FindStringSubmatch(doc.text); m != nil {
			d := m[1]
			return &d
		}
	}
	return nil
}

// strictTotal takes the largest amount on lines tagged as a total, skipping
// subtotal and tax lines.
func strictTotal(doc *Document) *float64 {
	var best *float64
	for _, line := range doc.lines {
		if !totalWordRe.MatchString(line) {
			continue
		}
		if subtotalRe.MatchString(line) || taxRe.MatchString(line) {
			continue
		}
		best = maxOf(best, largestIn(line))
	}
	return best
}

// keywordTotal returns the largest amount on the first line containing any
// total-like keyword, subtotals included.
func keywordTotal(doc *Document) *float64 {
	for _, line := range doc.lines {
		if !containsAny(strings.ToLower(line), totalKeywords) {
			continue
		}
		if v := largestIn(line); v != nil {
			return v
		}
	}
	return nil
}

// largestAmount guesses that the largest number on a receipt is its total.
func largestAmount(doc *Document) *float64 {
	return largestIn(doc.text)
}

func largestIn(s string) *float64 {
	var best *float64
	for _, tok := range moneyTokenRe.FindAllString(s, -1) {
		best = maxOf(best, ParseMoney(tok))
	}
	return best
}

func maxOf(a, b *float64) *float64 {
	if a == nil {
		return b
	}
	if b == nil || *a >= *b {
		return a
	}
	return b
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
