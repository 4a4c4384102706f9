package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	headerRe   = regexp.MustCompile(`(?i)\b(item|tên)\b.*\b(qty|sl|s\.?l\.?|quantity)\b`)
	itemStopRe = regexp.MustCompile(`(?i)\b(sub\s*total|subtotal|tax|vat|total|tong|tổng|payment|paid|change|cashier)\b`)
	metadataRe = regexp.MustCompile(`(?i)\b(hoa\s*don|hóa\s*đơn|invoice|receipt|sales|date|cashier|payment|paid|subtotal|sub\s*total|tax|total)\b`)

	// name qty unit total [currency], numbers anchored at the end of the line.
	strictRowRe = regexp.MustCompile(`(?i)^(?P<name>.+?)\s+(?P<qty>\d+(?:[\.,]\d+)?)\s+(?P<unit>[\d., ]{2,})\s+(?P<tot>[\d., ]{2,})(?:\s*(?:vnd|đ|d))?$`)

	currencySuffixRe = regexp.MustCompile(`(?i)(vnd|đ)$`)

	bareHeaders = map[string]bool{"item": true, "items": true, "qty": true, "price": true, "total": true}
)

// lineStrategy parses one candidate line. handled reports that the strategy
// recognised the layout; a handled line with a nil item is rejected without
// trying later strategies.
type lineStrategy func(e *Extractor, line string) (item *LineItem, handled bool)

var lineStrategies = []lineStrategy{
	(*Extractor).strictColumns,
	(*Extractor).tokenizedColumns,
}

// LineItems locates the item table in doc and parses its rows.
func (e *Extractor) LineItems(doc *Document) []LineItem {
	var items []LineItem
	for _, line := range doc.lines[e.itemsStart(doc.lines):] {
		if itemStopRe.MatchString(line) {
			if len(items) > 0 {
				break
			}
			continue
		}
		if metadataRe.MatchString(line) || bareHeaders[strings.ToLower(line)] {
			continue
		}
		if item := e.parseLine(line); item != nil {
			items = append(items, *item)
		}
	}
	return dedupeAdjacent(items)
}

// itemsStart returns the index after the table header, or 0 without one.
func (e *Extractor) itemsStart(lines []string) int {
	limit := min(len(lines), e.opts.HeaderScanLimit)
	for i, line := range lines[:limit] {
		if headerRe.MatchString(line) {
			return i + 1
		}
	}
	return 0
}

func (e *Extractor) parseLine(line string) *LineItem {
	for _, strategy := range lineStrategies {
		if item, handled := strategy(e, line); handled {
			return item
		}
	}
	return nil
}

// strictColumns parses "T-SHIRT 1 250,000 250,000".
func (e *Extractor) strictColumns(line string) (*LineItem, bool) {
	m := strictRowRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	name := truncate(strings.TrimSpace(m[strictRowRe.SubexpIndex("name")]), maxNameLength)
	qty := parseQuantity(m[strictRowRe.SubexpIndex("qty")], e.opts.MaxQuantity)
	unit := ParseMoney(m[strictRowRe.SubexpIndex("unit")])
	total := ParseMoney(m[strictRowRe.SubexpIndex("tot")])

	if total == nil || utf8.RuneCountInString(name) < 2 {
		return nil, true
	}
	return newLineItem(name, qty, unit, total), true
}

// tokenizedColumns reads the right-most whitespace separated tokens as
// quantity, unit price and total, falling back to "name qty x unit total".
func (e *Extractor) tokenizedColumns(line string) (*LineItem, bool) {
	tokens := strings.Fields(line)
	if len(tokens) < 3 {
		return nil, true
	}
	for i, t := range tokens {
		tokens[i] = currencySuffixRe.ReplaceAllString(t, "")
	}

	n := len(tokens)
	total := ParseMoney(tokens[n-1])
	if total == nil {
		return nil, true
	}
	unit := ParseMoney(tokens[n-2])
	qty := parseQuantity(tokens[n-3], e.opts.MaxQuantity)
	nameTokens := tokens[:n-3]

	if qty == nil && n >= 4 {
		if q := parseQuantity(tokens[n-4], e.opts.MaxQuantity); q != nil {
			qty = q
			nameTokens = tokens[:n-4]
			unit = ParseMoney(tokens[n-3])
		}
	}

	name := strings.TrimSpace(strings.Join(nameTokens, " "))
	if countLetters(name) < 2 {
		return nil, true
	}
	return newLineItem(truncate(name, maxNameLength), qty, unit, total), true
}

// newLineItem defaults a missing quantity to one and derives a missing unit
// price from the total.
func newLineItem(name string, qty, unit, total *float64) *LineItem {
	if qty == nil {
		one := 1.0
		qty = &one
	}
	if unit == nil {
		u := *total / *qty
		unit = &u
	}
	return &LineItem{ItemName: &name, Quantity: qty, UnitPrice: unit, TotalPrice: total}
}

// dedupeAdjacent drops a row identical to the one before it, a common OCR
// artifact. Repeats further apart are kept as separate purchases.
func dedupeAdjacent(items []LineItem) []LineItem {
	if len(items) == 0 {
		return []LineItem{}
	}
	out := []LineItem{items[0]}
	for _, it := range items[1:] {
		if sameRow(out[len(out)-1], it) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func sameRow(a, b LineItem) bool {
	return strings.EqualFold(trimmed(a.ItemName), trimmed(b.ItemName)) &&
		equalPtr(a.Quantity, b.Quantity) &&
		equalPtr(a.TotalPrice, b.TotalPrice)
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func equalPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
