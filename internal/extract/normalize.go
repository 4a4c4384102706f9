package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	blankRunRe   = regexp.MustCompile(`[\t\r]+`)
	separatorRe  = regexp.MustCompile(`^[\-_=*~.]{3,}$`)
	disallowedRe = regexp.MustCompile(`[^0-9A-Za-zÀ-ỹ&()\-.,:/+%#' ]+`)
	spaceRunRe   = regexp.MustCompile(`\s+`)
)

// Normalize cleans raw OCR output into newline separated lines ready for
// pattern matching. Decorative separators, characters outside the receipt
// alphabet and low-signal garbage lines are removed. Normalizing already
// normalized text returns it unchanged.
func Normalize(raw string) string {
	return strings.Join(normalizeLines(raw), "\n")
}

func normalizeLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\u00a0", " ")
	raw = blankRunRe.ReplaceAllString(raw, " ")

	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || separatorRe.MatchString(line) {
			continue
		}

		line = disallowedRe.ReplaceAllString(line, " ")
		line = strings.TrimSpace(spaceRunRe.ReplaceAllString(line, " "))
		// Filtering can leave a bare separator behind ("---@").
		if line == "" || separatorRe.MatchString(line) || isLowSignal(line) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// isLowSignal reports whether a line looks like OCR noise such as
// "TT Se ee EL": mostly symbols, or nothing but one and two letter fragments.
func isLowSignal(line string) bool {
	length := utf8.RuneCountInString(line)
	if length < 6 {
		return false
	}

	var letters, alnum int
	for _, r := range line {
		switch {
		case unicode.IsLetter(r):
			letters++
			alnum++
		case unicode.IsDigit(r):
			alnum++
		}
	}
	ratio := float64(alnum) / float64(length)

	tokens := strings.Fields(line)
	var short int
	hasLong := false
	for _, t := range tokens {
		n := utf8.RuneCountInString(t)
		if n >= 4 {
			hasLong = true
		}
		if n <= 2 {
			short++
		}
	}
	shortRatio := float64(short) / float64(max(len(tokens), 1))

	return (letters < 3 && ratio < 0.5) || (!hasLong && shortRatio > 0.7)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
