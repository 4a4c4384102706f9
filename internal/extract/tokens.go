package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	decimalCommaRe = regexp.MustCompile(`^\d+,\d{1,2}$`)
	moneyDigitsRe  = regexp.MustCompile(`^[0-9.]+$`)
)

// ParseMoney converts a money token such as "45,000", "1.250.000" or "12,50"
// into a positive amount. Dots are always thousands separators; a single comma
// followed by one or two digits is a decimal point, any other comma is a
// thousands separator. Returns nil when the token is not a positive number.
func ParseMoney(token string) *float64 {
	token = strings.ReplaceAll(strings.TrimSpace(token), " ", "")
	if token == "" {
		return nil
	}

	token = strings.ReplaceAll(token, ".", "")
	if strings.Count(token, ",") == 1 && decimalCommaRe.MatchString(token) {
		token = strings.Replace(token, ",", ".", 1)
	} else {
		token = strings.ReplaceAll(token, ",", "")
	}
	// ParseFloat also takes signs, exponents and hex floats
	if !moneyDigitsRe.MatchString(token) {
		return nil
	}

	return positiveFloat(token, math.Inf(1))
}

// parseQuantity converts a quantity token into a value in (0, max].
// Tokens carrying letters are unit codes or names, never quantities.
func parseQuantity(token string, max float64) *float64 {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	if strings.IndexFunc(token, unicode.IsLetter) >= 0 {
		return nil
	}
	return positiveFloat(strings.ReplaceAll(token, ",", "."), max)
}

func positiveFloat(s string, max float64) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	if v <= 0 || v > max {
		return nil
	}
	return &v
}
