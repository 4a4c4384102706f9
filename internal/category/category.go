// Package category maps store names to spending categories.
package category

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	Food      = "Ăn uống"
	Groceries = "Siêu thị"
	Shopping  = "Mua sắm"
	Transport = "Di chuyển"
	Other     = "Khác"
)

// Rule assigns Category to any store whose folded name contains Needle.
type Rule struct {
	Needle   string
	Category string
}

// Rules are checked in order; the first match wins.
var Rules = []Rule{
	{"circle k", Food},
	{"highlands", Food},
	{"starbucks", Food},
	{"phuc long", Food},
	{"co.op", Groceries},
	{"coop", Groceries},
	{"winmart", Groceries},
	{"lotte", Groceries},
	{"bach hoa xanh", Groceries},
	{"shopee", Shopping},
	{"lazada", Shopping},
	{"tiki", Shopping},
	{"grab", Transport},
	{"be", Transport},
}

var foodWords = []string{"ăn", "uống", "cafe", "coffee", "trà", "tea", "nhà hàng", "quán", "food"}

// Categorize returns the category of storeName, or Other when it is unknown
// or matches no rule.
func Categorize(storeName *string) string {
	if storeName == nil {
		return Other
	}
	name := Fold(*storeName)
	if name == "" {
		return Other
	}
	for _, r := range Rules {
		if strings.Contains(name, r.Needle) {
			return r.Category
		}
	}
	return Other
}

// Group collapses a category into one of the three reporting groups:
// Food, Shopping or Other.
func Group(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	if c == "" {
		return Other
	}
	for _, w := range foodWords {
		if strings.Contains(c, w) {
			return Food
		}
	}
	return Shopping
}

// Fold lower-cases s and strips Vietnamese diacritics so "Phúc Long" and
// "phuc long" compare equal.
func Fold(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(func(r rune) rune {
			switch r {
			case 'đ':
				return 'd'
			case 'Đ':
				return 'D'
			}
			return r
		}),
		norm.NFC,
	)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
