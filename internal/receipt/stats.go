package receipt

import (
	"cmp"
	"slices"

	"github.com/zombor/receipt-ocr/internal/category"
)

// unnamedItem labels spending on items whose name could not be read
const unnamedItem = "(Không rõ)"

// ItemSpending is the total spent on one item name across all receipts
type ItemSpending struct {
	ItemName   string  `json:"item_name"`
	TotalSpent float64 `json:"total_spent"`
}

// GroupTotal is the total of all receipts in one reporting group
type GroupTotal struct {
	Group string  `json:"group"`
	Total float64 `json:"total"`
}

// spendingByItem sums item totals per item name, largest first
func spendingByItem(receipts []*Receipt) []ItemSpending {
	totals := make(map[string]float64)
	var order []string
	for _, r := range receipts {
		for _, it := range r.Items {
			name := unnamedItem
			if it.ItemName != nil {
				name = *it.ItemName
			}
			if _, ok := totals[name]; !ok {
				order = append(order, name)
			}
			if it.TotalPrice != nil {
				totals[name] += *it.TotalPrice
			}
		}
	}

	spending := make([]ItemSpending, 0, len(order))
	for _, name := range order {
		spending = append(spending, ItemSpending{ItemName: name, TotalSpent: totals[name]})
	}
	slices.SortStableFunc(spending, func(a, b ItemSpending) int {
		return cmp.Compare(b.TotalSpent, a.TotalSpent)
	})
	return spending
}

// categoryTotals sums receipt totals per reporting group, largest first.
// All three groups are always present.
func categoryTotals(receipts []*Receipt) []GroupTotal {
	groups := []GroupTotal{{Group: category.Food}, {Group: category.Shopping}, {Group: category.Other}}
	for _, r := range receipts {
		if r.TotalAmount == nil {
			continue
		}
		g := category.Group(r.Category)
		for i := range groups {
			if groups[i].Group == g {
				groups[i].Total += *r.TotalAmount
			}
		}
	}
	slices.SortStableFunc(groups, func(a, b GroupTotal) int {
		return cmp.Compare(b.Total, a.Total)
	})
	return groups
}
