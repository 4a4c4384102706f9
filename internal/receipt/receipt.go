package receipt

import (
	"time"

	"github.com/zombor/receipt-ocr/internal/extract"
)

// Receipt represents a scanned receipt with its extracted data.
// Unknown extracted values are nil, never zero.
type Receipt struct {
	ID          string    `json:"id"`
	StoreName   *string   `json:"store_name"`
	Date        *string   `json:"date"` // As printed, e.g. "12/09/2024 14:45"
	TotalAmount *float64  `json:"total_amount"`
	Category    string    `json:"category"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	RawText     string    `json:"raw_text,omitempty"` // Normalized OCR text
	Items       []Item    `json:"items"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Item is one purchased line of a receipt
type Item struct {
	ID         int      `json:"id"` // Sequential within its receipt
	ReceiptID  string   `json:"receipt_id"`
	ItemName   *string  `json:"item_name"`
	Quantity   *float64 `json:"quantity"`
	UnitPrice  *float64 `json:"unit_price"`
	TotalPrice *float64 `json:"total_price"`
}

// ItemInput is a line item supplied by a client or the extractor
type ItemInput struct {
	ItemName   *string  `json:"item_name"`
	Quantity   *float64 `json:"quantity"`
	UnitPrice  *float64 `json:"unit_price"`
	TotalPrice *float64 `json:"total_price"`
}

// itemInputs converts extracted line items into item inputs
func itemInputs(lines []extract.LineItem) []ItemInput {
	inputs := make([]ItemInput, 0, len(lines))
	for _, l := range lines {
		inputs = append(inputs, ItemInput(l))
	}
	return inputs
}

// nextItemID returns the ID following the highest item ID on the receipt
func (r *Receipt) nextItemID() int {
	next := 1
	for _, it := range r.Items {
		if it.ID >= next {
			next = it.ID + 1
		}
	}
	return next
}
