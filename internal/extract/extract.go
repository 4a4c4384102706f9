// Package extract turns OCR text of a retail receipt into structured data.
//
// Extraction is a deterministic chain of heuristics. Nothing here returns an
// error: a value that cannot be resolved is reported as nil, and a line that
// cannot be parsed is skipped. All functions are safe for concurrent use.
package extract

import "strings"

const (
	// DefaultHeaderScanLimit is how many leading lines are searched for an
	// item table header.
	DefaultHeaderScanLimit = 80

	// DefaultMaxQuantity separates plausible quantities from misplaced amounts.
	DefaultMaxQuantity = 10_000

	maxNameLength = 255
)

// Fields holds the receipt level values. A nil field is unknown.
type Fields struct {
	StoreName   *string  `json:"store_name"`
	Date        *string  `json:"date"`
	TotalAmount *float64 `json:"total_amount"`
}

// LineItem is one purchased row. Present numbers are always positive.
type LineItem struct {
	ItemName   *string  `json:"item_name"`
	Quantity   *float64 `json:"quantity"`
	UnitPrice  *float64 `json:"unit_price"`
	TotalPrice *float64 `json:"total_price"`
}

// Result is the outcome of running both extractors on one text.
type Result struct {
	Fields     Fields     `json:"fields"`
	Items      []LineItem `json:"items"`
	Normalized string     `json:"normalized_text"`
}

// Options tunes the thresholds of an Extractor.
type Options struct {
	HeaderScanLimit int
	MaxQuantity     float64
}

// DefaultOptions returns the thresholds used by the package level functions.
func DefaultOptions() Options {
	return Options{
		HeaderScanLimit: DefaultHeaderScanLimit,
		MaxQuantity:     DefaultMaxQuantity,
	}
}

// Extractor runs the extraction pipeline with a fixed set of options.
type Extractor struct {
	opts Options
}

// New creates an Extractor with default options
func New() *Extractor {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions creates an Extractor; zero or negative options fall back to
// their defaults.
func NewWithOptions(opts Options) *Extractor {
	def := DefaultOptions()
	if opts.HeaderScanLimit <= 0 {
		opts.HeaderScanLimit = def.HeaderScanLimit
	}
	if opts.MaxQuantity <= 0 {
		opts.MaxQuantity = def.MaxQuantity
	}
	return &Extractor{opts: opts}
}

// Options returns the effective options.
func (e *Extractor) Options() Options {
	return e.opts
}

// Document is normalized receipt text. Both extractors read the same
// Document so they always agree on the input.
type Document struct {
	lines []string
	text  string
}

// NewDocument normalizes raw OCR text.
func NewDocument(raw string) *Document {
	lines := normalizeLines(raw)
	return &Document{lines: lines, text: strings.Join(lines, "\n")}
}

// Lines returns the normalized lines.
func (d *Document) Lines() []string {
	return d.lines
}

// Text returns the normalized lines joined by newlines.
func (d *Document) Text() string {
	return d.text
}

// Extract normalizes text once and runs both extractors on it.
func (e *Extractor) Extract(text string) Result {
	doc := NewDocument(text)
	return Result{
		Fields:     e.Fields(doc),
		Items:      e.LineItems(doc),
		Normalized: doc.Text(),
	}
}

// ExtractFields returns store name, date and total of text.
func (e *Extractor) ExtractFields(text string) Fields {
	return e.Fields(NewDocument(text))
}

// ExtractLineItems returns the purchased rows of text in encounter order.
func (e *Extractor) ExtractLineItems(text string) []LineItem {
	return e.LineItems(NewDocument(text))
}

var defaultExtractor = New()

// Extract runs both extractors with default options.
func Extract(text string) Result {
	return defaultExtractor.Extract(text)
}

// ExtractFields runs the field extractor with default options.
func ExtractFields(text string) Fields {
	return defaultExtractor.ExtractFields(text)
}

// ExtractLineItems runs the line item extractor with default options.
func ExtractLineItems(text string) []LineItem {
	return defaultExtractor.ExtractLineItems(text)
}
