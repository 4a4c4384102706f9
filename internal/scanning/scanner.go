package scanning

// Scanner defines the interface for turning a receipt image into text
type Scanner interface {
	// ScanText runs OCR on a receipt image/PDF and returns the raw text
	ScanText(imageData []byte, contentType string) (string, error)
	// Close closes the scanner and releases resources
	Close() error
}
