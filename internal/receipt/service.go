package receipt

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/zombor/receipt-ocr/internal/category"
	"github.com/zombor/receipt-ocr/internal/extract"
	"github.com/zombor/receipt-ocr/internal/scanning"
)

var (
	// ErrUnsupportedFileType is returned for uploads that are not receipt images
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrScanFailed is returned when OCR could not read the upload
	ErrScanFailed = errors.New("OCR failed")

	// ErrInvalidItem is returned for item input that breaks item invariants
	ErrInvalidItem = errors.New("invalid item")
)

var allowedExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".webp": true, ".bmp": true,
	".tif": true, ".tiff": true, ".gif": true, ".heic": true, ".heif": true, ".pdf": true,
}

const maxItemNameLength = 255

// IDGenerator generates unique IDs for receipts
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates IDs using UnixNano timestamp
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// ServiceConfig holds the optional collaborators of a Service
type ServiceConfig struct {
	// Extractor parses OCR text; defaults to extract.New()
	Extractor *extract.Extractor
	// ExportPath is the workbook every new receipt is appended to; empty disables it
	ExportPath string
}

// Service handles receipt operations
type Service struct {
	db          DB
	scanner     scanning.Scanner
	storage     Storage
	extractor   *extract.Extractor
	exportPath  string
	exportMu    sync.Mutex
	itemsMu     sync.Mutex
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, scanner scanning.Scanner, storage Storage, cfg ServiceConfig) *Service {
	return NewServiceWithDeps(db, scanner, storage, cfg, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, cfg ServiceConfig, idGen IDGenerator, timeSrc TimeSource) *Service {
	if cfg.Extractor == nil {
		cfg.Extractor = extract.New()
	}
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		extractor:   cfg.Extractor,
		exportPath:  cfg.ExportPath,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	unsafeFilenameRe = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	spacesRe         = regexp.MustCompile(`\s+`)
)

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	base = unsafeFilenameRe.ReplaceAllString(base, "")
	base = strings.TrimSpace(spacesRe.ReplaceAllString(base, " "))

	// Phone cameras produce long names; 50 chars is plenty
	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "receipt"
	}
	return base + ext
}

// ProcessReceipt stores an uploaded receipt image, runs OCR on it and saves
// the extracted fields and line items
func (s *Service) ProcessReceipt(filename string, data []byte, contentType string) (*Receipt, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}

	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	rawText, err := s.scanner.ScanText(data, contentType)
	if err != nil {
		slog.Error("Failed to scan receipt",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		s.deleteFile(savedPath)
		return nil, fmt.Errorf("%w: %w", ErrScanFailed, err)
	}

	result := s.extractor.Extract(rawText)
	receipt := &Receipt{
		ID:          id,
		StoreName:   result.Fields.StoreName,
		Date:        result.Fields.Date,
		TotalAmount: result.Fields.TotalAmount,
		Category:    category.Categorize(result.Fields.StoreName),
		Filename:    savedPath,
		ContentType: contentType,
		RawText:     result.Normalized,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// Extracted items are best-effort; one that breaks item invariants is dropped
	for _, in := range itemInputs(result.Items) {
		if _, err := receipt.addItem(in); err != nil {
			slog.Warn("Dropping extracted item", "receipt_id", id, "error", err)
		}
	}

	if err := s.db.SaveReceipt(receipt); err != nil {
		s.deleteFile(savedPath)
		return nil, fmt.Errorf("saving receipt to database: %w", err)
	}

	slog.Info("Processed receipt",
		"id", id,
		"category", receipt.Category,
		"items", len(receipt.Items),
	)
	s.appendToExport(receipt)
	return receipt, nil
}

func (s *Service) deleteFile(path string) {
	if err := s.storage.Delete(path); err != nil {
		slog.Warn("Failed to delete file", "filename", path, "error", err)
	}
}

// appendToExport keeps the export workbook current; failures never fail an upload
func (s *Service) appendToExport(receipt *Receipt) {
	if s.exportPath == "" {
		return
	}
	s.exportMu.Lock()
	defer s.exportMu.Unlock()
	if err := AppendToWorkbook(s.exportPath, receipt); err != nil {
		slog.Warn("Failed to append receipt to export", "path", s.exportPath, "error", err)
	}
}

// Extract runs the extraction pipeline on OCR text without storing anything
func (s *Service) Extract(text string) extract.Result {
	return s.extractor.Extract(text)
}

// GetReceipt retrieves a receipt by ID
func (s *Service) GetReceipt(id string) (*Receipt, error) {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, fmt.Errorf("getting receipt: %w", err)
	}
	return receipt, nil
}

// ListReceipts returns all receipts, newest first
func (s *Service) ListReceipts() ([]*Receipt, error) {
	receipts, err := s.db.ListReceipts()
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}
	slices.SortStableFunc(receipts, func(a, b *Receipt) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return receipts, nil
}

// DeleteReceipt removes a receipt and its file
func (s *Service) DeleteReceipt(id string) error {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return fmt.Errorf("getting receipt for deletion: %w", err)
	}

	// A missing file must not keep the record alive
	s.deleteFile(receipt.Filename)

	if err := s.db.DeleteReceipt(id); err != nil {
		return fmt.Errorf("deleting receipt from database: %w", err)
	}
	return nil
}

// GetReceiptFile retrieves the file data for a receipt
func (s *Service) GetReceiptFile(id string) ([]byte, string, error) {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt: %w", err)
	}

	data, err := s.storage.Get(receipt.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt file: %w", err)
	}

	return data, receipt.ContentType, nil
}

// ListItems returns the line items of a receipt in order
func (s *Service) ListItems(receiptID string) ([]Item, error) {
	receipt, err := s.db.GetReceipt(receiptID)
	if err != nil {
		return nil, fmt.Errorf("getting receipt: %w", err)
	}
	if receipt.Items == nil {
		return []Item{}, nil
	}
	return receipt.Items, nil
}

// AddItem appends a line item to a receipt
func (s *Service) AddItem(receiptID string, in ItemInput) (*Item, error) {
	s.itemsMu.Lock()
	defer s.itemsMu.Unlock()

	receipt, err := s.db.GetReceipt(receiptID)
	if err != nil {
		return nil, fmt.Errorf("getting receipt: %w", err)
	}

	item, err := receipt.addItem(in)
	if err != nil {
		return nil, err
	}
	receipt.UpdatedAt = s.timeSource.Now()

	if err := s.db.SaveReceipt(receipt); err != nil {
		return nil, fmt.Errorf("saving receipt: %w", err)
	}
	return &item, nil
}

// ReplaceItems swaps all line items of a receipt for the given ones
func (s *Service) ReplaceItems(receiptID string, inputs []ItemInput) ([]Item, error) {
	s.itemsMu.Lock()
	defer s.itemsMu.Unlock()

	receipt, err := s.db.GetReceipt(receiptID)
	if err != nil {
		return nil, fmt.Errorf("getting receipt: %w", err)
	}

	receipt.Items = make([]Item, 0, len(inputs))
	for i, in := range inputs {
		if _, err := receipt.addItem(in); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	receipt.UpdatedAt = s.timeSource.Now()

	if err := s.db.SaveReceipt(receipt); err != nil {
		return nil, fmt.Errorf("saving receipt: %w", err)
	}
	return receipt.Items, nil
}

// addItem validates in and appends it with the next item ID
func (r *Receipt) addItem(in ItemInput) (Item, error) {
	for field, v := range map[string]*float64{
		"quantity":    in.Quantity,
		"unit_price":  in.UnitPrice,
		"total_price": in.TotalPrice,
	} {
		if v != nil && *v <= 0 {
			return Item{}, fmt.Errorf("%w: %s must be positive", ErrInvalidItem, field)
		}
	}

	name := in.ItemName
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if utf8.RuneCountInString(trimmed) > maxItemNameLength {
			trimmed = string([]rune(trimmed)[:maxItemNameLength])
		}
		name = &trimmed
	}

	item := Item{
		ID:         r.nextItemID(),
		ReceiptID:  r.ID,
		ItemName:   name,
		Quantity:   in.Quantity,
		UnitPrice:  in.UnitPrice,
		TotalPrice: in.TotalPrice,
	}
	r.Items = append(r.Items, item)
	return item, nil
}

// ExportWorkbook writes a workbook of all receipts, newest first
func (s *Service) ExportWorkbook(w io.Writer) error {
	receipts, err := s.ListReceipts()
	if err != nil {
		return err
	}
	if err := WriteWorkbook(w, receipts); err != nil {
		return fmt.Errorf("exporting receipts: %w", err)
	}
	return nil
}

// SpendingByItem returns total spending per item name, largest first
func (s *Service) SpendingByItem() ([]ItemSpending, error) {
	receipts, err := s.db.ListReceipts()
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}
	return spendingByItem(receipts), nil
}

// CategoryTotals returns receipt totals per reporting group, largest first
func (s *Service) CategoryTotals() ([]GroupTotal, error) {
	receipts, err := s.db.ListReceipts()
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}
	return categoryTotals(receipts), nil
}
