package receipt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	receiptsSheet = "receipts"
	itemsSheet    = "items"
)

var (
	receiptHeader = []any{"id", "store_name", "date", "total_amount", "category", "image_path", "created_at"}
	itemHeader    = []any{"receipt_id", "item_name", "quantity", "unit_price", "total_price", "item_id"}
)

// WriteWorkbook writes every receipt and its items as an xlsx workbook
func WriteWorkbook(w io.Writer, receipts []*Receipt) error {
	f, err := newWorkbook()
	if err != nil {
		return err
	}
	defer f.Close()

	receiptRow, itemRow := 2, 2
	for _, r := range receipts {
		if err := setRow(f, receiptsSheet, receiptRow, receiptValues(r)); err != nil {
			return err
		}
		receiptRow++
		for _, it := range r.Items {
			if err := setRow(f, itemsSheet, itemRow, itemValues(it)); err != nil {
				return err
			}
			itemRow++
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// AppendToWorkbook adds one receipt and its items to the workbook at path,
// creating the file when it does not exist yet
func AppendToWorkbook(path string, r *Receipt) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	f, err := excelize.OpenFile(path)
	if errors.Is(err, os.ErrNotExist) {
		f, err = newWorkbook()
	}
	if err != nil {
		return fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	receiptRow, err := nextRow(f, receiptsSheet, receiptHeader)
	if err != nil {
		return err
	}
	if err := setRow(f, receiptsSheet, receiptRow, receiptValues(r)); err != nil {
		return err
	}

	itemRow, err := nextRow(f, itemsSheet, itemHeader)
	if err != nil {
		return err
	}
	for i, it := range r.Items {
		if err := setRow(f, itemsSheet, itemRow+i, itemValues(it)); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

// newWorkbook creates a workbook with both sheets and their header rows
func newWorkbook() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", receiptsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("creating items sheet: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}
	for sheet, header := range map[string][]any{receiptsSheet: receiptHeader, itemsSheet: itemHeader} {
		if err := setRow(f, sheet, 1, header); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
			f.Close()
			return nil, fmt.Errorf("styling header: %w", err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// nextRow returns the first empty row of sheet, adding the sheet and its
// header when an older workbook lacks it
func nextRow(f *excelize.File, sheet string, header []any) (int, error) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return 0, fmt.Errorf("looking up sheet %s: %w", sheet, err)
	}
	if idx == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return 0, fmt.Errorf("creating sheet %s: %w", sheet, err)
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		if err := setRow(f, sheet, 1, header); err != nil {
			return 0, err
		}
		return 2, nil
	}
	return len(rows) + 1, nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("addressing row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}

func receiptValues(r *Receipt) []any {
	return []any{
		r.ID,
		stringValue(r.StoreName),
		stringValue(r.Date),
		floatValue(r.TotalAmount),
		r.Category,
		r.Filename,
		r.CreatedAt.Format(time.RFC3339),
	}
}

func itemValues(it Item) []any {
	return []any{
		it.ReceiptID,
		stringValue(it.ItemName),
		floatValue(it.Quantity),
		floatValue(it.UnitPrice),
		floatValue(it.TotalPrice),
		it.ID,
	}
}

// stringValue and floatValue leave cells of unknown values empty
func stringValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func floatValue(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
