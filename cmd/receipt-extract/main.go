// Command receipt-extract prints the store name, date, total and line items
// found in OCR text read from a file or stdin.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/receipt-ocr/internal/extract"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := ff.NewFlagSet("receipt-extract")
	var (
		normalized      = fs.BoolLong("normalized", "Print the normalized text instead of the extraction result")
		headerScanLimit = fs.IntLong("header-scan-limit", extract.DefaultHeaderScanLimit, "Lines searched for an item table header")
		maxQuantity     = fs.Float64Long("max-quantity", extract.DefaultMaxQuantity, "Largest quantity accepted on an item line")
	)

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("RECEIPT_EXTRACT")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		return err
	}

	in := stdin
	switch rest := fs.GetArgs(); len(rest) {
	case 0:
	case 1:
		if rest[0] != "-" {
			f, err := os.Open(rest[0])
			if err != nil {
				return fmt.Errorf("opening input: %w", err)
			}
			defer f.Close()
			in = f
		}
	default:
		return fmt.Errorf("expected at most one input file, got %d", len(rest))
	}

	text, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	extractor := extract.NewWithOptions(extract.Options{
		HeaderScanLimit: *headerScanLimit,
		MaxQuantity:     *maxQuantity,
	})

	if *normalized {
		_, err := fmt.Fprintln(stdout, extract.Normalize(string(text)))
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(extractor.Extract(string(text)))
}
