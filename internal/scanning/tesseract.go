package scanning

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// TesseractConfig configures the local Tesseract engine
type TesseractConfig struct {
	// Language is the primary traineddata, e.g. "vie"
	Language string
	// FallbackLanguage is tried when the primary language fails (optional)
	FallbackLanguage string
	// TessdataPrefix points at the directory holding *.traineddata (optional)
	TessdataPrefix string
}

// Tesseract implements the Scanner interface using a local Tesseract install.
// A gosseract client is not safe for concurrent use, so calls are serialized.
type Tesseract struct {
	mu       sync.Mutex
	client   *gosseract.Client
	language string
	fallback string
}

// NewTesseract creates a new Tesseract Scanner instance
func NewTesseract(cfg TesseractConfig) (*Tesseract, error) {
	if cfg.Language == "" {
		cfg.Language = "vie"
	}

	client := gosseract.NewClient()
	if cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("setting tessdata prefix: %w", err)
		}
	}
	// Receipts are one uniform block of text (tesseract --psm 6)
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		client.Close()
		return nil, fmt.Errorf("setting page segmentation mode: %w", err)
	}

	return &Tesseract{
		client:   client,
		language: cfg.Language,
		fallback: cfg.FallbackLanguage,
	}, nil
}

// ScanText runs OCR on a receipt image and returns the recognized text
func (t *Tesseract) ScanText(imageData []byte, contentType string) (string, error) {
	finalImageData, err := prepareImageData(imageData, contentType, true)
	if err != nil {
		return "", err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	text, err := t.recognize(finalImageData, t.language)
	if err != nil && t.fallback != "" && t.fallback != t.language {
		slog.Warn("OCR with primary language failed, retrying with fallback",
			"language", t.language,
			"fallback", t.fallback,
			"error", err,
		)
		text, err = t.recognize(finalImageData, t.fallback)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (t *Tesseract) recognize(imageData []byte, language string) (string, error) {
	if err := t.client.SetLanguage(language); err != nil {
		return "", fmt.Errorf("setting language %q: %w", language, err)
	}
	if err := t.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("setting image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("running tesseract (%s): %w", language, err)
	}
	return text, nil
}

// Close releases the Tesseract handle
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}
