package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/anatolykoptev/go_sentinel/internal/engine"
	"github.com/ledongthuc/pdf"
)

// FetchPDFText downloads a PDF and returns its plain text.
func FetchPDFText(ctx context.Context, rawURL string) (string, error) {
	engine.IncrPDF()

	data, err := engine.FetchDocument(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("pdf download: %w", err)
	}
	return PDFText(data)
}

// PDFText extracts the text layer of an in-memory PDF.
// The pdf reader panics on some malformed files; that is reported as an error.
func PDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parse: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf open: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf text: %w", err)
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	text = engine.CollapseSpace(string(out))
	if text == "" {
		return "", errors.New("pdf has no text layer")
	}
	return text, nil
}
