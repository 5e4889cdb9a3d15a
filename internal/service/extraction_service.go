package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"
)

// PDFExtractor pulls plain text out of statement PDFs with go-fitz. Password-protected files are
// decrypted with pdfcpu first.
type PDFExtractor struct {
	open    func([]byte) (pdfDocument, error)
	decrypt func([]byte, string) ([]byte, error)
	logger  *zap.Logger
}

// pdfDocument is the part of *fitz.Document the extractor reads.
type pdfDocument interface {
	NumPage() int
	Text(page int) (string, error)
	Close() error
}

func NewPDFExtractor(logger *zap.Logger) *PDFExtractor {
	return &PDFExtractor{open: openFitz, decrypt: decryptPDF, logger: logger}
}

// openFitz may return a live document alongside ErrNeedsPassword; the caller owns it either way.
func openFitz(data []byte) (pdfDocument, error) {
	doc, err := fitz.NewFromMemory(data)
	if doc == nil {
		return nil, err
	}
	return doc, err
}

// ExtractText returns the text of every page joined by newlines. Any failure wraps ErrExtraction.
// An empty result is not an error; the statement simply has no text layer.
func (e *PDFExtractor) ExtractText(_ context.Context, data []byte, password string) (string, error) {
	doc, err := e.open(data)
	if errors.Is(err, fitz.ErrNeedsPassword) {
		if doc != nil {
			doc.Close()
			doc = nil
		}
		if password == "" {
			return "", fmt.Errorf("%w: statement is password protected", ErrExtraction)
		}
		decrypted, derr := e.decrypt(data, password)
		if derr != nil {
			return "", fmt.Errorf("%w: %v", ErrExtraction, derr)
		}
		doc, err = e.open(decrypted)
	}
	if err != nil {
		if doc != nil {
			doc.Close()
		}
		return "", fmt.Errorf("%w: failed to open PDF: %v", ErrExtraction, err)
	}
	defer doc.Close()

	var textBuilder strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			e.logger.Warn("Failed to extract text from page", zap.Int("page", i+1), zap.Error(err))
			continue
		}
		if pageText != "" {
			textBuilder.WriteString(pageText)
			textBuilder.WriteString("\n")
		}
	}

	text := strings.TrimSpace(sanitizeText(textBuilder.String()))
	e.logger.Info("PDF text extracted",
		zap.Int("pages", doc.NumPage()),
		zap.Int("text_length", len(text)),
	)
	return text, nil
}

func decryptPDF(data []byte, password string) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password

	var out bytes.Buffer
	if err := api.Decrypt(bytes.NewReader(data), &out, conf); err != nil {
		return nil, fmt.Errorf("failed to decrypt PDF (wrong password?): %w", err)
	}
	return out.Bytes(), nil
}
