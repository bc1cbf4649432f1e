package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Converter names accepted by NewConverter.
const (
	ConverterBrowser = "browser"
	ConverterFPDF    = "fpdf"
)

var (
	// ErrUnknownConverter indicates an unsupported converter name.
	ErrUnknownConverter = errors.New("unknown converter")
	// ErrInvalidPDF indicates converter output is not a readable PDF.
	ErrInvalidPDF = errors.New("converter produced an invalid pdf")
)

// Converter turns rendered HTML into a PDF document. Implementations must
// honor ctx cancellation.
type Converter interface {
	Convert(ctx context.Context, html []byte) ([]byte, error)
}

// NewConverter returns the converter registered under name. browserPath is
// only used by the browser converter.
func NewConverter(name, browserPath string, logger *slog.Logger) (Converter, error) {
	logger = logger.With("system", "render", "converter", name)

	switch name {
	case ConverterBrowser:
		return NewBrowser(browserPath, logger), nil
	case ConverterFPDF:
		return NewFPDF(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownConverter, name)
	}
}

// ValidatePDF parses data with pdfcpu and returns its page count.
func ValidatePDF(data []byte) (int, error) {
	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidPDF, err)
	}
	if count == 0 {
		return 0, fmt.Errorf("%w: no pages", ErrInvalidPDF)
	}
	return count, nil
}
