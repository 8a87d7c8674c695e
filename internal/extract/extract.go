package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText is the reason reported when every page of a document is empty.
var ErrNoText = errors.New("no text found")

// ExtractionError reports that a document yielded no usable text.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Reason {
		return fmt.Sprintf("extract text: %s: %v", e.Reason, e.Err)
	}
	return "extract text: " + e.Reason
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extract returns the plain text of a PDF document. Pages are read in order,
// trimmed, and joined by a blank line; pages without text are skipped.
func Extract(ctx context.Context, data []byte) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", &ExtractionError{Reason: "empty document"}
	}

	// The pdf reader panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = &ExtractionError{Reason: "malformed pdf", Err: fmt.Errorf("%v", rec)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return "", &ExtractionError{Reason: "encrypted pdf", Err: err}
		}
		return "", &ExtractionError{Reason: "cannot open pdf", Err: err}
	}

	total := reader.NumPage()
	if total <= 0 {
		return "", &ExtractionError{Reason: "pdf has no pages"}
	}

	fonts := make(map[string]*pdf.Font)
	pages := make([]string, 0, total)
	for pageIndex := 1; pageIndex <= total; pageIndex++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}
		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		if trimmed := strings.TrimSpace(pageText); trimmed != "" {
			pages = append(pages, trimmed)
		}
	}

	if len(pages) == 0 {
		return "", &ExtractionError{Reason: ErrNoText.Error(), Err: ErrNoText}
	}
	return strings.Join(pages, "\n\n"), nil
}
