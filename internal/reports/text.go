package reports

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PlainText extracts the text layer of a rendered report.
func PlainText(doc []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	rd, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	raw, err := io.ReadAll(rd)
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return string(raw), nil
}

// Verify checks that the report text contains every wanted fragment.
func Verify(doc []byte, wants ...string) error {
	text, err := PlainText(doc)
	if err != nil {
		return err
	}
	for _, want := range wants {
		if !strings.Contains(text, want) {
			return fmt.Errorf("missing %q in rendered text", want)
		}
	}
	return nil
}
