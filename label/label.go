package label

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/siherrmann/nutricoach/helper"
)

// ExtractText returns the whitespace normalised text of an ingredient label.
// Supported are PDF files with a text layer and plain text files.
func ExtractText(path string) (string, error) {
	var text string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err = pdfText(path)
	case ".txt", ".text":
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	default:
		return "", helper.NewError("extract label", fmt.Errorf("unsupported label format %q, use .pdf or .txt", filepath.Ext(path)))
	}
	if err != nil {
		return "", helper.NewError("extract label", err)
	}

	text = Normalize(text)
	if text == "" {
		return "", helper.NewError("extract label", fmt.Errorf("no text found in %s", path))
	}
	return text, nil
}

// Normalize collapses all whitespace runs into single spaces
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func pdfText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	b, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	if _, err := io.Copy(&buf, b); err != nil {
		return "", fmt.Errorf("read pdf buffer: %w", err)
	}
	return buf.String(), nil
}
