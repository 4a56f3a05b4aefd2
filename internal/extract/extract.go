// Package extract converts uploaded files into plain text for prompts and
// knowledge ingestion.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/timberyard/meetingassist/internal/domain"
)

// Format identifies a supported input kind.
type Format string

const (
	FormatText Format = "text"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
	FormatDOCX Format = "docx"
	FormatPPTX Format = "pptx"
)

var formatsByTag = map[string]Format{
	"txt":           FormatText,
	"text":          FormatText,
	"md":            FormatText,
	"text/plain":    FormatText,
	"text/markdown": FormatText,

	"pdf":             FormatPDF,
	"application/pdf": FormatPDF,

	"xlsx": FormatXLSX,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": FormatXLSX,

	"docx": FormatDOCX,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": FormatDOCX,

	"pptx": FormatPPTX,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": FormatPPTX,
}

// TypeTagFromName derives a type tag from a file name's extension.
func TypeTagFromName(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// FormatOf resolves a type tag (extension with or without dot, or MIME type).
func FormatOf(typeTag string) (Format, error) {
	tag := strings.ToLower(strings.TrimSpace(typeTag))
	tag = strings.TrimPrefix(tag, ".")
	if i := strings.Index(tag, ";"); i >= 0 {
		tag = strings.TrimSpace(tag[:i])
	}
	f, ok := formatsByTag[tag]
	if !ok {
		return "", domain.Wrap(domain.ErrUnsupportedFormat, fmt.Errorf("type tag %q", typeTag))
	}
	return f, nil
}

// Extract returns the plain text of data interpreted according to typeTag.
// Unknown tags fail with ErrUnsupportedFormat and unreadable content with
// ErrParse; no partial text is returned on error.
func Extract(data []byte, typeTag string) (string, error) {
	f, err := FormatOf(typeTag)
	if err != nil {
		return "", err
	}

	var text string
	switch f {
	case FormatText:
		text, err = extractPlain(data)
	case FormatPDF:
		text, err = extractPDF(data)
	case FormatXLSX:
		text, err = extractXLSX(data)
	case FormatDOCX:
		text, err = extractDOCX(data)
	case FormatPPTX:
		text, err = extractPPTX(data)
	}
	if err != nil {
		return "", domain.Wrap(domain.ErrParse, fmt.Errorf("%s: %w", f, err))
	}
	return text, nil
}

// ExtractFile is Extract with the type tag taken from the file name.
func ExtractFile(name string, data []byte) (string, error) {
	return Extract(data, TypeTagFromName(name))
}

func extractPlain(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("content is not valid UTF-8")
	}
	return string(data), nil
}
