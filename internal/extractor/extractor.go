package extractor

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

type FileKind string

const (
	KindPDF  FileKind = "pdf"
	KindDOC  FileKind = "doc"
	KindDOCX FileKind = "docx"
	KindTXT  FileKind = "txt"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// ExtractionError means the file had a supported kind but its text could not be read.
type ExtractionError struct {
	Kind FileKind
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s text: %v", e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// KindFromFilename maps a file extension to a FileKind.
func KindFromFilename(filename string) (FileKind, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch FileKind(ext) {
	case KindPDF, KindDOC, KindDOCX, KindTXT:
		return FileKind(ext), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// ExtractText returns the plain text of data. Legacy .doc files go through
// the DOCX reader, so only .doc files that are really OOXML succeed.
func ExtractText(data []byte, kind FileKind) (string, error) {
	var (
		text string
		err  error
	)

	switch kind {
	case KindPDF:
		text, err = extractPDF(data)
	case KindDOC, KindDOCX:
		text, err = extractDOCX(data)
	case KindTXT:
		text, err = extractTXT(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, kind)
	}

	if err != nil {
		return "", &ExtractionError{Kind: kind, Err: err}
	}
	return text, nil
}

// Extractor lets services swap extraction out in tests.
type Extractor interface {
	Extract(data []byte, kind FileKind) (string, error)
}

type extractor struct{}

func New() Extractor {
	return extractor{}
}

func (extractor) Extract(data []byte, kind FileKind) (string, error) {
	return ExtractText(data, kind)
}
