// Package pdftext exposes raw per-page text and lightweight metadata for
// uploaded construction documents. The rest of the pipeline only sees the
// Source interface, never the parser.
package pdftext

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// Source yields raw text for 1-based page numbers.
type Source interface {
	NumPages() int
	PageText(page int) (string, error)
	Close() error
}

type fileSource struct {
	file   *os.File
	reader *pdf.Reader
}

// Open reads a PDF from disk and returns a page text source.
func Open(path string) (Source, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	return &fileSource{file: file, reader: reader}, nil
}

func (s *fileSource) NumPages() int {
	return s.reader.NumPage()
}

func (s *fileSource) PageText(page int) (string, error) {
	if page < 1 || page > s.reader.NumPage() {
		return "", fmt.Errorf("page number %d out of range", page)
	}
	p := s.reader.Page(page)
	if p.V.IsNull() {
		return "", fmt.Errorf("page number %d out of range", page)
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extract text from page %d: %w", page, err)
	}
	return text, nil
}

func (s *fileSource) Close() error {
	return s.file.Close()
}
