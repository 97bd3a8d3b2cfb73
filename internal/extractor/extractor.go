// Package extractor turns statement documents into trimmed, non-empty text
// lines.
package extractor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoText is returned when neither the text layer nor OCR produced a line.
var ErrNoText = errors.New("no text could be extracted")

// Extractor reads .pdf documents through their text layer, falling back to
// OCR, and any other file as plain text.
type Extractor struct {
	Logger *slog.Logger
	// OCR is used when a PDF has no text layer. Nil disables the fallback.
	OCR OCR
}

// New returns an Extractor with the pdftoppm + tesseract OCR fallback.
func New(logger *slog.Logger) *Extractor {
	return &Extractor{Logger: logger, OCR: Tesseract{}}
}

// ExtractLines returns the lines of the document at path.
func (e *Extractor) ExtractLines(ctx context.Context, path string) ([]string, error) {
	if !isPDF(path) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", filepath.Base(path), err)
		}
		defer f.Close()
		return textLines(f, path)
	}

	lines, err := pdfTextLines(path)
	if err != nil {
		e.logger().Warn("pdf text layer unreadable", "file", filepath.Base(path), "err", err)
	}
	if len(lines) > 0 {
		return lines, nil
	}

	if e.OCR == nil {
		return nil, fmt.Errorf("%w from %s", ErrNoText, filepath.Base(path))
	}
	e.logger().Info("falling back to OCR", "file", filepath.Base(path))
	pages, err := e.OCR.Pages(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w from %s: %w", ErrNoText, filepath.Base(path), err)
	}
	lines = splitLines(pages)
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w from %s", ErrNoText, filepath.Base(path))
	}
	return lines, nil
}

// ExtractBytes is ExtractLines for an uploaded document. name is only used
// for its extension.
func (e *Extractor) ExtractBytes(ctx context.Context, name string, data []byte) ([]string, error) {
	if !isPDF(name) {
		return textLines(bytes.NewReader(data), name)
	}

	f, err := os.CreateTemp("", "cardrecon-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(data); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("writing temp file: %w", err)
	}
	return e.ExtractLines(ctx, f.Name())
}

func textLines(r io.Reader, name string) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(name), err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w from %s", ErrNoText, filepath.Base(name))
	}
	return lines, nil
}

// splitLines breaks page texts into trimmed, non-empty lines.
func splitLines(pages []string) []string {
	var lines []string
	for _, p := range pages {
		for _, l := range strings.Split(p, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				lines = append(lines, l)
			}
		}
	}
	return lines
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
