package extractor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// OCR renders a PDF to images and recognises the text of each page.
type OCR interface {
	Pages(ctx context.Context, path string) ([]string, error)
}

// Tesseract runs pdftoppm (poppler-utils) and tesseract.
type Tesseract struct{}

// Available reports whether both tools are on PATH.
func (Tesseract) Available() bool {
	_, err1 := exec.LookPath("pdftoppm")
	_, err2 := exec.LookPath("tesseract")
	return err1 == nil && err2 == nil
}

// Pages returns the recognised text of every page that produced any.
func (t Tesseract) Pages(ctx context.Context, path string) ([]string, error) {
	if !t.Available() {
		return nil, fmt.Errorf("pdftoppm and tesseract are required for OCR")
	}

	tmpDir, err := os.MkdirTemp("", "cardrecon-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	if out, err := exec.CommandContext(ctx, "pdftoppm", "-r", "300", "-png", path, prefix).CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}

	images, err := filepath.Glob(prefix + "*.png")
	if err != nil {
		return nil, fmt.Errorf("listing page images: %w", err)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no page images")
	}
	sort.Strings(images)

	var pages []string
	for _, img := range images {
		// --psm 4: single column of variable-size text.
		out, err := exec.CommandContext(ctx, "tesseract", img, "stdout", "-l", "eng", "--psm", "4").Output()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if text := strings.TrimSpace(string(out)); text != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("tesseract produced no text from %d page images", len(images))
	}
	return pages, nil
}
