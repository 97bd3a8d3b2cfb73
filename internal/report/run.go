package report

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/cleared-dev/cardrecon/internal/categorize"
	"github.com/cleared-dev/cardrecon/internal/id"
)

// SummaryFile is the summary sheet inside a run folder.
const SummaryFile = "summary.csv"

// Run describes a run folder.
type Run struct {
	Dir         string
	Client      string // as written in the folder name
	StartedAt   time.Time
	Summary     string
	Attachments []string // in attachment number order
}

// WriteRun creates <root>/<client>_run_<stamp>/ and writes the summary sheet
// and one CSV per attachment into it.
func WriteRun(root, client string, c *categorize.Categorization, h Header, now time.Time) (*Run, error) {
	name := id.FormatRunFolder(client, now)
	folderClient, startedAt, err := id.ParseRunFolder(name)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating run folder: %w", err)
	}

	run := &Run{
		Dir:       dir,
		Client:    folderClient,
		StartedAt: startedAt,
		Summary:   filepath.Join(dir, SummaryFile),
	}
	if err := writeFile(run.Summary, SummaryRows(c, h, now)); err != nil {
		return nil, err
	}

	for _, a := range c.Attachments {
		path := filepath.Join(dir, id.FormatAttachmentFile(a.Number))
		if err := writeFile(path, AttachmentRows(a)); err != nil {
			return nil, err
		}
		run.Attachments = append(run.Attachments, path)
	}
	return run, nil
}

// ReadRun describes the run folder at dir, as written by WriteRun. Files that
// are neither the summary nor an attachment are ignored.
func ReadRun(dir string) (*Run, error) {
	client, startedAt, err := id.ParseRunFolder(filepath.Base(filepath.Clean(dir)))
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading run folder: %w", err)
	}

	type attachment struct {
		number int
		path   string
	}
	var attachments []attachment
	run := &Run{Dir: dir, Client: client, StartedAt: startedAt}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if e.Name() == SummaryFile {
			run.Summary = filepath.Join(dir, SummaryFile)
			continue
		}
		if n, err := id.ParseAttachmentFile(e.Name()); err == nil {
			attachments = append(attachments, attachment{number: n, path: filepath.Join(dir, e.Name())})
		}
	}
	if run.Summary == "" {
		return nil, fmt.Errorf("%s has no %s", dir, SummaryFile)
	}

	// File names only sort numerically up to attachment 99.
	slices.SortFunc(attachments, func(a, b attachment) int { return cmp.Compare(a.number, b.number) })
	for _, a := range attachments {
		run.Attachments = append(run.Attachments, a.path)
	}
	return run, nil
}

func writeFile(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	if err := WriteRows(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
