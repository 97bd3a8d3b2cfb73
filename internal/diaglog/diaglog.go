// Package diaglog keeps the statement lines no parser recognised, so an
// operator can review them after a run.
package diaglog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cleared-dev/cardrecon/internal/model"
)

// Entry is one row in the unmatched-lines log.
type Entry struct {
	Timestamp time.Time
	Source    string // statement file name
	Line      int    // 1-based
	Text      string
}

// FileName is the log file inside a run folder.
const FileName = "unmatched-lines.csv"

// Header is the first row of unmatched-lines.csv.
var Header = []string{"timestamp", "source", "line", "text"}

const (
	colTimestamp = iota
	colSource
	colLine
	colText
	numFields
)

// FromStatement converts a statement's unmatched lines to log entries.
func FromStatement(source string, lines []model.UnmatchedLine, at time.Time) []Entry {
	entries := make([]Entry, len(lines))
	for i, l := range lines {
		entries[i] = Entry{Timestamp: at, Source: source, Line: l.Line, Text: l.Text}
	}
	return entries
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colSource] = e.Source
	row[colLine] = strconv.Itoa(e.Line)
	row[colText] = e.Text
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	line, err := strconv.Atoi(record[colLine])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing line %q: %w", record[colLine], err)
	}

	return Entry{
		Timestamp: ts,
		Source:    record[colSource],
		Line:      line,
		Text:      record[colText],
	}, nil
}

// Append adds entries to <dir>/unmatched-lines.csv. The header is written
// when the file is new or empty. Nothing is created when entries is empty.
func Append(dir string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening unmatched-lines log: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("opening unmatched-lines log: %w", err)
	}

	rows := make([][]string, 0, len(entries)+1)
	if info.Size() == 0 {
		rows = append(rows, Header)
	}
	for _, e := range entries {
		rows = append(rows, MarshalEntry(e))
	}

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("writing unmatched lines: %w", err)
	}
	return f.Close()
}

// Read returns the entries of <dir>/unmatched-lines.csv, or nil when the run
// logged none.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening unmatched-lines log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if !slices.Equal(head, Header) {
		return nil, fmt.Errorf("unexpected header %q", strings.Join(head, ","))
	}

	var entries []Entry
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		entries = append(entries, e)
	}
}
