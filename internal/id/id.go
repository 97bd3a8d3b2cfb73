package id

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	runMarker        = "_run_"
	runStampLayout   = "20060102_150405"
	attachmentPrefix = "attachment-"
	attachmentExt    = ".csv"
)

// NewRunID returns a random identifier for a reconciliation run.
func NewRunID() string {
	return uuid.NewString()
}

// ParseRunID checks that s is a run ID.
func ParseRunID(s string) (string, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid run ID %q: %w", s, err)
	}
	return u.String(), nil
}

// FormatRunFolder returns a run folder name like "acme_run_20240601_101500".
// Characters that are unsafe in a path segment are replaced with '_'.
func FormatRunFolder(client string, t time.Time) string {
	return safeName(client) + runMarker + t.Format(runStampLayout)
}

// ParseRunFolder splits a run folder name into client and start time.
func ParseRunFolder(name string) (client string, t time.Time, err error) {
	i := strings.LastIndex(name, runMarker)
	if i < 0 {
		return "", time.Time{}, fmt.Errorf("invalid run folder %q", name)
	}
	t, err = time.Parse(runStampLayout, name[i+len(runMarker):])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("invalid timestamp in run folder %q: %w", name, err)
	}
	return name[:i], t, nil
}

// FormatAttachmentFile returns "attachment-03.csv" for n=3.
func FormatAttachmentFile(n int) string {
	return fmt.Sprintf("%s%02d%s", attachmentPrefix, n, attachmentExt)
}

// ParseAttachmentFile returns the attachment number of a file name.
func ParseAttachmentFile(name string) (int, error) {
	s, ok := strings.CutPrefix(name, attachmentPrefix)
	if !ok {
		return 0, fmt.Errorf("invalid attachment file %q", name)
	}
	s, ok = strings.CutSuffix(s, attachmentExt)
	if !ok {
		return 0, fmt.Errorf("invalid attachment file %q", name)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid attachment number in %q", name)
	}
	return n, nil
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "client"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, s)
}
