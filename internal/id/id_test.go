package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	assert.NotEqual(t, a, b)

	got, err := ParseRunID(a)
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestParseRunIDInvalid(t *testing.T) {
	_, err := ParseRunID("not-a-uuid")
	assert.Error(t, err)
}

func TestFormatRunFolder(t *testing.T) {
	ts := time.Date(2024, 6, 1, 10, 15, 30, 0, time.UTC)
	tests := []struct {
		client string
		want   string
	}{
		{"acme", "acme_run_20240601_101530"},
		{"Example Hotel", "Example_Hotel_run_20240601_101530"},
		{"../etc", ".._etc_run_20240601_101530"},
		{"", "client_run_20240601_101530"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRunFolder(tt.client, ts), "client %q", tt.client)
	}
}

func TestParseRunFolder(t *testing.T) {
	client, ts, err := ParseRunFolder("Example_Hotel_run_20240601_101530")
	require.NoError(t, err)
	assert.Equal(t, "Example_Hotel", client)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 15, 30, 0, time.UTC), ts)
}

func TestParseRunFolderInvalid(t *testing.T) {
	for _, name := range []string{"acme", "acme_run_yesterday", ""} {
		_, _, err := ParseRunFolder(name)
		assert.Error(t, err, "name %q", name)
	}
}

func TestAttachmentFile(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "attachment-01.csv"},
		{16, "attachment-16.csv"},
		{120, "attachment-120.csv"},
	}
	for _, tt := range tests {
		got := FormatAttachmentFile(tt.n)
		assert.Equal(t, tt.want, got)

		n, err := ParseAttachmentFile(got)
		require.NoError(t, err)
		assert.Equal(t, tt.n, n)
	}
}

func TestParseAttachmentFileInvalid(t *testing.T) {
	for _, name := range []string{"summary.csv", "attachment-.csv", "attachment-00.csv", "attachment-01.txt"} {
		_, err := ParseAttachmentFile(name)
		assert.Error(t, err, "name %q", name)
	}
}
