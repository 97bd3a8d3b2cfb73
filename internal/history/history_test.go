package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

const fixedRunID = "6f1c2d3e-4a5b-4c6d-8e7f-901a2b3c4d5e"

func day(d int) time.Time { return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC) }

func testPeriod() Period {
	return Period{Client: "acme", MinDate: day(1), MaxDate: day(2), Entries: 7}
}

func TestCheck_Empty(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.Check(context.Background(), testPeriod()))
}

func TestRecordAndCheck(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := testPeriod()

	run, err := s.Record(ctx, Run{
		Client: p.Client, MinDate: p.MinDate, MaxDate: p.MaxDate, TotalTransactions: p.Entries,
		BankFile: "bank.pdf", HotelFile: "hotel.pdf", Reconciled: 5, Unreconciled: 4,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.ProcessedAt.IsZero())

	err = s.Check(ctx, p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyReconciled))

	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, run.ID, dup.Run.ID)
	assert.Contains(t, err.Error(), "2024-06-01 to 2024-06-02 (7 entries)")
}

func TestCheck_DifferentKeys(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := testPeriod()
	_, err := s.Record(ctx, Run{Client: p.Client, MinDate: p.MinDate, MaxDate: p.MaxDate, TotalTransactions: p.Entries})
	require.NoError(t, err)

	other := []Period{
		{Client: "other", MinDate: day(1), MaxDate: day(2), Entries: 7},
		{Client: "acme", MinDate: day(1), MaxDate: day(3), Entries: 7},
		{Client: "acme", MinDate: day(2), MaxDate: day(2), Entries: 7},
		{Client: "acme", MinDate: day(1), MaxDate: day(2), Entries: 8},
	}
	for _, o := range other {
		assert.NoError(t, s.Check(ctx, o), "%+v", o)
	}
}

func TestCheck_IgnoresTimeOfDay(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.Record(ctx, Run{Client: "acme", MinDate: day(1), MaxDate: day(2), TotalTransactions: 7})
	require.NoError(t, err)

	p := Period{
		Client:  "acme",
		MinDate: day(1).Add(10 * time.Hour),
		MaxDate: day(2).Add(13 * time.Hour),
		Entries: 7,
	}
	assert.ErrorIs(t, s.Check(ctx, p), ErrAlreadyReconciled)
}

func TestList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	for i, client := range []string{"acme", "globex", "acme"} {
		_, err := s.Record(ctx, Run{
			Client:      client,
			ProcessedAt: base.Add(time.Duration(i) * time.Hour),
			MinDate:     day(1),
			MaxDate:     day(i + 1),
			BankFile:    "bank.txt",
		})
		require.NoError(t, err)
	}

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, base.Add(2*time.Hour), all[0].ProcessedAt)
	assert.Equal(t, "bank.txt", all[0].BankFile)

	acme, err := s.List(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, acme, 2)
	assert.Equal(t, day(3), acme[0].MaxDate)
	assert.Equal(t, day(1), acme[1].MaxDate)

	none, err := s.List(ctx, "initech")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Record(ctx, Run{ID: fixedRunID, Client: "acme", MinDate: day(1), MaxDate: day(1)})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.List(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, fixedRunID, runs[0].ID)
}

func TestRecord_NormalizesRunID(t *testing.T) {
	s := openTestStore(t)

	run, err := s.Record(context.Background(), Run{ID: "6F1C2D3E-4A5B-4C6D-8E7F-901A2B3C4D5E", Client: "acme", MinDate: day(1), MaxDate: day(1)})
	require.NoError(t, err)
	assert.Equal(t, fixedRunID, run.ID)
}

func TestRecord_RejectsInvalidRunID(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Record(context.Background(), Run{ID: "fixed-id", Client: "acme", MinDate: day(1), MaxDate: day(1)})
	assert.ErrorContains(t, err, `invalid run ID "fixed-id"`)

	runs, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, runs)
}
