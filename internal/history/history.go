// Package history records reconciliation runs and refuses to reconcile the
// same bank statement twice for a client.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cleared-dev/cardrecon/internal/id"
)

// ErrAlreadyReconciled is returned when a run with the same client, bank
// period and entry count is already recorded.
var ErrAlreadyReconciled = errors.New("already reconciled")

const (
	dateLayout = "2006-01-02"
	timeLayout = time.RFC3339
)

// Run is one recorded reconciliation.
type Run struct {
	ID                string
	Client            string
	ProcessedAt       time.Time
	MinDate           time.Time
	MaxDate           time.Time
	TotalTransactions int // bank entries
	BankFile          string
	HotelFile         string
	Reconciled        int
	Unreconciled      int
}

// Period identifies a bank statement for duplicate detection.
type Period struct {
	Client  string
	MinDate time.Time
	MaxDate time.Time
	Entries int
}

func (p Period) String() string {
	return fmt.Sprintf("%s to %s (%d entries)", p.MinDate.Format(dateLayout), p.MaxDate.Format(dateLayout), p.Entries)
}

// DuplicateError describes the earlier run that matches a period.
type DuplicateError struct {
	Period Period
	Run    Run
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("transactions from %s have already been reconciled (run %s)", e.Period, e.Run.ID)
}

func (e *DuplicateError) Unwrap() error { return ErrAlreadyReconciled }

// Store is the sqlite-backed run history.
type Store struct {
	db *sql.DB
}

// Open opens the history database at path and applies migrations.
func Open(path string) (*Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Check returns a *DuplicateError when p was already reconciled.
func (s *Store) Check(ctx context.Context, p Period) error {
	row := s.db.QueryRowContext(ctx, `
	SELECT `+runColumns+` FROM runs
	WHERE client_name = ? AND min_date = ? AND max_date = ? AND total_transactions = ?
	ORDER BY processed_at LIMIT 1`,
		p.Client, p.MinDate.Format(dateLayout), p.MaxDate.Format(dateLayout), p.Entries)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking history: %w", err)
	}
	return &DuplicateError{Period: p, Run: run}
}

// Record stores r. An empty ID gets a new run ID and a zero ProcessedAt the
// current time; a given ID must be a valid run ID. The stored run is returned.
func (s *Store) Record(ctx context.Context, r Run) (Run, error) {
	if r.ID == "" {
		r.ID = id.NewRunID()
	} else {
		runID, err := id.ParseRunID(r.ID)
		if err != nil {
			return Run{}, fmt.Errorf("recording run: %w", err)
		}
		r.ID = runID
	}
	if r.ProcessedAt.IsZero() {
		r.ProcessedAt = time.Now()
	}
	r.ProcessedAt = r.ProcessedAt.UTC().Truncate(time.Second)

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO runs(id, client_name, processed_at, min_date, max_date, total_transactions,
	 bank_filename, hotel_filename, reconciled, unreconciled)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Client, r.ProcessedAt.Format(timeLayout),
		r.MinDate.Format(dateLayout), r.MaxDate.Format(dateLayout), r.TotalTransactions,
		r.BankFile, r.HotelFile, r.Reconciled, r.Unreconciled)
	if err != nil {
		return Run{}, fmt.Errorf("recording run: %w", err)
	}
	return r, nil
}

// List returns recorded runs, newest first. An empty client lists all.
func (s *Store) List(ctx context.Context, client string) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if client != "" {
		query += ` WHERE client_name = ?`
		args = append(args, client)
	}
	query += ` ORDER BY processed_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("listing runs: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const runColumns = `id, client_name, processed_at, min_date, max_date, total_transactions,
 bank_filename, hotel_filename, reconciled, unreconciled`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var processed, minDate, maxDate string
	if err := sc.Scan(&r.ID, &r.Client, &processed, &minDate, &maxDate, &r.TotalTransactions,
		&r.BankFile, &r.HotelFile, &r.Reconciled, &r.Unreconciled); err != nil {
		return Run{}, err
	}

	var err error
	if r.ProcessedAt, err = time.Parse(timeLayout, processed); err != nil {
		return Run{}, fmt.Errorf("parsing processed_at %q: %w", processed, err)
	}
	if r.MinDate, err = time.Parse(dateLayout, minDate); err != nil {
		return Run{}, fmt.Errorf("parsing min_date %q: %w", minDate, err)
	}
	if r.MaxDate, err = time.Parse(dateLayout, maxDate); err != nil {
		return Run{}, fmt.Errorf("parsing max_date %q: %w", maxDate, err)
	}
	return r, nil
}
