// Package recon runs a reconciliation end to end: parse both statements,
// match, categorize, write the report and record the run.
package recon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cleared-dev/cardrecon/internal/categorize"
	"github.com/cleared-dev/cardrecon/internal/config"
	"github.com/cleared-dev/cardrecon/internal/diaglog"
	"github.com/cleared-dev/cardrecon/internal/history"
	"github.com/cleared-dev/cardrecon/internal/importer"
	"github.com/cleared-dev/cardrecon/internal/matcher"
	"github.com/cleared-dev/cardrecon/internal/model"
	"github.com/cleared-dev/cardrecon/internal/report"
)

// History is the run history used for the duplicate-run guard.
type History interface {
	Check(ctx context.Context, p history.Period) error
	Record(ctx context.Context, r history.Run) (history.Run, error)
}

// Service provides the reconciliation workflow.
type Service struct {
	cfg     *config.Config
	parsers *importer.Registry
	history History
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a Service. hist may be nil to disable the duplicate-run
// guard and run recording.
func NewService(cfg *config.Config, hist History, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg: cfg,
		parsers: importer.DefaultRegistry(importer.Options{
			GCCNETSuffixes: cfg.Matching.GCCNETSuffixes,
			Logger:         logger,
		}),
		history: hist,
		logger:  logger,
		now:     time.Now,
	}
}

// Input holds the statements and options of one run.
type Input struct {
	Client           string
	BankFile         string // name only, for the report and history
	BankLines        []string
	HotelFile        string
	HotelLines       []string
	ToleranceMinutes int
	// Force skips the duplicate-run guard.
	Force bool
	// OutputDir receives the run folder. Empty skips writing a report.
	OutputDir string
}

// Outcome is the result of a run.
type Outcome struct {
	RunID          string
	Client         string
	Bank           model.BankStatement
	Hotel          model.HotelStatement
	Result         matcher.Result
	Categorization *categorize.Categorization
	Report         *report.Run // nil when no report was written
}

// Run reconciles in. It returns matcher.ErrNegativeTolerance for a bad
// tolerance, a history.ErrAlreadyReconciled error for a repeated bank
// statement, and a matcher.ErrEngineFailure error for engine defects.
func (s *Service) Run(ctx context.Context, in Input) (*Outcome, error) {
	if in.ToleranceMinutes < 0 {
		return nil, fmt.Errorf("%w: %d", matcher.ErrNegativeTolerance, in.ToleranceMinutes)
	}
	client := in.Client
	if client == "" {
		client = s.cfg.ClientName
	}

	bankParser := s.parsers.Bank(s.cfg.Formats.Bank)
	if bankParser == nil {
		return nil, fmt.Errorf("unknown bank statement format %q", s.cfg.Formats.Bank)
	}
	hotelParser := s.parsers.Hotel(s.cfg.Formats.Hotel)
	if hotelParser == nil {
		return nil, fmt.Errorf("unknown hotel statement format %q", s.cfg.Formats.Hotel)
	}

	out := &Outcome{
		Client: client,
		Bank:   bankParser.ParseBank(in.BankLines),
		Hotel:  hotelParser.ParseHotel(in.HotelLines),
	}
	s.logger.Info("parsed statements",
		"client", client,
		"bank", len(out.Bank.Transactions),
		"hotel", len(out.Hotel.Transactions),
		"unmatched_lines", len(out.Hotel.Unmatched))

	period, hasPeriod := bankPeriod(client, out.Bank)
	if hasPeriod && s.history != nil && !in.Force {
		if err := s.history.Check(ctx, period); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	engine := matcher.Engine{Logger: s.logger}
	res, err := engine.Match(out.Bank.Transactions, out.Hotel.Transactions, in.ToleranceMinutes)
	if err != nil {
		return nil, fmt.Errorf("matching: %w", err)
	}
	out.Result = res
	out.Categorization = categorize.Categorize(res, categorize.Options{
		Mandatory: s.cfg.MandatoryCardTypes(),
		Excluded:  s.cfg.ExcludedCardTypes(),
	})

	now := s.now()
	if in.OutputDir != "" {
		if out.Report, err = s.writeReport(in, out, now); err != nil {
			return nil, err
		}
	}

	if hasPeriod && s.history != nil {
		sum := out.Categorization.Summary
		run, err := s.history.Record(ctx, history.Run{
			Client:            client,
			ProcessedAt:       now,
			MinDate:           period.MinDate,
			MaxDate:           period.MaxDate,
			TotalTransactions: period.Entries,
			BankFile:          in.BankFile,
			HotelFile:         in.HotelFile,
			Reconciled:        sum.Reconciled,
			Unreconciled:      sum.Unreconciled,
		})
		if err != nil {
			return nil, err
		}
		out.RunID = run.ID
	}

	s.logger.Info("reconciled",
		"client", client,
		"run_id", out.RunID,
		"reconciled", out.Categorization.Summary.Reconciled,
		"unreconciled", out.Categorization.Summary.Unreconciled)
	return out, nil
}

func (s *Service) writeReport(in Input, out *Outcome, now time.Time) (*report.Run, error) {
	h := report.Header{
		CompanyName:   s.cfg.Report.CompanyName,
		AccountName:   s.cfg.Report.AccountName,
		AccountNumber: s.cfg.Report.AccountNumber,
		BankName:      s.cfg.Report.BankName,
		GLAccount:     s.cfg.Report.GLAccount,
	}
	run, err := report.WriteRun(in.OutputDir, out.Client, out.Categorization, h, now)
	if err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}
	if err := diaglog.Append(run.Dir, diaglog.FromStatement(in.HotelFile, out.Hotel.Unmatched, now)); err != nil {
		return nil, fmt.Errorf("writing unmatched lines: %w", err)
	}
	return run, nil
}

// bankPeriod returns the duplicate-run key of a bank statement. ok is false
// when no transaction has a timestamp.
func bankPeriod(client string, stmt model.BankStatement) (history.Period, bool) {
	first, last, ok := stmt.Period()
	if !ok {
		return history.Period{}, false
	}
	return history.Period{
		Client:  client,
		MinDate: truncateDay(first),
		MaxDate: truncateDay(last),
		Entries: len(stmt.Transactions),
	}, true
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
