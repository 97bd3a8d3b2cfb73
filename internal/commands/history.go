package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/cardrecon/internal/config"
	"github.com/cleared-dev/cardrecon/internal/diaglog"
	"github.com/cleared-dev/cardrecon/internal/report"
)

func newHistoryCommand(g *globalOptions) *cobra.Command {
	var client string
	var show string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded reconciliation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if show != "" {
				return showRun(cmd.OutOrStdout(), g.runFolder(cfg, show))
			}

			hist, err := g.openHistory(cfg)
			if err != nil {
				return err
			}
			if hist == nil {
				return errors.New("run history is disabled (history.enabled: false)")
			}
			defer hist.Close()

			runs, err := hist.List(cmd.Context(), client)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(w, "No runs recorded.")
				return nil
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("Processed", "Client", "Period", "Entries", "Reconciled", "Unreconciled", "Bank file", "Run")
			for _, r := range runs {
				t.Row(
					r.ProcessedAt.Local().Format("2006-01-02 15:04"),
					r.Client,
					r.MinDate.Format("2006-01-02")+" to "+r.MaxDate.Format("2006-01-02"),
					strconv.Itoa(r.TotalTransactions),
					strconv.Itoa(r.Reconciled),
					strconv.Itoa(r.Unreconciled),
					r.BankFile,
					r.ID,
				)
			}
			fmt.Fprintln(w, t.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&client, "client", "", "only list runs for this client")
	cmd.Flags().StringVar(&show, "show", "", "describe a run folder (path, or name under the report output dir)")

	return cmd
}

// runFolder resolves a --show argument. A path that does not exist as given is
// looked up in the report output directory.
func (o *globalOptions) runFolder(cfg *config.Config, arg string) string {
	if _, err := os.Stat(arg); err == nil || filepath.IsAbs(arg) {
		return arg
	}
	return filepath.Join(o.resolve(cfg.Report.OutputDir), arg)
}

func showRun(w io.Writer, dir string) error {
	run, err := report.ReadRun(dir)
	if err != nil {
		return err
	}
	unmatched, err := diaglog.Read(dir)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Run folder: %s\n", run.Dir)
	fmt.Fprintf(w, "Client:     %s\n", run.Client)
	fmt.Fprintf(w, "Started:    %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Summary:    %s\n", filepath.Base(run.Summary))
	fmt.Fprintf(w, "Attachments (%d):\n", len(run.Attachments))
	for _, path := range run.Attachments {
		fmt.Fprintf(w, "  %s\n", filepath.Base(path))
	}

	if len(unmatched) == 0 {
		fmt.Fprintln(w, "No unrecognised statement lines.")
		return nil
	}
	fmt.Fprintf(w, "Unrecognised statement lines (%d):\n", len(unmatched))
	for _, e := range unmatched {
		fmt.Fprintf(w, "  %s:%d  %s\n", e.Source, e.Line, e.Text)
	}
	return nil
}
