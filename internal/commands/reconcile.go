package commands

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cardrecon/internal/extractor"
	"github.com/cleared-dev/cardrecon/internal/history"
	"github.com/cleared-dev/cardrecon/internal/recon"
	"github.com/cleared-dev/cardrecon/internal/report"
)

type reconcileOptions struct {
	bank      string
	hotel     string
	client    string
	outDir    string
	tolerance int
	force     bool
	noReport  bool
}

func newReconcileCommand(g *globalOptions) *cobra.Command {
	var o reconcileOptions

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile a bank settlement statement against a hotel statement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("tolerance") {
				o.tolerance = cfg.ToleranceMinutes
			}
			if !cmd.Flags().Changed("out") {
				o.outDir = g.resolve(cfg.Report.OutputDir)
			}
			if o.noReport {
				o.outDir = ""
			}

			logger := g.logger(cmd.ErrOrStderr())
			ctx := cmd.Context()

			ext := extractor.New(logger)
			bankLines, err := ext.ExtractLines(ctx, o.bank)
			if err != nil {
				return fmt.Errorf("bank statement: %w", err)
			}
			hotelLines, err := ext.ExtractLines(ctx, o.hotel)
			if err != nil {
				return fmt.Errorf("hotel statement: %w", err)
			}

			hist, err := g.openHistory(cfg)
			if err != nil {
				return err
			}
			var svcHist recon.History
			if hist != nil {
				defer hist.Close()
				svcHist = hist
			}

			svc := recon.NewService(cfg, svcHist, logger)
			out, err := svc.Run(ctx, recon.Input{
				Client:           o.client,
				BankFile:         filepath.Base(o.bank),
				BankLines:        bankLines,
				HotelFile:        filepath.Base(o.hotel),
				HotelLines:       hotelLines,
				ToleranceMinutes: o.tolerance,
				Force:            o.force,
				OutputDir:        o.outDir,
			})
			if errors.Is(err, history.ErrAlreadyReconciled) {
				return fmt.Errorf("%w (use --force to reconcile again)", err)
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprint(w, report.RenderTerminal(out.Categorization))
			if n := len(out.Hotel.Unmatched); n > 0 {
				fmt.Fprintf(w, "%d hotel statement lines were not recognised\n", n)
			}
			if out.Report != nil {
				fmt.Fprintf(w, "Report written to %s\n", out.Report.Dir)
			}
			if out.RunID != "" {
				fmt.Fprintf(w, "Run %s recorded\n", out.RunID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&o.bank, "bank", "", "bank merchant-settlement statement (.pdf or text)")
	cmd.Flags().StringVar(&o.hotel, "hotel", "", "hotel PMS settlement statement (.pdf or text)")
	_ = cmd.MarkFlagRequired("bank")
	_ = cmd.MarkFlagRequired("hotel")
	cmd.Flags().IntVar(&o.tolerance, "tolerance", 30, "matching window in minutes (default from config)")
	cmd.Flags().StringVar(&o.client, "client", "", "client name (default from config)")
	cmd.Flags().StringVar(&o.outDir, "out", "", "directory receiving the run folder (default from config)")
	cmd.Flags().BoolVar(&o.noReport, "no-report", false, "do not write report files")
	cmd.Flags().BoolVar(&o.force, "force", false, "reconcile even if the bank statement was already reconciled")

	return cmd
}
