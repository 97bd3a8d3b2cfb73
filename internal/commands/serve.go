package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cardrecon/internal/api"
	"github.com/cleared-dev/cardrecon/internal/extractor"
	"github.com/cleared-dev/cardrecon/internal/recon"
)

func newServeCommand(g *globalOptions) *cobra.Command {
	var addr string
	var noReport bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the reconciliation HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			logger := g.logger(cmd.ErrOrStderr())

			hist, err := g.openHistory(cfg)
			if err != nil {
				return err
			}
			var svcHist recon.History
			if hist != nil {
				defer hist.Close()
				svcHist = hist
			}

			h := &api.Handler{
				Service:   recon.NewService(cfg, svcHist, logger),
				Extractor: extractor.New(logger),
				Logger:    logger,
			}
			if !noReport {
				h.OutputDir = g.resolve(cfg.Report.OutputDir)
			}
			app := api.NewApp(h, cfg.Server.MaxUploadMB)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				_ = app.Shutdown()
			}()

			logger.Info("listening", "addr", addr)
			if err := app.Listen(addr); err != nil {
				return fmt.Errorf("serving: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noReport, "no-report", false, "do not write report files for API runs")

	return cmd
}
