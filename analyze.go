package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seo-optimizer/reportview/analysis"
	"github.com/seo-optimizer/reportview/storage"
	"github.com/seo-optimizer/reportview/term"
	"github.com/seo-optimizer/reportview/view"
)

func (a *app) newAnalyzeCmd() *cobra.Command {
	var useAI bool

	cmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Analyze a website and print the report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			logger, err := a.logger(cfg, false)
			if err != nil {
				return err
			}
			defer logger.Sync()

			client := analysis.NewClient(cfg.AnalyzerURL, cfg.AnalyzerTimeout)
			orchestrator := view.NewOrchestrator(client, storage.NewMemoryTracker(), nil, logger)
			v := view.NewReportView("cli", cfg.BannerTTL)
			styles := term.DefaultStyles()

			var outcome view.Outcome
			label := fmt.Sprintf("Analyzing %s...", view.NormalizeURL(args[0]))
			err = term.RunWithSpinner(cmd.Context(), cmd.ErrOrStderr(), styles, label, func() error {
				outcome = orchestrator.Submit(cmd.Context(), v, view.Submission{URL: args[0], UseAI: useAI})
				return nil
			})
			if err != nil {
				return err
			}

			r := term.NewRenderer(styles, 0)
			out := cmd.OutOrStdout()
			for _, b := range v.Banners(time.Now()) {
				fmt.Fprintln(out, r.Banner(b.Message))
			}
			if res := v.Result(); res != nil {
				fmt.Fprintln(out, r.Result(res))
			}

			if outcome != view.OutcomeSuccess {
				return fmt.Errorf("analysis did not complete: %s", outcome)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&useAI, "ai", true, "ask the analyzer for AI suggestions")
	return cmd
}
