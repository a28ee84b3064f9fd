package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/seo-optimizer/reportview/analysis"
	"github.com/seo-optimizer/reportview/report"
	"github.com/seo-optimizer/reportview/server"
	"github.com/seo-optimizer/reportview/term"
	"github.com/seo-optimizer/reportview/view"
)

func (a *app) newRenderCmd() *cobra.Command {
	var (
		input    string
		output   string
		terminal bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a saved analyzer response as HTML",
		Long: `Render decodes a JSON response saved from the analyzer service and writes
a standalone HTML report, or prints it to the terminal with --terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", input, err)
			}
			res, err := analysis.Decode(data)
			if err != nil {
				return err
			}

			if terminal {
				r := term.NewRenderer(term.DefaultStyles(), 0)
				_, err := fmt.Fprintln(cmd.OutOrStdout(), r.Result(res))
				return err
			}

			now := time.Now()
			v := view.NewReportView("render", 0)
			v.Load(res, now)
			page, err := v.Page(report.NewFormatter(), now)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			return server.RenderStandalone(w, page)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "saved analyzer response (JSON)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the HTML report here instead of stdout")
	cmd.Flags().BoolVar(&terminal, "terminal", false, "print the report to the terminal instead of HTML")
	cmd.MarkFlagRequired("input")
	return cmd
}
