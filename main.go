package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seo-optimizer/reportview/config"
	"github.com/seo-optimizer/reportview/logging"
)

type app struct {
	configFile string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "reportview",
		Short: "Website analysis report viewer",
		Long: `reportview submits a website to the analyzer service and presents the
UX, SEO and performance results as score gauges and formatted reports,
either as a web page or in the terminal.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (yaml, json, toml or .env)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(a.newServeCmd())
	root.AddCommand(a.newAnalyzeCmd())
	root.AddCommand(a.newRenderCmd())
	return root
}

// loadConfig reads .env files, then the environment and the optional config file.
func (a *app) loadConfig() (*config.Config, error) {
	config.LoadEnv()
	return config.Load(a.configFile)
}

// logger builds the logger for cfg. Outside the server only warnings are
// logged unless --verbose is set.
func (a *app) logger(cfg *config.Config, server bool) (*zap.Logger, error) {
	level := cfg.LogLevel
	if !server && !a.verbose {
		level = "warn"
	}
	return logging.New(level, cfg.DevMode)
}

func setupGinMode(mode string) {
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
