package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"sparkload/internal/config"
	"sparkload/internal/observability"
	"sparkload/internal/pipeline"
	"sparkload/internal/ui"
	"sparkload/internal/warehouse"
	"sparkload/pkg/models"
)

var (
	configFile string
	verbose    bool

	rootCmd = &cobra.Command{
		Use:   "sparkload",
		Short: "Stage event logs into a warehouse and build the star schema",
		Long: `sparkload - ELT jobs for the song play warehouse.

Run 'sparkload setup' once to create the tables, then 'sparkload load' to
copy the event logs and song catalog into staging and rewrite the
dimension and fact tables from them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command and exits non-zero on failure
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.NewPrinter(os.Stderr).Error(err)
		cancel()
		os.Exit(1)
	}
}

func init() {
	addGlobalFlags(rootCmd.PersistentFlags())
}

func addGlobalFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&configFile, "config", "c", "", "config file (default ./sparkload.yaml or ~/.sparkload/sparkload.yaml)")
	fs.BoolVarP(&verbose, "verbose", "v", false, "log every statement at debug level")
}

// loadConfig reads the configuration. Secrets are resolved only for
// commands that connect.
func loadConfig(withSecrets bool) (*models.Config, error) {
	v, err := config.NewViper(configFile)
	if err != nil {
		return nil, err
	}
	if withSecrets {
		return config.Load(v)
	}
	return config.Decode(v)
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	return observability.NewLogger(verbose, cmd.ErrOrStderr())
}

// newRunner builds a runner over a fresh warehouse connection
func newRunner(cmd *cobra.Command, cfg *models.Config) (*pipeline.Runner, error) {
	if err := config.ValidateCluster(cfg); err != nil {
		return nil, err
	}
	logger := newLogger(cmd)
	svc, err := warehouse.NewService(cfg, logger)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(svc, cfg, logger), nil
}

func printer(cmd *cobra.Command) *ui.Printer {
	return ui.NewPrinter(cmd.OutOrStdout())
}
