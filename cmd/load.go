package cmd

import (
	"github.com/spf13/cobra"

	"sparkload/internal/config"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Copy the source files into staging and rewrite the star schema",
	Long: `Bulk-copy the event logs and the song catalog into the staging tables,
then upsert users, songs, artists and time and append songplays.

Each statement commits on its own. A failure stops the job and leaves the
statements before it applied. Songplays are appended on every run.`,
	Args: cobra.NoArgs,
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	if err := config.ValidateSources(cfg); err != nil {
		return err
	}
	runner, err := newRunner(cmd, cfg)
	if err != nil {
		return err
	}

	if err := runner.RunLoad(cmd.Context()); err != nil {
		return err
	}
	printer(cmd).Success("load complete")
	return nil
}
