package cmd

import (
	"github.com/spf13/cobra"

	"sparkload/internal/schema"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Drop and recreate the staging and star schema tables",
	Long: `Drop every table, then create the staging tables, the dimensions and the
fact table. Tables referenced by another table are created first.

Setup is destructive: staging and warehouse rows are lost.`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	runner, err := newRunner(cmd, cfg)
	if err != nil {
		return err
	}

	if err := runner.RunSetup(cmd.Context()); err != nil {
		return err
	}
	printer(cmd).Success("created %d tables", len(schema.DefaultTables()))
	return nil
}
