package cmd

import (
	"strconv"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the row count of every table",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	runner, err := newRunner(cmd, cfg)
	if err != nil {
		return err
	}

	counts, err := runner.Status(cmd.Context())
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Table, string(c.Kind), strconv.FormatInt(c.Rows, 10)})
	}
	printer(cmd).Table([]string{"Table", "Kind", "Rows"}, rows)
	return nil
}
