package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sparkload/internal/pipeline"
	"sparkload/internal/schema"
	"sparkload/internal/warehouse"
)

var planTables bool

var planCmd = &cobra.Command{
	Use:       "plan [setup|load]",
	Short:     "Print the statements a job would run",
	Long:      `Render the statements of the setup and load jobs in the configured dialect without connecting.`,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"setup", "load"},
	RunE:      runPlan,
}

func init() {
	planCmd.Flags().BoolVar(&planTables, "tables", false, "also print the table definitions")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	dialect, err := warehouse.DialectFor(cfg.Cluster.Dialect)
	if err != nil {
		return err
	}

	job := ""
	if len(args) == 1 {
		job = args[0]
	}

	m := schema.NewDefaultManager()
	var statements []warehouse.Statement
	if job == "" || job == "setup" {
		setup, err := pipeline.SetupStatements(m)
		if err != nil {
			return err
		}
		statements = append(statements, setup...)
	}
	if job == "" || job == "load" {
		statements = append(statements, pipeline.LoadStatements(dialect, cfg)...)
	}

	out := cmd.OutOrStdout()
	if planTables {
		tables, err := m.CreateOrder()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, schema.NewVisualizer(printer(cmd).ColorEnabled()).DisplayTables(tables))
	}

	fmt.Fprintf(out, "-- dialect: %s\n", dialect.Name())
	for i, stmt := range statements {
		fmt.Fprintf(out, "\n-- %d. %s\n%s\n", i+1, stmt.Name, stmt.SQL())
	}
	return nil
}
