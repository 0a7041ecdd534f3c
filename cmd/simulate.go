package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"sparkload/internal/config"
	"sparkload/internal/schema"
	"sparkload/internal/simulate"
	"sparkload/internal/source"
)

var simulateRuns int

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run setup and load against an in-memory warehouse",
	Long: `Read the configured sources the way the bulk copy does and run setup
followed by --runs load jobs in memory, printing the table counts after
each run. Every load stages the sources again, as a real load would.`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&simulateRuns, "runs", 1, "number of load runs")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if simulateRuns < 1 {
		return fmt.Errorf("--runs must be at least 1, got %d", simulateRuns)
	}
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	if err := config.ValidateSources(cfg); err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := newLogger(cmd)
	opts := source.Options{Region: cfg.S3.Region, Anonymous: cfg.S3.Anonymous}

	data, err := source.Fetch(ctx, cfg.S3.LogJSONPath, opts)
	if err != nil {
		return err
	}
	manifest, err := source.ParseManifest(data)
	if err != nil {
		return err
	}

	logSrc, err := source.New(ctx, cfg.S3.LogData, opts)
	if err != nil {
		return err
	}
	events, err := source.ReadEvents(ctx, logSrc, manifest)
	if err != nil {
		return err
	}

	songSrc, err := source.New(ctx, cfg.S3.SongData, opts)
	if err != nil {
		return err
	}
	songs, err := source.ReadSongs(ctx, songSrc)
	if err != nil {
		return err
	}
	logger.Info("sources read", "events", len(events), "songs", len(songs))

	engine := simulate.NewEngine()

	var counts []map[string]int
	for run := 1; run <= simulateRuns; run++ {
		engine.Load(events, songs)
		counts = append(counts, engine.Counts())
		logger.Debug("load simulated", "run", run)
	}

	headers := []string{"Table"}
	for run := range counts {
		headers = append(headers, fmt.Sprintf("Run %d", run+1))
	}
	var rows [][]string
	for _, t := range schema.DefaultTables() {
		row := []string{t.Name}
		for _, c := range counts {
			row = append(row, strconv.Itoa(c[t.Name]))
		}
		rows = append(rows, row)
	}

	p := printer(cmd)
	p.Table(headers, rows)
	p.Success("simulated %d load runs", simulateRuns)
	return nil
}
