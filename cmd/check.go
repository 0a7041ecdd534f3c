package cmd

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"sparkload/internal/config"
	"sparkload/internal/schema"
	"sparkload/internal/source"
	"sparkload/internal/warehouse"
	"sparkload/pkg/errors"
	"sparkload/pkg/models"
)

var checkOffline bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the schema, the configuration, the sources and the connection",
	Long: `Run the preflight checks of both jobs: the table references are consistent,
the configuration is complete, each copy source contains objects, the
jsonpaths manifest parses and matches staging_events, and the warehouse
accepts a connection. --offline skips the connection.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkOffline, "offline", false, "skip the warehouse connection check")
	rootCmd.AddCommand(checkCmd)
}

type checkResult struct {
	name   string
	detail string
	err    error
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	results := []checkResult{
		run("schema", func() (string, error) {
			if err := schema.NewDefaultManager().Validate(); err != nil {
				return "", err
			}
			return fmt.Sprintf("%d tables", len(schema.DefaultTables())), nil
		}),
		run("cluster config", func() (string, error) {
			return cfg.Cluster.Dialect, config.ValidateCluster(cfg)
		}),
	}

	sources := run("source config", func() (string, error) {
		return cfg.S3.Region, config.ValidateSources(cfg)
	})
	results = append(results, sources)
	if sources.err == nil {
		opts := source.Options{Region: cfg.S3.Region, Anonymous: cfg.S3.Anonymous}
		results = append(results,
			run("log_data", func() (string, error) { return countObjects(ctx, cfg.S3.LogData, opts) }),
			run("song_data", func() (string, error) { return countObjects(ctx, cfg.S3.SongData, opts) }),
			run("log_jsonpath", func() (string, error) { return checkManifest(ctx, cfg.S3.LogJSONPath, opts) }),
		)
	}

	if !checkOffline {
		results = append(results, run("connection", func() (string, error) {
			return checkConnection(cmd, cfg)
		}))
	}

	p := printer(cmd)
	rows := make([][]string, 0, len(results))
	failed := 0
	for _, r := range results {
		detail := r.detail
		if r.err != nil {
			failed++
			detail = firstLine(r.err)
		}
		rows = append(rows, []string{r.name, p.Status(r.err == nil), detail})
	}
	p.Table([]string{"Check", "Status", "Detail"}, rows)

	if failed > 0 {
		return errors.New(errors.ErrCodeValidationFailed, fmt.Sprintf("%d of %d checks failed", failed, len(results)))
	}
	p.Success("all checks passed")
	return nil
}

func run(name string, fn func() (string, error)) checkResult {
	detail, err := fn()
	return checkResult{name: name, detail: detail, err: err}
}

func countObjects(ctx context.Context, uri string, opts source.Options) (string, error) {
	src, err := source.New(ctx, uri, opts)
	if err != nil {
		return "", err
	}
	objects, err := src.List(ctx)
	if err != nil {
		return "", err
	}
	if len(objects) == 0 {
		return "", errors.New(errors.ErrCodeSourceEmpty, fmt.Sprintf("no objects under %s", uri))
	}
	var size int64
	for _, o := range objects {
		size += o.Size
	}
	return fmt.Sprintf("%d objects, %d bytes", len(objects), size), nil
}

func checkManifest(ctx context.Context, uri string, opts source.Options) (string, error) {
	data, err := source.Fetch(ctx, uri, opts)
	if err != nil {
		return "", err
	}
	manifest, err := source.ParseManifest(data)
	if err != nil {
		return "", err
	}
	events, _ := schema.NewDefaultManager().Table(schema.StagingEvents)
	if got, want := len(manifest.Paths), len(events.Columns); got != want {
		return "", errors.New(errors.ErrCodeSourceCorrupted,
			fmt.Sprintf("manifest has %d paths, %s has %d columns", got, schema.StagingEvents, want))
	}
	return fmt.Sprintf("%d paths", len(manifest.Paths)), nil
}

func checkConnection(cmd *cobra.Command, cfg *models.Config) (string, error) {
	if err := config.ValidateCluster(cfg); err != nil {
		return "", err
	}
	svc, err := warehouse.NewService(cfg, newLogger(cmd))
	if err != nil {
		return "", err
	}
	defer svc.Close()

	if err := svc.TestConnection(cmd.Context()); err != nil {
		return "", err
	}
	return svc.Dialect().Name(), nil
}

// firstLine keeps table cells to the error's headline
func firstLine(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
