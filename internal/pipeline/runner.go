// Package pipeline sequences the setup and load jobs against one warehouse
// connection.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sparkload/internal/schema"
	"sparkload/internal/staging"
	"sparkload/internal/transform"
	"sparkload/internal/warehouse"
	"sparkload/pkg/errors"
	"sparkload/pkg/models"
)

// Warehouse is the connection the runner drives
type Warehouse interface {
	Connect(ctx context.Context) error
	Close() error
	Execute(ctx context.Context, stmt warehouse.Statement) error
	QueryCount(ctx context.Context, query string) (int64, error)
	Dialect() warehouse.Dialect
}

// Runner runs jobs
type Runner struct {
	wh     Warehouse
	schema *schema.Manager
	cfg    *models.Config
	logger *slog.Logger
}

// NewRunner creates a runner over the default schema
func NewRunner(wh Warehouse, cfg *models.Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		wh:     wh,
		schema: schema.NewDefaultManager(),
		cfg:    cfg,
		logger: logger,
	}
}

// SetupStatements drops every table and recreates it. Creates are ordered
// so that referenced tables exist first.
func SetupStatements(m *schema.Manager) ([]warehouse.Statement, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	creates, err := m.CreateStatements()
	if err != nil {
		return nil, err
	}

	var statements []warehouse.Statement
	for _, ddl := range m.DropStatements() {
		statements = append(statements, warehouse.NewStatement("drop "+ddl.Table, ddl.SQL))
	}
	for _, ddl := range creates {
		statements = append(statements, warehouse.NewStatement("create "+ddl.Table, ddl.SQL))
	}
	return statements, nil
}

// LoadStatements copies into staging, then transforms
func LoadStatements(dialect warehouse.Dialect, cfg *models.Config) []warehouse.Statement {
	statements := staging.Statements(dialect, cfg)
	return append(statements, transform.Statements(dialect)...)
}

// RunSetup recreates the schema
func (r *Runner) RunSetup(ctx context.Context) error {
	statements, err := SetupStatements(r.schema)
	if err != nil {
		return err
	}
	return r.run(ctx, "setup", statements)
}

// RunLoad stages the source files and rewrites the star schema from them
func (r *Runner) RunLoad(ctx context.Context) error {
	return r.run(ctx, "load", LoadStatements(r.wh.Dialect(), r.cfg))
}

// run executes statements in order and stops at the first failure.
// Statements that already committed stay committed.
func (r *Runner) run(ctx context.Context, job string, statements []warehouse.Statement) (err error) {
	if err := r.wh.Connect(ctx); err != nil {
		return err
	}
	defer r.close(&err)

	start := time.Now()
	r.logger.Info("job started", "job", job, "statements", len(statements))

	for i, stmt := range statements {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, fmt.Sprintf("%s interrupted", job)).
				WithContext("completed", i)
		}
		r.logger.Debug("executing statement", "job", job, "statement", stmt.Name, "index", i+1)
		if err := r.wh.Execute(ctx, stmt); err != nil {
			r.logger.Error("statement failed", "job", job, "statement", stmt.Name, "completed", i,
				"code", errors.GetErrorCode(err))
			return err
		}
	}

	r.logger.Info("job finished", "job", job, "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

func (r *Runner) close(err *error) {
	if cerr := r.wh.Close(); cerr != nil {
		r.logger.Warn("closing connection failed", "error", cerr)
		if *err == nil {
			*err = cerr
		}
	}
}
