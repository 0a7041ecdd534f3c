package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/snowflakedb/gosnowflake"

	"sparkload/internal/config"
	"sparkload/pkg/errors"
	"sparkload/pkg/models"
)

// Service runs statements against one warehouse connection
type Service struct {
	db             *sql.DB
	cluster        models.Cluster
	dialect        Dialect
	connectTimeout time.Duration
	connected      bool
	logger         *slog.Logger
}

// NewService creates a service for the configured cluster. It does not connect.
func NewService(cfg *models.Config, logger *slog.Logger) (*Service, error) {
	dialect, err := DialectFor(cfg.Cluster.Dialect)
	if err != nil {
		return nil, err
	}
	timeout, err := config.ConnectTimeout(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		cluster:        cfg.Cluster,
		dialect:        dialect,
		connectTimeout: timeout,
		logger:         logger,
	}, nil
}

// Dialect returns the dialect statements must be rendered in
func (s *Service) Dialect() Dialect {
	return s.dialect
}

// Connect opens the connection and verifies it. There is no retry: a
// connection failure is reported before any statement runs.
func (s *Service) Connect(ctx context.Context) error {
	if s.connected {
		return nil
	}

	dsn, err := s.dialect.DSN(s.cluster, s.connectTimeout)
	if err != nil {
		return err
	}

	db, err := sql.Open(s.dialect.DriverName(), dsn)
	if err != nil {
		return errors.ConnectionError("Failed to open warehouse connection", err).
			WithContext("dialect", s.dialect.Name()).
			WithContext("endpoint", s.endpoint())
	}

	// One statement in flight at a time, on one session, so temp tables
	// created by a step stay visible to the next
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pingCtx := ctx
	if s.connectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, s.connectTimeout)
		defer cancel()
	}

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()

		lower := strings.ToLower(err.Error())
		if strings.Contains(lower, "authentication") || strings.Contains(lower, "password") {
			return errors.Wrap(err, errors.ErrCodeAuthenticationFailed, "Authentication failed").
				WithContext("user", s.cluster.DBUser).
				WithSuggestions(
					"Verify the database user and password",
					"Check the keyring entry written by 'sparkload init'",
				)
		}
		return errors.ConnectionError("Failed to connect to warehouse", err).
			WithContext("dialect", s.dialect.Name()).
			WithContext("endpoint", s.endpoint())
	}

	s.db = db
	s.connected = true
	s.logger.Debug("connected to warehouse", "dialect", s.dialect.Name(), "endpoint", s.endpoint())
	return nil
}

// Close closes the connection
func (s *Service) Close() error {
	if !s.connected {
		return nil
	}
	s.connected = false
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

// Execute runs the steps of one statement in a transaction and commits.
// A failing step rolls back only this statement; statements committed
// earlier in the job stay committed.
func (s *Service) Execute(ctx context.Context, stmt Statement) error {
	if !s.connected {
		return errors.New(errors.ErrCodeNotConnected, "Not connected to warehouse").
			WithSuggestions("Call Connect() before executing statements")
	}

	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSQLTransaction, "Failed to begin transaction").
			WithContext("statement", stmt.Name)
	}

	for i, step := range stmt.Steps {
		if _, err := tx.ExecContext(ctx, step); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Warn("rollback failed", "statement", stmt.Name, "error", rbErr)
			}
			var execErr *errors.AppError
			if stmt.Source != "" {
				execErr = errors.StagingError(fmt.Sprintf("Failed to execute %s", stmt.Name), stmt.Source, err)
			} else {
				execErr = errors.SQLError(fmt.Sprintf("Failed to execute %s", stmt.Name), step, err)
			}
			return execErr.
				WithContext("statement", stmt.Name).
				WithContext("step", i+1).
				WithContext("total_steps", len(stmt.Steps))
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrCodeSQLTransaction, "Failed to commit transaction").
			WithContext("statement", stmt.Name)
	}

	s.logger.Info("statement committed",
		"statement", stmt.Name,
		"steps", len(stmt.Steps),
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// QueryCount runs a query returning a single integer
func (s *Service) QueryCount(ctx context.Context, query string) (int64, error) {
	if !s.connected {
		return 0, errors.New(errors.ErrCodeNotConnected, "Not connected to warehouse")
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, errors.SQLError("Failed to run count query", query, err)
	}
	return n, nil
}

// TestConnection connects if needed and pings
func (s *Service) TestConnection(ctx context.Context) error {
	if err := s.Connect(ctx); err != nil {
		return err
	}
	if err := s.db.PingContext(ctx); err != nil {
		return errors.ConnectionError("Warehouse ping failed", err)
	}
	return nil
}

func (s *Service) endpoint() string {
	if s.dialect.Name() == "snowflake" {
		return s.cluster.Account
	}
	return fmt.Sprintf("%s:%d/%s", s.cluster.Host, s.cluster.DBPort, s.cluster.DBName)
}
