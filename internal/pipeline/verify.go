package pipeline

import (
	"context"
	"fmt"

	"sparkload/internal/schema"
	"sparkload/pkg/errors"
)

// CheckResult is the number of violating rows found by a check
type CheckResult struct {
	Check schema.Check
	Count int64
}

// Passed reports whether no rows violate the check
func (c CheckResult) Passed() bool {
	return c.Count == 0
}

// TableCount is the row count of one table
type TableCount struct {
	Table string
	Kind  schema.TableKind
	Rows  int64
}

// Verify runs the integrity checks. All checks run even after a violation;
// the error is returned when any of them failed.
func (r *Runner) Verify(ctx context.Context) (results []CheckResult, err error) {
	if err := r.wh.Connect(ctx); err != nil {
		return nil, err
	}
	defer r.close(&err)

	failed := 0
	for _, check := range r.schema.IntegrityChecks() {
		n, err := r.wh.QueryCount(ctx, check.SQL)
		if err != nil {
			return results, err
		}
		results = append(results, CheckResult{Check: check, Count: n})
		if n > 0 {
			failed++
			r.logger.Warn("integrity check failed", "check", check.Name, "rows", n)
		}
	}

	if failed > 0 {
		return results, errors.New(errors.ErrCodeIntegrityCheckFailed,
			fmt.Sprintf("%d of %d integrity checks failed", failed, len(results))).
			WithContext("failed", failed)
	}
	return results, nil
}

// Status counts the rows of every table
func (r *Runner) Status(ctx context.Context) (counts []TableCount, err error) {
	if err := r.wh.Connect(ctx); err != nil {
		return nil, err
	}
	defer r.close(&err)

	for _, t := range r.schema.Tables() {
		n, err := r.wh.QueryCount(ctx, "SELECT COUNT(*) FROM "+t.Name)
		if err != nil {
			return counts, err
		}
		counts = append(counts, TableCount{Table: t.Name, Kind: t.Kind, Rows: n})
	}
	return counts, nil
}
