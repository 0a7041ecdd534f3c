// Package staging renders the bulk-copy statements that fill the staging
// tables from object storage.
package staging

import (
	"sparkload/internal/schema"
	"sparkload/internal/warehouse"
	"sparkload/pkg/models"
)

// Directives returns the copy directives for the event logs and the song
// metadata. Events map fields through the jsonpaths manifest; songs match
// fields to columns by name.
func Directives(cfg *models.Config) []warehouse.CopySpec {
	return []warehouse.CopySpec{
		{
			Table:      schema.StagingEvents,
			Source:     cfg.S3.LogData,
			Credential: cfg.IAMRole.ARN,
			Region:     cfg.S3.Region,
			JSONPaths:  cfg.S3.LogJSONPath,
		},
		{
			Table:      schema.StagingSongs,
			Source:     cfg.S3.SongData,
			Credential: cfg.IAMRole.ARN,
			Region:     cfg.S3.Region,
		},
	}
}

// Statements renders the directives in the given dialect. Copies append to
// the staging tables; only setup clears them.
func Statements(dialect warehouse.Dialect, cfg *models.Config) []warehouse.Statement {
	directives := Directives(cfg)
	statements := make([]warehouse.Statement, 0, len(directives))
	for _, d := range directives {
		statements = append(statements, warehouse.NewCopyStatement("copy "+d.Table, d.Source, dialect.Copy(d)))
	}
	return statements
}
