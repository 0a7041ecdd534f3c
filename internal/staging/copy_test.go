package staging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparkload/internal/warehouse"
	"sparkload/pkg/models"
)

func testConfig() *models.Config {
	return &models.Config{
		IAMRole: models.IAMRole{ARN: "arn:aws:iam::123456789012:role/dwhRole"},
		S3: models.S3{
			Region:      "us-west-2",
			LogData:     "s3://udacity-dend/log_data",
			LogJSONPath: "s3://udacity-dend/log_json_path.json",
			SongData:    "s3://udacity-dend/song_data",
		},
	}
}

func TestDirectives(t *testing.T) {
	directives := Directives(testConfig())
	require.Len(t, directives, 2)

	events, songs := directives[0], directives[1]
	assert.Equal(t, "staging_events", events.Table)
	assert.Equal(t, "s3://udacity-dend/log_data", events.Source)
	assert.Equal(t, "s3://udacity-dend/log_json_path.json", events.JSONPaths)

	assert.Equal(t, "staging_songs", songs.Table)
	assert.Equal(t, "s3://udacity-dend/song_data", songs.Source)
	assert.Empty(t, songs.JSONPaths, "songs are matched by name")

	for _, d := range directives {
		assert.Equal(t, "arn:aws:iam::123456789012:role/dwhRole", d.Credential)
		assert.Equal(t, "us-west-2", d.Region)
	}
}

func TestStatementsRedshift(t *testing.T) {
	statements := Statements(warehouse.Redshift{}, testConfig())
	require.Len(t, statements, 2)

	assert.Equal(t, "copy staging_events", statements[0].Name)
	require.Len(t, statements[0].Steps, 1)
	assert.Contains(t, statements[0].Steps[0], "COPY staging_events FROM 's3://udacity-dend/log_data'")
	assert.Contains(t, statements[0].Steps[0], "JSON 's3://udacity-dend/log_json_path.json'")

	assert.Equal(t, "copy staging_songs", statements[1].Name)
	assert.Contains(t, statements[1].Steps[0], "COPY staging_songs FROM 's3://udacity-dend/song_data'")
	assert.Contains(t, statements[1].Steps[0], "JSON 'auto'")

	assert.Equal(t, "s3://udacity-dend/log_data", statements[0].Source)
	assert.Equal(t, "s3://udacity-dend/song_data", statements[1].Source)
}

func TestStatementsNeverClear(t *testing.T) {
	for _, dialect := range []warehouse.Dialect{warehouse.Redshift{}, warehouse.Snowflake{}} {
		for _, stmt := range Statements(dialect, testConfig()) {
			for _, step := range stmt.Steps {
				assert.NotContains(t, step, "DELETE", dialect.Name())
				assert.NotContains(t, step, "TRUNCATE", dialect.Name())
			}
		}
	}
}
