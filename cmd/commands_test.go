package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparkload/internal/testutil"
	"sparkload/pkg/errors"
)

const nextSongEvent = `{"artist":"Coldplay","auth":"Logged In","firstName":"Lily","gender":"F","itemInSession":0,` +
	`"lastName":"Koch","length":269.0,"level":"paid","location":"Chicago","method":"PUT","page":"NextSong",` +
	`"registration":1540344794796.0,"sessionId":3,"song":"Yellow","status":200,"ts":1000000,` +
	`"userAgent":"Mozilla/5.0","userId":"7"}`

const homeEvent = `{"artist":null,"auth":"Logged In","firstName":"Lily","gender":"F","itemInSession":1,` +
	`"lastName":"Koch","length":null,"level":"paid","location":"Chicago","method":"GET","page":"Home",` +
	`"registration":1540344794796.0,"sessionId":3,"song":null,"status":200,"ts":1000500,` +
	`"userAgent":"Mozilla/5.0","userId":"7"}`

const yellowSong = `{"num_songs": 1, "artist_id": "A1", "artist_latitude": null, "artist_longitude": null, ` +
	`"artist_location": "London", "artist_name": "Coldplay", "song_id": "S1", "title": "Yellow", ` +
	`"duration": 269.0, "year": 2000}`

// fixture writes local sources and a config file pointing at them
func fixture(t *testing.T) string {
	h := testutil.NewTestHelper(t)
	sources := h.WriteSources(
		map[string]string{"2018/11/2018-11-01-events.json": nextSongEvent + "\n" + homeEvent + "\n"},
		map[string]string{"A/TRAAAAW128F429D538.json": yellowSong},
	)
	return h.WriteConfig(sources)
}

func TestPlanPrintsBothJobs(t *testing.T) {
	output, err := execute(t, "plan", "--config", fixture(t), "--tables=false")
	require.NoError(t, err)

	assert.Contains(t, output, "-- dialect: redshift")
	assert.Contains(t, output, "-- 1. drop staging_events")
	assert.Contains(t, output, "DROP TABLE IF EXISTS staging_events;")
	assert.Contains(t, output, "-- 14. create songplay")
	assert.Contains(t, output, "-- 15. copy staging_events")
	assert.Contains(t, output, "-- 21. insert songplay")

	assert.Less(t, strings.Index(output, "create time_table"), strings.Index(output, "create songplay"))
}

func TestPlanSingleJob(t *testing.T) {
	output, err := execute(t, "plan", "load", "--config", fixture(t), "--tables=false")
	require.NoError(t, err)

	assert.NotContains(t, output, "DROP TABLE IF EXISTS")
	assert.Contains(t, output, "-- 1. copy staging_events")
	assert.Contains(t, output, "JSON 'auto'")

	_, err = execute(t, "plan", "migrate", "--config", fixture(t))
	assert.Error(t, err)
}

func TestPlanWithTables(t *testing.T) {
	output, err := execute(t, "plan", "setup", "--config", fixture(t), "--tables")
	require.NoError(t, err)
	assert.Contains(t, output, "time_table.start_time")
}

func TestSimulateEndToEnd(t *testing.T) {
	output, err := execute(t, "simulate", "--config", fixture(t), "--runs", "2")
	require.NoError(t, err)

	rows := map[string]string{}
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(strings.ReplaceAll(line, "|", " "))
		if len(fields) == 3 {
			rows[fields[0]] = fields[1] + " " + fields[2]
		}
	}

	// staging grows with each copy; dimensions stay put; songplays grow
	assert.Equal(t, "2 4", rows["staging_events"])
	assert.Equal(t, "1 1", rows["user_table"])
	assert.Equal(t, "1 1", rows["song"])
	assert.Equal(t, "1 1", rows["artist"])
	assert.Equal(t, "2 2", rows["time_table"])
	assert.Equal(t, "1 3", rows["songplay"])
	assert.Contains(t, output, "simulated 2 load runs")
}

func TestCheckOffline(t *testing.T) {
	output, err := execute(t, "check", "--config", fixture(t), "--offline")
	require.NoError(t, err, output)

	assert.Contains(t, output, "log_data")
	assert.Contains(t, output, "18 paths")
	assert.Contains(t, output, "all checks passed")
	assert.NotContains(t, output, "connection")
}

func TestCheckReportsEmptySource(t *testing.T) {
	cfgPath := fixture(t)
	songDir := filepath.Join(filepath.Dir(cfgPath), "song_data")
	require.NoError(t, os.RemoveAll(songDir))
	require.NoError(t, os.MkdirAll(songDir, 0o755))

	output, err := execute(t, "check", "--config", cfgPath, "--offline")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeValidationFailed, errors.GetErrorCode(err))
	assert.Contains(t, output, "FAIL")
}

func TestCheckReportsShortManifest(t *testing.T) {
	cfgPath := fixture(t)
	manifest := filepath.Join(filepath.Dir(cfgPath), "log_json_path.json")
	require.NoError(t, os.WriteFile(manifest, []byte(`{"jsonpaths": ["$['artist']", "$['auth']"]}`), 0o600))

	output, err := execute(t, "check", "--config", cfgPath, "--offline")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeValidationFailed, errors.GetErrorCode(err))
	assert.Contains(t, output, "log_jsonpath")
	assert.Contains(t, output, "FAIL")
}

func TestSetupMissingConfigFile(t *testing.T) {
	_, err := execute(t, "setup", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigNotFound, errors.GetErrorCode(err))
}

func TestLoadRejectsIncompleteConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sparkload.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cluster:\n  host: dwh.example.com\n  db_name: dev\n  db_user: awsuser\n  db_password: secret\n"), 0o600))

	_, err := execute(t, "load", "--config", path)
	require.Error(t, err)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrCodeConfigInvalid, appErr.Code)
	assert.Equal(t, "iam_role.arn", appErr.Context["field"])
}
