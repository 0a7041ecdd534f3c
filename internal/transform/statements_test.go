package transform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparkload/internal/schema"
	"sparkload/internal/warehouse"
)

func TestStatementOrder(t *testing.T) {
	var names []string
	for _, stmt := range Statements(warehouse.Redshift{}) {
		names = append(names, stmt.Name)
	}
	assert.Equal(t, []string{
		"upsert user_table",
		"upsert song",
		"upsert artist",
		"insert time_table",
		"insert songplay",
	}, names)
}

func TestColumnsMatchSchema(t *testing.T) {
	m := schema.NewDefaultManager()
	tests := []struct {
		table   string
		columns []string
	}{
		{schema.Users, UserColumns},
		{schema.Songs, SongColumns},
		{schema.Artists, ArtistColumns},
		{schema.Times, TimeColumns},
	}
	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			table, ok := m.Table(tt.table)
			require.True(t, ok)
			assert.Equal(t, table.ColumnNames(), tt.columns)
		})
	}

	songplay, ok := m.Table(schema.Songplays)
	require.True(t, ok)
	assert.Equal(t, songplay.ColumnNames()[1:], SongplayColumns, "identity column is generated")
}

func TestRedshiftRewritesThroughTempTable(t *testing.T) {
	stmt := Songs(warehouse.Redshift{})
	require.Len(t, stmt.Steps, 4)

	assert.True(t, strings.HasPrefix(stmt.Steps[0], "CREATE TEMP TABLE song_merge AS\n"))
	assert.Equal(t, "DELETE FROM song", stmt.Steps[1])
	assert.Equal(t, "INSERT INTO song (song_id, title, artist_id, year, duration, time_created)\n"+
		"SELECT song_id, title, artist_id, year, duration, time_created FROM song_merge", stmt.Steps[2])
	assert.Equal(t, "DROP TABLE song_merge", stmt.Steps[3])
}

func TestSnowflakeRewritesWithOverwrite(t *testing.T) {
	for _, stmt := range []warehouse.Statement{Users(warehouse.Snowflake{}), Songs(warehouse.Snowflake{}), Artists(warehouse.Snowflake{})} {
		require.Len(t, stmt.Steps, 1, stmt.Name)
		assert.True(t, strings.HasPrefix(stmt.Steps[0], "INSERT OVERWRITE INTO "), stmt.Name)
	}
}

func TestUsersKeepLatestEvent(t *testing.T) {
	sql := Users(warehouse.Redshift{}).Steps[0]

	assert.Contains(t, sql, "PARTITION BY userId")
	assert.Contains(t, sql, "ORDER BY ts DESC NULLS LAST, sessionId DESC NULLS LAST, itemInSession DESC NULLS LAST, level DESC NULLS LAST")
	assert.Contains(t, sql, "WHERE userId IS NOT NULL")
	assert.Contains(t, sql, "WHERE rn = 1")
	assert.Contains(t, sql, "FROM user_table u\nWHERE NOT EXISTS (SELECT 1 FROM staging_events e WHERE e.userId = u.user_id)")
}

func TestSongsKeepNewest(t *testing.T) {
	sql := Songs(warehouse.Redshift{}).Steps[0]

	assert.Contains(t, sql, "SELECT DISTINCT song_id, title, artist_id, year, duration, CAST(CURRENT_TIMESTAMP AS TIMESTAMP) AS time_created")
	assert.Contains(t, sql, "FROM staging_songs")
	assert.Contains(t, sql, "FROM song\n")
	assert.Contains(t, sql, "PARTITION BY song_id ORDER BY time_created DESC NULLS LAST, title NULLS LAST")
	assert.Contains(t, sql, "WHERE song_id IS NOT NULL AND song_id <> ''")
}

func TestArtistsUnionPriorArtists(t *testing.T) {
	sql := Artists(warehouse.Redshift{}).Steps[0]

	assert.Contains(t, sql, "artist_name AS name")
	assert.Contains(t, sql, "SELECT artist_id, name, location, latitude, longitude, time_created\n        FROM artist")
	assert.NotContains(t, sql, "FROM song")
	assert.Contains(t, sql, "WHERE artist_id IS NOT NULL AND artist_id <> ''")
	assert.Contains(t, sql, "PARTITION BY artist_id")
}

func TestTimeUsesOneTimestamp(t *testing.T) {
	stmt := Time(warehouse.Redshift{})
	require.Len(t, stmt.Steps, 1)
	sql := stmt.Steps[0]

	ts := "(TIMESTAMP 'epoch' + FLOOR(e.ts / 1000.0) * INTERVAL '1 second')"
	assert.Equal(t, 6, strings.Count(sql, ts), "hour, day, week, month, year and weekday")
	assert.Contains(t, sql, "EXTRACT(week FROM "+ts+")")
	assert.Contains(t, sql, "EXTRACT(dow FROM "+ts+") IN (0, 6)")
	assert.Contains(t, sql, "NOT EXISTS (SELECT 1 FROM time_table t WHERE t.start_time = e.ts)")

	sf := Time(warehouse.Snowflake{}).Steps[0]
	assert.Contains(t, sf, "WEEKISO(TO_TIMESTAMP_NTZ(FLOOR(e.ts / 1000)))")
}

func TestSongplaysAppendMatchedPlays(t *testing.T) {
	stmt := Songplays()
	require.Len(t, stmt.Steps, 1)
	sql := stmt.Steps[0]

	assert.True(t, strings.HasPrefix(sql, "INSERT INTO songplay (start_time, user_id, level, song_id, artist_id, session_id, location, user_agent)"))
	assert.Contains(t, sql, "JOIN song s ON s.artist_id = a.artist_id")
	assert.Contains(t, sql, "sa.song = e.song AND sa.artist = e.artist")
	assert.Contains(t, sql, "WHERE e.page = 'NextSong'")
	assert.NotContains(t, sql, "DELETE")
}
