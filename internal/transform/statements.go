// Package transform builds the statements that move staged rows into the
// star schema.
package transform

import (
	"fmt"
	"strings"

	"sparkload/internal/schema"
	"sparkload/internal/warehouse"
)

// Column lists of the rewritten tables, in table order
var (
	UserColumns     = []string{"user_id", "first_name", "last_name", "gender", "level"}
	SongColumns     = []string{"song_id", "title", "artist_id", "year", "duration", "time_created"}
	ArtistColumns   = []string{"artist_id", "name", "location", "latitude", "longitude", "time_created"}
	TimeColumns     = []string{"start_time", "hour", "day", "week", "month", "year", "weekday"}
	SongplayColumns = []string{"start_time", "user_id", "level", "song_id", "artist_id", "session_id", "location", "user_agent"}
)

// loadTime stamps rows merged in this run. The cast keeps the column a
// plain TIMESTAMP on both dialects.
const loadTime = "CAST(CURRENT_TIMESTAMP AS TIMESTAMP)"

// Statements returns the transforms in the order they must run. Songplays
// come last because they join the song and artist rows written before them.
func Statements(dialect warehouse.Dialect) []warehouse.Statement {
	return []warehouse.Statement{
		Users(dialect),
		Songs(dialect),
		Artists(dialect),
		Time(dialect),
		Songplays(),
	}
}

// Users keeps, per user, the profile and level of the latest staged event.
// Users absent from staging keep their current row.
func Users(dialect warehouse.Dialect) warehouse.Statement {
	query := fmt.Sprintf(`SELECT %[1]s FROM (
    SELECT userId AS user_id, firstName AS first_name, lastName AS last_name, gender, level,
        ROW_NUMBER() OVER (PARTITION BY userId
            ORDER BY ts DESC NULLS LAST, sessionId DESC NULLS LAST, itemInSession DESC NULLS LAST, level DESC NULLS LAST) AS rn
    FROM %[2]s
    WHERE userId IS NOT NULL
) latest
WHERE rn = 1
UNION ALL
SELECT %[3]s
FROM %[4]s u
WHERE NOT EXISTS (SELECT 1 FROM %[2]s e WHERE e.userId = u.user_id)`,
		strings.Join(UserColumns, ", "), schema.StagingEvents, prefixed("u", UserColumns), schema.Users)

	return warehouse.NewStatement("upsert "+schema.Users, dialect.Rewrite(schema.Users, UserColumns, query)...)
}

// Songs appends the staged catalog to the current rows and keeps the
// newest row per song_id.
func Songs(dialect warehouse.Dialect) warehouse.Statement {
	candidates := fmt.Sprintf(`SELECT DISTINCT song_id, title, artist_id, year, duration, %s AS time_created
        FROM %s
        UNION ALL
        SELECT %s
        FROM %s`,
		loadTime, schema.StagingSongs, strings.Join(SongColumns, ", "), schema.Songs)

	query := keepNewest(SongColumns, candidates)
	return warehouse.NewStatement("upsert "+schema.Songs, dialect.Rewrite(schema.Songs, SongColumns, query)...)
}

// Artists is Songs keyed on artist_id
func Artists(dialect warehouse.Dialect) warehouse.Statement {
	candidates := fmt.Sprintf(`SELECT DISTINCT artist_id, artist_name AS name, artist_location AS location,
            artist_latitude AS latitude, artist_longitude AS longitude, %s AS time_created
        FROM %s
        UNION ALL
        SELECT %s
        FROM %s`,
		loadTime, schema.StagingSongs, strings.Join(ArtistColumns, ", "), schema.Artists)

	query := keepNewest(ArtistColumns, candidates)
	return warehouse.NewStatement("upsert "+schema.Artists, dialect.Rewrite(schema.Artists, ArtistColumns, query)...)
}

// keepNewest ranks candidates per key (the first column) by time_created
// and keeps the first row. Remaining columns break ties so the survivor does
// not depend on scan order. Rows with a NULL or empty key are dropped.
func keepNewest(columns []string, candidates string) string {
	key := columns[0]
	order := []string{"time_created DESC NULLS LAST"}
	for _, c := range columns[1:] {
		if c != "time_created" {
			order = append(order, c+" NULLS LAST")
		}
	}
	cols := strings.Join(columns, ", ")

	return fmt.Sprintf(`SELECT %[1]s FROM (
    SELECT %[1]s,
        ROW_NUMBER() OVER (PARTITION BY %[2]s ORDER BY %[3]s) AS rn
    FROM (
        %[4]s
    ) candidates
    WHERE %[2]s IS NOT NULL AND %[2]s <> ''
) ranked
WHERE rn = 1`, cols, key, strings.Join(order, ", "), candidates)
}

// Time adds one row per event timestamp not yet present. Every field is
// derived from the same second-truncated timestamp.
func Time(dialect warehouse.Dialect) warehouse.Statement {
	ts := dialect.EpochMillis("e.ts")
	sql := fmt.Sprintf(`INSERT INTO %[1]s (%[2]s)
SELECT DISTINCT e.ts AS start_time,
    EXTRACT(hour FROM %[3]s) AS hour,
    EXTRACT(day FROM %[3]s) AS day,
    %[4]s AS week,
    EXTRACT(month FROM %[3]s) AS month,
    EXTRACT(year FROM %[3]s) AS year,
    %[5]s AS weekday
FROM %[6]s e
WHERE e.ts IS NOT NULL
    AND NOT EXISTS (SELECT 1 FROM %[1]s t WHERE t.start_time = e.ts)`,
		schema.Times, strings.Join(TimeColumns, ", "), ts, dialect.ISOWeek(ts), dialect.IsWeekday(ts), schema.StagingEvents)

	return warehouse.NewStatement("insert "+schema.Times, sql)
}

// Songplays appends one fact row per NextSong event whose song title and
// artist name match a known song. Re-running it appends again.
func Songplays() warehouse.Statement {
	sql := fmt.Sprintf(`INSERT INTO %s (%s)
SELECT e.ts, e.userId, e.level, sa.song_id, sa.artist_id, e.sessionId, e.location, e.userAgent
FROM %s e
JOIN (
    SELECT a.artist_id, a.name AS artist, s.song_id, s.title AS song
    FROM %s a
    JOIN %s s ON s.artist_id = a.artist_id
) sa ON sa.song = e.song AND sa.artist = e.artist
WHERE e.page = 'NextSong'`,
		schema.Songplays, strings.Join(SongplayColumns, ", "), schema.StagingEvents, schema.Artists, schema.Songs)

	return warehouse.NewStatement("insert "+schema.Songplays, sql)
}

func prefixed(alias string, columns []string) string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = alias + "." + c
	}
	return strings.Join(out, ", ")
}
