// Package simulate runs the load job against an in-memory warehouse with
// the same merge rules as the SQL transforms.
package simulate

import (
	"sort"
	"time"

	"sparkload/internal/schema"
	"sparkload/pkg/models"
)

// Engine holds the staging and star schema tables in memory. Text columns
// hold "" for NULL, so song and artist rows with an empty key are dropped
// the same way the warehouse drops NULL and empty keys.
type Engine struct {
	// Now stamps rows merged into song and artist
	Now func() time.Time

	events      []models.StagingEvent
	stagedSongs []models.StagingSong

	users     map[int64]models.User
	songs     map[string]models.Song
	artists   map[string]models.Artist
	times     map[int64]models.Time
	songplays []models.Songplay
	nextID    int64
}

// NewEngine returns an engine with empty tables
func NewEngine() *Engine {
	e := &Engine{Now: func() time.Time { return time.Now().UTC() }}
	e.Setup()
	return e
}

// Setup drops and recreates every table
func (e *Engine) Setup() {
	e.events = nil
	e.stagedSongs = nil
	e.users = make(map[int64]models.User)
	e.songs = make(map[string]models.Song)
	e.artists = make(map[string]models.Artist)
	e.times = make(map[int64]models.Time)
	e.songplays = nil
	e.nextID = 0
}

// Stage appends to the staging tables, like a bulk copy
func (e *Engine) Stage(events []models.StagingEvent, songs []models.StagingSong) {
	e.events = append(e.events, events...)
	e.stagedSongs = append(e.stagedSongs, songs...)
}

// Load stages the records and transforms
func (e *Engine) Load(events []models.StagingEvent, songs []models.StagingSong) {
	e.Stage(events, songs)
	e.Transform()
}

// Transform runs the transforms in load order
func (e *Engine) Transform() {
	e.UpsertUsers()
	e.UpsertSongs()
	e.UpsertArtists()
	e.ExpandTime()
	e.AppendSongplays()
}

// UpsertUsers replaces each staged user with the profile of their latest
// event. Users who are not staged keep their row.
func (e *Engine) UpsertUsers() {
	latest := keepFirst(e.events,
		func(ev models.StagingEvent) (int64, bool) {
			if ev.UserID == nil {
				return 0, false
			}
			return *ev.UserID, true
		},
		func(a, b models.StagingEvent) bool {
			return first(
				desc(a.Ts, b.Ts),
				desc(a.SessionID, b.SessionID),
				desc(a.ItemInSession, b.ItemInSession),
				textDesc(a.Level, b.Level),
			) < 0
		})

	for id, ev := range latest {
		e.users[id] = models.User{
			UserID:    id,
			FirstName: ev.FirstName,
			LastName:  ev.LastName,
			Gender:    ev.Gender,
			Level:     ev.Level,
		}
	}
}

// UpsertSongs merges the staged catalog into song, keeping the newest row
// per song_id
func (e *Engine) UpsertSongs() {
	now := e.Now()
	candidates := make([]models.Song, 0, len(e.songs)+len(e.stagedSongs))
	for _, s := range e.stagedSongs {
		candidates = append(candidates, models.Song{
			SongID:      s.SongID,
			Title:       s.Title,
			ArtistID:    s.ArtistID,
			Year:        s.Year,
			Duration:    s.Duration,
			TimeCreated: now,
		})
	}
	for _, s := range e.songs {
		candidates = append(candidates, s)
	}

	e.songs = keepFirst(candidates,
		func(s models.Song) (string, bool) { return s.SongID, s.SongID != "" },
		func(a, b models.Song) bool {
			return first(
				timeDesc(a.TimeCreated, b.TimeCreated),
				textAsc(a.Title, b.Title),
				textAsc(a.ArtistID, b.ArtistID),
				asc(a.Year, b.Year),
				asc(a.Duration, b.Duration),
			) < 0
		})
}

// UpsertArtists merges the staged artists into artist, keeping the newest
// row per artist_id
func (e *Engine) UpsertArtists() {
	now := e.Now()
	candidates := make([]models.Artist, 0, len(e.artists)+len(e.stagedSongs))
	for _, s := range e.stagedSongs {
		candidates = append(candidates, models.Artist{
			ArtistID:    s.ArtistID,
			Name:        s.ArtistName,
			Location:    s.ArtistLocation,
			Latitude:    s.ArtistLatitude,
			Longitude:   s.ArtistLongitude,
			TimeCreated: now,
		})
	}
	for _, a := range e.artists {
		candidates = append(candidates, a)
	}

	e.artists = keepFirst(candidates,
		func(a models.Artist) (string, bool) { return a.ArtistID, a.ArtistID != "" },
		func(a, b models.Artist) bool {
			return first(
				timeDesc(a.TimeCreated, b.TimeCreated),
				textAsc(a.Name, b.Name),
				textAsc(a.Location, b.Location),
				asc(a.Latitude, b.Latitude),
				asc(a.Longitude, b.Longitude),
			) < 0
		})
}

// ExpandTime adds a time row for each staged timestamp not yet present
func (e *Engine) ExpandTime() {
	for _, ev := range e.events {
		if ev.Ts == nil {
			continue
		}
		if _, ok := e.times[*ev.Ts]; ok {
			continue
		}
		e.times[*ev.Ts] = TimeOf(*ev.Ts)
	}
}

// AppendSongplays adds one row per NextSong event and matching song
func (e *Engine) AppendSongplays() {
	type match struct {
		song   string
		artist string
		title  string
		name   string
	}
	var pairs []match
	for _, s := range e.Songs() {
		if a, ok := e.artists[s.ArtistID]; ok {
			pairs = append(pairs, match{song: s.SongID, artist: a.ArtistID, title: s.Title, name: a.Name})
		}
	}

	for _, ev := range e.events {
		if ev.Page != "NextSong" {
			continue
		}
		for _, p := range pairs {
			if p.title != ev.Song || p.name != ev.Artist {
				continue
			}
			e.songplays = append(e.songplays, models.Songplay{
				SongplayID: e.nextID,
				StartTime:  ev.Ts,
				UserID:     ev.UserID,
				Level:      ev.Level,
				SongID:     p.song,
				ArtistID:   p.artist,
				SessionID:  ev.SessionID,
				Location:   ev.Location,
				UserAgent:  ev.UserAgent,
			})
			e.nextID++
		}
	}
}

// TimeOf decomposes a millisecond timestamp. Every field comes from the
// timestamp truncated to the second, in UTC.
func TimeOf(ts int64) models.Time {
	sec := ts / 1000
	if ts%1000 < 0 {
		sec--
	}
	t := time.Unix(sec, 0).UTC()
	_, week := t.ISOWeek()
	wd := t.Weekday()

	return models.Time{
		StartTime: ts,
		Hour:      t.Hour(),
		Day:       t.Day(),
		Week:      week,
		Month:     int(t.Month()),
		Year:      t.Year(),
		Weekday:   wd != time.Saturday && wd != time.Sunday,
	}
}

func timeDesc(a, b time.Time) int {
	switch {
	case a.After(b):
		return -1
	case a.Before(b):
		return 1
	}
	return 0
}

// Users returns user_table ordered by user_id
func (e *Engine) Users() []models.User {
	out := make([]models.User, 0, len(e.users))
	for _, u := range e.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// Songs returns song ordered by song_id
func (e *Engine) Songs() []models.Song {
	out := make([]models.Song, 0, len(e.songs))
	for _, s := range e.songs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SongID < out[j].SongID })
	return out
}

// Artists returns artist ordered by artist_id
func (e *Engine) Artists() []models.Artist {
	out := make([]models.Artist, 0, len(e.artists))
	for _, a := range e.artists {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ArtistID < out[j].ArtistID })
	return out
}

// Times returns time_table ordered by start_time
func (e *Engine) Times() []models.Time {
	out := make([]models.Time, 0, len(e.times))
	for _, t := range e.times {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out
}

// Songplays returns the fact rows in insertion order
func (e *Engine) Songplays() []models.Songplay {
	return append([]models.Songplay(nil), e.songplays...)
}

// Counts returns the row count of every table, keyed by table name
func (e *Engine) Counts() map[string]int {
	return map[string]int{
		schema.StagingEvents: len(e.events),
		schema.StagingSongs:  len(e.stagedSongs),
		schema.Users:         len(e.users),
		schema.Songs:         len(e.songs),
		schema.Artists:       len(e.artists),
		schema.Times:         len(e.times),
		schema.Songplays:     len(e.songplays),
	}
}
