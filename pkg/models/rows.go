package models

import "time"

// StagingEvent is one log line from the event stream as landed in
// staging_events. Pointer fields are nullable columns.
type StagingEvent struct {
	Artist        string
	Auth          string
	FirstName     string
	Gender        string
	ItemInSession *int64
	LastName      string
	Length        *float64
	Level         string
	Location      string
	Method        string
	Page          string
	Registration  string
	SessionID     *int64
	Song          string
	Status        *int64
	Ts            *int64 // milliseconds since the Unix epoch
	UserAgent     string
	UserID        *int64
}

// StagingSong is one song catalog record as landed in staging_songs
type StagingSong struct {
	ArtistID        string
	ArtistLatitude  *float64
	ArtistLocation  string
	ArtistLongitude *float64
	ArtistName      string
	Duration        *float64
	NumSongs        *int64
	SongID          string
	Title           string
	Year            *int64
}

// User is a row of user_table
type User struct {
	UserID    int64
	FirstName string
	LastName  string
	Gender    string
	Level     string
}

// Song is a row of song
type Song struct {
	SongID      string
	Title       string
	ArtistID    string
	Year        *int64
	Duration    *float64
	TimeCreated time.Time
}

// Artist is a row of artist
type Artist struct {
	ArtistID    string
	Name        string
	Location    string
	Latitude    *float64
	Longitude   *float64
	TimeCreated time.Time
}

// Time is a row of time_table
type Time struct {
	StartTime int64
	Hour      int
	Day       int
	Week      int
	Month     int
	Year      int
	Weekday   bool
}

// Songplay is a row of the songplay fact table
type Songplay struct {
	SongplayID int64
	StartTime  *int64
	UserID     *int64
	Level      string
	SongID     string
	ArtistID   string
	SessionID  *int64
	Location   string
	UserAgent  string
}
