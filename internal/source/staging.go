package source

import (
	"context"
	"fmt"

	"sparkload/internal/schema"
	"sparkload/pkg/errors"
	"sparkload/pkg/models"
)

func columnNames(table string) []string {
	t, _ := schema.NewDefaultManager().Table(table)
	return t.ColumnNames()
}

// ReadEvents loads every event record under src the way the bulk copy
// maps them: through the manifest when given, else by column name.
func ReadEvents(ctx context.Context, src Source, manifest *Manifest) ([]models.StagingEvent, error) {
	columns := columnNames(schema.StagingEvents)

	var ex Extractor = Auto{Columns: columns}
	if manifest != nil {
		if len(manifest.Paths) != len(columns) {
			return nil, errors.New(errors.ErrCodeSourceCorrupted,
				fmt.Sprintf("jsonpaths manifest has %d paths, %s has %d columns", len(manifest.Paths), schema.StagingEvents, len(columns)))
		}
		ex = manifest
	}

	var events []models.StagingEvent
	err := Walk(ctx, src, func(_ string, record map[string]interface{}) error {
		events = append(events, eventFromValues(ex.Extract(ctx, record)))
		return nil
	})
	return events, err
}

// ReadSongs loads every song record under src, matching keys to columns
func ReadSongs(ctx context.Context, src Source) ([]models.StagingSong, error) {
	ex := Auto{Columns: columnNames(schema.StagingSongs)}

	var songs []models.StagingSong
	err := Walk(ctx, src, func(_ string, record map[string]interface{}) error {
		songs = append(songs, songFromValues(ex.Extract(ctx, record)))
		return nil
	})
	return songs, err
}

// values are in staging_events column order
func eventFromValues(v []interface{}) models.StagingEvent {
	return models.StagingEvent{
		Artist:        Text(v[0]),
		Auth:          Text(v[1]),
		FirstName:     Text(v[2]),
		Gender:        Text(v[3]),
		ItemInSession: Int(v[4]),
		LastName:      Text(v[5]),
		Length:        Float(v[6]),
		Level:         Text(v[7]),
		Location:      Text(v[8]),
		Method:        Text(v[9]),
		Page:          Text(v[10]),
		Registration:  Text(v[11]),
		SessionID:     Int(v[12]),
		Song:          Text(v[13]),
		Status:        Int(v[14]),
		Ts:            Int(v[15]),
		UserAgent:     Text(v[16]),
		UserID:        Int(v[17]),
	}
}

// values are in staging_songs column order
func songFromValues(v []interface{}) models.StagingSong {
	return models.StagingSong{
		ArtistID:        Text(v[0]),
		ArtistLatitude:  Float(v[1]),
		ArtistLocation:  Text(v[2]),
		ArtistLongitude: Float(v[3]),
		ArtistName:      Text(v[4]),
		Duration:        Float(v[5]),
		NumSongs:        Int(v[6]),
		SongID:          Text(v[7]),
		Title:           Text(v[8]),
		Year:            Int(v[9]),
	}
}
