package schema

// Table names
const (
	StagingEvents = "staging_events"
	StagingSongs  = "staging_songs"
	Songplays     = "songplay"
	Users         = "user_table"
	Songs         = "song"
	Artists       = "artist"
	Times         = "time_table"
)

func ref(table, column string) *ForeignKey {
	return &ForeignKey{Table: table, Column: column}
}

// DefaultTables returns the table definitions in declaration order: staging
// tables, dimensions, then the fact table.
func DefaultTables() []*Table {
	return []*Table{
		{
			Name: StagingEvents,
			Kind: KindStaging,
			Columns: []Column{
				{Name: "artist", Type: TypeVarchar},
				{Name: "auth", Type: TypeVarchar},
				{Name: "firstName", Type: TypeVarchar},
				{Name: "gender", Type: TypeVarchar},
				{Name: "itemInSession", Type: TypeInt},
				{Name: "lastName", Type: TypeVarchar},
				{Name: "length", Type: TypeNumeric},
				{Name: "level", Type: TypeVarchar},
				{Name: "location", Type: TypeVarchar},
				{Name: "method", Type: TypeVarchar},
				{Name: "page", Type: TypeVarchar},
				{Name: "registration", Type: TypeVarchar},
				{Name: "sessionId", Type: TypeBigInt},
				{Name: "song", Type: TypeVarchar},
				{Name: "status", Type: TypeInt},
				{Name: "ts", Type: TypeBigInt},
				{Name: "userAgent", Type: TypeVarchar},
				{Name: "userId", Type: TypeInt},
			},
		},
		{
			Name: StagingSongs,
			Kind: KindStaging,
			Columns: []Column{
				{Name: "artist_id", Type: TypeVarchar},
				{Name: "artist_latitude", Type: TypeNumeric},
				{Name: "artist_location", Type: TypeVarchar},
				{Name: "artist_longitude", Type: TypeNumeric},
				{Name: "artist_name", Type: TypeVarchar},
				{Name: "duration", Type: TypeNumeric},
				{Name: "num_songs", Type: TypeInt},
				{Name: "song_id", Type: TypeVarchar},
				{Name: "title", Type: TypeVarchar},
				{Name: "year", Type: TypeInt},
			},
		},
		{
			Name: Users,
			Kind: KindDimension,
			Columns: []Column{
				{Name: "user_id", Type: TypeInt, PrimaryKey: true},
				{Name: "first_name", Type: TypeVarchar, NotNull: true},
				{Name: "last_name", Type: TypeVarchar, NotNull: true},
				{Name: "gender", Type: TypeVarchar},
				{Name: "level", Type: TypeVarchar},
			},
		},
		{
			Name: Songs,
			Kind: KindDimension,
			Columns: []Column{
				{Name: "song_id", Type: TypeVarchar, PrimaryKey: true},
				{Name: "title", Type: TypeVarchar, NotNull: true},
				{Name: "artist_id", Type: TypeVarchar, NotNull: true},
				{Name: "year", Type: TypeInt},
				{Name: "duration", Type: TypeNumeric},
				{Name: "time_created", Type: TypeTimestamp},
			},
		},
		{
			Name: Artists,
			Kind: KindDimension,
			Columns: []Column{
				{Name: "artist_id", Type: TypeVarchar, PrimaryKey: true},
				{Name: "name", Type: TypeVarchar, NotNull: true},
				{Name: "location", Type: TypeVarchar},
				{Name: "latitude", Type: TypeNumeric},
				{Name: "longitude", Type: TypeNumeric},
				{Name: "time_created", Type: TypeTimestamp},
			},
		},
		{
			Name: Times,
			Kind: KindDimension,
			Columns: []Column{
				{Name: "start_time", Type: TypeBigInt, PrimaryKey: true},
				{Name: "hour", Type: TypeInt},
				{Name: "day", Type: TypeInt},
				{Name: "week", Type: TypeInt},
				{Name: "month", Type: TypeInt},
				{Name: "year", Type: TypeInt},
				{Name: "weekday", Type: TypeBoolean},
			},
		},
		{
			Name: Songplays,
			Kind: KindFact,
			Columns: []Column{
				{Name: "songplay_id", Type: TypeBigInt, PrimaryKey: true, Identity: true},
				{Name: "start_time", Type: TypeBigInt, References: ref(Times, "start_time")},
				{Name: "user_id", Type: TypeInt, References: ref(Users, "user_id")},
				{Name: "level", Type: TypeVarchar},
				{Name: "song_id", Type: TypeVarchar, NotNull: true, References: ref(Songs, "song_id")},
				{Name: "artist_id", Type: TypeVarchar, NotNull: true, References: ref(Artists, "artist_id")},
				{Name: "session_id", Type: TypeBigInt, NotNull: true},
				{Name: "location", Type: TypeVarchar},
				{Name: "user_agent", Type: TypeVarchar},
			},
		},
	}
}
