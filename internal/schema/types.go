package schema

import (
	"fmt"
	"strings"
)

// ColumnType is a warehouse column type understood by both dialects
type ColumnType string

const (
	TypeVarchar   ColumnType = "VARCHAR"
	TypeInt       ColumnType = "INT"
	TypeBigInt    ColumnType = "BIGINT"
	TypeNumeric   ColumnType = "NUMERIC"
	TypeBoolean   ColumnType = "BOOLEAN"
	TypeTimestamp ColumnType = "TIMESTAMP"
)

// TableKind separates schema-on-read landing tables from the star schema
type TableKind string

const (
	KindStaging   TableKind = "STAGING"
	KindDimension TableKind = "DIMENSION"
	KindFact      TableKind = "FACT"
)

// Column represents a table column
type Column struct {
	Name       string
	Type       ColumnType
	NotNull    bool
	PrimaryKey bool
	Identity   bool // generated, monotonic: IDENTITY(0,1)
	References *ForeignKey
}

// ForeignKey is a declared reference. The warehouse does not enforce it;
// Manager.Validate and the integrity checks do.
type ForeignKey struct {
	Table  string
	Column string
}

// Table is a table definition
type Table struct {
	Name    string
	Kind    TableKind
	Columns []Column
}

// PrimaryKey returns the primary key column, if any
func (t *Table) PrimaryKey() (Column, bool) {
	for _, c := range t.Columns {
		if c.PrimaryKey {
			return c, true
		}
	}
	return Column{}, false
}

// Column looks up a column by name, case-insensitively like the warehouse does
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the column names in declaration order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// References returns the names of the tables this table references
func (t *Table) References() []string {
	var refs []string
	seen := make(map[string]bool)
	for _, c := range t.Columns {
		if c.References != nil && !seen[c.References.Table] {
			seen[c.References.Table] = true
			refs = append(refs, c.References.Table)
		}
	}
	return refs
}

// CreateSQL renders the CREATE TABLE statement
func (t *Table) CreateSQL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", t.Name)
	for i, c := range t.Columns {
		b.WriteString("    ")
		b.WriteString(c.definition())
		if i < len(t.Columns)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(")")
	return b.String()
}

// DropSQL renders the DROP TABLE statement
func (t *Table) DropSQL() string {
	return "DROP TABLE IF EXISTS " + t.Name
}

func (c Column) definition() string {
	parts := []string{c.Name, string(c.Type)}
	if c.Identity {
		parts = append(parts, "IDENTITY(0,1)")
	}
	if c.PrimaryKey {
		parts = append(parts, "PRIMARY KEY")
	} else if c.NotNull {
		parts = append(parts, "NOT NULL")
	}
	if c.References != nil {
		parts = append(parts, fmt.Sprintf("REFERENCES %s (%s)", c.References.Table, c.References.Column))
	}
	return strings.Join(parts, " ")
}
