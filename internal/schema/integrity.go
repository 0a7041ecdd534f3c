package schema

import "fmt"

// CheckKind names what an integrity check looks for
type CheckKind string

const (
	CheckDuplicateKey    CheckKind = "duplicate_key"
	CheckOrphanReference CheckKind = "orphan_reference"
)

// Check is a read-only query returning a single count of violations
type Check struct {
	Name  string
	Table string
	Kind  CheckKind
	SQL   string
}

// IntegrityChecks derives the checks the warehouse itself does not perform:
// primary key uniqueness for every keyed table and, for every declared
// reference, rows whose value has no match in the referenced table.
func (m *Manager) IntegrityChecks() []Check {
	var checks []Check

	for _, t := range m.tables {
		pk, ok := t.PrimaryKey()
		if !ok {
			continue
		}
		checks = append(checks, Check{
			Name:  fmt.Sprintf("%s.%s unique", t.Name, pk.Name),
			Table: t.Name,
			Kind:  CheckDuplicateKey,
			SQL: fmt.Sprintf(
				"SELECT COUNT(*) FROM (SELECT %[2]s FROM %[1]s GROUP BY %[2]s HAVING COUNT(*) > 1) dup",
				t.Name, pk.Name),
		})
	}

	for _, t := range m.tables {
		for _, c := range t.Columns {
			if c.References == nil {
				continue
			}
			checks = append(checks, Check{
				Name:  fmt.Sprintf("%s.%s -> %s.%s", t.Name, c.Name, c.References.Table, c.References.Column),
				Table: t.Name,
				Kind:  CheckOrphanReference,
				SQL: fmt.Sprintf(
					"SELECT COUNT(*) FROM %s c LEFT JOIN %s p ON c.%s = p.%s WHERE c.%s IS NOT NULL AND p.%s IS NULL",
					t.Name, c.References.Table, c.Name, c.References.Column, c.Name, c.References.Column),
			})
		}
	}

	return checks
}
