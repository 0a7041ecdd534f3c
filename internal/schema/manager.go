package schema

import (
	stderrors "errors"
	"fmt"

	"sparkload/pkg/errors"
)

// DDL is one schema statement together with the table it targets
type DDL struct {
	Table string
	SQL   string
}

// Manager owns the table definitions and the statement lists derived from them
type Manager struct {
	tables []*Table
	byName map[string]*Table
}

// NewManager creates a manager over the given definitions
func NewManager(tables []*Table) *Manager {
	byName := make(map[string]*Table, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}
	return &Manager{tables: tables, byName: byName}
}

// NewDefaultManager creates a manager over DefaultTables
func NewDefaultManager() *Manager {
	return NewManager(DefaultTables())
}

// Tables returns the definitions in declaration order
func (m *Manager) Tables() []*Table {
	return m.tables
}

// Table looks a definition up by name
func (m *Manager) Table(name string) (*Table, bool) {
	t, ok := m.byName[name]
	return t, ok
}

// DropStatements returns one DROP per table. Drops are IF EXISTS and the
// warehouse does not enforce references, so the order carries no meaning
// beyond emitting staging tables first.
func (m *Manager) DropStatements() []DDL {
	ddl := make([]DDL, 0, len(m.tables))
	for _, kind := range []TableKind{KindStaging, KindFact, KindDimension} {
		for _, t := range m.tables {
			if t.Kind == kind {
				ddl = append(ddl, DDL{Table: t.Name, SQL: t.DropSQL()})
			}
		}
	}
	return ddl
}

// CreateStatements returns one CREATE per table with every referenced table
// created before the tables that reference it
func (m *Manager) CreateStatements() ([]DDL, error) {
	ordered, err := m.CreateOrder()
	if err != nil {
		return nil, err
	}

	ddl := make([]DDL, len(ordered))
	for i, t := range ordered {
		ddl[i] = DDL{Table: t.Name, SQL: t.CreateSQL()}
	}
	return ddl, nil
}

// CreateOrder sorts the tables so referents precede referrers. Among tables
// that are ready at the same time the declaration order is kept.
func (m *Manager) CreateOrder() ([]*Table, error) {
	created := make(map[string]bool, len(m.tables))
	ordered := make([]*Table, 0, len(m.tables))

	for len(ordered) < len(m.tables) {
		progressed := false
		for _, t := range m.tables {
			if created[t.Name] || !m.ready(t, created) {
				continue
			}
			created[t.Name] = true
			ordered = append(ordered, t)
			progressed = true
			break
		}
		if !progressed {
			var pending []string
			for _, t := range m.tables {
				if !created[t.Name] {
					pending = append(pending, t.Name)
				}
			}
			return nil, errors.New(errors.ErrCodeValidationFailed, "Table references form a cycle or name an unknown table").
				WithContext("tables", pending)
		}
	}

	return ordered, nil
}

func (m *Manager) ready(t *Table, created map[string]bool) bool {
	for _, r := range t.References() {
		if r == t.Name {
			continue
		}
		if !created[r] {
			return false
		}
	}
	return true
}

// Validate checks every declared reference at the application layer: the
// referenced table exists, the referenced column is its primary key and the
// column types agree. It also requires one primary key per non-staging table.
func (m *Manager) Validate() error {
	var problems []error

	for _, t := range m.tables {
		if t.Kind != KindStaging {
			if _, ok := t.PrimaryKey(); !ok {
				problems = append(problems, fmt.Errorf("table %s has no primary key", t.Name))
			}
		}

		for _, c := range t.Columns {
			if c.References == nil {
				continue
			}
			label := fmt.Sprintf("%s.%s", t.Name, c.Name)

			target, ok := m.byName[c.References.Table]
			if !ok {
				problems = append(problems, fmt.Errorf("%s references unknown table %s", label, c.References.Table))
				continue
			}
			pk, ok := target.PrimaryKey()
			if !ok || pk.Name != c.References.Column {
				problems = append(problems, fmt.Errorf("%s references %s.%s which is not the primary key of %s",
					label, target.Name, c.References.Column, target.Name))
				continue
			}
			if pk.Type != c.Type {
				problems = append(problems, fmt.Errorf("%s is %s but %s.%s is %s",
					label, c.Type, target.Name, pk.Name, pk.Type))
			}
		}
	}

	if _, err := m.CreateOrder(); err != nil {
		problems = append(problems, err)
	}

	if len(problems) > 0 {
		return errors.Wrap(stderrors.Join(problems...), errors.ErrCodeValidationFailed, "Schema definition is inconsistent").
			WithContext("problems", len(problems))
	}
	return nil
}
