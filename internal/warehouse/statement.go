package warehouse

import "strings"

// Statement is one logical unit of work. Its steps run in a single
// transaction that commits when the last step succeeds.
type Statement struct {
	Name  string
	Steps []string
	// Source is the object storage URI a bulk copy reads. Empty for
	// statements that only touch warehouse tables.
	Source string
}

// NewStatement creates a statement
func NewStatement(name string, steps ...string) Statement {
	return Statement{Name: name, Steps: steps}
}

// NewCopyStatement creates a bulk copy statement reading source
func NewCopyStatement(name, source string, steps ...string) Statement {
	return Statement{Name: name, Steps: steps, Source: source}
}

// SQL renders the steps as a script
func (s Statement) SQL() string {
	return strings.Join(s.Steps, ";\n") + ";"
}
