package schema

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// Visualizer renders table definitions for the terminal
type Visualizer struct {
	useColor bool
}

// NewVisualizer creates a new visualizer
func NewVisualizer(useColor bool) *Visualizer {
	return &Visualizer{useColor: useColor}
}

// DisplayTables renders one row per column of every table, in create order
func (v *Visualizer) DisplayTables(tables []*Table) string {
	var buf strings.Builder

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Table", "Kind", "Column", "Type", "Key", "References"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, t := range tables {
		for i, c := range t.Columns {
			name, kind := "", ""
			if i == 0 {
				name, kind = t.Name, string(t.Kind)
			}

			key := ""
			switch {
			case c.PrimaryKey && c.Identity:
				key = v.paint("PK (identity)", color.FgYellow)
			case c.PrimaryKey:
				key = v.paint("PK", color.FgYellow)
			case c.NotNull:
				key = "NOT NULL"
			}

			references := ""
			if c.References != nil {
				references = v.paint(fmt.Sprintf("%s.%s", c.References.Table, c.References.Column), color.FgCyan)
			}

			table.Append([]string{name, kind, c.Name, string(c.Type), key, references})
		}
	}

	table.Render()
	return buf.String()
}

func (v *Visualizer) paint(text string, attr color.Attribute) string {
	if !v.useColor {
		return text
	}
	return color.New(attr).Sprint(text)
}
