package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/javiercbk/annoroute/decl"
	"github.com/javiercbk/annoroute/table"
)

var verbStyles = map[decl.Verb]lipgloss.Style{
	decl.Get:         lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
	decl.Post:        lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
	decl.Put:         lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
	decl.Delete:      lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	decl.Patch:       lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
	decl.Head:        lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
	decl.OptionsVerb: lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Bold(true),
	decl.Any:         lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
}

func verbCell(verb decl.Verb) string {
	text := strings.ToUpper(string(verb))
	if verb == decl.Any {
		text = "ANY"
	}
	if style, ok := verbStyles[verb]; ok {
		return style.Render(text)
	}
	return text
}

// renderRoutes writes rules as a table
func renderRoutes(w io.Writer, rules []table.Rule) {
	rows := make([][]string, 0, len(rules))
	for _, r := range rules {
		rows = append(rows, []string{
			verbCell(r.Verb),
			"/" + r.FullPath,
			r.Name,
			r.Target,
			strings.Join(r.Middleware, ","),
		})
	}
	t := ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			style := lipgloss.NewStyle().Align(lipgloss.Left).Padding(0, 1)
			if row == ltable.HeaderRow {
				style = style.Bold(true)
			}
			return style
		}).
		Headers("Method", "Path", "Name", "Target", "Middleware").
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}
