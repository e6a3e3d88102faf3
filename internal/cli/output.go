package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/cryptonaut/internal/models"
	"github.com/dmitrijs2005/cryptonaut/internal/services"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Width(18)

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))
)

func scopeLabel(s models.Scope) string {
	if s.Kind == models.ScopeAllNodes {
		return s.Kind.String()
	}
	return fmt.Sprintf("%s %d", s.Kind, s.NodeID)
}

// RenderReport prints the summary of a finished run.
func RenderReport(w io.Writer, target string, r *services.Report) {
	row := func(label string, value any) {
		fmt.Fprintln(w, labelStyle.Render(label)+fmt.Sprint(value))
	}

	fmt.Fprintln(w, headerStyle.Render("cryptonaut"))
	row("Target", target)
	row("Scope", scopeLabel(r.Scope))
	row("Batches", r.Batches)
	row("Keys distributed", r.Distributed)
	fmt.Fprintln(w, successStyle.Render("All missing keys distributed."))
}
