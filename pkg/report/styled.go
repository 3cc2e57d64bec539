package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles used by Styled.
type Styles struct {
	Title   lipgloss.Style
	Section lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Note    lipgloss.Style
	Box     lipgloss.Style
}

// DefaultStyles returns the terminal styles used by the CLI.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Section: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")).MarginTop(1),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Value:   lipgloss.NewStyle().Bold(true),
		Note:    lipgloss.NewStyle().Faint(true).Italic(true),
		Box:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

// Styled renders the report for a terminal with the default styles.
func (r *Report) Styled() string {
	return r.StyledWith(DefaultStyles())
}

// StyledWith renders the report for a terminal with st.
func (r *Report) StyledWith(st Styles) string {
	lines := []string{st.Title.Render(r.Title)}
	lw := r.labelWidth() + 1
	for _, e := range r.Entries {
		switch e.Kind {
		case EntrySection:
			lines = append(lines, st.Section.Render(e.Text))
		case EntryNote:
			lines = append(lines, st.Note.Render(e.Text))
		default:
			label := st.Label.Width(lw).Render(e.Label + ":")
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, label, " ", st.Value.Render(e.Formatted())))
		}
	}
	return st.Box.Render(strings.Join(lines, "\n"))
}
