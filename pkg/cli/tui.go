package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Malifforas/music/pkg/compose"
)

// Theme defines the colors of pretty output.
type Theme struct {
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Dim     lipgloss.Color
}

// DefaultTheme is a chiptune green.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Accent:  lipgloss.Color("#ffd866"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Border lipgloss.Style
	Note   lipgloss.Style
	Help   lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Padding(0, 1),
		Label:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Border: lipgloss.NewStyle().Foreground(t.Primary),
		Note:   lipgloss.NewStyle().Foreground(t.Accent),
		Help:   lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// Section is a labeled block of lines.
type Section struct {
	Label string
	Lines []string
}

// Sheet is a bordered panel with a title, a status tag and sections.
type Sheet struct {
	Styles   Styles
	Title    string
	Status   string
	Sections []Section
	Footer   string
}

// Render draws the sheet width columns wide. Long lines are truncated.
func (s Sheet) Render(width int) string {
	width = max(width, 20)
	bc := s.Styles.Border
	maxContentWidth := width - 4

	var lines []string
	lines = append(lines, bc.Render("╭"+strings.Repeat("─", width-2)+"╮"))

	// │ title [status]    │
	title := s.Styles.Title.Render(s.Title)
	status := s.Styles.Help.Render("[" + s.Status + "]")
	padding := max(0, width-5-lipgloss.Width(title)-lipgloss.Width(status))
	lines = append(lines, bc.Render("│")+" "+title+" "+status+
		strings.Repeat(" ", padding)+" "+bc.Render("│"))

	for _, sec := range s.Sections {
		lines = append(lines, s.renderSection(bc, sec, width, maxContentWidth)...)
	}

	lines = append(lines, bc.Render("╰"+strings.Repeat("─", width-2)+"╯"))
	if s.Footer != "" {
		lines = append(lines, s.Styles.Help.Render(s.Footer))
	}
	return strings.Join(lines, "\n")
}

func (s Sheet) renderSection(bc lipgloss.Style, sec Section, width, maxContentWidth int) []string {
	// ├─Label────────┤
	labelText := s.Styles.Label.Render(sec.Label)
	padding := max(0, width-3-lipgloss.Width(labelText))
	lines := []string{bc.Render("├") + bc.Render("─") + labelText +
		bc.Render(strings.Repeat("─", padding)) + bc.Render("┤")}

	for _, text := range sec.Lines {
		if maxContentWidth > 1 && lipgloss.Width(text) > maxContentWidth {
			text = truncateString(text, maxContentWidth-1) + "…"
		}
		lines = append(lines, bc.Render("│")+" "+text+
			strings.Repeat(" ", max(0, maxContentWidth-lipgloss.Width(text)))+" "+bc.Render("│"))
	}
	return lines
}

// truncateString truncates s to width display columns.
func truncateString(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	currentWidth := 0
	for i, r := range runes {
		w := lipgloss.Width(string(r))
		if currentWidth+w > width {
			return string(runes[:i])
		}
		currentWidth += w
	}
	return s
}

// EventsPerRow is how many events a score row holds.
const EventsPerRow = 8

// ScoreLines lays events out as rows of "Note/duration" cells. A bare
// event shows its letter alone.
func ScoreLines(st Styles, events []compose.Event) []string {
	var rows []string
	for start := 0; start < len(events); start += EventsPerRow {
		end := min(start+EventsPerRow, len(events))
		cells := make([]string, 0, end-start)
		for _, e := range events[start:end] {
			cell := e.Note
			if !e.Bare() {
				cell = fmt.Sprintf("%s/%g", e.Note, e.Duration)
			}
			cells = append(cells, st.Note.Render(fmt.Sprintf("%-7s", cell)))
		}
		rows = append(rows, st.Help.Render(fmt.Sprintf("%3d ", start))+strings.Join(cells, ""))
	}
	return rows
}

// ScoreSheet builds a Sheet showing every voice of c.
func ScoreSheet(st Styles, title string, c *compose.Composition) Sheet {
	voices := []struct {
		label  string
		events []compose.Event
	}{
		{"melody", c.Melody},
		{"harmony", c.Harmony},
		{"bass", c.Bass},
	}
	sheet := Sheet{
		Styles: st,
		Title:  title,
		Status: c.Scale + " " + c.Progression.String(),
	}
	for _, v := range voices {
		sheet.Sections = append(sheet.Sections, Section{
			Label: fmt.Sprintf("%s (%d, %s)", v.label, len(v.events), FormatBeats(compose.TotalBeats(v.events))),
			Lines: ScoreLines(st, v.events),
		})
	}
	return sheet
}
