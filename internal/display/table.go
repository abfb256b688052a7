package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const maxNameWidth = 50

// Tone selects the status color of a table row.
type Tone int

const (
	ToneNone Tone = iota
	ToneOK
	ToneWarn
	ToneBad
)

var toneStyles = map[Tone]lipgloss.Style{
	ToneOK:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
	ToneWarn: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
	ToneBad:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
}

// Row is one line of the entries table.
type Row struct {
	Name   string
	Ext    string
	Status string
	Detail string
	Tone   Tone
}

// PrintTable writes rows as an aligned table with a header and separator.
// Widths are terminal cells; names wider than 50 cells are truncated with
// an ellipsis.
func PrintTable(w io.Writer, rows []Row) {
	nameW, extW, statusW := len("Entry"), len("Ext"), len("Status")
	for _, r := range rows {
		nameW = max(nameW, lipgloss.Width(r.Name))
		extW = max(extW, lipgloss.Width(r.Ext))
		statusW = max(statusW, lipgloss.Width(r.Status))
	}
	nameW = min(nameW, maxNameWidth)

	header := fmt.Sprintf("  %s  %s  %s  %s",
		pad("Entry", nameW), pad("Ext", extW), pad("Status", statusW), "Detail")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, "  "+strings.Repeat("─", lipgloss.Width(header)-2))

	for _, r := range rows {
		name := ansi.Truncate(r.Name, nameW, "…")
		// Pad before styling so escape bytes don't count toward width.
		status := pad(r.Status, statusW)
		if st, ok := toneStyles[r.Tone]; ok {
			status = st.Render(status)
		}
		fmt.Fprintf(w, "  %s  %s  %s  %s\n", pad(name, nameW), pad(r.Ext, extW), status, r.Detail)
	}
}

// pad right-fills s with spaces to width cells.
func pad(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
