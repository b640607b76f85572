package ui

import (
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var tagRegexp = regexp.MustCompile(`<[^>]*>`)

// PlainText turns a catalog description into terminal text: tags dropped,
// entities decoded.
func PlainText(markup string) string {
	return strings.TrimSpace(html.UnescapeString(tagRegexp.ReplaceAllString(markup, "")))
}

// ProgressBar renders a Unicode progress bar with counts.
func ProgressBar(done, total, width int) string {
	if width < 5 {
		width = 5
	}
	if total <= 0 {
		return strings.Repeat("░", width) + "   0/0"
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf(" %3d/%d", done, total)
}

// Box returns the checkbox symbol for a completion flag.
func Box(done bool) string {
	if done {
		return current.Success.Render(current.BoxChecked)
	}
	return current.Muted.Render(current.BoxUnchecked)
}

// PanelString draws a framed box using the current theme.
func PanelString(inner string) string {
	border := lipgloss.NewStyle().
		Border(current.Border).
		BorderForeground(current.BorderColor).
		Padding(0, 1)
	return border.Render(inner)
}

func Panel(w io.Writer, lines []string) {
	fmt.Fprintln(w, PanelString(strings.Join(lines, "\n")))
}

func OK(w io.Writer, msg string)   { fmt.Fprintln(w, current.Success.Render("✔ "+msg)) }
func Fail(w io.Writer, msg string) { fmt.Fprintln(w, current.Error.Render("✖ "+msg)) }
