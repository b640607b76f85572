package cli

import (
	"fmt"

	"github.com/charmbracelet/x/ansi"

	"github.com/idilsaglam/checklist/internal/session"
	"github.com/idilsaglam/checklist/internal/ui"
)

func totals(groups []session.GroupView) (done, total int) {
	for _, g := range groups {
		done += g.Completed
		total += g.Total
	}
	return
}

// shorten cuts s to at most width terminal cells, never inside a rune.
func shorten(s string, width int) string {
	return ansi.Truncate(s, width, "...")
}

// listLines renders the active view for `ls`. Hidden lists and entries are
// skipped unless all is set.
func listLines(s *session.Session, all bool) []string {
	t := ui.Current()
	groups := s.Project()
	done, total := totals(groups)

	// Header + progress
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		t.Title.Render(s.ActiveView()),
		t.Success.Render("✔"), done,
		t.Pending.Render("•"), total-done,
		t.Accent.Render("Total"), total,
	)

	lines := []string{header, t.Muted.Render(ui.ProgressBar(done, total, 28)), ""}
	shown := 0
	for _, g := range groups {
		if !g.Visible && !all {
			continue
		}
		shown++
		name := g.Name
		if name == "" {
			name = g.ID
		}
		line := fmt.Sprintf("%s %-28s %s", ui.Box(g.AllComplete), name,
			t.Muted.Render(fmt.Sprintf("%d/%d", g.Completed, g.Total)))
		if g.IsDLC {
			line += " " + t.Accent.Render(t.DLCTag)
		}
		lines = append(lines, line, t.Muted.Render("  id: "+g.ID))

		if !g.Expanded {
			continue
		}
		for _, e := range g.Entries {
			if !e.Visible && !all {
				continue
			}
			text := shorten(ui.PlainText(e.Description), 80)
			if e.Completed {
				text = t.Done.Render(text)
			}
			entry := fmt.Sprintf("    %s %s %s", ui.Box(e.Completed), text, t.Muted.Render("["+e.ID+"]"))
			if e.IsDLC {
				entry += " " + t.Accent.Render(t.DLCTag)
			}
			lines = append(lines, entry)
		}
	}
	if shown == 0 {
		lines = append(lines, t.Muted.Render("nothing to show with the current filters"))
	}
	lines = append(lines, "")
	lines = append(lines, t.Muted.Render("Tip: check an entry with `checklist done <list> <entry>`"))
	return lines
}
