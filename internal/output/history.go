package output

import (
	"fmt"

	"github.com/charmbracelet/x/ansi"
)

// FormatHistory numbers topics most recent first, truncating each line to width cells.
func FormatHistory(topics []string, width int) []string {
	lines := make([]string, 0, len(topics))
	for i, topic := range topics {
		line := fmt.Sprintf("%2d. %s", i+1, topic)
		if width > 0 && ansi.StringWidth(line) > width {
			line = ansi.Truncate(line, width, "…")
		}
		lines = append(lines, line)
	}
	return lines
}

// History prints the recent-topics list, or a hint when it is empty.
func (p *Printer) History(topics []string) {
	if p.mode == ModeJSON {
		if topics == nil {
			topics = []string{}
		}
		p.writeJSON(map[string]interface{}{"type": "history", "topics": topics})
		return
	}
	if len(topics) == 0 {
		p.Muted("No topics yet. Generate a framework to start your history.")
		return
	}
	p.Bold("Recent topics")
	for _, line := range FormatHistory(topics, p.width) {
		p.Println(line)
	}
}
