package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# Search

Typing filters the table on every keystroke. A row matches when the
query appears, ignoring case, in **any** of the active columns.

| Key | Action |
|---|---|
| ctrl+n | toggle the name column |
| ctrl+s | toggle the size column (as shown, e.g. ` + "`1.00 MB`" + `) |
| ctrl+t | toggle the content type column |
| up / down, pgup / pgdown | move through results |
| ? or ctrl+h | show or hide this help |
| esc | close help, or quit |
`

func renderHelp(width int) string {
	wrap := width - 6
	if wrap < 40 {
		wrap = 40
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return strings.TrimRight(out, "\n")
}
