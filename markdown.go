package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/bekirdag/sheetadmin/internal/trc"
)

// theme selects the glamour style used for markdown panels.
type theme string

const (
	themeAuto  theme = "auto"
	themeDark  theme = "dark"
	themeLight theme = "light"
)

var themeCycle = []theme{themeAuto, themeDark, themeLight}

func parseTheme(value string) theme {
	v := theme(strings.ToLower(strings.TrimSpace(value)))
	for _, t := range themeCycle {
		if v == t {
			return t
		}
	}
	return themeAuto
}

func (t theme) String() string {
	return string(parseTheme(string(t)))
}

func (t theme) next() theme {
	for i, c := range themeCycle {
		if c == parseTheme(string(t)) {
			return themeCycle[(i+1)%len(themeCycle)]
		}
	}
	return themeAuto
}

func (t theme) styleOption() glamour.TermRendererOption {
	switch parseTheme(string(t)) {
	case themeDark, themeLight:
		return glamour.WithStandardStyle(string(t))
	default:
		return glamour.WithAutoStyle()
	}
}

// markdownView renders markdown for one panel. The glamour renderer is
// built lazily and dropped whenever the theme or wrap width changes.
type markdownView struct {
	mu    sync.Mutex
	theme theme
	wrap  int
	term  *glamour.TermRenderer
}

func newMarkdownView(t theme) *markdownView {
	return &markdownView{theme: parseTheme(string(t)), wrap: 80}
}

// Configure reports whether the theme or wrap width changed.
func (v *markdownView) Configure(t theme, wrap int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	t = parseTheme(string(t))
	wrap = maxInt(wrap, 0)
	if t == v.theme && wrap == v.wrap {
		return false
	}
	v.theme, v.wrap, v.term = t, wrap, nil
	return true
}

// Render falls back to the raw source when glamour fails.
func (v *markdownView) Render(src string) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.term == nil {
		term, err := glamour.NewTermRenderer(glamour.WithWordWrap(v.wrap), v.theme.styleOption())
		if err != nil {
			return src
		}
		v.term = term
	}
	out, err := v.term.Render(src)
	if err != nil {
		return src
	}
	return out
}

// aboutMarkdown is the prose shown in the About panel, with links to the
// companion plugins that edit what this panel only displays.
func aboutMarkdown(gotoURL, sheetID string) string {
	link := func(plugin string) string {
		return fmt.Sprintf("[%s](%s)", plugin, trc.GotoLink(gotoURL, sheetID, plugin))
	}
	var b strings.Builder
	b.WriteString("# Sheet admin\n\n")
	b.WriteString("Shows a sheet's columns, its external data connection and its change history, ")
	b.WriteString("and lets an owner refresh the sheet or delete derived and question columns.\n\n")
	b.WriteString("## Columns\n\n")
	fmt.Fprintf(&b, "- **Semantic** columns come from data uploads. Manage them with %s.\n", link(trc.PluginDataUploader))
	fmt.Fprintf(&b, "- **Expression** columns are computed. Manage them with %s.\n", link(trc.PluginFilter))
	fmt.Fprintf(&b, "- **Question** columns are user-editable. Manage them with %s.\n", link(trc.PluginEditQuestions))
	b.WriteString("- Columns marked `*` are required by the mobile apps and cannot be deleted.\n\n")
	b.WriteString("## History\n\n")
	fmt.Fprintf(&b, "The full change list, including who made each change, is in %s.\n\n", link(trc.PluginAudit))
	b.WriteString("## Refresh\n\n")
	b.WriteString("Refresh re-pulls the external source data and the latest semantic definitions. ")
	b.WriteString("The panel pauses until the host finishes, then reloads everything.\n")
	return b.String()
}
