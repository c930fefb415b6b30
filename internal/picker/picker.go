// Package picker is a small TUI for choosing one link among fuzzy matches.
package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/linkkoy/internal/model"
	"github.com/nikbrunner/linkkoy/internal/search"
	"github.com/nikbrunner/linkkoy/internal/tui/layout"
)

// KeyMap holds the picker's bindings.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Choose key.Binding
	Cancel key.Binding
}

// DefaultKeyMap returns vim-style bindings with arrow key fallbacks.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:     key.NewBinding(key.WithKeys("k", "up", "ctrl+k"), key.WithHelp("k", "up")),
		Down:   key.NewBinding(key.WithKeys("j", "down", "ctrl+j"), key.WithHelp("j", "down")),
		Top:    key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom: key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Choose: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Cancel: key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("q", "cancel")),
	}
}

var (
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	urlStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	matchStyle    = lipgloss.NewStyle().Underline(true)
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// linesPerResult is the title line plus the URL line.
const linesPerResult = 2

// chromeLines covers the header, the blank lines and the footer.
const chromeLines = 4

// Picker lets the user choose one link among fuzzy search results.
type Picker struct {
	results   []search.FuzzyResult
	query     string
	keys      KeyMap
	cursor    int
	selected  bool
	cancelled bool
	width     int
	height    int
}

// New creates a Picker over results, best match first.
func New(results []search.FuzzyResult, query string) Picker {
	return Picker{
		results: results,
		query:   query,
		keys:    DefaultKeyMap(),
		width:   80,
		height:  24,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Cancel):
			p.cancelled = true
			return p, tea.Quit
		case key.Matches(msg, p.keys.Choose):
			if len(p.results) == 0 {
				p.cancelled = true
			} else {
				p.selected = true
			}
			return p, tea.Quit
		case key.Matches(msg, p.keys.Down):
			if p.cursor < len(p.results)-1 {
				p.cursor++
			}
		case key.Matches(msg, p.keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		case key.Matches(msg, p.keys.Top):
			p.cursor = 0
		case key.Matches(msg, p.keys.Bottom):
			p.cursor = max(len(p.results)-1, 0)
		}
	}
	return p, nil
}

// visibleResults is how many results fit on screen.
func (p Picker) visibleResults() int {
	return max((p.height-chromeLines)/linesPerResult, 1)
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Search: %s (%d results)", p.query, len(p.results))))
	b.WriteString("\n\n")

	textWidth := max(p.width-3, 10)
	visible := p.visibleResults()
	start := layout.ViewportOffset(p.cursor, len(p.results), visible)
	end := min(start+visible, len(p.results))

	for i := start; i < end; i++ {
		result := p.results[i]
		cursor, style := "  ", normalStyle
		if i == p.cursor {
			cursor, style = "> ", selectedStyle
		}

		title := highlight(result)
		if lipgloss.Width(result.Link.Title) > textWidth {
			title = layout.Truncate(result.Link.Title, textWidth, "...")
		}
		url := layout.Truncate(model.Domain(result.Link.URL)+"  "+result.Link.URL, textWidth, "...")

		fmt.Fprintf(&b, "%s%s\n", cursor, style.Render(title))
		fmt.Fprintf(&b, "   %s\n", urlStyle.Render(url))
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render(p.hints()))
	return b.String()
}

func (p Picker) hints() string {
	bindings := []key.Binding{p.keys.Down, p.keys.Up, p.keys.Choose, p.keys.Cancel}
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+":"+h.Desc)
	}
	return strings.Join(parts, "  ")
}

// SelectedLink returns the chosen link, or nil if the picker was cancelled.
func (p Picker) SelectedLink() *model.Link {
	if p.cancelled || !p.selected || p.cursor >= len(p.results) {
		return nil
	}
	l := p.results[p.cursor].Link
	return &l
}

// Cancelled reports whether the user left without choosing.
func (p Picker) Cancelled() bool {
	return p.cancelled
}

// highlight underlines the title runes that matched the query.
func highlight(r search.FuzzyResult) string {
	matched := make(map[int]bool, len(r.MatchedIndexes))
	for _, i := range r.MatchedIndexes {
		matched[i] = true
	}

	var b strings.Builder
	for i, ch := range r.Link.Title {
		if matched[i] {
			b.WriteString(matchStyle.Render(string(ch)))
		} else {
			b.WriteRune(ch)
		}
	}
	return b.String()
}
