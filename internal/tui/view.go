package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/linkkoy/internal/model"
	"github.com/nikbrunner/linkkoy/internal/tui/layout"
)

// View implements tea.Model.
func (a App) View() string {
	var body string
	switch a.mode {
	case ModeSearch:
		body = a.renderSearch()
	case ModeForm:
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.renderForm())
	default:
		body = a.renderBrowser()
	}

	content := a.styles.App.Render(
		lipgloss.JoinVertical(lipgloss.Left, body, a.renderStatusLine(), a.renderHints(a.contextualHints())),
	)
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

func (a App) renderBrowser() string {
	panes := layout.CalculatePanes(a.width, a.height, a.layout.Pane)
	columns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		a.renderListPane(panes.ListWidth, panes.Height),
		a.renderPreviewPane(panes.PreviewWidth, panes.Height),
	)
	return lipgloss.JoinVertical(lipgloss.Left, a.renderBreadcrumb(), columns)
}

// renderBreadcrumb renders the folder path above the panes.
func (a App) renderBreadcrumb() string {
	parts := []string{"lk"}
	for _, f := range a.path {
		parts = append(parts, f.Name)
	}
	path := strings.Join(parts, " / ")

	// Keep the deepest folders visible.
	path = layout.TruncateLeft(path, a.width-4, a.layout.Ellipsis)
	return a.styles.Breadcrumb.Render(path)
}

func (a App) renderListPane(width, height int) string {
	var content strings.Builder
	itemWidth := layout.ItemWidth(width, a.layout.Pane)
	items := a.Items()

	if len(items) == 0 {
		content.WriteString(a.styles.Empty.Render("(empty)"))
	} else {
		offset := layout.ViewportOffset(a.cursor, len(items), height)
		for i := offset; i < len(items) && i < offset+height; i++ {
			content.WriteString(a.renderItem(items[i], i == a.cursor, itemWidth) + "\n")
		}
	}

	return a.styles.PaneActive.
		Width(width).
		Height(height).
		Render(strings.TrimRight(content.String(), "\n"))
}

func (a App) renderItem(item model.Entity, isCursor bool, maxWidth int) string {
	text := item.DisplayName()
	if item.Kind == model.KindFolder {
		text += "/"
	}
	line := layout.Truncate(text, maxWidth, a.layout.Ellipsis)

	if isCursor {
		for lipgloss.Width(line) < maxWidth {
			line += " "
		}
		return a.styles.ItemSelected.Render(line)
	}
	if item.Kind == model.KindFolder {
		style := a.styles.Folder
		if c := item.Folder.DisplayColor(); c != "" {
			style = style.Foreground(lipgloss.Color(c))
		}
		return a.styles.Item.Render(style.Render(line))
	}
	return a.styles.Item.Render(a.styles.Link.Render(line))
}

func (a App) renderPreviewPane(width, height int) string {
	var content strings.Builder
	itemWidth := layout.ItemWidth(width, a.layout.Pane)
	trunc := func(s string) string { return layout.Truncate(s, itemWidth, a.layout.Ellipsis) }

	if item, ok := a.selected(a.Items()); ok {
		switch item.Kind {
		case model.KindFolder:
			f := item.Folder
			content.WriteString(a.styles.Title.Render(trunc(f.Name)) + "\n\n")
			content.WriteString(a.styles.Label.Render("icon  ") + f.Icon + "\n")
			if c := f.DisplayColor(); c != "" {
				content.WriteString(a.styles.Label.Render("color ") + c + "\n")
			}
		case model.KindLink:
			l := item.Link
			content.WriteString(a.styles.Title.Render(trunc(l.Title)) + "\n\n")
			content.WriteString(a.styles.URL.Render(trunc(l.URL)) + "\n\n")
			if d := model.Domain(l.URL); d != "" {
				content.WriteString(a.styles.Label.Render("domain  ") + d + "\n")
				favicon := layout.Truncate(model.FaviconURL(l.URL), itemWidth-len("favicon "), a.layout.Ellipsis)
				content.WriteString(a.styles.Label.Render("favicon ") + favicon + "\n")
			}
		}
	}

	return a.styles.Pane.
		Width(width).
		Height(height).
		Render(strings.TrimRight(content.String(), "\n"))
}

func (a App) renderSearch() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Search") + "\n\n")
	b.WriteString(a.searchInput.View() + "\n\n")

	if !a.results.Active {
		b.WriteString(a.styles.Empty.Render("Type to search folders and links"))
		return b.String()
	}

	items := a.searchItems()
	if len(items) == 0 {
		b.WriteString(a.styles.Empty.Render("(no matches)"))
		return b.String()
	}

	height := max(a.height-a.layout.Search.HeaderReduction, 1)
	width := max(a.width-8, 10)
	offset := layout.ViewportOffset(a.searchCursor, len(items), height)
	for i := offset; i < len(items) && i < offset+height; i++ {
		b.WriteString(a.renderSearchItem(items[i], i == a.searchCursor, width) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a App) renderSearchItem(item model.Entity, isCursor bool, maxWidth int) string {
	line := item.DisplayName()
	if item.Kind == model.KindFolder {
		line += "/"
	} else if d := model.Domain(item.Link.URL); d != "" {
		line += "  " + d
	}
	line = layout.Truncate(line, maxWidth, a.layout.Ellipsis)
	if isCursor {
		return a.styles.ItemSelected.Render(line)
	}
	return a.styles.Item.Render(line)
}

func (a App) renderForm() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render(a.form.title) + "\n\n")
	for i, in := range a.form.inputs {
		b.WriteString(a.styles.Label.Render(a.form.labels[i]) + "\n")
		b.WriteString(in.View() + "\n\n")
	}
	if a.form.err != "" {
		b.WriteString(a.styles.Error.Render(a.form.err) + "\n\n")
	}
	b.WriteString(a.renderHints(a.contextualHints()))

	return a.styles.Modal.
		Width(layout.ModalWidth(a.width, a.layout.Modal)).
		Render(b.String())
}

// renderStatusLine shows the undo prompt, or else the last message.
func (a App) renderStatusLine() string {
	if a.toast != nil {
		undoKey := a.keys.Undo.Help().Key
		if a.toast.search {
			undoKey = a.keys.ResultUndo.Help().Key
		}
		return a.styles.Toast.Render(fmt.Sprintf("Deleted %s %q  (%s to undo)", a.toast.kind, a.toast.name, undoKey))
	}
	if a.messageType == MessageSuccess {
		return a.styles.Success.Render(a.messageText)
	}
	return a.styles.Toast.Render(a.messageText)
}
