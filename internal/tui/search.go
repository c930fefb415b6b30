package tui

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/linkkoy/internal/model"
	"github.com/nikbrunner/linkkoy/internal/search"
)

// searchItems flattens the displayed results: folders first, then links.
func (a App) searchItems() []model.Entity {
	items := make([]model.Entity, 0, len(a.results.Folders)+len(a.results.Links))
	for _, f := range a.results.Folders {
		items = append(items, model.FolderEntity(f))
	}
	for _, l := range a.results.Links {
		items = append(items, model.LinkEntity(l))
	}
	return items
}

func (a App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.ResultUndo) {
		a.undoResultDelete()
		return a, nil
	}

	// Any other key lets the pending delete go through.
	a.resolveToast()
	items := a.searchItems()

	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.closeSearch()
		return a, nil

	case key.Matches(msg, a.keys.ResultDn):
		if a.searchCursor < len(items)-1 {
			a.searchCursor++
		}
		return a, nil

	case key.Matches(msg, a.keys.ResultUp):
		if a.searchCursor > 0 {
			a.searchCursor--
		}
		return a, nil

	case key.Matches(msg, a.keys.ResultDel):
		if !a.results.Active || a.searchCursor >= len(items) {
			return a, nil
		}
		return a, a.deleteResult(items[a.searchCursor])

	case key.Matches(msg, a.keys.Submit):
		if !a.results.Active || a.searchCursor >= len(items) {
			return a, nil
		}
		item := items[a.searchCursor]
		a.closeSearch()
		if item.Kind == model.KindFolder {
			a.jumpTo(item.Folder.ParentID, item.ID())
		} else {
			a.jumpTo(item.Link.FolderID, item.ID())
			a.open(*item.Link)
		}
		return a, nil
	}

	before := a.searchInput.Value()
	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	if query := a.searchInput.Value(); query != before {
		a.searchCursor = 0
		a.search.OnQueryChange(query)
	}
	return a, cmd
}

// deleteResult hides a search result behind the undo prompt. The
// browser projection drops it too when it is in the open folder.
func (a *App) deleteResult(item model.Entity) tea.Cmd {
	index := slices.IndexFunc(a.results.Folders, func(f model.Folder) bool { return f.ID == item.ID() })
	if item.Kind == model.KindLink {
		index = slices.IndexFunc(a.results.Links, func(l model.Link) bool { return l.ID == item.ID() })
	}

	cmd := a.requestDelete(item)
	a.toast.item = item
	a.toast.index = index
	a.toast.search = true

	a.results = withoutResult(a.results, item.ID())
	if n := len(a.searchItems()); a.searchCursor >= n {
		a.searchCursor = max(n-1, 0)
	}
	return cmd
}

// undoResultDelete restores the result behind the undo prompt.
func (a *App) undoResultDelete() {
	if a.toast == nil {
		return
	}
	t := a.toast
	a.toast = nil
	if !a.undo.Undo(t.kind) {
		return
	}
	// Undo appends to the browser projection, which may show another folder.
	a.reload()
	if t.search {
		a.restoreResult(t)
	}
	a.setMessage(MessageInfo, "Restored "+t.name)
}

// restoreResult puts a deleted search result back where it was.
func (a *App) restoreResult(t *undoToast) {
	switch t.item.Kind {
	case model.KindFolder:
		folders := slices.Clone(a.results.Folders)
		pos := min(max(t.index, 0), len(folders))
		a.results.Folders = slices.Insert(folders, pos, *t.item.Folder)
	case model.KindLink:
		links := slices.Clone(a.results.Links)
		pos := min(max(t.index, 0), len(links))
		a.results.Links = slices.Insert(links, pos, *t.item.Link)
	}
}

// withoutResult returns r without the folder or link with id.
func withoutResult(r search.Results, id string) search.Results {
	r.Folders = slices.DeleteFunc(slices.Clone(r.Folders), func(f model.Folder) bool { return f.ID == id })
	r.Links = slices.DeleteFunc(slices.Clone(r.Links), func(l model.Link) bool { return l.ID == id })
	return r
}

func (a *App) closeSearch() {
	a.search.OnQueryChange("")
	a.searchInput.Blur()
	a.mode = ModeNormal
}

// jumpTo shows the folder with the given ID (nil = root) and puts the
// cursor on the item selectID.
func (a *App) jumpTo(folderID *string, selectID string) {
	var path []model.Folder
	seen := make(map[string]bool)
	for id := folderID; id != nil && !seen[*id]; {
		seen[*id] = true
		f, err := a.repo.GetFolder(a.ctx, *id)
		if err != nil {
			a.logger.Error("resolve folder path failed", "folder", *id, "error", err)
			return
		}
		path = append(path, f)
		id = f.ParentID
	}
	slices.Reverse(path)

	a.path = path
	a.cursor = 0
	a.reload()
	for i, item := range a.Items() {
		if item.ID() == selectID {
			a.cursor = i
			break
		}
	}
}
