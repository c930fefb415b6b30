package tui

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/linkkoy/internal/model"
	"github.com/nikbrunner/linkkoy/internal/repository"
	"github.com/nikbrunner/linkkoy/internal/search"
	"github.com/nikbrunner/linkkoy/internal/tui/layout"
	"github.com/nikbrunner/linkkoy/internal/undo"
)

// DefaultUndoTimeout is how long the undo prompt stays up after a delete.
const DefaultUndoTimeout = 4 * time.Second

// Mode is the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeForm
)

// MessageType determines the styling of the status message.
type MessageType int

const (
	MessageInfo MessageType = iota
	MessageSuccess
)

// undoToast is the visible undo prompt for one pending delete.
type undoToast struct {
	kind model.Kind
	id   string
	name string
	seq  int

	// Set when the delete came from the search results.
	item   model.Entity
	index  int
	search bool
}

type undoExpiredMsg struct{ seq int }

type searchUpdatedMsg struct{ results search.Results }

// App is the main bubbletea model for the link browser.
type App struct {
	repo        repository.Bookmarks
	userID      string
	ctx         context.Context
	logger      *slog.Logger
	undo        *undo.Controller
	search      *search.Controller
	searchReady chan struct{}
	openURL     func(string) error
	copyText    func(string) error
	undoTimeout time.Duration

	keys   KeyMap
	styles Styles
	layout layout.Config

	mode Mode

	// Navigation state
	path        []model.Folder // folders entered from the root; empty = root
	cursor      int
	lastKeyWasG bool

	// Pending delete prompt
	toast    *undoToast
	toastSeq int

	// Search state
	searchInput  textinput.Model
	results      search.Results
	searchCursor int

	form form

	messageText string
	messageType MessageType

	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Repo        repository.Bookmarks
	UserID      string
	Context     context.Context // nil = context.Background()
	UndoTimeout time.Duration   // zero = DefaultUndoTimeout
	Debounce    time.Duration   // zero = search.DefaultDebounce
	Logger      *slog.Logger
	OpenURL     func(string) error // nil = OpenURL
	CopyText    func(string) error // nil = system clipboard
	Keys        *KeyMap            // optional, uses default if nil
	Styles      *Styles            // optional, uses default if nil
	Layout      *layout.Config     // optional, uses default if nil
}

// NewApp creates a new App showing the user's root folders.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}
	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}
	cfg := layout.DefaultConfig()
	if params.Layout != nil {
		cfg = *params.Layout
	}
	ctx := params.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := params.UndoTimeout
	if timeout <= 0 {
		timeout = DefaultUndoTimeout
	}
	openURL := params.OpenURL
	if openURL == nil {
		openURL = OpenURL
	}
	copyText := params.CopyText
	if copyText == nil {
		copyText = clipboard.WriteAll
	}

	ready := make(chan struct{}, 1)
	searchCtl := search.NewController(search.ControllerParams{
		Fetcher:  params.Repo,
		UserID:   params.UserID,
		Debounce: params.Debounce,
		Logger:   logger,
		OnUpdate: func(search.Results) {
			select {
			case ready <- struct{}{}:
			default:
			}
		},
	})

	input := textinput.New()
	input.Placeholder = "Search folders and links..."
	input.CharLimit = cfg.Input.SearchCharLimit
	input.Width = cfg.Input.Width

	app := App{
		repo:        params.Repo,
		userID:      params.UserID,
		ctx:         ctx,
		logger:      logger,
		undo:        undo.New(params.Repo, logger),
		search:      searchCtl,
		searchReady: ready,
		openURL:     openURL,
		copyText:    copyText,
		undoTimeout: timeout,
		keys:        keys,
		styles:      styles,
		layout:      cfg,
		searchInput: input,
		width:       80,
		height:      24,
	}

	app.reload()
	return app
}

// Close resolves a pending delete and stops the search controller.
func (a *App) Close() {
	a.resolveToast()
	a.search.Close()
}

// Cursor returns the current cursor position.
func (a App) Cursor() int {
	return a.cursor
}

// Mode returns the current interaction mode.
func (a App) Mode() Mode {
	return a.mode
}

// CurrentFolderID returns the ID of the current folder (nil for root).
func (a App) CurrentFolderID() *string {
	if len(a.path) == 0 {
		return nil
	}
	id := a.path[len(a.path)-1].ID
	return &id
}

// Items returns the visible folders followed by the visible links.
func (a App) Items() []model.Entity {
	folders := a.undo.Folders()
	links := a.undo.Links()
	items := make([]model.Entity, 0, len(folders)+len(links))
	for _, f := range folders {
		items = append(items, model.FolderEntity(f))
	}
	for _, l := range links {
		items = append(items, model.LinkEntity(l))
	}
	return items
}

// SearchResults returns the results currently displayed in search mode.
func (a App) SearchResults() search.Results {
	return a.results
}

// FormError returns the validation message shown in the open form.
func (a App) FormError() string {
	if a.mode != ModeForm {
		return ""
	}
	return a.form.err
}

// Message returns the status line text.
func (a App) Message() string {
	return a.messageText
}

// WithDimensions returns a copy of the app sized to width x height.
func (a App) WithDimensions(width, height int) App {
	a.width = width
	a.height = height
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return a.waitForSearch()
}

// waitForSearch delivers the search state after the next controller update.
func (a App) waitForSearch() tea.Cmd {
	ready := a.searchReady
	ctl := a.search
	return func() tea.Msg {
		<-ready
		return searchUpdatedMsg{results: ctl.State()}
	}
}

func (a App) expireToast(seq int) tea.Cmd {
	return tea.Tick(a.undoTimeout, func(time.Time) tea.Msg {
		return undoExpiredMsg{seq: seq}
	})
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case undoExpiredMsg:
		if a.toast != nil && a.toast.seq == msg.seq {
			a.resolveToast()
		}
		return a, nil

	case searchUpdatedMsg:
		a.results = msg.results
		if a.toast != nil && a.toast.search {
			a.results = withoutResult(a.results, a.toast.id)
		}
		if n := len(a.searchItems()); a.searchCursor >= n {
			a.searchCursor = max(n-1, 0)
		}
		return a, a.waitForSearch()

	case tea.KeyMsg:
		switch a.mode {
		case ModeSearch:
			return a.updateSearch(msg)
		case ModeForm:
			return a.updateForm(msg)
		}
		return a.updateNormal(msg)
	}

	return a, nil
}

func (a App) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Undo) {
		a.undoDelete()
		return a, nil
	}

	// Any other action lets the pending delete go through.
	a.resolveToast()
	a.messageText = ""

	// Handle gg sequence
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.cursor = 0
			a.lastKeyWasG = false
			return a, nil
		}
		a.lastKeyWasG = true
		return a, nil
	}
	a.lastKeyWasG = false

	items := a.Items()

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Down):
		if len(items) > 0 && a.cursor < len(items)-1 {
			a.cursor++
		}

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}

	case key.Matches(msg, a.keys.Bottom):
		if len(items) > 0 {
			a.cursor = len(items) - 1
		}

	case key.Matches(msg, a.keys.Right):
		if item, ok := a.selected(items); ok {
			if item.Kind == model.KindFolder {
				a.enterFolder(*item.Folder)
			} else {
				a.open(*item.Link)
			}
		}

	case key.Matches(msg, a.keys.Left):
		a.leaveFolder()

	case key.Matches(msg, a.keys.Open):
		if item, ok := a.selected(items); ok && item.Kind == model.KindLink {
			a.open(*item.Link)
		}

	case key.Matches(msg, a.keys.YankURL):
		if item, ok := a.selected(items); ok && item.Kind == model.KindLink {
			if err := a.copyText(item.Link.URL); err != nil {
				a.logger.Error("copy url failed", "error", err)
			} else {
				a.setMessage(MessageSuccess, "Copied "+item.Link.URL)
			}
		}

	case key.Matches(msg, a.keys.Delete):
		if item, ok := a.selected(items); ok {
			return a, a.requestDelete(item)
		}

	case key.Matches(msg, a.keys.AddFolder):
		a.form = newFolderForm(a.layout, nil)
		a.mode = ModeForm
		return a, textinput.Blink

	case key.Matches(msg, a.keys.AddLink):
		if len(a.path) == 0 {
			a.setMessage(MessageInfo, "Open a folder to add links")
			break
		}
		a.form = newLinkForm(a.layout, nil)
		a.mode = ModeForm
		return a, textinput.Blink

	case key.Matches(msg, a.keys.Edit):
		if item, ok := a.selected(items); ok {
			if item.Kind == model.KindFolder {
				a.form = newFolderForm(a.layout, item.Folder)
			} else {
				a.form = newLinkForm(a.layout, item.Link)
			}
			a.mode = ModeForm
			return a, textinput.Blink
		}

	case key.Matches(msg, a.keys.Search):
		a.mode = ModeSearch
		a.searchCursor = 0
		a.searchInput.Reset()
		a.search.OnQueryChange("")
		return a, a.searchInput.Focus()
	}

	return a, nil
}

// selected returns the item under the cursor.
func (a App) selected(items []model.Entity) (model.Entity, bool) {
	if a.cursor < 0 || a.cursor >= len(items) {
		return model.Entity{}, false
	}
	return items[a.cursor], true
}

func (a *App) setMessage(t MessageType, text string) {
	a.messageType = t
	a.messageText = text
}

func (a *App) open(l model.Link) {
	target := model.NormalizeURL(l.URL)
	if err := a.openURL(target); err != nil {
		a.logger.Error("open url failed", "url", target, "error", err)
		return
	}
	a.setMessage(MessageInfo, "Opened "+model.Domain(l.URL))
}

func (a *App) enterFolder(f model.Folder) {
	a.path = append(a.path, f)
	a.cursor = 0
	a.reload()
}

func (a *App) leaveFolder() {
	if len(a.path) == 0 {
		return
	}
	left := a.path[len(a.path)-1]
	a.path = a.path[:len(a.path)-1]
	a.reload()

	a.cursor = 0
	for i, item := range a.Items() {
		if item.Kind == model.KindFolder && item.Folder.ID == left.ID {
			a.cursor = i
			break
		}
	}
}

// reload fetches the current folder's children into the projections.
// On failure the previous projection stays visible.
func (a *App) reload() {
	var (
		folders []model.Folder
		links   []model.Link
		err     error
	)
	if id := a.CurrentFolderID(); id == nil {
		folders, err = a.repo.ListRootFolders(a.ctx, a.userID)
	} else {
		folders, err = a.repo.ListChildFolders(a.ctx, *id)
		if err == nil {
			links, err = a.repo.ListLinks(a.ctx, *id)
		}
	}
	if err != nil {
		a.logger.Error("load folder failed", "folder", a.CurrentFolderID(), "error", err)
		return
	}

	// The entity behind the undo prompt stays hidden until resolved.
	if a.toast != nil {
		id := a.toast.id
		folders = slices.DeleteFunc(folders, func(f model.Folder) bool { return f.ID == id })
		links = slices.DeleteFunc(links, func(l model.Link) bool { return l.ID == id })
	}
	a.undo.SetFolders(folders)
	a.undo.SetLinks(links)
	a.clampCursor()
}

func (a *App) clampCursor() {
	n := len(a.undo.Folders()) + len(a.undo.Links())
	if a.cursor >= n {
		a.cursor = max(n-1, 0)
	}
}

// requestDelete hides the item and shows the undo prompt until it
// expires or another action is taken.
func (a *App) requestDelete(item model.Entity) tea.Cmd {
	a.undo.RequestDelete(item)
	a.toastSeq++
	a.toast = &undoToast{
		kind: item.Kind,
		id:   item.ID(),
		name: item.DisplayName(),
		seq:  a.toastSeq,
	}
	a.clampCursor()
	return a.expireToast(a.toastSeq)
}

func (a *App) undoDelete() {
	if a.toast == nil {
		return
	}
	t := a.toast
	a.toast = nil
	if a.undo.Undo(t.kind) {
		a.setMessage(MessageInfo, "Restored "+t.name)
	}
}

// resolveToast confirms the pending delete behind the prompt, if any.
func (a *App) resolveToast() {
	if a.toast == nil {
		return
	}
	t := a.toast
	a.toast = nil
	if err := a.undo.Resolve(a.ctx, t.kind, undo.Dismissed); err != nil {
		// Still in the store; take it out of pending and show it again.
		a.undo.Undo(t.kind)
		a.reload()
		if t.search {
			a.restoreResult(t)
		}
		return
	}
	if t.search && a.mode == ModeSearch {
		// A folder's descendants may still be listed.
		a.search.OnQueryChange(a.searchInput.Value())
	}
}
