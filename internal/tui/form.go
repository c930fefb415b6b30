package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/linkkoy/internal/model"
	"github.com/nikbrunner/linkkoy/internal/tui/layout"
)

type formKind int

const (
	formAddFolder formKind = iota
	formEditFolder
	formAddLink
	formEditLink
)

// form is the modal used to add and edit folders and links.
type form struct {
	kind   formKind
	title  string
	labels []string
	inputs []textinput.Model
	focus  int
	target string // ID of the edited entity
	err    string
}

func newInput(placeholder, value string, limit int, cfg layout.Config) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = cfg.Input.Width
	in.SetValue(value)
	in.CursorEnd()
	return in
}

// newFolderForm builds the folder form. A nil folder means add.
func newFolderForm(cfg layout.Config, f *model.Folder) form {
	fm := form{
		kind:   formAddFolder,
		title:  "Add Folder",
		labels: []string{"Name", "Icon", "Color"},
	}
	name, icon, color := "", model.DefaultIcon, ""
	if f != nil {
		fm.kind = formEditFolder
		fm.title = "Edit Folder"
		fm.target = f.ID
		name, icon, color = f.Name, f.Icon, f.DisplayColor()
	}
	fm.inputs = []textinput.Model{
		newInput("Folder name", name, cfg.Input.NameCharLimit, cfg),
		newInput(model.DefaultIcon, icon, cfg.Input.NameCharLimit, cfg),
		newInput("#RRGGBB (optional)", color, 7, cfg),
	}
	fm.inputs[0].Focus()
	return fm
}

// newLinkForm builds the link form. A nil link means add.
func newLinkForm(cfg layout.Config, l *model.Link) form {
	fm := form{
		kind:   formAddLink,
		title:  "Add Link",
		labels: []string{"Title", "URL"},
	}
	title, url := "", ""
	if l != nil {
		fm.kind = formEditLink
		fm.title = "Edit Link"
		fm.target = l.ID
		title, url = l.Title, l.URL
	}
	fm.inputs = []textinput.Model{
		newInput("Title", title, cfg.Input.NameCharLimit, cfg),
		newInput("https://...", url, cfg.Input.URLCharLimit, cfg),
	}
	fm.inputs[0].Focus()
	return fm
}

func (f *form) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f *form) setFocus(i int) {
	n := len(f.inputs)
	i = (i%n + n) % n
	f.inputs[f.focus].Blur()
	f.focus = i
	f.inputs[i].Focus()
}

func (a App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.mode = ModeNormal
		return a, nil

	case key.Matches(msg, a.keys.NextField):
		a.form.setFocus(a.form.focus + 1)
		return a, nil

	case key.Matches(msg, a.keys.PrevField):
		a.form.setFocus(a.form.focus - 1)
		return a, nil

	case key.Matches(msg, a.keys.Submit):
		a.submitForm()
		return a, nil
	}

	var cmd tea.Cmd
	a.form.inputs[a.form.focus], cmd = a.form.inputs[a.form.focus].Update(msg)
	return a, cmd
}

// submitForm validates and saves the form. Validation errors keep the
// form open; store failures are logged and close it.
func (a *App) submitForm() {
	err := a.saveForm()
	if errors.Is(err, model.ErrValidation) {
		a.form.err = err.Error()
		return
	}
	a.mode = ModeNormal
	if err != nil {
		a.logger.Error("save failed", "form", a.form.title, "error", err)
		return
	}
	a.setMessage(MessageSuccess, "Saved")
	a.reload()
}

func (a *App) saveForm() error {
	f := &a.form
	switch f.kind {
	case formAddFolder:
		p := model.NewFolderParams{
			Name:     f.value(0),
			Icon:     f.value(1),
			Color:    optionalValue(f.value(2)),
			ParentID: a.CurrentFolderID(),
			UserID:   a.userID,
		}
		if err := p.Validate(); err != nil {
			return err
		}
		_, err := a.repo.CreateFolder(a.ctx, p)
		return err

	case formEditFolder:
		u := model.FolderUpdate{
			Name:  f.value(0),
			Icon:  f.value(1),
			Color: optionalValue(f.value(2)),
		}
		if u.Icon == "" {
			u.Icon = model.DefaultIcon
		}
		if err := u.Validate(); err != nil {
			return err
		}
		return a.repo.UpdateFolder(a.ctx, f.target, u)

	case formAddLink:
		folderID := a.CurrentFolderID()
		if folderID == nil {
			return nil
		}
		p := model.NewLinkParams{
			Title:    f.value(0),
			URL:      f.value(1),
			FolderID: *folderID,
			UserID:   a.userID,
		}
		if err := p.Validate(); err != nil {
			return err
		}
		_, err := a.repo.CreateLink(a.ctx, p)
		return err

	case formEditLink:
		u := model.LinkUpdate{Title: f.value(0), URL: f.value(1)}
		if err := u.Validate(); err != nil {
			return err
		}
		return a.repo.UpdateLink(a.ctx, f.target, u)
	}
	return nil
}

func optionalValue(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
