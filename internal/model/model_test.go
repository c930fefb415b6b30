package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/nikbrunner/linkkoy/internal/model"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func stringPtr(s string) *string { return &s }

func TestFolder_JSONFieldNames(t *testing.T) {
	folder := model.Folder{
		ID:       "f2",
		Name:     "Project",
		Icon:     "work",
		Color:    stringPtr("#F44336"),
		ParentID: stringPtr("f1"),
		UserID:   "u1",
	}

	data, err := json.Marshal(folder)
	assert.NilError(t, err)

	var fields map[string]any
	assert.NilError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, fields["parentId"], "f1")
	assert.Equal(t, fields["userId"], "u1")
	assert.Equal(t, fields["color"], "#F44336")
}

func TestNewFolderParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  model.NewFolderParams
		wantErr bool
	}{
		{"valid", model.NewFolderParams{Name: "Work", Icon: "work"}, false},
		{"empty icon allowed", model.NewFolderParams{Name: "Work"}, false},
		{"with color", model.NewFolderParams{Name: "Work", Icon: "code", Color: stringPtr("#2196F3")}, false},
		{"blank name", model.NewFolderParams{Name: "   ", Icon: "work"}, true},
		{"empty name", model.NewFolderParams{Name: "", Icon: "work"}, true},
		{"unknown icon", model.NewFolderParams{Name: "Work", Icon: "rocket"}, true},
		{"bad color", model.NewFolderParams{Name: "Work", Icon: "work", Color: stringPtr("red")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if !tt.wantErr {
				assert.NilError(t, err)
				return
			}
			assert.Assert(t, errors.Is(err, model.ErrValidation), "got %v", err)
		})
	}
}

func TestNewLinkParams_Validate(t *testing.T) {
	assert.NilError(t, model.NewLinkParams{Title: "Docs", URL: "docs.example.com"}.Validate())

	err := model.NewLinkParams{Title: " ", URL: "docs.example.com"}.Validate()
	assert.Assert(t, errors.Is(err, model.ErrValidation))

	err = model.LinkUpdate{Title: "Docs", URL: ""}.Validate()
	assert.Assert(t, errors.Is(err, model.ErrValidation))
}

func TestEntity(t *testing.T) {
	f := model.FolderEntity(model.Folder{ID: "f1", Name: "Work"})
	l := model.LinkEntity(model.Link{ID: "l1", Title: "Standup Notes"})

	assert.Equal(t, f.ID(), "f1")
	assert.Equal(t, f.Kind, model.KindFolder)
	assert.Equal(t, l.DisplayName(), "Standup Notes")
	assert.Equal(t, l.SortKey(), "standup notes")
	assert.Equal(t, l.Kind.String(), "link")
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"docs.example.com", "https://docs.example.com"},
		{"http://example.com", "http://example.com"},
		{"https://example.com/a", "https://example.com/a"},
		{"  www.example.com ", "https://www.example.com"},
		{"httpbin.org/get", "https://httpbin.org/get"},
		{"ftp://example.com/file", "ftp://example.com/file"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, model.NormalizeURL(tt.raw), tt.want)
		})
	}
}

func TestDomainAndFavicon(t *testing.T) {
	assert.Equal(t, model.Domain("www.example.com/path"), "example.com")
	assert.Equal(t, model.Domain("https://docs.example.com"), "docs.example.com")
	assert.Check(t, is.Contains(model.FaviconURL("www.example.com"), "domain=example.com"))
}

func TestLink_InFolder(t *testing.T) {
	l := model.Link{ID: "l1", FolderID: stringPtr("f1")}
	assert.Assert(t, l.InFolder("f1"))
	assert.Assert(t, !l.InFolder("f2"))
	assert.Assert(t, !model.Link{}.InFolder("f1"))
}
