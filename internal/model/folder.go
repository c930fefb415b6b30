package model

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MaxNameLength bounds folder names and link titles.
const MaxNameLength = 200

// DefaultIcon is used when a folder is created without an explicit icon.
const DefaultIcon = "folder"

// Icons is the fixed set of symbolic folder icons.
var Icons = []string{
	"folder", "book", "code", "fitness_center", "music_note", "restaurant",
	"shopping_cart", "gamepad", "movie", "work", "article", "favorite", "bookmark",
}

// Colors is the palette offered when picking a folder color.
// Any #RRGGBB value is accepted.
var Colors = []string{
	"#FFFFFF", "#F44336", "#E91E63", "#9C27B0", "#673AB7", "#3F51B5",
	"#2196F3", "#00BCD4", "#4CAF50", "#FFEB3B", "#FF9800",
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Folder is a named container for links and other folders.
type Folder struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Icon     string  `json:"icon"`
	Color    *string `json:"color"`    // nil = default color
	ParentID *string `json:"parentId"` // nil = root level
	UserID   string  `json:"userId"`
}

// NewFolderParams holds parameters for creating a new Folder.
type NewFolderParams struct {
	Name     string
	Icon     string
	Color    *string
	ParentID *string
	UserID   string
}

// Validate checks the user supplied fields of a folder.
func (p NewFolderParams) Validate() error {
	return validateFolderFields(p.Name, p.Icon, p.Color)
}

// FolderUpdate is the whole-field update applied to an existing folder.
// ParentID and UserID are immutable after creation.
type FolderUpdate struct {
	Name  string
	Icon  string
	Color *string
}

// Validate checks the fields of a folder update.
func (u FolderUpdate) Validate() error {
	return validateFolderFields(u.Name, u.Icon, u.Color)
}

func validateFolderFields(name, icon string, color *string) error {
	fields := struct {
		Name  string
		Icon  string
		Color *string
	}{strings.TrimSpace(name), icon, color}

	err := validation.ValidateStruct(&fields,
		validation.Field(&fields.Name,
			validation.Required.Error("folder name must not be blank"),
			validation.RuneLength(1, MaxNameLength),
		),
		validation.Field(&fields.Icon, validation.In(anySlice(Icons)...).Error("unknown icon")),
		validation.Field(&fields.Color, validation.Match(hexColor).Error("color must look like #RRGGBB")),
	)
	return wrapValidation(err)
}

// DisplayColor returns the folder color or an empty string when unset.
func (f Folder) DisplayColor() string {
	if f.Color == nil {
		return ""
	}
	return *f.Color
}

// IsRoot reports whether the folder has no parent.
func (f Folder) IsRoot() bool {
	return f.ParentID == nil
}

func anySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
