package model

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MaxURLLength bounds the stored URL string.
const MaxURLLength = 2048

// Link represents a saved URL inside a folder.
type Link struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	FolderID *string `json:"folderId"`
	UserID   string  `json:"userId"`
}

// NewLinkParams holds parameters for creating a new Link.
type NewLinkParams struct {
	Title    string
	URL      string
	FolderID string
	UserID   string
}

// Validate checks the user supplied fields of a link. The URL is not
// checked for format; any string is stored as typed.
func (p NewLinkParams) Validate() error {
	return validateLinkFields(p.Title, p.URL)
}

// LinkUpdate is the whole-field update applied to an existing link.
type LinkUpdate struct {
	Title string
	URL   string
}

// Validate checks the fields of a link update.
func (u LinkUpdate) Validate() error {
	return validateLinkFields(u.Title, u.URL)
}

func validateLinkFields(title, url string) error {
	fields := struct {
		Title string
		URL   string
	}{strings.TrimSpace(title), strings.TrimSpace(url)}

	err := validation.ValidateStruct(&fields,
		validation.Field(&fields.Title,
			validation.Required.Error("title must not be blank"),
			validation.RuneLength(1, MaxNameLength),
		),
		validation.Field(&fields.URL,
			validation.Required.Error("url must not be blank"),
			validation.RuneLength(1, MaxURLLength),
		),
	)
	return wrapValidation(err)
}

// InFolder reports whether the link lives in the given folder.
func (l Link) InFolder(folderID string) bool {
	return l.FolderID != nil && *l.FolderID == folderID
}
