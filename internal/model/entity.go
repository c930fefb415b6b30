package model

import "strings"

// Kind distinguishes between folders and links.
type Kind int

const (
	KindFolder Kind = iota
	KindLink
)

func (k Kind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindLink:
		return "link"
	default:
		return "unknown"
	}
}

// Entity is either a folder or a link.
type Entity struct {
	Kind   Kind
	Folder *Folder
	Link   *Link
}

// FolderEntity wraps a folder.
func FolderEntity(f Folder) Entity {
	return Entity{Kind: KindFolder, Folder: &f}
}

// LinkEntity wraps a link.
func LinkEntity(l Link) Entity {
	return Entity{Kind: KindLink, Link: &l}
}

// ID returns the entity's ID regardless of kind.
func (e Entity) ID() string {
	switch e.Kind {
	case KindFolder:
		return e.Folder.ID
	case KindLink:
		return e.Link.ID
	default:
		return ""
	}
}

// DisplayName returns the folder name or the link title.
func (e Entity) DisplayName() string {
	switch e.Kind {
	case KindFolder:
		return e.Folder.Name
	case KindLink:
		return e.Link.Title
	default:
		return ""
	}
}

// SortKey is the case-insensitive display name used for ordering.
func (e Entity) SortKey() string {
	return strings.ToLower(e.DisplayName())
}
