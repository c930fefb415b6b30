// Package repository translates folder and link operations into
// document store calls.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nikbrunner/linkkoy/internal/docstore"
	"github.com/nikbrunner/linkkoy/internal/model"
)

var (
	// ErrNotFound is returned when a folder or link id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable wraps any failure of the underlying store.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Bookmarks is the full set of folder and link operations. It is
// implemented by Repository and by the REST client.
type Bookmarks interface {
	ListRootFolders(ctx context.Context, userID string) ([]model.Folder, error)
	ListChildFolders(ctx context.Context, parentID string) ([]model.Folder, error)
	ListLinks(ctx context.Context, folderID string) ([]model.Link, error)
	ListAllFolders(ctx context.Context, userID string) ([]model.Folder, error)
	ListAllLinks(ctx context.Context, userID string) ([]model.Link, error)
	GetFolder(ctx context.Context, id string) (model.Folder, error)
	GetLink(ctx context.Context, id string) (model.Link, error)
	CreateFolder(ctx context.Context, p model.NewFolderParams) (model.Folder, error)
	UpdateFolder(ctx context.Context, id string, u model.FolderUpdate) error
	CreateLink(ctx context.Context, p model.NewLinkParams) (model.Link, error)
	UpdateLink(ctx context.Context, id string, u model.LinkUpdate) error
	MoveLink(ctx context.Context, id, folderID string) error
	DeleteFolderCascade(ctx context.Context, id string) error
	DeleteLink(ctx context.Context, id string) error
}

// Repository implements Bookmarks on top of a docstore.Store.
// Inputs are not validated here.
type Repository struct {
	store  docstore.Store
	logger *slog.Logger
}

var _ Bookmarks = (*Repository)(nil)

// New creates a Repository. A nil logger uses slog.Default().
func New(store docstore.Store, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{store: store, logger: logger}
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

// ListRootFolders returns the user's folders that have no parent.
func (r *Repository) ListRootFolders(ctx context.Context, userID string) ([]model.Folder, error) {
	return r.queryFolders(ctx, docstore.Eq("userId", userID), docstore.Eq("parentId", nil))
}

// ListChildFolders returns the direct subfolders of parentID.
func (r *Repository) ListChildFolders(ctx context.Context, parentID string) ([]model.Folder, error) {
	return r.queryFolders(ctx, docstore.Eq("parentId", parentID))
}

// ListAllFolders returns every folder owned by the user.
func (r *Repository) ListAllFolders(ctx context.Context, userID string) ([]model.Folder, error) {
	return r.queryFolders(ctx, docstore.Eq("userId", userID))
}

// ListLinks returns the links stored in folderID.
func (r *Repository) ListLinks(ctx context.Context, folderID string) ([]model.Link, error) {
	return r.queryLinks(ctx, docstore.Eq("folderId", folderID))
}

// ListAllLinks returns every link owned by the user.
func (r *Repository) ListAllLinks(ctx context.Context, userID string) ([]model.Link, error) {
	return r.queryLinks(ctx, docstore.Eq("userId", userID))
}

func (r *Repository) queryFolders(ctx context.Context, filters ...docstore.Filter) ([]model.Folder, error) {
	docs, err := r.store.Query(ctx, docstore.Folders, filters...)
	if err != nil {
		return nil, wrap(err)
	}
	folders := make([]model.Folder, 0, len(docs))
	for _, d := range docs {
		folders = append(folders, folderFromDoc(d))
	}
	return folders, nil
}

func (r *Repository) queryLinks(ctx context.Context, filters ...docstore.Filter) ([]model.Link, error) {
	docs, err := r.store.Query(ctx, docstore.Links, filters...)
	if err != nil {
		return nil, wrap(err)
	}
	links := make([]model.Link, 0, len(docs))
	for _, d := range docs {
		links = append(links, linkFromDoc(d))
	}
	return links, nil
}

// GetFolder fetches one folder by id.
func (r *Repository) GetFolder(ctx context.Context, id string) (model.Folder, error) {
	doc, err := r.store.Get(ctx, docstore.Folders, id)
	if err != nil {
		return model.Folder{}, wrap(err)
	}
	return folderFromDoc(doc), nil
}

// GetLink fetches one link by id.
func (r *Repository) GetLink(ctx context.Context, id string) (model.Link, error) {
	doc, err := r.store.Get(ctx, docstore.Links, id)
	if err != nil {
		return model.Link{}, wrap(err)
	}
	return linkFromDoc(doc), nil
}

// CreateFolder stores a new folder. An empty icon becomes model.DefaultIcon.
// parentId is always written so root queries can match on null.
func (r *Repository) CreateFolder(ctx context.Context, p model.NewFolderParams) (model.Folder, error) {
	icon := p.Icon
	if icon == "" {
		icon = model.DefaultIcon
	}
	f := model.Folder{
		Name:     p.Name,
		Icon:     icon,
		Color:    p.Color,
		ParentID: p.ParentID,
		UserID:   p.UserID,
	}

	id, err := r.store.Create(ctx, docstore.Folders, folderFields(f))
	if err != nil {
		return model.Folder{}, wrap(err)
	}
	f.ID = id
	r.logger.Debug("folder created", "id", id, "parent", p.ParentID)
	return f, nil
}

// UpdateFolder replaces the folder's name, icon and color.
func (r *Repository) UpdateFolder(ctx context.Context, id string, u model.FolderUpdate) error {
	icon := u.Icon
	if icon == "" {
		icon = model.DefaultIcon
	}
	return wrap(r.store.Update(ctx, docstore.Folders, id, docstore.Fields{
		"name":  u.Name,
		"icon":  icon,
		"color": optional(u.Color),
	}))
}

// CreateLink stores a new link in p.FolderID. The URL is stored as given.
func (r *Repository) CreateLink(ctx context.Context, p model.NewLinkParams) (model.Link, error) {
	folderID := p.FolderID
	l := model.Link{
		Title:    p.Title,
		URL:      p.URL,
		FolderID: &folderID,
		UserID:   p.UserID,
	}

	id, err := r.store.Create(ctx, docstore.Links, linkFields(l))
	if err != nil {
		return model.Link{}, wrap(err)
	}
	l.ID = id
	r.logger.Debug("link created", "id", id, "folder", folderID)
	return l, nil
}

// UpdateLink replaces the link's title and url.
func (r *Repository) UpdateLink(ctx context.Context, id string, u model.LinkUpdate) error {
	return wrap(r.store.Update(ctx, docstore.Links, id, docstore.Fields{
		"title": u.Title,
		"url":   u.URL,
	}))
}

// MoveLink changes only the link's folder.
func (r *Repository) MoveLink(ctx context.Context, id, folderID string) error {
	return wrap(r.store.Update(ctx, docstore.Links, id, docstore.Fields{
		"folderId": folderID,
	}))
}

// DeleteLink removes a single link.
func (r *Repository) DeleteLink(ctx context.Context, id string) error {
	return wrap(r.store.Delete(ctx, docstore.Links, id))
}

func folderFields(f model.Folder) docstore.Fields {
	return docstore.Fields{
		"name":     f.Name,
		"icon":     f.Icon,
		"color":    optional(f.Color),
		"parentId": optional(f.ParentID),
		"userId":   f.UserID,
	}
}

func linkFields(l model.Link) docstore.Fields {
	return docstore.Fields{
		"title":    l.Title,
		"url":      l.URL,
		"folderId": optional(l.FolderID),
		"userId":   l.UserID,
	}
}

// optional converts a nil pointer into an untyped nil field value.
func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func folderFromDoc(d docstore.Document) model.Folder {
	f := model.Folder{
		ID:       d.ID,
		Name:     d.String("name"),
		Icon:     d.String("icon"),
		Color:    d.OptionalString("color"),
		ParentID: d.OptionalString("parentId"),
		UserID:   d.String("userId"),
	}
	if f.Icon == "" {
		f.Icon = model.DefaultIcon
	}
	return f
}

func linkFromDoc(d docstore.Document) model.Link {
	return model.Link{
		ID:       d.ID,
		Title:    d.String("title"),
		URL:      d.String("url"),
		FolderID: d.OptionalString("folderId"),
		UserID:   d.String("userId"),
	}
}
