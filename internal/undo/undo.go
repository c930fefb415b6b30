// Package undo holds optimistically deleted folders and links until the
// user either restores them or lets the deletion go through.
package undo

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/nikbrunner/linkkoy/internal/model"
)

// Deleter performs the persisted deletions.
type Deleter interface {
	DeleteFolderCascade(ctx context.Context, id string) error
	DeleteLink(ctx context.Context, id string) error
}

// Outcome is how the undo prompt was resolved.
type Outcome int

const (
	// Dismissed means the prompt timed out or was dismissed.
	Dismissed Outcome = iota
	// ActionPerformed means the user pressed undo.
	ActionPerformed
)

// Controller keeps the visible folder and link projections and at most
// one pending deletion per kind. It owns no timers; callers decide when
// to Resolve.
type Controller struct {
	mu      sync.Mutex
	deleter Deleter
	logger  *slog.Logger

	folders []model.Folder
	links   []model.Link
	pending map[model.Kind]model.Entity
}

// New creates a Controller. A nil logger uses slog.Default().
func New(deleter Deleter, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		deleter: deleter,
		logger:  logger,
		pending: make(map[model.Kind]model.Entity),
	}
}

// SetFolders replaces the visible folder projection.
func (c *Controller) SetFolders(folders []model.Folder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.folders = slices.Clone(folders)
}

// SetLinks replaces the visible link projection.
func (c *Controller) SetLinks(links []model.Link) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.links = slices.Clone(links)
}

// Folders returns a copy of the visible folders.
func (c *Controller) Folders() []model.Folder {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.folders)
}

// Links returns a copy of the visible links.
func (c *Controller) Links() []model.Link {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.links)
}

// Pending returns the entity awaiting confirmation for kind, if any.
func (c *Controller) Pending(kind model.Kind) (model.Entity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.pending[kind]
	return e, ok
}

// RequestDelete hides e from the projection and holds it as pending.
// Nothing is persisted. A previously pending entity of the same kind is
// dropped: it is neither deleted nor restorable.
func (c *Controller) RequestDelete(e model.Entity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.pending[e.Kind]; ok {
		c.logger.Warn("pending delete replaced",
			"kind", e.Kind, "dropped", prev.ID(), "pending", e.ID())
	}

	switch e.Kind {
	case model.KindFolder:
		c.folders = slices.DeleteFunc(c.folders, func(f model.Folder) bool {
			return f.ID == e.Folder.ID
		})
	case model.KindLink:
		c.links = slices.DeleteFunc(c.links, func(l model.Link) bool {
			return l.ID == e.Link.ID
		})
	}
	c.pending[e.Kind] = e
}

// Undo puts the pending entity of kind back into the projection, which
// is then re-sorted by case-insensitive name. It reports whether there
// was anything to restore.
func (c *Controller) Undo(kind model.Kind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.pending[kind]
	if !ok {
		return false
	}
	delete(c.pending, kind)

	switch kind {
	case model.KindFolder:
		c.folders = append(c.folders, *e.Folder)
		slices.SortStableFunc(c.folders, func(a, b model.Folder) int {
			return byDisplayName(model.FolderEntity(a), model.FolderEntity(b))
		})
	case model.KindLink:
		c.links = append(c.links, *e.Link)
		slices.SortStableFunc(c.links, func(a, b model.Link) int {
			return byDisplayName(model.LinkEntity(a), model.LinkEntity(b))
		})
	}
	return true
}

func byDisplayName(a, b model.Entity) int {
	return strings.Compare(a.SortKey(), b.SortKey())
}

// Confirm persists the pending deletion of kind: a cascade delete for
// folders, a single delete for links. Pending is cleared only after the
// delete succeeds. On failure the entity stays pending and the error is
// returned.
func (c *Controller) Confirm(ctx context.Context, kind model.Kind) error {
	c.mu.Lock()
	e, ok := c.pending[kind]
	c.mu.Unlock()
	if !ok {
		return nil
	}

	var err error
	switch kind {
	case model.KindFolder:
		err = c.deleter.DeleteFolderCascade(ctx, e.Folder.ID)
	case model.KindLink:
		err = c.deleter.DeleteLink(ctx, e.Link.ID)
	}
	if err != nil {
		c.logger.Error("delete failed", "kind", kind, "id", e.ID(), "error", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// A newer request may have replaced the entity while deleting.
	if cur, ok := c.pending[kind]; ok && cur.ID() == e.ID() {
		delete(c.pending, kind)
	}
	return nil
}

// Resolve applies the prompt outcome: undo when the action was
// performed, confirm otherwise.
func (c *Controller) Resolve(ctx context.Context, kind model.Kind, outcome Outcome) error {
	if outcome == ActionPerformed {
		c.Undo(kind)
		return nil
	}
	return c.Confirm(ctx, kind)
}
