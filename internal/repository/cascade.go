package repository

import (
	"context"

	"github.com/nikbrunner/linkkoy/internal/docstore"
)

// cascadeFrame is one folder on the deletion worklist. A folder is
// expanded once its children have been pushed above it.
type cascadeFrame struct {
	id       string
	expanded bool
}

// DeleteFolderCascade deletes the folder, every descendant folder and
// every link inside any of them. Descendants are always deleted before
// their ancestors. Each document is deleted by a separate store call and
// the first failure stops the walk, leaving the rest of the subtree in
// place.
func (r *Repository) DeleteFolderCascade(ctx context.Context, id string) error {
	var folders, links int
	stack := []cascadeFrame{{id: id}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !top.expanded {
			children, err := r.ListChildFolders(ctx, top.id)
			if err != nil {
				return err
			}
			stack = append(stack, cascadeFrame{id: top.id, expanded: true})
			// Reverse order so the first child is processed first.
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, cascadeFrame{id: children[i].ID})
			}
			continue
		}

		contained, err := r.ListLinks(ctx, top.id)
		if err != nil {
			return err
		}
		for _, l := range contained {
			if err := r.store.Delete(ctx, docstore.Links, l.ID); err != nil {
				r.logger.Warn("cascade delete aborted", "root", id, "link", l.ID, "error", err)
				return wrap(err)
			}
			links++
		}

		if err := r.store.Delete(ctx, docstore.Folders, top.id); err != nil {
			r.logger.Warn("cascade delete aborted", "root", id, "folder", top.id, "error", err)
			return wrap(err)
		}
		folders++
	}

	r.logger.Debug("cascade delete finished", "root", id, "folders", folders, "links", links)
	return nil
}
