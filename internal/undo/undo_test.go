package undo_test

import (
	"context"
	"errors"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/linkkoy/internal/model"
	"github.com/nikbrunner/linkkoy/internal/undo"
)

type fakeDeleter struct {
	folderDeletes []string
	linkDeletes   []string
	err           error
}

func (d *fakeDeleter) DeleteFolderCascade(_ context.Context, id string) error {
	if d.err != nil {
		return d.err
	}
	d.folderDeletes = append(d.folderDeletes, id)
	return nil
}

func (d *fakeDeleter) DeleteLink(_ context.Context, id string) error {
	if d.err != nil {
		return d.err
	}
	d.linkDeletes = append(d.linkDeletes, id)
	return nil
}

func (d *fakeDeleter) calls() int {
	return len(d.folderDeletes) + len(d.linkDeletes)
}

func folders(names ...string) []model.Folder {
	out := make([]model.Folder, len(names))
	for i, n := range names {
		out[i] = model.Folder{ID: "f-" + n, Name: n, Icon: model.DefaultIcon}
	}
	return out
}

func names(fs []model.Folder) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Name
	}
	return out
}

func TestRequestDeleteThenUndo_RestoresWithoutDeleting(t *testing.T) {
	d := &fakeDeleter{}
	c := undo.New(d, nil)
	c.SetFolders(folders("alpha", "Beta", "gamma"))

	beta := c.Folders()[1]
	c.RequestDelete(model.FolderEntity(beta))
	assert.DeepEqual(t, names(c.Folders()), []string{"alpha", "gamma"})

	_, pending := c.Pending(model.KindFolder)
	assert.Check(t, pending)

	assert.Check(t, c.Undo(model.KindFolder))
	assert.DeepEqual(t, names(c.Folders()), []string{"alpha", "Beta", "gamma"})
	assert.Check(t, is.Equal(d.calls(), 0))

	_, pending = c.Pending(model.KindFolder)
	assert.Check(t, !pending)
}

func TestUndo_SortsCaseInsensitively(t *testing.T) {
	c := undo.New(&fakeDeleter{}, nil)
	c.SetLinks([]model.Link{
		{ID: "1", Title: "banana"},
		{ID: "2", Title: "Apple"},
		{ID: "3", Title: "cherry"},
	})

	c.RequestDelete(model.LinkEntity(model.Link{ID: "2", Title: "Apple"}))
	c.Undo(model.KindLink)

	var titles []string
	for _, l := range c.Links() {
		titles = append(titles, l.Title)
	}
	assert.DeepEqual(t, titles, []string{"Apple", "banana", "cherry"})
}

func TestUndo_FollowsEntitySortKey(t *testing.T) {
	c := undo.New(&fakeDeleter{}, nil)
	c.SetFolders(folders("Zeta", "alpha", "MIDDLE"))

	zeta := c.Folders()[0]
	c.RequestDelete(model.FolderEntity(zeta))
	c.Undo(model.KindFolder)

	got := c.Folders()
	assert.DeepEqual(t, names(got), []string{"alpha", "MIDDLE", "Zeta"})
	for i := 1; i < len(got); i++ {
		prev, cur := model.FolderEntity(got[i-1]), model.FolderEntity(got[i])
		assert.Check(t, prev.SortKey() <= cur.SortKey())
	}
}

func TestUndo_NothingPending(t *testing.T) {
	c := undo.New(&fakeDeleter{}, nil)
	assert.Check(t, !c.Undo(model.KindLink))
}

func TestRequestDeleteThenConfirm_DeletesExactlyOnce(t *testing.T) {
	tests := []struct {
		name   string
		entity model.Entity
		kind   model.Kind
	}{
		{
			name:   "folder uses cascade",
			entity: model.FolderEntity(model.Folder{ID: "f1", Name: "Work"}),
			kind:   model.KindFolder,
		},
		{
			name:   "link uses plain delete",
			entity: model.LinkEntity(model.Link{ID: "l1", Title: "Docs"}),
			kind:   model.KindLink,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDeleter{}
			c := undo.New(d, nil)

			c.RequestDelete(tt.entity)
			assert.NilError(t, c.Confirm(context.Background(), tt.kind))
			assert.NilError(t, c.Confirm(context.Background(), tt.kind))

			assert.Check(t, is.Equal(d.calls(), 1))
			if tt.kind == model.KindFolder {
				assert.DeepEqual(t, d.folderDeletes, []string{"f1"})
			} else {
				assert.DeepEqual(t, d.linkDeletes, []string{"l1"})
			}
			_, pending := c.Pending(tt.kind)
			assert.Check(t, !pending)
		})
	}
}

func TestRequestDelete_OverwritesPendingOfSameKind(t *testing.T) {
	d := &fakeDeleter{}
	c := undo.New(d, nil)
	c.SetFolders(folders("a", "b"))

	all := c.Folders()
	c.RequestDelete(model.FolderEntity(all[0]))
	c.RequestDelete(model.FolderEntity(all[1]))

	// The first entity is neither restorable nor deleted.
	assert.NilError(t, c.Confirm(context.Background(), model.KindFolder))
	assert.DeepEqual(t, d.folderDeletes, []string{"f-b"})
	assert.Check(t, is.Len(c.Folders(), 0))
	assert.Check(t, !c.Undo(model.KindFolder))
}

func TestKindsAreIndependent(t *testing.T) {
	d := &fakeDeleter{}
	c := undo.New(d, nil)
	c.SetFolders(folders("Work"))
	c.SetLinks([]model.Link{{ID: "l1", Title: "Docs"}})

	c.RequestDelete(model.FolderEntity(c.Folders()[0]))
	c.RequestDelete(model.LinkEntity(c.Links()[0]))

	assert.Check(t, c.Undo(model.KindFolder))
	assert.NilError(t, c.Confirm(context.Background(), model.KindLink))

	assert.Check(t, is.Len(c.Folders(), 1))
	assert.Check(t, is.Len(c.Links(), 0))
	assert.DeepEqual(t, d.linkDeletes, []string{"l1"})
	assert.Check(t, is.Len(d.folderDeletes, 0))
}

func TestConfirm_FailureKeepsPending(t *testing.T) {
	d := &fakeDeleter{err: errors.New("offline")}
	c := undo.New(d, nil)

	c.RequestDelete(model.LinkEntity(model.Link{ID: "l1", Title: "Docs"}))
	err := c.Confirm(context.Background(), model.KindLink)
	assert.ErrorContains(t, err, "offline")

	e, pending := c.Pending(model.KindLink)
	assert.Check(t, pending)
	assert.Check(t, is.Equal(e.ID(), "l1"))
}

func TestResolve(t *testing.T) {
	d := &fakeDeleter{}
	c := undo.New(d, nil)
	c.SetLinks([]model.Link{{ID: "l1", Title: "Docs"}, {ID: "l2", Title: "Notes"}})

	c.RequestDelete(model.LinkEntity(model.Link{ID: "l1", Title: "Docs"}))
	assert.NilError(t, c.Resolve(context.Background(), model.KindLink, undo.ActionPerformed))
	assert.Check(t, is.Len(c.Links(), 2))
	assert.Check(t, is.Equal(d.calls(), 0))

	c.RequestDelete(model.LinkEntity(model.Link{ID: "l2", Title: "Notes"}))
	assert.NilError(t, c.Resolve(context.Background(), model.KindLink, undo.Dismissed))
	assert.Check(t, is.Len(c.Links(), 1))
	assert.DeepEqual(t, d.linkDeletes, []string{"l2"})
}
