package importer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nikbrunner/linkkoy/internal/docstore"
	"github.com/nikbrunner/linkkoy/internal/importer"
	"github.com/nikbrunner/linkkoy/internal/model"
	"github.com/nikbrunner/linkkoy/internal/repository"
)

const nested = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3 ADD_DATE="1234567890">Development</H3>
    <DL><p>
        <DT><H3>React</H3>
        <DL><p>
            <DT><A HREF="https://react.dev">React Docs</A>
        </DL><p>
        <DT><A HREF="https://github.com">GitHub</A>
    </DL><p>
    <DT><A HREF="https://google.com">Google</A>
</DL><p>`

func TestParseHTML_SingleBookmark(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><A HREF="https://example.com" ADD_DATE="1234567890">Example Site</A>
</DL><p>`

	root, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(root.Folders) != 0 {
		t.Errorf("expected 0 folders, got %d", len(root.Folders))
	}
	if len(root.Links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(root.Links))
	}

	l := root.Links[0]
	if l.Title != "Example Site" {
		t.Errorf("expected title 'Example Site', got %q", l.Title)
	}
	if l.URL != "https://example.com" {
		t.Errorf("expected URL 'https://example.com', got %q", l.URL)
	}
}

func TestParseHTML_NestedFolders(t *testing.T) {
	root, err := importer.ParseHTMLBookmarks(strings.NewReader(nested))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(root.Folders) != 1 || root.Folders[0].Name != "Development" {
		t.Fatalf("expected single root folder Development, got %+v", root.Folders)
	}
	dev := root.Folders[0]
	if len(dev.Folders) != 1 || dev.Folders[0].Name != "React" {
		t.Fatalf("expected React inside Development, got %+v", dev.Folders)
	}
	if len(dev.Links) != 1 || dev.Links[0].Title != "GitHub" {
		t.Errorf("expected GitHub in Development, got %+v", dev.Links)
	}
	if react := dev.Folders[0]; len(react.Links) != 1 || react.Links[0].Title != "React Docs" {
		t.Errorf("expected React Docs in React, got %+v", react.Links)
	}
	if len(root.Links) != 1 || root.Links[0].Title != "Google" {
		t.Errorf("expected Google at root level, got %+v", root.Links)
	}
}

func TestParseHTML_EmptyFile(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
</DL><p>`

	root, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(root.Folders) != 0 || len(root.Links) != 0 {
		t.Errorf("expected empty result, got %+v", root)
	}
}

func TestParseHTML_MissingHref(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><A ADD_DATE="1234567890">No URL</A>
    <DT><A HREF="https://valid.com" ADD_DATE="1234567890">Valid</A>
    <DT><A HREF="https://untitled.com"></A>
</DL><p>`

	root, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Skips the link without HREF; an empty title falls back to the URL
	if len(root.Links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(root.Links))
	}
	if root.Links[0].Title != "Valid" {
		t.Errorf("expected 'Valid', got %q", root.Links[0].Title)
	}
	if root.Links[1].Title != "https://untitled.com" {
		t.Errorf("expected URL as title, got %q", root.Links[1].Title)
	}
}

func TestImport_CreatesHierarchy(t *testing.T) {
	ctx := context.Background()
	repo := repository.New(docstore.NewMemory(), nil)

	root, err := importer.ParseHTMLBookmarks(strings.NewReader(nested))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	res, err := importer.Import(ctx, repo, "u1", nil, root)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Folders != 3 || res.Links != 3 {
		t.Errorf("expected 3 folders and 3 links, got %+v", res)
	}

	roots, err := repo.ListRootFolders(ctx, "u1")
	if err != nil {
		t.Fatalf("list roots: %v", err)
	}
	var names []string
	for _, f := range roots {
		names = append(names, f.Name)
	}
	if strings.Join(names, ",") != "Development,"+importer.ImportedFolderName {
		t.Fatalf("unexpected root folders %v", names)
	}

	imported := roots[1]
	links, err := repo.ListLinks(ctx, imported.ID)
	if err != nil {
		t.Fatalf("list links: %v", err)
	}
	if len(links) != 1 || links[0].Title != "Google" {
		t.Errorf("expected Google in %s, got %+v", importer.ImportedFolderName, links)
	}

	children, err := repo.ListChildFolders(ctx, roots[0].ID)
	if err != nil {
		t.Fatalf("list children: %v", err)
	}
	if len(children) != 1 || children[0].Name != "React" {
		t.Errorf("expected React under Development, got %+v", children)
	}
}

func TestImport_IntoExistingFolder(t *testing.T) {
	ctx := context.Background()
	repo := repository.New(docstore.NewMemory(), nil)
	parent, err := repo.CreateFolder(ctx, model.NewFolderParams{Name: "Inbox", UserID: "u1"})
	if err != nil {
		t.Fatal(err)
	}

	root := &importer.Folder{Folders: []*importer.Folder{{Name: strings.Repeat("x", 300)}}}
	if _, err := importer.Import(ctx, repo, "u1", &parent.ID, root); err != nil {
		t.Fatalf("import: %v", err)
	}

	children, err := repo.ListChildFolders(ctx, parent.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(children) != 1 || len([]rune(children[0].Name)) != model.MaxNameLength {
		t.Errorf("expected one truncated child, got %+v", children)
	}
}

type failingCreator struct{ importer.Creator }

func (failingCreator) CreateLink(context.Context, model.NewLinkParams) (model.Link, error) {
	return model.Link{}, errors.New("offline")
}

func TestImport_StopsOnFirstError(t *testing.T) {
	ctx := context.Background()
	repo := repository.New(docstore.NewMemory(), nil)

	root, err := importer.ParseHTMLBookmarks(strings.NewReader(nested))
	if err != nil {
		t.Fatal(err)
	}

	res, err := importer.Import(ctx, failingCreator{repo}, "u1", nil, root)
	if err == nil {
		t.Fatal("expected error")
	}
	if res.Links != 0 {
		t.Errorf("expected no links, got %d", res.Links)
	}
}
