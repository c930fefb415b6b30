// Package importer reads Netscape bookmark HTML files into the
// folder/link hierarchy.
package importer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/nikbrunner/linkkoy/internal/model"
)

// ImportedFolderName holds links that sit outside any folder in the
// source file, since every link needs a folder.
const ImportedFolderName = "Imported"

// Folder is a parsed folder with its contents.
type Folder struct {
	Name    string
	Folders []*Folder
	Links   []Link
}

// Link is a parsed bookmark.
type Link struct {
	Title string
	URL   string
}

// ParseHTMLBookmarks parses Netscape bookmark HTML. The returned folder
// is the unnamed top level of the file.
func ParseHTMLBookmarks(r io.Reader) (*Folder, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	root := &Folder{}
	// Track current folder stack for hierarchy
	folderStack := []*Folder{root}
	var pendingFolder *Folder // folder waiting to be pushed on next DL

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				name := getTextContent(n)
				if name != "" {
					parent := folderStack[len(folderStack)-1]
					folder := &Folder{Name: name}
					parent.Folders = append(parent.Folders, folder)

					// Pushed when we see the next DL
					pendingFolder = folder
				}
				return

			case "a":
				href := getAttr(n, "href")
				if href == "" {
					return
				}
				title := getTextContent(n)
				if title == "" {
					title = href
				}

				parent := folderStack[len(folderStack)-1]
				parent.Links = append(parent.Links, Link{Title: title, URL: href})
				return

			case "dl":
				pushedFolder := false
				if pendingFolder != nil {
					folderStack = append(folderStack, pendingFolder)
					pendingFolder = nil
					pushedFolder = true
				}

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				if pushedFolder {
					folderStack = folderStack[:len(folderStack)-1]
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return root, nil
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}

// Creator is the part of the repository the importer writes through.
type Creator interface {
	CreateFolder(ctx context.Context, p model.NewFolderParams) (model.Folder, error)
	CreateLink(ctx context.Context, p model.NewLinkParams) (model.Link, error)
}

// Result counts what an import created.
type Result struct {
	Folders int
	Links   int
}

// Import creates the parsed hierarchy for userID under parentID (nil =
// root level). Folder names are truncated to model.MaxNameLength. The
// first failure stops the import; Result reports what was created.
func Import(ctx context.Context, dst Creator, userID string, parentID *string, root *Folder) (Result, error) {
	var res Result

	var create func(f *Folder, parent *string) error
	create = func(f *Folder, parent *string) error {
		created, err := dst.CreateFolder(ctx, model.NewFolderParams{
			Name:     truncate(f.Name),
			ParentID: parent,
			UserID:   userID,
		})
		if err != nil {
			return fmt.Errorf("while creating folder %q: %w", f.Name, err)
		}
		res.Folders++

		for _, l := range f.Links {
			if _, err := dst.CreateLink(ctx, model.NewLinkParams{
				Title:    truncate(l.Title),
				URL:      l.URL,
				FolderID: created.ID,
				UserID:   userID,
			}); err != nil {
				return fmt.Errorf("while creating link %q: %w", l.Title, err)
			}
			res.Links++
		}

		id := created.ID
		for _, child := range f.Folders {
			if err := create(child, &id); err != nil {
				return err
			}
		}
		return nil
	}

	for _, f := range root.Folders {
		if err := create(f, parentID); err != nil {
			return res, err
		}
	}
	if len(root.Links) > 0 {
		loose := &Folder{Name: ImportedFolderName, Links: root.Links}
		if err := create(loose, parentID); err != nil {
			return res, err
		}
	}
	return res, nil
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= model.MaxNameLength {
		return s
	}
	return string(runes[:model.MaxNameLength])
}
