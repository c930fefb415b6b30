// Package exporter writes folders and links as Netscape bookmark HTML.
package exporter

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/linkkoy/internal/model"
)

// Source is the read side of the repository the exporter walks.
type Source interface {
	ListRootFolders(ctx context.Context, userID string) ([]model.Folder, error)
	ListChildFolders(ctx context.Context, parentID string) ([]model.Folder, error)
	ListLinks(ctx context.Context, folderID string) ([]model.Link, error)
}

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/links-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("links-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML exports the user's folders and links to Netscape bookmark
// HTML format.
func ExportHTML(ctx context.Context, src Source, userID string) (string, error) {
	var b strings.Builder

	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	roots, err := src.ListRootFolders(ctx, userID)
	if err != nil {
		return "", err
	}
	if err := writeFolders(ctx, &b, src, roots, 1); err != nil {
		return "", err
	}

	b.WriteString("</DL><p>\n")
	return b.String(), nil
}

// writeFolders writes each folder with its subfolders, then its links.
func writeFolders(ctx context.Context, b *strings.Builder, src Source, folders []model.Folder, indent int) error {
	prefix := strings.Repeat("    ", indent)

	for _, folder := range folders {
		fmt.Fprintf(b, "%s<DT><H3>%s</H3>\n", prefix, html.EscapeString(folder.Name))
		fmt.Fprintf(b, "%s<DL><p>\n", prefix)

		children, err := src.ListChildFolders(ctx, folder.ID)
		if err != nil {
			return err
		}
		if err := writeFolders(ctx, b, src, children, indent+1); err != nil {
			return err
		}

		links, err := src.ListLinks(ctx, folder.ID)
		if err != nil {
			return err
		}
		inner := strings.Repeat("    ", indent+1)
		for _, link := range links {
			fmt.Fprintf(b,
				"%s<DT><A HREF=\"%s\">%s</A>\n",
				inner,
				html.EscapeString(link.URL),
				html.EscapeString(link.Title),
			)
		}

		fmt.Fprintf(b, "%s</DL><p>\n", prefix)
	}
	return nil
}
