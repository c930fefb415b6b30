package search

import (
	"strings"

	"github.com/nikbrunner/linkkoy/internal/model"
)

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// MatchFolders keeps the folders whose name contains query, ignoring
// case. Input order is preserved.
func MatchFolders(folders []model.Folder, query string) []model.Folder {
	out := []model.Folder{}
	for _, f := range folders {
		if containsFold(f.Name, query) {
			out = append(out, f)
		}
	}
	return out
}

// MatchLinks keeps the links whose title or url contains query,
// ignoring case. Input order is preserved.
func MatchLinks(links []model.Link, query string) []model.Link {
	out := []model.Link{}
	for _, l := range links {
		if containsFold(l.Title, query) || containsFold(l.URL, query) {
			out = append(out, l)
		}
	}
	return out
}
