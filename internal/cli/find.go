package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nikbrunner/linkkoy/internal/model"
	"github.com/nikbrunner/linkkoy/internal/picker"
	"github.com/nikbrunner/linkkoy/internal/search"
	"github.com/nikbrunner/linkkoy/internal/tui"
)

// openURL is replaced in tests.
var openURL = tui.OpenURL

func newSearchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "Find folders and links containing QUERY",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return opts.withEnv(cmd, func(e *env) error {
				s, err := e.currentUser()
				if err != nil {
					return err
				}

				var (
					folders []model.Folder
					links   []model.Link
				)
				g, ctx := errgroup.WithContext(cmd.Context())
				g.Go(func() error {
					var err error
					folders, err = e.bookmarks.ListAllFolders(ctx, s.UserID)
					return err
				})
				g.Go(func() error {
					var err error
					links, err = e.bookmarks.ListAllLinks(ctx, s.UserID)
					return err
				})
				if err := g.Wait(); err != nil {
					return err
				}

				folders = search.MatchFolders(folders, query)
				links = search.MatchLinks(links, query)
				if len(folders) == 0 && len(links) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Nothing matches %q\n", query)
					return nil
				}
				for _, f := range folders {
					fmt.Fprintf(cmd.OutOrStdout(), "%s/  %s\n", f.Name, f.ID)
				}
				for _, l := range links {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", l.Title, l.URL, l.ID)
				}
				return nil
			})
		},
	}
}

func newOpenCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "open QUERY",
		Short: "Fuzzy find a link by title and open it in the browser",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return opts.withEnv(cmd, func(e *env) error {
				s, err := e.currentUser()
				if err != nil {
					return err
				}
				links, err := e.bookmarks.ListAllLinks(cmd.Context(), s.UserID)
				if err != nil {
					return err
				}

				results := search.FuzzyLinks(links, query)
				var chosen *model.Link
				switch len(results) {
				case 0:
					fmt.Fprintf(cmd.OutOrStdout(), "No links match %q\n", query)
					return nil
				case 1:
					chosen = &results[0].Link
				default:
					p := tea.NewProgram(picker.New(results, query),
						tea.WithContext(cmd.Context()),
						tea.WithInput(cmd.InOrStdin()),
						tea.WithOutput(cmd.OutOrStdout()),
					)
					final, err := p.Run()
					if err != nil {
						return fmt.Errorf("while running picker: %w", err)
					}
					chosen = final.(picker.Picker).SelectedLink()
					if chosen == nil {
						return nil
					}
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Opening: %s\n", chosen.Title)
				return openURL(model.NormalizeURL(chosen.URL))
			})
		},
	}
}
