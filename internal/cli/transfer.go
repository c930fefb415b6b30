package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/linkkoy/internal/exporter"
	"github.com/nikbrunner/linkkoy/internal/importer"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import folders and links from a browser bookmarks HTML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			root, err := importer.ParseHTMLBookmarks(f)
			if err != nil {
				return fmt.Errorf("while parsing %s: %w", args[0], err)
			}

			return opts.withEnv(cmd, func(e *env) error {
				s, err := e.currentUser()
				if err != nil {
					return err
				}
				var parentID *string
				if parent != "" {
					if _, err := e.folder(cmd.Context(), s.UserID, parent); err != nil {
						return err
					}
					parentID = &parent
				}

				res, err := importer.Import(cmd.Context(), e.bookmarks, s.UserID, parentID, root)
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d folders and %d links\n", res.Folders, res.Links)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "ID of the folder to import into (default: root level)")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [PATH]",
		Short: "Export all folders and links as a bookmarks HTML file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				var err error
				if path, err = exporter.DefaultExportPath(); err != nil {
					return err
				}
			}

			return opts.withEnv(cmd, func(e *env) error {
				s, err := e.currentUser()
				if err != nil {
					return err
				}
				html, err := exporter.ExportHTML(cmd.Context(), e.bookmarks, s.UserID)
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, []byte(html), 0644); err != nil {
					return fmt.Errorf("while writing export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
				return nil
			})
		},
	}
}
