package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/linkkoy/internal/model"
	"github.com/nikbrunner/linkkoy/internal/repository"
)

func newFoldersCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "folders",
		Short: "Print the folder tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnv(cmd, func(e *env) error {
				s, err := e.currentUser()
				if err != nil {
					return err
				}
				roots, err := e.bookmarks.ListRootFolders(cmd.Context(), s.UserID)
				if err != nil {
					return err
				}
				if len(roots) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No folders yet. Add one with `lk folder add NAME`.")
					return nil
				}
				return printTree(cmd.Context(), cmd.OutOrStdout(), e.bookmarks, roots, 0)
			})
		},
	}
}

func printTree(ctx context.Context, w io.Writer, src repository.Bookmarks, folders []model.Folder, depth int) error {
	for _, f := range folders {
		fmt.Fprintf(w, "%s%s/  %s\n", strings.Repeat("  ", depth), f.Name, f.ID)
		children, err := src.ListChildFolders(ctx, f.ID)
		if err != nil {
			return err
		}
		if err := printTree(ctx, w, src, children, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func newFolderCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Add, edit and remove folders",
	}
	cmd.AddCommand(
		newFolderAddCmd(opts),
		newFolderEditCmd(opts),
		newFolderRmCmd(opts),
	)
	return cmd
}

func newFolderAddCmd(opts *rootOptions) *cobra.Command {
	var parent, icon, color string
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnv(cmd, func(e *env) error {
				s, err := e.currentUser()
				if err != nil {
					return err
				}
				p := model.NewFolderParams{
					Name:   args[0],
					Icon:   icon,
					UserID: s.UserID,
				}
				if color != "" {
					p.Color = &color
				}
				if parent != "" {
					if _, err := e.folder(cmd.Context(), s.UserID, parent); err != nil {
						return err
					}
					p.ParentID = &parent
				}
				if err := p.Validate(); err != nil {
					return err
				}

				f, err := e.bookmarks.CreateFolder(cmd.Context(), p)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created folder %q (%s)\n", f.Name, f.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "ID of the parent folder (default: root level)")
	cmd.Flags().StringVar(&icon, "icon", "", "icon name (default: "+model.DefaultIcon+")")
	cmd.Flags().StringVar(&color, "color", "", "color as #RRGGBB")
	return cmd
}

func newFolderEditCmd(opts *rootOptions) *cobra.Command {
	var name, icon, color string
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Rename a folder or change its icon or color",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnv(cmd, func(e *env) error {
				s, err := e.currentUser()
				if err != nil {
					return err
				}
				f, err := e.folder(cmd.Context(), s.UserID, args[0])
				if err != nil {
					return err
				}

				u := model.FolderUpdate{Name: f.Name, Icon: f.Icon, Color: f.Color}
				flags := cmd.Flags()
				if flags.Changed("name") {
					u.Name = name
				}
				if flags.Changed("icon") {
					u.Icon = icon
				}
				if flags.Changed("color") {
					u.Color = nil
					if color != "" {
						u.Color = &color
					}
				}
				if err := u.Validate(); err != nil {
					return err
				}
				if err := e.bookmarks.UpdateFolder(cmd.Context(), f.ID, u); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated folder %q\n", u.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&icon, "icon", "", "new icon name")
	cmd.Flags().StringVar(&color, "color", "", "new color as #RRGGBB, empty to clear")
	return cmd
}

func newFolderRmCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a folder with all its subfolders and links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnv(cmd, func(e *env) error {
				s, err := e.currentUser()
				if err != nil {
					return err
				}
				f, err := e.folder(cmd.Context(), s.UserID, args[0])
				if err != nil {
					return err
				}
				if err := e.bookmarks.DeleteFolderCascade(cmd.Context(), f.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted folder %q and everything in it\n", f.Name)
				return nil
			})
		},
	}
}
