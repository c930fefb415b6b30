package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/linkkoy/internal/model"
)

func newLinksCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "links FOLDER_ID",
		Short: "List the links in a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnv(cmd, func(e *env) error {
				s, err := e.currentUser()
				if err != nil {
					return err
				}
				folder, err := e.folder(cmd.Context(), s.UserID, args[0])
				if err != nil {
					return err
				}
				links, err := e.bookmarks.ListLinks(cmd.Context(), folder.ID)
				if err != nil {
					return err
				}
				for _, l := range links {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", l.Title, l.URL, l.ID)
				}
				return nil
			})
		},
	}
}

func newLinkCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Add, edit, move and remove links",
	}
	cmd.AddCommand(
		newLinkAddCmd(opts),
		newLinkEditCmd(opts),
		newLinkMvCmd(opts),
		newLinkRmCmd(opts),
	)
	return cmd
}

func newLinkAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add FOLDER_ID TITLE URL",
		Short: "Save a link in a folder",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnv(cmd, func(e *env) error {
				s, err := e.currentUser()
				if err != nil {
					return err
				}
				folder, err := e.folder(cmd.Context(), s.UserID, args[0])
				if err != nil {
					return err
				}
				p := model.NewLinkParams{
					Title:    args[1],
					URL:      args[2],
					FolderID: folder.ID,
					UserID:   s.UserID,
				}
				if err := p.Validate(); err != nil {
					return err
				}

				l, err := e.bookmarks.CreateLink(cmd.Context(), p)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created link %q in %s (%s)\n", l.Title, folder.Name, l.ID)
				return nil
			})
		},
	}
}

func newLinkEditCmd(opts *rootOptions) *cobra.Command {
	var title, url string
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a link's title or URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnv(cmd, func(e *env) error {
				s, err := e.currentUser()
				if err != nil {
					return err
				}
				l, err := e.link(cmd.Context(), s.UserID, args[0])
				if err != nil {
					return err
				}

				u := model.LinkUpdate{Title: l.Title, URL: l.URL}
				if cmd.Flags().Changed("title") {
					u.Title = title
				}
				if cmd.Flags().Changed("url") {
					u.URL = url
				}
				if err := u.Validate(); err != nil {
					return err
				}
				if err := e.bookmarks.UpdateLink(cmd.Context(), l.ID, u); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated link %q\n", u.Title)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&url, "url", "", "new URL")
	return cmd
}

func newLinkMvCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mv ID FOLDER_ID",
		Short: "Move a link to another folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnv(cmd, func(e *env) error {
				s, err := e.currentUser()
				if err != nil {
					return err
				}
				l, err := e.link(cmd.Context(), s.UserID, args[0])
				if err != nil {
					return err
				}
				target, err := e.folder(cmd.Context(), s.UserID, args[1])
				if err != nil {
					return err
				}
				if err := e.bookmarks.MoveLink(cmd.Context(), l.ID, target.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved %q to %s\n", l.Title, target.Name)
				return nil
			})
		},
	}
}

func newLinkRmCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnv(cmd, func(e *env) error {
				s, err := e.currentUser()
				if err != nil {
					return err
				}
				l, err := e.link(cmd.Context(), s.UserID, args[0])
				if err != nil {
					return err
				}
				if err := e.bookmarks.DeleteLink(cmd.Context(), l.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted link %q\n", l.Title)
				return nil
			})
		},
	}
}
