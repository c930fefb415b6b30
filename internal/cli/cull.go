package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/linkkoy/internal/culler"
)

func newCullCmd(opts *rootOptions) *cobra.Command {
	var (
		remove      bool
		concurrency int
		timeout     time.Duration
		exclude     []string
	)
	cmd := &cobra.Command{
		Use:   "cull",
		Short: "Report links whose URLs are dead",
		Long: `Checks every link URL and reports dead (404/410) and unreachable ones.

With --delete, dead links are removed. Unreachable links are only reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnv(cmd, func(e *env) error {
				s, err := e.currentUser()
				if err != nil {
					return err
				}
				ctx := cmd.Context()
				links, err := e.bookmarks.ListAllLinks(ctx, s.UserID)
				if err != nil {
					return err
				}
				if len(links) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No links to check")
					return nil
				}

				checker := culler.New(culler.Params{
					Concurrency:    concurrency,
					Timeout:        timeout,
					ExcludeDomains: exclude,
					OnProgress: func(completed, total int) {
						fmt.Fprintf(cmd.ErrOrStderr(), "\rChecked %d/%d", completed, total)
					},
					Logger: e.logger,
				})
				results, err := checker.Check(ctx, links)
				fmt.Fprintln(cmd.ErrOrStderr())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				var healthy int
				for _, r := range results {
					switch r.Status {
					case culler.Healthy:
						healthy++
					case culler.Dead:
						fmt.Fprintf(out, "dead         %d  %s  %s\n", r.StatusCode, r.Link.Title, r.Link.URL)
					case culler.Unreachable:
						fmt.Fprintf(out, "unreachable  %s  %s  %s\n", r.Reason, r.Link.Title, r.Link.URL)
					}
				}
				dead := culler.DeadLinks(results)
				fmt.Fprintf(out, "%d healthy, %d dead, %d unreachable\n", healthy, len(dead), len(results)-healthy-len(dead))

				if !remove {
					return nil
				}
				for _, l := range dead {
					if err := e.bookmarks.DeleteLink(ctx, l.ID); err != nil {
						return fmt.Errorf("while deleting %q: %w", l.Title, err)
					}
				}
				fmt.Fprintf(out, "Deleted %d dead links\n", len(dead))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&remove, "delete", false, "delete dead links")
	cmd.Flags().IntVar(&concurrency, "concurrency", culler.DefaultConcurrency, "parallel checks")
	cmd.Flags().DurationVar(&timeout, "timeout", culler.DefaultTimeout, "per-request timeout")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "domains where 404 means private, not dead")
	return cmd
}
