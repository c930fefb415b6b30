package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/linkkoy/internal/api"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnv(cmd, func(e *env) error {
				if e.repo == nil {
					return errors.New("serve needs a local backend, not remote")
				}
				if addr == "" {
					addr = e.cfg.ServerAddr
				}

				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				srv := api.NewServer(api.ServerParams{
					Repo:           e.repo,
					Auth:           e.users,
					Secret:         []byte(e.cfg.JWTSecret),
					TokenTTL:       time.Duration(e.cfg.TokenTTL),
					AllowedOrigins: e.cfg.CORSOrigins,
					Logger:         e.logger,
				})
				return srv.ListenAndServe(ctx, addr)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
