package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/linkkoy/internal/api"
	"github.com/nikbrunner/linkkoy/internal/auth"
	"github.com/nikbrunner/linkkoy/internal/session"
)

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptPassword(cmd)
			if err != nil {
				return err
			}
			p := auth.RegisterParams{Name: name, Email: email, Password: password}

			return opts.withEnv(cmd, func(e *env) error {
				ctx := cmd.Context()
				var (
					token string
					user  auth.User
				)
				if e.client != nil {
					token, user, err = e.client.Register(ctx, p)
				} else {
					user, err = e.users.Register(ctx, p)
					if err == nil {
						token, err = api.GenerateToken(user.ID, []byte(e.cfg.JWTSecret), time.Duration(e.cfg.TokenTTL))
					}
				}
				if err != nil {
					return err
				}
				if err := e.sessions.Login(session.Session{Token: token, UserID: user.ID, Email: user.Email}); err != nil {
					return fmt.Errorf("while saving session: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", user.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptPassword(cmd)
			if err != nil {
				return err
			}

			return opts.withEnv(cmd, func(e *env) error {
				ctx := cmd.Context()
				var (
					token string
					user  auth.User
				)
				if e.client != nil {
					token, user, err = e.client.Login(ctx, email, password)
				} else {
					user, err = e.users.Login(ctx, email, password)
					if err == nil {
						token, err = api.GenerateToken(user.ID, []byte(e.cfg.JWTSecret), time.Duration(e.cfg.TokenTTL))
					}
				}
				if err != nil {
					return err
				}
				if err := e.sessions.Login(session.Session{Token: token, UserID: user.ID, Email: user.Email}); err != nil {
					return fmt.Errorf("while saving session: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", user.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnv(cmd, func(e *env) error {
				if err := e.sessions.Logout(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
				return nil
			})
		},
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnv(cmd, func(e *env) error {
				s, err := e.currentUser()
				if err != nil {
					return err
				}

				var user auth.User
				if e.client != nil {
					user, err = e.client.Me(cmd.Context())
				} else {
					user, err = e.users.GetUser(cmd.Context(), s.UserID)
				}
				if errors.Is(err, auth.ErrUserNotFound) {
					return errSessionExpired
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.Name, user.Email)
				return nil
			})
		},
	}
}
