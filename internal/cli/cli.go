// Package cli implements the lk command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/nikbrunner/linkkoy/internal/api"
	"github.com/nikbrunner/linkkoy/internal/auth"
	"github.com/nikbrunner/linkkoy/internal/config"
	"github.com/nikbrunner/linkkoy/internal/docstore"
	"github.com/nikbrunner/linkkoy/internal/model"
	"github.com/nikbrunner/linkkoy/internal/repository"
	"github.com/nikbrunner/linkkoy/internal/session"
)

var (
	errNotLoggedIn    = errors.New("not logged in: run `lk login` first")
	errSessionExpired = errors.New("session expired: run `lk login` again")
)

type rootOptions struct {
	configPath string
}

// env is everything a command needs, built from the config.
type env struct {
	cfg       *config.Config
	logger    *slog.Logger
	sessions  *session.Manager
	bookmarks repository.Bookmarks

	// Local backends only.
	repo  *repository.Repository
	users *auth.Service

	// Remote backend only.
	client *api.Client
}

// NewRootCmd creates the lk command with all subcommands.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "lk",
		Short: "Organize links in nested folders",
		Long: `lk keeps links in nested folders.

Run without arguments to open the interactive browser.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (default ~/.config/lk/config.json)")

	cmd.AddCommand(
		newRegisterCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newFoldersCmd(opts),
		newFolderCmd(opts),
		newLinksCmd(opts),
		newLinkCmd(opts),
		newSearchCmd(opts),
		newOpenCmd(opts),
		newImportCmd(opts),
		newExportCmd(opts),
		newCullCmd(opts),
		newServeCmd(opts),
		NewVersionCmd(version),
	)
	return cmd
}

// withEnv builds the environment, calls fn and releases the store.
// Logs go to stderr.
func (o *rootOptions) withEnv(cmd *cobra.Command, fn func(*env) error) error {
	e, cleanup, err := o.setup(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(e)
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	path := o.configPath
	if path == "" {
		var err error
		if path, err = config.DefaultConfigFilePath(); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("while loading config: %w", err)
	}
	return cfg, nil
}

func (o *rootOptions) setup(cmd *cobra.Command, logTo io.Writer) (*env, func(), error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return newEnv(cmd.Context(), cfg, config.NewLogger(cfg.LogLevel, cfg.LogFormat, logTo))
}

func newEnv(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*env, func(), error) {
	sessions, err := session.NewManager(cfg.SessionFile())
	if err != nil {
		return nil, nil, fmt.Errorf("while restoring session: %w", err)
	}
	e := &env{cfg: cfg, logger: logger, sessions: sessions}

	if cfg.Backend == config.BackendRemote {
		var token string
		if s, ok := sessions.Current(); ok {
			token = s.Token
		}
		client := api.NewClient(api.ClientParams{BaseURL: cfg.RemoteURL, Token: token})
		unsubscribe := sessions.Subscribe(func(s *session.Session) {
			if s == nil {
				client.SetToken("")
				return
			}
			client.SetToken(s.Token)
		})
		e.client = client
		e.bookmarks = client
		return e, unsubscribe, nil
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("while opening %s store: %w", cfg.Backend, err)
	}
	e.repo = repository.New(store, logger)
	e.bookmarks = e.repo
	e.users = auth.NewService(auth.Params{Store: store, Logger: logger})

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Error("close store failed", "error", err)
		}
	}
	return e, cleanup, nil
}

func openStore(ctx context.Context, cfg *config.Config) (docstore.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return docstore.NewMemory(), nil
	case config.BackendJSON:
		return docstore.NewJSONFile(cfg.JSONFile())
	case config.BackendSQLite:
		return docstore.NewSQLite(cfg.SQLiteFile())
	case config.BackendFirestore:
		var opts []option.ClientOption
		if cfg.FirestoreCredentials != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.FirestoreCredentials))
		}
		return docstore.NewFirestore(ctx, cfg.FirestoreProject, opts...)
	case config.BackendPostgres:
		return docstore.NewPostgres(ctx, cfg.PostgresURL)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// currentUser returns the logged in user's session. Local backends
// also check the token signature and expiry.
func (e *env) currentUser() (session.Session, error) {
	s, ok := e.sessions.Current()
	if !ok {
		return session.Session{}, errNotLoggedIn
	}
	if e.client != nil {
		return s, nil
	}
	id, err := api.UserIDFromToken(s.Token, []byte(e.cfg.JWTSecret))
	if err != nil || id != s.UserID {
		e.logger.Debug("stored token rejected", "error", err)
		return session.Session{}, errSessionExpired
	}
	return s, nil
}

// folder returns the folder with id if userID owns it. Folders of other
// users are reported as not found.
func (e *env) folder(ctx context.Context, userID, id string) (model.Folder, error) {
	f, err := e.bookmarks.GetFolder(ctx, id)
	if err != nil {
		return model.Folder{}, err
	}
	if f.UserID != userID {
		return model.Folder{}, fmt.Errorf("folder %s: %w", id, repository.ErrNotFound)
	}
	return f, nil
}

// link returns the link with id if userID owns it.
func (e *env) link(ctx context.Context, userID, id string) (model.Link, error) {
	l, err := e.bookmarks.GetLink(ctx, id)
	if err != nil {
		return model.Link{}, err
	}
	if l.UserID != userID {
		return model.Link{}, fmt.Errorf("link %s: %w", id, repository.ErrNotFound)
	}
	return l, nil
}
