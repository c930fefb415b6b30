package search

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nikbrunner/linkkoy/internal/model"
)

// DefaultDebounce is how long the query must stay unchanged before a
// search runs.
const DefaultDebounce = 300 * time.Millisecond

// Fetcher loads the corpus searched for one user.
type Fetcher interface {
	ListAllFolders(ctx context.Context, userID string) ([]model.Folder, error)
	ListAllLinks(ctx context.Context, userID string) ([]model.Link, error)
}

// Results is a snapshot of the controller state.
type Results struct {
	Query   string
	Active  bool
	Folders []model.Folder
	Links   []model.Link
}

// ControllerParams holds parameters for creating a Controller.
type ControllerParams struct {
	Fetcher  Fetcher
	UserID   string
	Debounce time.Duration // zero = DefaultDebounce
	Logger   *slog.Logger
	// OnUpdate, if set, is called after every state change. It runs on
	// the caller's goroutine for blank queries and on the search
	// goroutine otherwise.
	OnUpdate func(Results)
}

// Controller runs at most one search at a time. Every query change
// cancels the search in flight, so only the latest query can publish
// results.
type Controller struct {
	fetcher  Fetcher
	userID   string
	debounce time.Duration
	logger   *slog.Logger
	onUpdate func(Results)

	mu     sync.Mutex
	state  Results
	gen    uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewController creates a Controller.
func NewController(p ControllerParams) *Controller {
	debounce := p.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		fetcher:  p.Fetcher,
		userID:   p.UserID,
		debounce: debounce,
		logger:   logger,
		onUpdate: p.OnUpdate,
	}
}

// State returns the current query, active flag and results.
func (c *Controller) State() Results {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Results {
	return Results{
		Query:   c.state.Query,
		Active:  c.state.Active,
		Folders: slices.Clone(c.state.Folders),
		Links:   slices.Clone(c.state.Links),
	}
}

// OnQueryChange cancels any search in flight. A blank query deactivates
// search and leaves the previous results untouched; any other query
// starts a new debounced search.
func (c *Controller) OnQueryChange(query string) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	gen := c.gen
	c.state.Query = query

	if strings.TrimSpace(query) == "" {
		c.state.Active = false
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.notify(snap)
		return
	}

	c.state.Active = true
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.wg.Add(1)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	go c.run(ctx, cancel, gen, query)
}

func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, gen uint64, query string) {
	defer c.wg.Done()
	defer cancel()

	timer := time.NewTimer(c.debounce)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	var folders []model.Folder
	var links []model.Link
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		folders, err = c.fetcher.ListAllFolders(gctx, c.userID)
		return err
	})
	g.Go(func() error {
		var err error
		links, err = c.fetcher.ListAllLinks(gctx, c.userID)
		return err
	})
	if err := g.Wait(); err != nil {
		if ctx.Err() == nil {
			c.logger.Error("search failed", "query", query, "error", err)
		}
		return
	}

	matchedFolders := MatchFolders(folders, query)
	matchedLinks := MatchLinks(links, query)

	c.mu.Lock()
	if gen != c.gen || ctx.Err() != nil {
		c.mu.Unlock()
		return
	}
	c.state.Folders = matchedFolders
	c.state.Links = matchedLinks
	c.cancel = nil
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Debug("search settled", "query", query,
		"folders", len(matchedFolders), "links", len(matchedLinks))
	c.notify(snap)
}

func (c *Controller) notify(r Results) {
	if c.onUpdate != nil {
		c.onUpdate(r)
	}
}

// Wait blocks until no search goroutine is running.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels any search in flight and waits for it to exit.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	c.mu.Unlock()
	c.wg.Wait()
}
