// Package culler finds links whose URLs no longer resolve.
package culler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nikbrunner/linkkoy/internal/model"
)

// Status is the health of a link's URL.
type Status int

const (
	Healthy     Status = iota // 2xx or 3xx response
	Dead                      // 404 or 410 Gone
	Unreachable               // timeouts, DNS failures, 5xx, auth walls
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Dead:
		return "dead"
	default:
		return "unreachable"
	}
}

// Result holds the outcome for a single link.
type Result struct {
	Link       model.Link
	Status     Status
	StatusCode int    // 0 when no response arrived
	Reason     string // empty for healthy and dead links
}

// ProgressFunc is called after each URL is checked.
type ProgressFunc func(completed, total int)

const (
	DefaultConcurrency = 10
	DefaultTimeout     = 10 * time.Second
	maxRedirects       = 10
)

// Params configures a Checker.
type Params struct {
	Client         *http.Client // nil = client with Timeout and a redirect cap
	Concurrency    int          // 0 = DefaultConcurrency
	Timeout        time.Duration
	ExcludeDomains []string // 404s here count as "possibly private"
	OnProgress     ProgressFunc
	Logger         *slog.Logger
}

// Checker checks link URLs with a bounded number of workers.
type Checker struct {
	client      *http.Client
	concurrency int
	exclude     map[string]bool
	onProgress  ProgressFunc
	logger      *slog.Logger
}

// New creates a Checker.
func New(p Params) *Checker {
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if p.Concurrency <= 0 {
		p.Concurrency = DefaultConcurrency
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	if p.Client == nil {
		p.Client = &http.Client{
			Timeout: p.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}

	exclude := make(map[string]bool, len(p.ExcludeDomains))
	for _, d := range p.ExcludeDomains {
		exclude[strings.ToLower(strings.TrimSpace(d))] = true
	}

	return &Checker{
		client:      p.Client,
		concurrency: p.Concurrency,
		exclude:     exclude,
		onProgress:  p.OnProgress,
		logger:      p.Logger,
	}
}

// Check requests every link and returns results in input order. It
// returns early with ctx.Err() when ctx is cancelled.
func (c *Checker) Check(ctx context.Context, links []model.Link) ([]Result, error) {
	if len(links) == 0 {
		return nil, nil
	}

	results := make([]Result, len(links))
	var (
		mu        sync.Mutex
		completed int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i := range links {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = c.checkLink(ctx, links[i])

			if c.onProgress != nil {
				mu.Lock()
				completed++
				c.onProgress(completed, len(links))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Checker) checkLink(ctx context.Context, link model.Link) Result {
	result := Result{Link: link}
	target := model.NormalizeURL(link.URL)

	// HEAD first; some servers reject it, so fall back to GET.
	resp, err := c.do(ctx, http.MethodHead, target)
	if err != nil || resp.StatusCode == http.StatusMethodNotAllowed {
		if resp != nil {
			resp.Body.Close()
		}
		resp, err = c.do(ctx, http.MethodGet, target)
	}
	if err != nil {
		c.logger.Debug("link unreachable", "url", target, "error", err)
		result.Status = Unreachable
		result.Reason = normalizeError(err)
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Status = Healthy
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		if c.isExcluded(target) {
			result.Status = Unreachable
			result.Reason = "Possibly private (auth required)"
		} else {
			result.Status = Dead
		}
	default:
		result.Status = Unreachable
		result.Reason = http.StatusText(resp.StatusCode)
	}
	return result
}

func (c *Checker) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return c.client.Do(req)
}

// isExcluded reports whether the URL's host is an excluded domain or a
// subdomain of one.
func (c *Checker) isExcluded(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for domain := range c.exclude {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// normalizeError turns transport errors into short readable reasons.
func normalizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "Timeout"
	}
	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	case strings.Contains(lower, "unsupported protocol scheme"):
		return "Unsupported URL"
	default:
		return msg
	}
}

// DeadLinks returns the links from results whose status is Dead.
func DeadLinks(results []Result) []model.Link {
	var dead []model.Link
	for _, r := range results {
		if r.Status == Dead {
			dead = append(dead, r.Link)
		}
	}
	return dead
}
