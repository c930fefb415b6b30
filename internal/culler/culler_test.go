package culler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/linkkoy/internal/model"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	})
	mux.HandleFunc("/missing", http.NotFound)
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/get-only", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ok", http.StatusMovedPermanently)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func link(id, url string) model.Link {
	return model.Link{ID: id, Title: id, URL: url, UserID: "u1"}
}

func TestCheck(t *testing.T) {
	srv := newTestServer(t)

	links := []model.Link{
		link("ok", srv.URL+"/ok"),
		link("gone", srv.URL+"/gone"),
		link("missing", srv.URL+"/missing"),
		link("broken", srv.URL+"/broken"),
		link("get-only", srv.URL+"/get-only"),
		link("moved", srv.URL+"/moved"),
		link("bad-scheme", "ftp://example.invalid/file"),
	}

	var calls, lastTotal atomic.Int32
	c := New(Params{
		Concurrency: 3,
		Timeout:     5 * time.Second,
		OnProgress: func(completed, total int) {
			calls.Add(1)
			lastTotal.Store(int32(total))
		},
	})
	results, err := c.Check(context.Background(), links)
	assert.NilError(t, err)
	assert.Equal(t, len(results), len(links))
	assert.Equal(t, int(calls.Load()), len(links))
	assert.Equal(t, int(lastTotal.Load()), len(links))

	want := []struct {
		status Status
		code   int
		reason string
	}{
		{Healthy, 200, ""},
		{Dead, 410, ""},
		{Dead, 404, ""},
		{Unreachable, 500, "Internal Server Error"},
		{Healthy, 200, ""},
		{Healthy, 200, ""},
		{Unreachable, 0, "Unsupported URL"},
	}
	for i, w := range want {
		r := results[i]
		assert.Equal(t, r.Link.ID, links[i].ID)
		assert.Equal(t, r.Status, w.status, r.Link.ID)
		assert.Equal(t, r.StatusCode, w.code, r.Link.ID)
		assert.Equal(t, r.Reason, w.reason, r.Link.ID)
	}

	dead := DeadLinks(results)
	assert.Equal(t, len(dead), 2)
	assert.Equal(t, dead[0].ID, "gone")
	assert.Equal(t, dead[1].ID, "missing")
}

func TestCheckExcludedDomain(t *testing.T) {
	srv := newTestServer(t)

	c := New(Params{ExcludeDomains: []string{" 127.0.0.1 "}})
	results, err := c.Check(context.Background(), []model.Link{link("private", srv.URL+"/missing")})
	assert.NilError(t, err)
	assert.Equal(t, results[0].Status, Unreachable)
	assert.Equal(t, results[0].Reason, "Possibly private (auth required)")
}

func TestCheckAddsScheme(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	host := strings.TrimPrefix(srv.URL, "https://")

	c := New(Params{Client: srv.Client(), ExcludeDomains: []string{"127.0.0.1"}})
	links := []model.Link{link("ok", host+"/ok"), link("private", host+"/missing")}
	results, err := c.Check(context.Background(), links)
	assert.NilError(t, err)

	assert.Equal(t, results[0].Status, Healthy)
	assert.Equal(t, results[0].StatusCode, http.StatusOK)
	assert.Equal(t, results[0].Link.URL, host+"/ok")
	assert.Equal(t, results[1].Status, Unreachable)
	assert.Equal(t, results[1].Reason, "Possibly private (auth required)")
}

func TestCheckConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	results, err := New(Params{}).Check(context.Background(), []model.Link{link("down", addr)})
	assert.NilError(t, err)
	assert.Equal(t, results[0].Status, Unreachable)
	assert.Equal(t, results[0].Reason, "Connection refused")
}

func TestCheckCancelled(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Params{}).Check(ctx, []model.Link{link("ok", srv.URL+"/ok")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckEmpty(t *testing.T) {
	results, err := New(Params{}).Check(context.Background(), nil)
	assert.NilError(t, err)
	assert.Assert(t, results == nil)
}

func TestIsExcluded(t *testing.T) {
	c := New(Params{ExcludeDomains: []string{"GitHub.com"}})

	tests := []struct {
		url  string
		want bool
	}{
		{"https://github.com/me/private", true},
		{"https://api.github.com/repos", true},
		{"https://github.com:443/x", true},
		{"https://notgithub.com", false},
		{"https://gitlab.com", false},
		{"://bad", false},
	}
	for _, tt := range tests {
		assert.Equal(t, c.isExcluded(tt.url), tt.want, tt.url)
	}
}

func TestNormalizeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{errors.New("dial tcp: lookup nope.invalid: no such host"), "DNS failure"},
		{context.DeadlineExceeded, "Timeout"},
		{errors.New("Client.Timeout exceeded while awaiting headers"), "Timeout"},
		{errors.New("dial tcp 127.0.0.1:1: connect: connection refused"), "Connection refused"},
		{errors.New("x509: certificate signed by unknown authority"), "TLS/certificate error"},
		{errors.New("connect: network is unreachable"), "Network unreachable"},
		{errors.New("remote error: tls: handshake failure"), "TLS error"},
		{errors.New("something odd"), "something odd"},
	}
	for _, tt := range tests {
		assert.Equal(t, normalizeError(tt.err), tt.want)
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, Healthy.String(), "healthy")
	assert.Equal(t, Dead.String(), "dead")
	assert.Equal(t, Unreachable.String(), "unreachable")
}
