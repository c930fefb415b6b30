package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/linkkoy/internal/api"
	"github.com/nikbrunner/linkkoy/internal/auth"
	"github.com/nikbrunner/linkkoy/internal/docstore"
	"github.com/nikbrunner/linkkoy/internal/model"
	"github.com/nikbrunner/linkkoy/internal/repository"
)

var secret = []byte("test-secret")

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := docstore.NewMemory()
	srv := api.NewServer(api.ServerParams{
		Repo:   repository.New(store, nil),
		Auth:   auth.NewService(auth.Params{Store: store, Cost: bcrypt.MinCost}),
		Secret: secret,
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// registeredClient registers a fresh user and returns an authenticated client.
func registeredClient(t *testing.T, ts *httptest.Server, email string) (*api.Client, auth.User) {
	t.Helper()
	c := api.NewClient(api.ClientParams{BaseURL: ts.URL})
	token, u, err := c.Register(context.Background(), auth.RegisterParams{
		Name: "Tester", Email: email, Password: "secret",
	})
	assert.NilError(t, err)
	c.SetToken(token)
	return c, u
}

func TestToken_RoundTrip(t *testing.T) {
	token, err := api.GenerateToken("u1", secret, time.Minute)
	assert.NilError(t, err)

	id, err := api.UserIDFromToken(token, secret)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(id, "u1"))

	_, err = api.UserIDFromToken(token, []byte("other"))
	assert.Check(t, errors.Is(err, api.ErrUnauthorized))

	expired, err := api.GenerateToken("u1", secret, -time.Minute)
	assert.NilError(t, err)
	_, err = api.UserIDFromToken(expired, secret)
	assert.Check(t, errors.Is(err, api.ErrUnauthorized))
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	assert.NilError(t, err)
	defer resp.Body.Close()
	assert.Check(t, is.Equal(resp.StatusCode, http.StatusOK))
}

func TestUnauthorized_ProblemDocument(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/folders")
	assert.NilError(t, err)
	defer resp.Body.Close()

	assert.Check(t, is.Equal(resp.StatusCode, http.StatusUnauthorized))
	assert.Check(t, is.Equal(resp.Header.Get("Content-Type"), "application/problem+json"))

	var p api.ProblemDetail
	assert.NilError(t, json.NewDecoder(resp.Body).Decode(&p))
	assert.Check(t, is.Equal(p.Status, http.StatusUnauthorized))
	assert.Check(t, is.Equal(p.Title, "Unauthorized"))
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	c, u := registeredClient(t, ts, "ann@example.com")

	me, err := c.Me(ctx)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(me.ID, u.ID))

	anon := api.NewClient(api.ClientParams{BaseURL: ts.URL})
	_, _, err = anon.Register(ctx, auth.RegisterParams{Name: "X", Email: "ann@example.com", Password: "secret"})
	assert.Check(t, errors.Is(err, auth.ErrEmailTaken))

	_, _, err = anon.Register(ctx, auth.RegisterParams{Name: "X", Email: "x@example.com", Password: "123"})
	assert.Check(t, errors.Is(err, model.ErrValidation))

	_, _, err = anon.Login(ctx, "ann@example.com", "wrong!")
	assert.Check(t, errors.Is(err, auth.ErrInvalidCredentials))

	token, logged, err := anon.Login(ctx, "ann@example.com", "secret")
	assert.NilError(t, err)
	assert.Check(t, token != "")
	assert.Check(t, is.Equal(logged.ID, u.ID))
}

func TestFolderAndLinkLifecycle(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	c, u := registeredClient(t, ts, "ann@example.com")

	work, err := c.CreateFolder(ctx, model.NewFolderParams{Name: "Work", Icon: "work"})
	assert.NilError(t, err)
	assert.Check(t, is.Equal(work.UserID, u.ID))

	project, err := c.CreateFolder(ctx, model.NewFolderParams{Name: "Project", ParentID: &work.ID})
	assert.NilError(t, err)
	assert.Check(t, is.Equal(project.Icon, model.DefaultIcon))

	docs, err := c.CreateLink(ctx, model.NewLinkParams{Title: "Docs", URL: "docs.example.com", FolderID: project.ID})
	assert.NilError(t, err)

	roots, err := c.ListRootFolders(ctx, "")
	assert.NilError(t, err)
	assert.Assert(t, is.Len(roots, 1))
	assert.Check(t, is.Equal(roots[0].Name, "Work"))

	children, err := c.ListChildFolders(ctx, work.ID)
	assert.NilError(t, err)
	assert.Assert(t, is.Len(children, 1))

	assert.NilError(t, c.UpdateFolder(ctx, work.ID, model.FolderUpdate{Name: "Job", Icon: "work"}))
	got, err := c.GetFolder(ctx, work.ID)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(got.Name, "Job"))

	assert.NilError(t, c.UpdateLink(ctx, docs.ID, model.LinkUpdate{Title: "API Docs", URL: "https://docs.example.com"}))
	assert.NilError(t, c.MoveLink(ctx, docs.ID, work.ID))
	moved, err := c.GetLink(ctx, docs.ID)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(moved.Title, "API Docs"))
	assert.Check(t, moved.InFolder(work.ID))

	folders, links, err := c.Search(ctx, "api")
	assert.NilError(t, err)
	assert.Check(t, is.Len(folders, 0))
	assert.Check(t, is.Len(links, 1))

	assert.NilError(t, c.DeleteFolderCascade(ctx, work.ID))

	all, err := c.ListAllFolders(ctx, "")
	assert.NilError(t, err)
	assert.Check(t, is.Len(all, 0))
	allLinks, err := c.ListAllLinks(ctx, "")
	assert.NilError(t, err)
	assert.Check(t, is.Len(allLinks, 0))

	_, err = c.GetLink(ctx, docs.ID)
	assert.Check(t, errors.Is(err, repository.ErrNotFound))
}

func TestValidationErrors(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	c, _ := registeredClient(t, ts, "ann@example.com")

	_, err := c.CreateFolder(ctx, model.NewFolderParams{Name: "   "})
	assert.Check(t, errors.Is(err, model.ErrValidation))

	f, err := c.CreateFolder(ctx, model.NewFolderParams{Name: "Work"})
	assert.NilError(t, err)
	_, err = c.CreateLink(ctx, model.NewLinkParams{Title: "No URL", FolderID: f.ID})
	assert.Check(t, errors.Is(err, model.ErrValidation))
}

func TestOtherUsersResourcesAreHidden(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	ann, _ := registeredClient(t, ts, "ann@example.com")
	bob, _ := registeredClient(t, ts, "bob@example.com")

	f, err := ann.CreateFolder(ctx, model.NewFolderParams{Name: "Private"})
	assert.NilError(t, err)
	l, err := ann.CreateLink(ctx, model.NewLinkParams{Title: "Secret", URL: "x", FolderID: f.ID})
	assert.NilError(t, err)

	_, err = bob.GetFolder(ctx, f.ID)
	assert.Check(t, errors.Is(err, repository.ErrNotFound))
	assert.Check(t, errors.Is(bob.DeleteFolderCascade(ctx, f.ID), repository.ErrNotFound))
	assert.Check(t, errors.Is(bob.DeleteLink(ctx, l.ID), repository.ErrNotFound))
	_, err = bob.CreateLink(ctx, model.NewLinkParams{Title: "Sneaky", URL: "x", FolderID: f.ID})
	assert.Check(t, errors.Is(err, repository.ErrNotFound))

	roots, err := bob.ListRootFolders(ctx, "")
	assert.NilError(t, err)
	assert.Check(t, is.Len(roots, 0))

	// Still there for the owner.
	_, err = ann.GetFolder(ctx, f.ID)
	assert.NilError(t, err)
}

func TestUpdateLink_NothingToUpdate(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	c, _ := registeredClient(t, ts, "ann@example.com")

	f, err := c.CreateFolder(ctx, model.NewFolderParams{Name: "Work"})
	assert.NilError(t, err)
	l, err := c.CreateLink(ctx, model.NewLinkParams{Title: "Go", URL: "go.dev", FolderID: f.ID})
	assert.NilError(t, err)

	token, _, err := c.Login(ctx, "ann@example.com", "secret")
	assert.NilError(t, err)
	req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/links/"+l.ID, strings.NewReader(`{}`))
	assert.NilError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	assert.NilError(t, err)
	defer resp.Body.Close()
	assert.Check(t, is.Equal(resp.StatusCode, http.StatusBadRequest))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	c, _ := registeredClient(t, ts, "ann@example.com")

	f, err := c.CreateFolder(ctx, model.NewFolderParams{Name: "Work"})
	assert.NilError(t, err)
	assert.NilError(t, c.DeleteFolderCascade(ctx, f.ID))

	resp, err := http.Get(ts.URL + "/metrics")
	assert.NilError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	assert.NilError(t, err)

	text := string(body)
	assert.Check(t, is.Contains(text, "lk_cascade_deletes_total 1"))
	assert.Check(t, is.Contains(text, `route="DELETE /api/folders/{id}"`))
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)
	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/folders", nil)
	assert.NilError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	resp, err := http.DefaultClient.Do(req)
	assert.NilError(t, err)
	defer resp.Body.Close()
	assert.Check(t, is.Equal(resp.Header.Get("Access-Control-Allow-Origin"), "*"))
}
