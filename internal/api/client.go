package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nikbrunner/linkkoy/internal/auth"
	"github.com/nikbrunner/linkkoy/internal/model"
	"github.com/nikbrunner/linkkoy/internal/repository"
)

// Client talks to a Server. It implements repository.Bookmarks, so a
// remote server can stand in for a local store. User id arguments are
// ignored: the server scopes every call to the token's user.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

var _ repository.Bookmarks = (*Client)(nil)

// ClientParams holds parameters for creating a Client.
type ClientParams struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client // nil = 30s timeout client
}

// NewClient creates a Client.
func NewClient(p ClientParams) *Client {
	hc := p.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(p.BaseURL, "/"),
		http:    hc,
		token:   p.Token,
	}
}

// SetToken replaces the bearer token used for later calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", repository.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeProblem(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("while decoding %s %s: %w", method, path, err)
	}
	return nil
}

func decodeProblem(resp *http.Response) error {
	var p ProblemDetail
	_ = json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&p)
	detail := p.Detail
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", model.ErrValidation, strings.TrimPrefix(detail, model.ErrValidation.Error()+": "))
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, detail)
	case http.StatusNotFound:
		return repository.ErrNotFound
	case http.StatusConflict:
		return auth.ErrEmailTaken
	default:
		return fmt.Errorf("%w: %d %s", repository.ErrStoreUnavailable, resp.StatusCode, detail)
	}
}

// Register creates an account and returns the issued token.
func (c *Client) Register(ctx context.Context, p auth.RegisterParams) (string, auth.User, error) {
	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", p, &resp); err != nil {
		return "", auth.User{}, err
	}
	return resp.Token, resp.User, nil
}

// Login authenticates and returns the issued token.
func (c *Client) Login(ctx context.Context, email, password string) (string, auth.User, error) {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", loginRequest{Email: email, Password: password}, &resp)
	if errors.Is(err, ErrUnauthorized) {
		return "", auth.User{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return "", auth.User{}, err
	}
	return resp.Token, resp.User, nil
}

// Me returns the user the token belongs to.
func (c *Client) Me(ctx context.Context) (auth.User, error) {
	var u auth.User
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &u)
	return u, err
}

// Search runs the server-side substring search.
func (c *Client) Search(ctx context.Context, query string) ([]model.Folder, []model.Link, error) {
	var resp searchResponse
	if err := c.do(ctx, http.MethodGet, "/api/search?q="+url.QueryEscape(query), nil, &resp); err != nil {
		return nil, nil, err
	}
	return resp.Folders, resp.Links, nil
}

func (c *Client) ListRootFolders(ctx context.Context, _ string) ([]model.Folder, error) {
	var folders []model.Folder
	err := c.do(ctx, http.MethodGet, "/api/folders", nil, &folders)
	return folders, err
}

func (c *Client) ListChildFolders(ctx context.Context, parentID string) ([]model.Folder, error) {
	var folders []model.Folder
	err := c.do(ctx, http.MethodGet, "/api/folders?parent_id="+url.QueryEscape(parentID), nil, &folders)
	return folders, err
}

func (c *Client) ListAllFolders(ctx context.Context, _ string) ([]model.Folder, error) {
	folders, _, err := c.Search(ctx, "")
	return folders, err
}

func (c *Client) ListLinks(ctx context.Context, folderID string) ([]model.Link, error) {
	var links []model.Link
	err := c.do(ctx, http.MethodGet, "/api/links?folder_id="+url.QueryEscape(folderID), nil, &links)
	return links, err
}

func (c *Client) ListAllLinks(ctx context.Context, _ string) ([]model.Link, error) {
	var links []model.Link
	err := c.do(ctx, http.MethodGet, "/api/links", nil, &links)
	return links, err
}

func (c *Client) GetFolder(ctx context.Context, id string) (model.Folder, error) {
	var f model.Folder
	err := c.do(ctx, http.MethodGet, "/api/folders/"+url.PathEscape(id), nil, &f)
	return f, err
}

func (c *Client) GetLink(ctx context.Context, id string) (model.Link, error) {
	var l model.Link
	err := c.do(ctx, http.MethodGet, "/api/links/"+url.PathEscape(id), nil, &l)
	return l, err
}

func (c *Client) CreateFolder(ctx context.Context, p model.NewFolderParams) (model.Folder, error) {
	var f model.Folder
	err := c.do(ctx, http.MethodPost, "/api/folders", folderRequest{
		Name:     p.Name,
		Icon:     p.Icon,
		Color:    p.Color,
		ParentID: p.ParentID,
	}, &f)
	return f, err
}

func (c *Client) UpdateFolder(ctx context.Context, id string, u model.FolderUpdate) error {
	return c.do(ctx, http.MethodPut, "/api/folders/"+url.PathEscape(id), folderRequest{
		Name:  u.Name,
		Icon:  u.Icon,
		Color: u.Color,
	}, nil)
}

func (c *Client) CreateLink(ctx context.Context, p model.NewLinkParams) (model.Link, error) {
	var l model.Link
	err := c.do(ctx, http.MethodPost, "/api/links", linkRequest{
		Title:    p.Title,
		URL:      p.URL,
		FolderID: p.FolderID,
	}, &l)
	return l, err
}

func (c *Client) UpdateLink(ctx context.Context, id string, u model.LinkUpdate) error {
	return c.do(ctx, http.MethodPut, "/api/links/"+url.PathEscape(id), linkUpdateRequest{
		Title: &u.Title,
		URL:   &u.URL,
	}, nil)
}

func (c *Client) MoveLink(ctx context.Context, id, folderID string) error {
	return c.do(ctx, http.MethodPut, "/api/links/"+url.PathEscape(id), linkUpdateRequest{
		FolderID: &folderID,
	}, nil)
}

func (c *Client) DeleteFolderCascade(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/folders/"+url.PathEscape(id), nil, nil)
}

func (c *Client) DeleteLink(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/links/"+url.PathEscape(id), nil, nil)
}
