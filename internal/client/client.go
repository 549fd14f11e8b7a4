// Package client is a Go client for the scribe HTTP API.
//
// Public reads are cached in memory and revalidated with the ETag the server
// attaches to every GET response, so repeated reads of unchanged posts cost a
// 304 round trip.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/die-net/lrucache"
	"github.com/gregjones/httpcache"
)

const (
	maxHTTPCacheBytes = 16 * 1024 * 1024 // 16 MiB
	maxHTTPCacheAge   = 0                // unlimited
	idleConns         = 16
	idleConnTimeout   = 90 * time.Second
	httpTimeout       = 10 * time.Second
)

// Client calls the API at a base URL. The zero value is not usable; see
// [New].
type Client struct {
	base     *url.URL
	http     *http.Client
	username string
	password string
}

// New creates a Client for the server at baseURL, for example
// "http://localhost:8080".
func New(baseURL string) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse server url: %w", err)
	} else if !base.IsAbs() {
		return nil, fmt.Errorf("server url must have a scheme: %v", base)
	}
	return &Client{
		base: base,
		http: &http.Client{
			Transport: &httpcache.Transport{
				Cache:               lrucache.New(maxHTTPCacheBytes, maxHTTPCacheAge),
				MarkCachedResponses: true,
				Transport: &http.Transport{
					Proxy:               http.ProxyFromEnvironment,
					ForceAttemptHTTP2:   true,
					MaxIdleConns:        idleConns,
					MaxIdleConnsPerHost: idleConns,
					IdleConnTimeout:     idleConnTimeout,
					TLSHandshakeTimeout: httpTimeout,
				},
			},
			Timeout: httpTimeout,
		},
	}, nil
}

// As returns a copy of c that authenticates every request as username. The
// response cache is shared with c.
func (c *Client) As(username, password string) *Client {
	clone := *c
	clone.username = username
	clone.password = password
	return &clone
}

// Error is a non-2xx response from the API.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// Post is a blog post as returned by the API.
type Post struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// NewPost is the body of a post creation. Format is "markdown" (the default)
// or "html".
type NewPost struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Format  string `json:"format,omitempty"`
}

// PostPatch is a partial post update; nil fields are left unchanged.
type PostPatch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Format  string  `json:"format,omitempty"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type message struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Welcome returns the server greeting.
func (c *Client) Welcome(ctx context.Context) (string, error) {
	var out message
	err := c.do(ctx, http.MethodGet, "/", nil, &out)
	return out.Message, err
}

// Signup registers a new user.
func (c *Client) Signup(ctx context.Context, username, password string) error {
	return c.do(ctx, http.MethodPost, "/signup", credentials{username, password}, nil)
}

// Login checks a username and password with the server.
func (c *Client) Login(ctx context.Context, username, password string) error {
	return c.do(ctx, http.MethodPost, "/login", credentials{username, password}, nil)
}

// CreatePost creates a post owned by the client's user, returning its ID.
func (c *Client) CreatePost(ctx context.Context, post NewPost) (int64, error) {
	var out message
	if err := c.do(ctx, http.MethodPost, "/posts", post, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// ListPosts lists every post, optionally narrowed by a CEL filter over this.
func (c *Client) ListPosts(ctx context.Context, filter string) ([]Post, error) {
	path := "/posts"
	if filter != "" {
		path += "?" + url.Values{"filter": {filter}}.Encode()
	}
	var out []Post
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// GetPost fetches a single post.
func (c *Client) GetPost(ctx context.Context, id int64) (Post, error) {
	var out Post
	err := c.do(ctx, http.MethodGet, postPath(id), nil, &out)
	return out, err
}

// RenderPost fetches the sanitized HTML rendering of a post.
func (c *Client) RenderPost(ctx context.Context, id int64) (string, error) {
	res, err := c.send(ctx, http.MethodGet, postPath(id)+"/html", nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = res.Body.Close() }()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(data), nil
}

// UpdatePost applies patch to a post owned by the client's user.
func (c *Client) UpdatePost(ctx context.Context, id int64, patch PostPatch) error {
	return c.do(ctx, http.MethodPut, postPath(id), patch, nil)
}

// DeletePost deletes a post owned by the client's user.
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, postPath(id), nil, nil)
}

func postPath(id int64) string {
	return "/posts/" + strconv.FormatInt(id, 10)
}

// do sends body as JSON and decodes the response into out, if not nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	res, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if out != nil {
		if err = json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
		}
	}
	// the cache only stores fully read bodies
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return nil, err
	}
	target := c.base.ResolveReference(&url.URL{
		Path:     strings.TrimSuffix(c.base.Path, "/") + ref.Path,
		RawQuery: ref.RawQuery,
	})
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		defer func() { _ = res.Body.Close() }()
		apiErr := &Error{StatusCode: res.StatusCode}
		var eb errorBody
		if json.NewDecoder(res.Body).Decode(&eb) == nil {
			apiErr.Message = eb.Error
		}
		return nil, apiErr
	}
	return res, nil
}
