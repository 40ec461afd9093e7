package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"postviewer/app/models"
)

// maxResponseBytes bounds how much of a response body is decoded.
const maxResponseBytes = 4 << 20

// StatusError reports a response outside the 200-299 range.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status code %d not in 200-299 range", e.Method, e.URL, e.StatusCode)
}

// RemoteClient implements Source against a JSONPlaceholder-compatible REST API
type RemoteClient struct {
	baseURL string
	client  *http.Client
}

// NewRemoteClient creates a client for the API rooted at baseURL. A zero
// timeout leaves requests unbounded apart from the caller's context.
func NewRemoteClient(baseURL string, timeout time.Duration) *RemoteClient {
	return NewRemoteClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

// NewRemoteClientWithHTTP creates a client that issues requests through hc.
func NewRemoteClientWithHTTP(baseURL string, hc *http.Client) *RemoteClient {
	return &RemoteClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  hc,
	}
}

// ListUsers fetches /users
func (c *RemoteClient) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.getJSON(ctx, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches /users/{id}
func (c *RemoteClient) GetUser(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	if err := c.getJSON(ctx, "/users/"+strconv.Itoa(id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListPostsByUser fetches /posts?userId={id}
func (c *RemoteClient) ListPostsByUser(ctx context.Context, userID int) ([]models.Post, error) {
	var posts []models.Post
	query := url.Values{"userId": {strconv.Itoa(userID)}}
	if err := c.getJSON(ctx, "/posts", query, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListCommentsByPost fetches /comments?postId={id}
func (c *RemoteClient) ListCommentsByPost(ctx context.Context, postID int) ([]models.Comment, error) {
	var comments []models.Comment
	query := url.Values{"postId": {strconv.Itoa(postID)}}
	if err := c.getJSON(ctx, "/comments", query, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *RemoteClient) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return &StatusError{Method: http.MethodGet, URL: target, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", target, err)
	}
	return nil
}
