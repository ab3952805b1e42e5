// Package api is the single point of contact with the catalogue backend.
//
// Endpoints are split by capability: public operations never attach the
// bearer token and can never invalidate a session; protected operations
// attach the token and map an authorization-denied response to
// ErrSessionExpired for the caller to handle.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/billionaireobi/adaladesigns/internal/models"
)

type Client struct {
	baseURL  string
	assetURL string
	http     *http.Client
}

// NewClient builds a client for the backend's JSON endpoints at baseURL and
// its static image host at assetURL. The two origins may be the same.
func NewClient(baseURL, assetURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		assetURL: strings.TrimRight(assetURL, "/"),
		http:     &http.Client{Timeout: timeout},
	}
}

// ImageURL resolves a server-relative image path stored on a design against
// the configured asset origin. Empty paths stay empty so templates can
// render a placeholder.
func (c *Client) ImageURL(path string) string {
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.assetURL + path
}

// Login exchanges credentials for a bearer token. Invalid credentials
// surface as *AuthError with the backend's message passed through.
func (c *Client) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return nil, fmt.Errorf("encode login request: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, "/auth/login", "", nil, bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var auth models.AuthResponse
		if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
			return nil, fmt.Errorf("decode login response: %w", err)
		}
		return &auth, nil
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
		return nil, &AuthError{Message: responseMessage(resp)}
	default:
		return nil, &StatusError{Code: resp.StatusCode, Message: responseMessage(resp)}
	}
}

// Register creates a new admin account.
func (c *Client) Register(ctx context.Context, username, password string) error {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return fmt.Errorf("encode register request: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, "/auth/register", "", nil, bytes.NewReader(body), "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp, false)
}

// ListDesigns returns the catalogue, optionally narrowed to an exact-match
// category. Ordering is whatever the backend returns.
func (c *Client) ListDesigns(ctx context.Context, category string) ([]models.Design, error) {
	var query url.Values
	if category != "" {
		query = url.Values{"category": {category}}
	}
	resp, err := c.do(ctx, http.MethodGet, "/designs", "", query, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, false); err != nil {
		return nil, err
	}
	var designs []models.Design
	if err := json.NewDecoder(resp.Body).Decode(&designs); err != nil {
		return nil, fmt.Errorf("decode designs: %w", err)
	}
	return designs, nil
}

func (c *Client) GetDesign(ctx context.Context, id int) (*models.Design, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/designs/%d", id), "", nil, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, false); err != nil {
		return nil, err
	}
	var design models.Design
	if err := json.NewDecoder(resp.Body).Decode(&design); err != nil {
		return nil, fmt.Errorf("decode design: %w", err)
	}
	return &design, nil
}

// ListCategories returns the distinct category facets in use.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/designs/categories", "", nil, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, false); err != nil {
		return nil, err
	}
	var categories []string
	if err := json.NewDecoder(resp.Body).Decode(&categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return categories, nil
}

// CreateDesign submits a new design as multipart form data.
func (c *Client) CreateDesign(ctx context.Context, token string, payload DesignPayload) (*models.Design, error) {
	body, contentType, err := payload.encodeMultipart()
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPost, "/designs", token, nil, body, contentType)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, true); err != nil {
		return nil, err
	}
	var design models.Design
	if err := json.NewDecoder(resp.Body).Decode(&design); err != nil {
		return nil, fmt.Errorf("decode created design: %w", err)
	}
	return &design, nil
}

// UpdateDesign resends the full known state for a design. See DesignPayload
// for the image directive semantics.
func (c *Client) UpdateDesign(ctx context.Context, token string, id int, payload DesignPayload) error {
	body, contentType, err := payload.encodeMultipart()
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/designs/%d", id), token, nil, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp, true)
}

// DeleteDesign removes a design. Deleting an id that no longer exists
// surfaces ErrNotFound; callers on the dashboard treat that as already
// deleted.
func (c *Client) DeleteDesign(ctx context.Context, token string, id int) error {
	resp, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/designs/%d", id), token, nil, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp, true)
}

func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, body io.Reader, contentType string) (*http.Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	return resp, nil
}

// checkStatus maps a non-2xx response to the error taxonomy. Only protected
// calls translate 401 into a session-expired signal; a stray 401 on a public
// endpoint must not bounce a logged-out visitor to the login page.
func checkStatus(resp *http.Response, protected bool) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if protected {
			return ErrSessionExpired
		}
		return &StatusError{Code: resp.StatusCode, Message: responseMessage(resp)}
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusRequestEntityTooLarge:
		return ErrPayloadTooLarge
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return &ValidationError{Message: responseMessage(resp)}
	default:
		return &StatusError{Code: resp.StatusCode, Message: responseMessage(resp)}
	}
}

// responseMessage pulls the backend's {"error": "..."} text out of an error
// response body.
func responseMessage(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return ""
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return ""
}
