// Package apiclient talks JSON to the SafeCity REST API mounted at /api/v1.
package apiclient

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

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 4 << 20

// Client is safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	log       zerolog.Logger
	requestID func() string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every call. Zero disables the timeout. A client passed
// through WithHTTPClient is copied, not modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New builds a client for baseURL, e.g. "http://localhost:8080/api/v1".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("apiclient: invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("apiclient: base url %q must be http or https", baseURL)
	}
	c := &Client{
		baseURL:   strings.TrimRight(u.String(), "/"),
		http:      &http.Client{Timeout: 30 * time.Second},
		log:       zerolog.Nop(),
		requestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	var out document[wireToken]
	if err := c.do(ctx, http.MethodPost, "/login", "", body, &out); err != nil {
		return "", err
	}
	token := out.Data.Attributes.AccessToken
	if token == "" {
		return "", &Error{Kind: KindDecode, Status: http.StatusOK, Err: fmt.Errorf("response carries no access_token")}
	}
	return token, nil
}

// Logout revokes token on the server.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

// Me resolves the identity behind token.
func (c *Client) Me(ctx context.Context, token string) (*Identity, error) {
	var out document[wireUser]
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &out); err != nil {
		return nil, err
	}
	id := out.Data.identity()
	return &id, nil
}

// ListCategories returns the categories in server order.
func (c *Client) ListCategories(ctx context.Context, token string) ([]Category, error) {
	var out document[[]wireCategory]
	if err := c.do(ctx, http.MethodGet, "/incidentCategories", token, nil, &out); err != nil {
		return nil, err
	}
	items := make([]Category, len(out.Data))
	for i, w := range out.Data {
		items[i] = w.category()
	}
	return items, nil
}

func (c *Client) CreateCategory(ctx context.Context, token, name string) error {
	return c.do(ctx, http.MethodPost, "/incidentCategories", token, map[string]string{"name": name}, nil)
}

func (c *Client) UpdateCategory(ctx context.Context, token string, id int64, name string) error {
	return c.do(ctx, http.MethodPut, "/incidentCategories/"+itoa(id), token, map[string]string{"name": name}, nil)
}

func (c *Client) DeleteCategory(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, "/incidentCategories/"+itoa(id), token, nil, nil)
}

// ListIncidents returns every incident. The server restricts it to admins.
func (c *Client) ListIncidents(ctx context.Context, token string) ([]Incident, error) {
	return c.listIncidents(ctx, "/incidents", token)
}

// ListUserIncidents returns the incidents reported by userID.
func (c *Client) ListUserIncidents(ctx context.Context, token string, userID int64) ([]Incident, error) {
	return c.listIncidents(ctx, "/users/"+itoa(userID)+"/incidents", token)
}

func (c *Client) listIncidents(ctx context.Context, path, token string) ([]Incident, error) {
	var out document[[]wireIncident]
	if err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	items := make([]Incident, len(out.Data))
	for i, w := range out.Data {
		items[i] = w.incident()
	}
	return items, nil
}

func (c *Client) GetIncident(ctx context.Context, token string, id int64) (*Incident, error) {
	var out document[wireIncident]
	if err := c.do(ctx, http.MethodGet, "/incidents/"+itoa(id), token, nil, &out); err != nil {
		return nil, err
	}
	inc := out.Data.incident()
	return &inc, nil
}

func (c *Client) CreateIncident(ctx context.Context, token string, p IncidentPayload) error {
	return c.do(ctx, http.MethodPost, "/incidents", token, p, nil)
}

func (c *Client) UpdateIncident(ctx context.Context, token string, id int64, p IncidentPayload) error {
	return c.do(ctx, http.MethodPut, "/incidents/"+itoa(id), token, p, nil)
}

func (c *Client) DeleteIncident(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, "/incidents/"+itoa(id), token, nil, nil)
}

// do performs one request. A nil out discards any 2xx body.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("apiclient: encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("apiclient: build request: %w", err)
	}
	reqID := c.requestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("request_id", reqID).Str("method", method).Str("path", path).Msg("request failed")
		return &Error{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.log.Debug().
		Str("request_id", reqID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request completed")
	if err != nil {
		return &Error{Kind: KindTransport, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &Error{Kind: KindDecode, Status: resp.StatusCode, Err: io.ErrUnexpectedEOF}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: KindDecode, Status: resp.StatusCode, Err: err}
	}
	return nil
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
