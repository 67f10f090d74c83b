// Package api is the client for the remote ad-generation service. Every
// authenticated call goes through a single gateway that attaches the current
// session token at dispatch time and maps authorization failures, transport
// failures, and error envelopes onto a small error taxonomy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joeycumines/adscribe/internal/session"
)

// AuthTokenHeader carries the session token on every authenticated request.
const AuthTokenHeader = "X-Auth-Token"

// Client talks to the remote generation service.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	store         session.Store
	requiresAuth  bool
	onAuthExpired func()
	logger        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithoutAuth degrades the gateway to a pass-through: no token is attached
// and authorization failures are not intercepted.
func WithoutAuth() Option {
	return func(c *Client) { c.requiresAuth = false }
}

// WithAuthExpiredHandler registers the callback invoked exactly once per
// call whose token the server rejects, after the session has been cleared.
func WithAuthExpiredHandler(fn func()) Option {
	return func(c *Client) { c.onAuthExpired = fn }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the service at baseURL, reading and clearing
// session tokens via store.
func New(baseURL string, store session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 120 * time.Second},
		store:        store,
		requiresAuth: true,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequiresAuth reports whether the gateway attaches tokens and intercepts
// authorization failures.
func (c *Client) RequiresAuth() bool {
	return c.requiresAuth
}

// do dispatches one request. When authenticated, the token is read from the
// store here, at dispatch time, never earlier, so a rotation or clearing
// between dispatches is observed by the next call.
func (c *Client) do(ctx context.Context, path, contentType string, body io.Reader, authenticated bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Request-ID", uuid.NewString())

	if authenticated && c.requiresAuth {
		// Attached unconditionally, even when absent: the server decides.
		token, _ := c.store.Token()
		req.Header.Set(AuthTokenHeader, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("transport failure", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	if authenticated && c.requiresAuth && resp.StatusCode == http.StatusUnauthorized {
		// Handled here and nowhere else: clear the session, notify the UI,
		// and never inspect the body.
		resp.Body.Close()
		if err := c.store.Clear(); err != nil {
			c.logger.Warn("failed to clear rejected session", "error", err)
		}
		if c.onAuthExpired != nil {
			c.onAuthExpired()
		}
		return nil, ErrUnauthorized
	}

	return resp, nil
}

// decodeEnvelope reads a {status, ...} response body. A status:"error"
// envelope becomes an *APIError; anything else is decoded into out.
func decodeEnvelope(resp *http.Response, out any) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrNetwork, err)
	}

	var env struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decoding response envelope: %w", err)
	}
	if env.Status != "success" {
		msg := env.Error
		if msg == "" {
			msg = "Unknown"
		}
		return &APIError{Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response payload: %w", err)
		}
	}
	return nil
}

// Login authenticates and stores the returned token. It bypasses the
// gateway: no token exists yet, so nothing is attached and a 401 here is
// just a failed login. Username and password must be non-empty after
// trimming; callers reject empty input before calling.
func (c *Client) Login(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return errors.New("username and password are required")
	}

	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("encoding login request: %w", err)
	}

	resp, err := c.do(ctx, "/login", "application/json", bytes.NewReader(body), false)
	if err != nil {
		return err
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := decodeEnvelope(resp, &payload); err != nil {
		return err
	}

	if err := c.store.Set(payload.Token); err != nil {
		return fmt.Errorf("storing session token: %w", err)
	}
	c.logger.Debug("login succeeded")
	return nil
}

// AnalyzeImage uploads image bytes as a multipart "file" field and returns
// the inferred business name and description.
func (c *Client) AnalyzeImage(ctx context.Context, filename string, r io.Reader) (*AnalysisResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("creating multipart field: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing multipart body: %w", err)
	}

	resp, err := c.do(ctx, "/analyze-image", writer.FormDataContentType(), &buf, true)
	if err != nil {
		return nil, err
	}

	var payload struct {
		BusinessType string `json:"business_type"`
		Description  string `json:"description"`
	}
	if err := decodeEnvelope(resp, &payload); err != nil {
		return nil, err
	}
	return &AnalysisResult{
		BusinessType: payload.BusinessType,
		Description:  payload.Description,
	}, nil
}

// GenerateSlogan requests a slogan for the validated request.
func (c *Client) GenerateSlogan(ctx context.Context, req GenerationRequest) (*SloganResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Format = "" // slogan requests never carry a format

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding slogan request: %w", err)
	}

	resp, err := c.do(ctx, "/generate-slogan", "application/json", bytes.NewReader(body), true)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Slogan string `json:"slogan"`
	}
	if err := decodeEnvelope(resp, &payload); err != nil {
		return nil, err
	}
	return &SloganResult{Slogan: payload.Slogan}, nil
}

// GeneratePoster requests a poster image plus slogan for the validated
// request.
func (c *Client) GeneratePoster(ctx context.Context, req GenerationRequest) (*PosterResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding poster request: %w", err)
	}

	resp, err := c.do(ctx, "/generate-poster", "application/json", bytes.NewReader(body), true)
	if err != nil {
		return nil, err
	}

	var payload struct {
		ImageURL string `json:"image_url"`
		Slogan   string `json:"slogan"`
	}
	if err := decodeEnvelope(resp, &payload); err != nil {
		return nil, err
	}
	return &PosterResult{ImageURL: payload.ImageURL, Slogan: payload.Slogan}, nil
}
