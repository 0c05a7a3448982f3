// Package api is the network collaborator for the stores: a typed JSON
// client over the dashboard server's REST surface. It attaches the bearer
// credential from the injected token slot and escalates 401 responses to
// a forced session teardown. It never retries.
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
	"time"

	"go.uber.org/zap"

	"evodash/internal/token"
)

// ErrUnauthorized is returned when the server rejects the credential.
// The slot has already been cleared by the time callers see it.
var ErrUnauthorized = errors.New("api: unauthorized")

// Error is a non-2xx response decoded from the server's error envelope.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: unexpected status %d", e.Status)
}

// Message extracts the server's human-readable message from err, falling
// back to the given default. Mirrors how the stores surface request
// failures to the user.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Client talks to the dashboard server. Safe for concurrent use.
type Client struct {
	base           string
	http           *http.Client
	slot           *token.Slot
	log            *zap.Logger
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger sets the request logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithHTTPClient substitutes the underlying http client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New builds a client for baseURL. The slot is the process credential
// source; the client reads it on every request and clears it on 401.
func New(baseURL string, slot *token.Slot, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
		slot: slot,
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetUnauthorizedHandler installs the forced-logout hook. Called once at
// wiring time; the handler must be safe to invoke from request goroutines.
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.onUnauthorized = fn
}

// credentialExchange reports whether path is one of the endpoints that
// trade credentials for a token. A 401 from those is an ordinary rejection
// ("Invalid credentials"), not a revocation of the stored token, so it
// must not trigger the forced-logout path.
func credentialExchange(path string) bool {
	return path == "/api/auth/login" || path == "/api/auth/register"
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.slot.Get(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && !credentialExchange(path) {
		c.log.Info("credential rejected, forcing logout", zap.String("path", path))
		_ = c.slot.Clear()
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		c.log.Warn("request rejected",
			zap.String("method", method), zap.String("path", path),
			zap.Int("status", resp.StatusCode), zap.String("message", envelope.Message))
		return &Error{Status: resp.StatusCode, Message: envelope.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var out AuthResponse
	in := map[string]string{"email": email, "password": password}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, in, &out)
	return out, err
}

// Register creates an account and logs it in.
func (c *Client) Register(ctx context.Context, email, password, name string) (AuthResponse, error) {
	var out AuthResponse
	in := map[string]string{"email": email, "password": password, "name": name}
	err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, in, &out)
	return out, err
}

// Verify checks the stored credential; the response carries the user it
// belongs to and may rotate the token.
func (c *Client) Verify(ctx context.Context) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodGet, "/api/auth/verify", nil, nil, &out)
	return out, err
}

// Logout tells the server to revoke the session. Best effort; the local
// teardown has already happened by the time this is called.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
}

// ---------------------------------------------------------------------------
// Evolution runs
// ---------------------------------------------------------------------------

// Runs lists every run the server knows about.
func (c *Client) Runs(ctx context.Context) ([]EvolutionRun, error) {
	var out []EvolutionRun
	err := c.do(ctx, http.MethodGet, "/api/evolution/runs", nil, nil, &out)
	return out, err
}

// Run fetches a single run by id.
func (c *Client) Run(ctx context.Context, id string) (EvolutionRun, error) {
	var out EvolutionRun
	err := c.do(ctx, http.MethodGet, "/api/evolution/runs/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// StartRun submits a new run with the given configuration.
func (c *Client) StartRun(ctx context.Context, config map[string]any) (EvolutionRun, error) {
	var out EvolutionRun
	err := c.do(ctx, http.MethodPost, "/api/evolution/runs", nil, config, &out)
	return out, err
}

// StopRun asks the server to stop a run and returns its resulting state.
func (c *Client) StopRun(ctx context.Context, id string) (EvolutionRun, error) {
	var out EvolutionRun
	err := c.do(ctx, http.MethodPost, "/api/evolution/runs/"+url.PathEscape(id)+"/stop", nil, nil, &out)
	return out, err
}

// PauseRun asks the server to pause a run.
func (c *Client) PauseRun(ctx context.Context, id string) (EvolutionRun, error) {
	var out EvolutionRun
	err := c.do(ctx, http.MethodPost, "/api/evolution/runs/"+url.PathEscape(id)+"/pause", nil, nil, &out)
	return out, err
}

// ResumeRun asks the server to resume a paused run.
func (c *Client) ResumeRun(ctx context.Context, id string) (EvolutionRun, error) {
	var out EvolutionRun
	err := c.do(ctx, http.MethodPost, "/api/evolution/runs/"+url.PathEscape(id)+"/resume", nil, nil, &out)
	return out, err
}

// ---------------------------------------------------------------------------
// Programs
// ---------------------------------------------------------------------------

// Programs lists the programs produced by one run.
func (c *Client) Programs(ctx context.Context, runID string) ([]Program, error) {
	q := url.Values{"runId": []string{runID}}
	var out []Program
	err := c.do(ctx, http.MethodGet, "/api/programs", q, nil, &out)
	return out, err
}

// ProgramDetails fetches the full record for one program, including code.
func (c *Client) ProgramDetails(ctx context.Context, id string) (Program, error) {
	var out Program
	err := c.do(ctx, http.MethodGet, "/api/programs/"+url.PathEscape(id)+"/details", nil, nil, &out)
	return out, err
}

// ---------------------------------------------------------------------------
// Config presets
// ---------------------------------------------------------------------------

// Configs lists saved run-config presets.
func (c *Client) Configs(ctx context.Context) ([]ConfigPreset, error) {
	var out []ConfigPreset
	err := c.do(ctx, http.MethodGet, "/api/config", nil, nil, &out)
	return out, err
}

// CreateConfig saves a new preset.
func (c *Client) CreateConfig(ctx context.Context, preset ConfigPreset) (ConfigPreset, error) {
	var out ConfigPreset
	err := c.do(ctx, http.MethodPost, "/api/config", nil, preset, &out)
	return out, err
}

// UpdateConfig overwrites an existing preset.
func (c *Client) UpdateConfig(ctx context.Context, id string, preset ConfigPreset) (ConfigPreset, error) {
	var out ConfigPreset
	err := c.do(ctx, http.MethodPut, "/api/config/"+url.PathEscape(id), nil, preset, &out)
	return out, err
}

// DeleteConfig removes a preset.
func (c *Client) DeleteConfig(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/config/"+url.PathEscape(id), nil, nil, nil)
}
