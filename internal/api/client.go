// Copyright 2025 Skillbridge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package api is the client for the skills API. It performs one
// authenticated, deadline-bounded HTTP request per operation and normalizes
// transport and application failures into the typed errors in pkg/errors.
//
// The client is stateless and safe for concurrent use; it never retries,
// caches, or coordinates between calls.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/skillbridge/skillbridge/pkg/errors"
)

// DefaultBaseURL is the skills API endpoint used when none is configured.
const DefaultBaseURL = "http://localhost:3001/api/v1"

// DefaultTimeout bounds each outbound request when none is configured.
const DefaultTimeout = 30 * time.Second

const userAgent = "skillbridge/1.0"

// Config configures the skills API client.
type Config struct {
	// APIKey authenticates every request. Required.
	APIKey string

	// BaseURL is the skills API endpoint, including the version prefix.
	// Default: http://localhost:3001/api/v1.
	BaseURL string

	// Timeout is the per-request deadline. Default: 30s. Must be > 0.
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults. APIKey must still
// be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api key is required and must be non-empty")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base url is required and must be non-empty")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("base url %q is not a valid absolute URL", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %v", c.Timeout)
	}
	return nil
}

// Client is a client for the skills API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	timeout    time.Duration
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. Useful for tests that need a
// substitute transport.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets the logger used for per-request log lines.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a new skills API client with the given configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}

	c := &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}

	return c, nil
}

// do performs one outbound request and returns the parsed response envelope.
// The envelope is returned as-is for 2xx responses, including success:false
// application-level failures, so callers can branch on Success.
//
// Failures are normalized: deadline expiry becomes *errors.TimeoutError,
// other transport failures become *errors.NetworkError, and non-2xx statuses
// become *errors.APIError with the remote-supplied message when present.
func (c *Client) do(ctx context.Context, method, path string, body any) (*Envelope, error) {
	op := method + " " + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start).Milliseconds()
	if err != nil {
		if isTimeout(err) {
			c.logger.Warn("request timed out", "method", method, "path", path, "timeout", c.timeout)
			return nil, &errors.TimeoutError{Operation: op, Duration: c.timeout, Cause: err}
		}
		c.logger.Warn("request failed", "method", method, "path", path, "error", err)
		return nil, &errors.NetworkError{Operation: op, Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, &errors.TimeoutError{Operation: op, Duration: c.timeout, Cause: err}
		}
		return nil, &errors.NetworkError{Operation: op, Cause: err}
	}

	level := slog.LevelDebug
	if resp.StatusCode >= 400 {
		level = slog.LevelWarn
	}
	c.logger.Log(ctx, level, "request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", duration,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env Envelope
		_ = json.Unmarshal(data, &env)
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		return nil, &errors.APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &errors.APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("invalid response body: %v", err),
		}
	}

	return &env, nil
}

// call is do plus the success:false branch: application-level failures are
// converted into *errors.APIError carrying the remote message so that typed
// methods have a single error path.
func (c *Client) call(ctx context.Context, method, path string, body any) (*Envelope, error) {
	env, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = "request failed"
		}
		return nil, &errors.APIError{Message: msg}
	}
	return env, nil
}

// isTimeout reports whether err stems from the per-request deadline.
func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

func decode(env *Envelope, out any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("response envelope has no data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

// ListSkills returns skills matching the given filters plus pagination
// metadata.
func (c *Client) ListSkills(ctx context.Context, opts SkillListOptions) ([]Skill, *Meta, error) {
	env, err := c.call(ctx, http.MethodGet, "/skills?"+opts.query().Encode(), nil)
	if err != nil {
		return nil, nil, err
	}
	var skills []Skill
	if err := decode(env, &skills); err != nil {
		return nil, nil, err
	}
	return skills, env.Meta, nil
}

// GetSkill returns one skill by id.
func (c *Client) GetSkill(ctx context.Context, id string) (*Skill, error) {
	env, err := c.call(ctx, http.MethodGet, "/skills/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var skill Skill
	if err := decode(env, &skill); err != nil {
		return nil, err
	}
	return &skill, nil
}

// CreateSkill creates a new skill.
func (c *Client) CreateSkill(ctx context.Context, req CreateSkillRequest) (*Skill, error) {
	env, err := c.call(ctx, http.MethodPost, "/skills", req)
	if err != nil {
		return nil, err
	}
	var skill Skill
	if err := decode(env, &skill); err != nil {
		return nil, err
	}
	return &skill, nil
}

// UpdateSkill replaces a skill in full.
func (c *Client) UpdateSkill(ctx context.Context, id string, req UpdateSkillRequest) (*Skill, error) {
	env, err := c.call(ctx, http.MethodPut, "/skills/"+url.PathEscape(id), req)
	if err != nil {
		return nil, err
	}
	var skill Skill
	if err := decode(env, &skill); err != nil {
		return nil, err
	}
	return &skill, nil
}

// PatchSkill applies a partial update. The patch map holds exactly the
// fields to change; omitted fields are left untouched server-side.
func (c *Client) PatchSkill(ctx context.Context, id string, patch map[string]any) (*Skill, error) {
	env, err := c.call(ctx, http.MethodPatch, "/skills/"+url.PathEscape(id), patch)
	if err != nil {
		return nil, err
	}
	var skill Skill
	if err := decode(env, &skill); err != nil {
		return nil, err
	}
	return &skill, nil
}

// DeleteSkill deletes a skill. When force is true the remote service removes
// it even with dependent state; force is appended as a query parameter only
// when set.
func (c *Client) DeleteSkill(ctx context.Context, id string, force bool) (*Skill, error) {
	path := "/skills/" + url.PathEscape(id)
	if force {
		path += "?force=true"
	}
	env, err := c.call(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return nil, err
	}
	skill := Skill{ID: id}
	if len(env.Data) > 0 {
		if err := decode(env, &skill); err != nil {
			return nil, err
		}
	}
	return &skill, nil
}

// ListConnections returns connections matching the given filters plus
// pagination metadata.
func (c *Client) ListConnections(ctx context.Context, opts ConnectionListOptions) ([]Connection, *Meta, error) {
	env, err := c.call(ctx, http.MethodGet, "/connections?"+opts.query().Encode(), nil)
	if err != nil {
		return nil, nil, err
	}
	var conns []Connection
	if err := decode(env, &conns); err != nil {
		return nil, nil, err
	}
	return conns, env.Meta, nil
}

// GetConnection returns one connection by id.
func (c *Client) GetConnection(ctx context.Context, id string) (*Connection, error) {
	env, err := c.call(ctx, http.MethodGet, "/connections/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var conn Connection
	if err := decode(env, &conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

// CreateConnection creates a new connection.
func (c *Client) CreateConnection(ctx context.Context, req CreateConnectionRequest) (*Connection, error) {
	env, err := c.call(ctx, http.MethodPost, "/connections", req)
	if err != nil {
		return nil, err
	}
	var conn Connection
	if err := decode(env, &conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

// UpdateConnection replaces a connection in full.
func (c *Client) UpdateConnection(ctx context.Context, id string, req UpdateConnectionRequest) (*Connection, error) {
	env, err := c.call(ctx, http.MethodPut, "/connections/"+url.PathEscape(id), req)
	if err != nil {
		return nil, err
	}
	var conn Connection
	if err := decode(env, &conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

// PatchConnection applies a partial update containing exactly the supplied
// fields.
func (c *Client) PatchConnection(ctx context.Context, id string, patch map[string]any) (*Connection, error) {
	env, err := c.call(ctx, http.MethodPatch, "/connections/"+url.PathEscape(id), patch)
	if err != nil {
		return nil, err
	}
	var conn Connection
	if err := decode(env, &conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

// DeleteConnection deletes a connection.
func (c *Client) DeleteConnection(ctx context.Context, id string) (*Connection, error) {
	env, err := c.call(ctx, http.MethodDelete, "/connections/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	conn := Connection{ID: id}
	if len(env.Data) > 0 {
		if err := decode(env, &conn); err != nil {
			return nil, err
		}
	}
	return &conn, nil
}

// ListExecutions returns execution records matching the given filters plus
// pagination metadata.
func (c *Client) ListExecutions(ctx context.Context, opts ExecutionListOptions) ([]Execution, *Meta, error) {
	env, err := c.call(ctx, http.MethodGet, "/executions?"+opts.query().Encode(), nil)
	if err != nil {
		return nil, nil, err
	}
	var execs []Execution
	if err := decode(env, &execs); err != nil {
		return nil, nil, err
	}
	return execs, env.Meta, nil
}

// GetExecution returns one execution record by id.
func (c *Client) GetExecution(ctx context.Context, id string) (*Execution, error) {
	env, err := c.call(ctx, http.MethodGet, "/executions/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var exec Execution
	if err := decode(env, &exec); err != nil {
		return nil, err
	}
	return &exec, nil
}

// GetExecutionTrace returns the raw trace payload of one execution. The
// trace structure is owned by the remote service and passed through verbatim.
func (c *Client) GetExecutionTrace(ctx context.Context, id string) (json.RawMessage, error) {
	env, err := c.call(ctx, http.MethodGet, "/executions/"+url.PathEscape(id)+"/trace", nil)
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 {
		return nil, fmt.Errorf("response envelope has no data")
	}
	return env.Data, nil
}

// GetExecutionStats returns the aggregate execution overview.
func (c *Client) GetExecutionStats(ctx context.Context, opts ExecutionStatsOptions) (*ExecutionStats, error) {
	path := "/executions/stats"
	if q := opts.query().Encode(); q != "" {
		path += "?" + q
	}
	env, err := c.call(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var stats ExecutionStats
	if err := decode(env, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// DeleteExecution deletes one execution record.
func (c *Client) DeleteExecution(ctx context.Context, id string) (*Execution, error) {
	env, err := c.call(ctx, http.MethodDelete, "/executions/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	exec := Execution{ID: id}
	if len(env.Data) > 0 {
		if err := decode(env, &exec); err != nil {
			return nil, err
		}
	}
	return &exec, nil
}

// CreateAPIKey creates a new API key. The response is the only place the
// full secret value ever appears.
func (c *Client) CreateAPIKey(ctx context.Context, req CreateAPIKeyRequest) (*CreateAPIKeyResponse, error) {
	env, err := c.call(ctx, http.MethodPost, "/auth/keys", req)
	if err != nil {
		return nil, err
	}
	var key CreateAPIKeyResponse
	if err := decode(env, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

// ListAPIKeys returns all API keys with prefix and metadata only.
func (c *Client) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	env, err := c.call(ctx, http.MethodGet, "/auth/keys", nil)
	if err != nil {
		return nil, err
	}
	var keys []APIKey
	if err := decode(env, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// DeleteAPIKey revokes an API key.
func (c *Client) DeleteAPIKey(ctx context.Context, id string) (*APIKey, error) {
	env, err := c.call(ctx, http.MethodDelete, "/auth/keys/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	key := APIKey{ID: id}
	if len(env.Data) > 0 {
		if err := decode(env, &key); err != nil {
			return nil, err
		}
	}
	return &key, nil
}
