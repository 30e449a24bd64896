package graph

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/creasty/defaults"
	gojson "github.com/goccy/go-json"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// client implements the Client interface over HTTPS with OAuth2
// client-credentials authentication.
type client struct {
	config *Config
	http   *retryablehttp.Client
	tokens oauth2.TokenSource
	logger Logger
}

// NewClient creates a new Graph client. Configuration defaults are applied
// before validation, so only tenant and application credentials are required.
func NewClient(config *Config, base hclog.Logger) (Client, error) {
	if config == nil {
		config = &Config{}
	}
	if err := defaults.Set(config); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}

	if config.TenantID == "" {
		return nil, NewValidationError("configure", "tenant ID is required")
	}
	if config.ClientID == "" {
		return nil, NewValidationError("configure", "client ID is required")
	}
	if config.ClientSecret == "" {
		return nil, NewValidationError("configure", "client secret is required")
	}

	logger := NewHCLogger(base, "graph")

	rc := retryablehttp.NewClient()
	rc.RetryMax = config.Retries
	rc.HTTPClient.Timeout = config.Timeout
	rc.Logger = nil
	if base != nil {
		rc.Logger = base.Named("http")
	}

	creds := &clientcredentials.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		TokenURL:     config.TokenEndpoint(),
		Scopes:       []string{config.Scope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	// Token requests ride the same retrying HTTP client as API calls. The
	// token source is shared across requests so tokens are cached, which
	// binds token acquisition to this background context: a caller's ctx
	// does not cancel an in-flight token fetch, only the HTTP client
	// timeout bounds it.
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, rc.StandardClient())

	logger.Debug("Creating new Graph client", map[string]any{
		"tenant_id": config.TenantID,
		"client_id": config.ClientID,
		"base_url":  config.BaseURL,
		"page_size": config.PageSize,
	})

	return &client{
		config: config,
		http:   rc,
		tokens: creds.TokenSource(tokenCtx),
		logger: logger,
	}, nil
}

// Connect acquires an initial access token. A failure here means the
// credentials or tenant are wrong, so it is surfaced as an authentication
// error rather than a generic connection failure. Token acquisition is not
// cancellable through ctx; it is bounded by the HTTP client timeout.
func (c *client) Connect(ctx context.Context) error {
	return LogOperation(c.logger, "connect", map[string]any{
		"tenant_id": c.config.TenantID,
	}, func() error {
		if _, err := c.tokens.Token(); err != nil {
			return &Error{
				Operation: "connect",
				Category:  ErrorCategoryAuthentication,
				Message:   "failed to acquire access token",
				Cause:     err,
			}
		}
		return nil
	})
}

// Ping verifies connectivity with a minimal authenticated read.
func (c *client) Ping(ctx context.Context) error {
	query := url.Values{}
	query.Set("$select", "id")
	query.Set("$top", "1")

	var p page[struct {
		ID string `json:"id"`
	}]
	if err := c.Get(ctx, "/organization", query, &p); err != nil {
		return WrapError("ping", err)
	}
	return nil
}

// Close releases idle connections held by the transport.
func (c *client) Close() error {
	c.http.HTTPClient.CloseIdleConnections()
	return nil
}

// PageSize returns the configured collection page size.
func (c *client) PageSize() int {
	return c.config.PageSize
}

func (c *client) Get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.ResourceURL(path)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, u, nil, out)
}

func (c *client) GetURL(ctx context.Context, rawURL string, out any) error {
	return c.do(ctx, http.MethodGet, rawURL, nil, out)
}

func (c *client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, c.ResourceURL(path), body, out)
}

func (c *client) Patch(ctx context.Context, path string, body any) error {
	return c.do(ctx, http.MethodPatch, c.ResourceURL(path), body, nil)
}

func (c *client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, c.ResourceURL(path), nil, nil)
}

func (c *client) ResourceURL(path string) string {
	return strings.TrimSuffix(c.config.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

func (c *client) do(ctx context.Context, method, rawURL string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = gojson.Marshal(body)
		if err != nil {
			return NewValidationError(method, fmt.Sprintf("failed to encode request body: %v", err))
		}
	}

	tok, err := c.tokens.Token()
	if err != nil {
		return &Error{
			Operation: method,
			Category:  ErrorCategoryAuthentication,
			Message:   "failed to acquire access token",
			Cause:     err,
		}
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return NewValidationError(method, fmt.Sprintf("failed to build request: %v", err))
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.config.DebugHTTPPayloads {
		c.logger.Trace("Graph request", map[string]any{
			"method": method,
			"url":    rawURL,
			"body":   string(payload),
		})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{
			Operation: method,
			Category:  ErrorCategoryConnection,
			Message:   "request failed",
			Retryable: true,
			Cause:     err,
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{
			Operation: method,
			Category:  ErrorCategoryConnection,
			Message:   "failed to read response body",
			Retryable: true,
			Cause:     err,
		}
	}

	if c.config.DebugHTTPPayloads {
		c.logger.Trace("Graph response", map[string]any{
			"method": method,
			"url":    rawURL,
			"status": resp.StatusCode,
			"body":   string(data),
		})
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var oe odataError
		_ = gojson.Unmarshal(data, &oe) // best effort; envelope may be absent
		return statusError("", resp.StatusCode, &oe)
	}

	if out != nil && len(data) > 0 {
		if err := gojson.Unmarshal(data, out); err != nil {
			return &Error{
				Operation: method,
				Category:  ErrorCategoryServer,
				Message:   "failed to decode response body",
				Cause:     err,
			}
		}
	}

	return nil
}
