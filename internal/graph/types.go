package graph

import (
	"context"
	"net/url"
	"time"
)

// Config holds configuration for Microsoft Graph connections.
type Config struct {
	// Tenant and application identity
	TenantID     string // Entra ID tenant (GUID or verified domain)
	ClientID     string // Application (client) ID
	ClientSecret string // Client secret for the client-credentials grant

	// Endpoint settings
	BaseURL  string `default:"https://graph.microsoft.com/v1.0"` // Graph API root
	TokenURL string // Token endpoint override; derived from TenantID when empty
	Scope    string `default:"https://graph.microsoft.com/.default"`

	// Request settings
	Timeout  time.Duration `default:"30s"` // Per-request timeout
	PageSize int           `default:"50"`  // $top value for collection requests
	Retries  int           `default:"3"`   // Retry attempts for transient failures

	// Behavior settings
	ForcePasswordChange bool // Require password change at next sign-in on creation
	DebugHTTPPayloads   bool // Log request/response bodies at trace level
}

// TokenEndpoint returns the OAuth2 token endpoint for the configured tenant.
func (c *Config) TokenEndpoint() string {
	if c.TokenURL != "" {
		return c.TokenURL
	}
	return "https://login.microsoftonline.com/" + url.PathEscape(c.TenantID) + "/oauth2/v2.0/token"
}

// Transport abstracts HTTP access to the Graph API. Paths are relative to the
// API root ("/users", "/groups/{id}"). GetURL follows absolute URLs, which is
// how @odata.nextLink continuation works.
type Transport interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	GetURL(ctx context.Context, rawURL string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body any) error
	Delete(ctx context.Context, path string) error
}

// Client is the full Graph client surface: transport plus lifecycle.
type Client interface {
	Transport

	// Connect acquires an initial access token, verifying credentials.
	Connect(ctx context.Context) error

	// Ping performs a cheap authenticated request to verify connectivity.
	Ping(ctx context.Context) error

	// Close releases client resources.
	Close() error

	// PageSize returns the configured collection page size.
	PageSize() int

	// ResourceURL returns the absolute URL for an API-relative path, as
	// needed in @odata.id reference payloads.
	ResourceURL(path string) string
}

// Filter is a single attribute equality constraint applied to a listing.
type Filter struct {
	Attribute string
	Value     string
}

// page is the Graph collection envelope. NextLink carries the opaque
// continuation URL when more results remain.
type page[T any] struct {
	Value    []T    `json:"value"`
	NextLink string `json:"@odata.nextLink"`
}

// listAll drains a paginated collection, following @odata.nextLink until the
// server stops returning one.
func listAll[T any](ctx context.Context, t Transport, path string, query url.Values) ([]T, error) {
	var out []T

	var p page[T]
	if err := t.Get(ctx, path, query, &p); err != nil {
		return nil, err
	}
	out = append(out, p.Value...)

	for p.NextLink != "" {
		next := p.NextLink
		p = page[T]{}
		if err := t.GetURL(ctx, next, &p); err != nil {
			return nil, err
		}
		out = append(out, p.Value...)
	}

	return out, nil
}
