package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-hclog"
)

// newTestServer wires a fake token endpoint and Graph handler into one
// httptest server and returns a connected client against it.
func newTestServer(t *testing.T, handler http.HandlerFunc) (Client, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/v1.0/", handler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	config := &Config{
		TenantID:     "test-tenant",
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		BaseURL:      server.URL + "/v1.0",
		TokenURL:     server.URL + "/token",
	}
	client, err := NewClient(config, hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	return client, server
}

func TestClientRequiresCredentials(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{"missing tenant", &Config{ClientID: "c", ClientSecret: "s"}},
		{"missing client id", &Config{TenantID: "t", ClientSecret: "s"}},
		{"missing secret", &Config{TenantID: "t", ClientID: "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.config, hclog.NewNullLogger())
			if !IsValidationError(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestClientDefaults(t *testing.T) {
	config := &Config{
		TenantID:     "contoso.onmicrosoft.com",
		ClientID:     "c",
		ClientSecret: "s",
	}
	client, err := NewClient(config, hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer client.Close()

	if config.BaseURL != "https://graph.microsoft.com/v1.0" {
		t.Errorf("BaseURL = %s", config.BaseURL)
	}
	if config.Scope != "https://graph.microsoft.com/.default" {
		t.Errorf("Scope = %s", config.Scope)
	}
	if client.PageSize() != 50 {
		t.Errorf("PageSize() = %d, want 50", client.PageSize())
	}
	want := "https://login.microsoftonline.com/contoso.onmicrosoft.com/oauth2/v2.0/token"
	if got := config.TokenEndpoint(); got != want {
		t.Errorf("TokenEndpoint() = %s, want %s", got, want)
	}
}

func TestClientAuthenticationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	config := &Config{
		TenantID:     "t",
		ClientID:     "c",
		ClientSecret: "bad",
		BaseURL:      server.URL + "/v1.0",
		TokenURL:     server.URL + "/token",
	}
	client, err := NewClient(config, hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer client.Close()

	if err := client.Connect(context.Background()); !IsAuthenticationError(err) {
		t.Errorf("expected authentication error, got %v", err)
	}
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"value":[]}`)
	})

	var p page[User]
	if err := client.Get(context.Background(), "/users", nil, &p); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestClientDecodesODataErrors(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"code":"Request_ResourceNotFound","message":"Resource does not exist"}}`)
	})

	var out User
	err := client.Get(context.Background(), "/users/nope", nil, &out)
	if !IsNotFoundError(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}

	ge := err.(*Error)
	if ge.Code != "Request_ResourceNotFound" {
		t.Errorf("Code = %s", ge.Code)
	}
}

func TestListAllDrainsNextLinks(t *testing.T) {
	var server *httptest.Server
	requests := 0
	handler := func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		switch requests {
		case 1:
			if got := r.URL.Query().Get("$top"); got != "50" {
				t.Errorf("$top = %s, want 50", got)
			}
			fmt.Fprintf(w, `{"value":[{"id":"u1"},{"id":"u2"}],"@odata.nextLink":"%s/v1.0/users?$skiptoken=abc"}`, server.URL)
		case 2:
			if got := r.URL.Query().Get("$skiptoken"); got != "abc" {
				t.Errorf("$skiptoken = %s, want abc", got)
			}
			fmt.Fprint(w, `{"value":[{"id":"u3"}]}`)
		default:
			t.Error("unexpected extra request")
		}
	}

	client, srv := newTestServer(t, handler)
	server = srv

	um := NewUserManager(client, testLogger())
	users, err := um.List(context.Background(), nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("got %d users, want 3", len(users))
	}
	if users[2].ID != "u3" {
		t.Errorf("last user = %s, want u3", users[2].ID)
	}
}

func TestFilteredListDrainsCursors(t *testing.T) {
	var server *httptest.Server
	requests := 0
	handler := func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			if got := r.URL.Query().Get("$filter"); got != "givenName eq 'Bud'" {
				t.Errorf("$filter = %q", got)
			}
			if r.URL.Query().Get("$top") != "" {
				t.Error("filtered listing should not request explicit paging")
			}
		}
		w.Header().Set("Content-Type", "application/json")
		switch requests {
		case 1:
			fmt.Fprintf(w, `{"value":[{"id":"u1","givenName":"Bud"}],"@odata.nextLink":"%s/v1.0/users?$skiptoken=f1"}`, server.URL)
		case 2:
			fmt.Fprint(w, `{"value":[{"id":"u2","givenName":"Bud"}]}`)
		default:
			t.Error("unexpected extra request")
		}
	}

	client, srv := newTestServer(t, handler)
	server = srv

	um := NewUserManager(client, testLogger())
	users, err := um.List(context.Background(), &Filter{Attribute: "givenName", Value: "Bud"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if requests != 2 {
		t.Errorf("requests = %d, want 2", requests)
	}
	if len(users) != 2 || users[1].ID != "u2" {
		t.Errorf("users = %+v", users)
	}
}

func TestFilterValueEscaping(t *testing.T) {
	if got := equalityFilter("displayName", "O'Brien"); got != "displayName eq 'O''Brien'" {
		t.Errorf("equalityFilter() = %q", got)
	}
}

func TestPing(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1.0/organization" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"value":[{"id":"org1"}]}`)
	})

	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestUserGetSelectsDetailFieldsAndExpandsMembership(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("$expand"); got != "memberOf" {
			t.Errorf("$expand = %s, want memberOf", got)
		}
		if got := r.URL.Query().Get("$select"); got == "" {
			t.Error("$select missing")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "u1",
			"displayName": "Bud Coke",
			"memberOf": [
				{"@odata.type": "#microsoft.graph.group", "id": "g1", "displayName": "Team"},
				{"@odata.type": "#microsoft.graph.directoryRole", "id": "r1"}
			]
		}`)
	})

	um := NewUserManager(client, testLogger())
	user, err := um.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(user.MemberOf) != 2 {
		t.Fatalf("MemberOf = %+v", user.MemberOf)
	}
	if !user.MemberOf[0].IsGroup() || user.MemberOf[1].IsGroup() {
		t.Error("IsGroup() misclassified memberOf entries")
	}
}

func TestGroupIsTeam(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1.0/teams/g-team":
			fmt.Fprint(w, `{"id":"g-team"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":{"code":"NotFound","message":"No team found"}}`)
		}
	})

	gm := NewGroupManager(client, testLogger())

	isTeam, err := gm.IsTeam(context.Background(), "g-team")
	if err != nil || !isTeam {
		t.Errorf("IsTeam(g-team) = %v, %v; want true, nil", isTeam, err)
	}

	isTeam, err = gm.IsTeam(context.Background(), "g-plain")
	if err != nil || isTeam {
		t.Errorf("IsTeam(g-plain) = %v, %v; want false, nil", isTeam, err)
	}
}
