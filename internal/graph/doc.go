/*
Package graph provides Microsoft Entra ID operations over the Microsoft
Graph REST API.

This package implements the client layer for directory management.

# Architecture Overview

The package is organized into several core components:

  - Client: authenticated HTTP access with retries and OData paging
  - Managers: domain-specific operations (User, Group, License, Membership)
  - Error taxonomy: HTTP responses mapped to stable error categories
  - Classification: group variety derived from directory type markers

# Authentication

The client authenticates with the OAuth2 client-credentials grant against
the tenant's token endpoint. Tokens are cached and refreshed transparently;
the initial token fetch happens in Connect so that bad credentials surface
immediately as authentication errors.

# Paging

Collection endpoints return pages linked by @odata.nextLink. Listing
operations drain the chain transparently, requesting PageSize objects per
round trip. Filtered listings issue one server-side $filter query and still
follow any continuation cursors the service returns.

# Domain Object Management

Each directory object type has a dedicated manager:

  - UserManager: user CRUD and search operations
  - GroupManager: group CRUD, search, and Teams detection
  - LicenseManager: read-only subscribed SKU queries
  - MembershipManager: group membership and license assignment deltas

# Error Handling

The package provides structured error handling through Error:

  - Categorized errors (authentication, validation, conflict, etc.)
  - Retryable error classification
  - OData error code and server message preservation
  - Predicate helpers for category checks

# Thread Safety

All managers are thread-safe and can be used concurrently. The underlying
HTTP client and token source handle concurrent access automatically.

# Example Usage

	config := &graph.Config{
		TenantID:     "contoso.onmicrosoft.com",
		ClientID:     "00000000-0000-0000-0000-000000000000",
		ClientSecret: "secret",
	}
	client, err := graph.NewClient(config, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Connect(ctx); err != nil {
		return err
	}

	users := graph.NewUserManager(client, graph.NewHCLogger(logger, "users"))
	user, err := users.Get(ctx, "user-object-id")
	if err != nil {
		return err
	}
*/
package graph
