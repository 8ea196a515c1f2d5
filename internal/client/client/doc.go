// Package client contains the docchat client's gateway to the backend HTTP
// API and the bootstrap of its local database.
//
// # Overview
//
// The package provides:
//  1. The backend contract (see the API interface): profile, admin user
//     management, chat history, agent and image generation calls, and the
//     document endpoints.
//  2. A resty implementation (see HTTPClient) bound to one base URL. A
//     before-request hook asks an auth.TokenSource for a bearer token on
//     every call; when the token cannot be acquired the request is not sent.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations): an SQLite
//     database with embedded goose migrations.
//
// # Error Handling
//
// Token errors from the auth package are returned unchanged. A non-2xx
// response becomes *APIError, a transport failure wraps ErrNoResponse and a
// request that cannot be built or decoded becomes *RequestError. Describe
// turns any of them into the text shown to the user. Nothing is retried.
//
// See Also
//
//   - Interface:  API
//   - HTTP impl:  HTTPClient
//   - DB helpers: InitDatabase, RunMigrations
//   - Errors:     APIError, RequestError, ErrNoResponse, Describe
package client
