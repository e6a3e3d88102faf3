// Package client talks to the DRACOON REST API on behalf of cryptonaut.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) with the two
//     remote operations the tool needs: resolving a node from its path and
//     distributing one batch of missing file keys.
//  2. A concrete HTTP implementation (see HTTPClient) that bootstraps an
//     OAuth2 session from a refresh token, sends the access token as a bearer
//     header, refreshes it before it expires and once more on a 401, and maps
//     HTTP failures to sentinel errors.
//
// # Error Handling
//
// Every failure caused by the remote side matches ErrRemoteAPI with
// errors.Is. Narrower conditions are exposed as ErrUnauthorized, ErrNotFound
// and ErrUnavailable; HTTP error bodies are decoded into *APIError.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation/timeouts.
package client
