// Package client contains the client-side building blocks for talking to the
// resourcehub identity service.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface): account
//     creation and deletion, password sign-in, sign-out, session retrieval
//     and refresh, session-change subscription, named remote procedures and
//     credential-profile writes.
//  2. A gRPC implementation (see GRPCClient) that presents the service public
//     key on every call, injects the access token, transparently refreshes an
//     expired token once, and maps gRPC status codes to sentinel errors.
//  3. Session persistence (SessionCache) on the CLI's SQLite database, so a
//     restarted CLI resumes its session, plus InitDatabase/RunMigrations.
//
// # Error Handling
//
// Transport conditions are sentinel errors matched with errors.Is:
// ErrUnavailable, ErrUnauthorized, ErrTimeout, ErrNoSession. Rejections that
// carry a service message are *RemoteError values.
//
// # Events
//
// Session changes (sign-in, sign-out, token refresh) are published to
// subscribers in order by one dispatcher goroutine, so subscribers never
// observe two events concurrently.
package client
