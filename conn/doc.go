// File: conn/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package conn tracks live connections and their output byte channels,
// generalizing the teacher's sharded session.SessionManager
// (internal/session/store.go) from string-keyed sessions to fd-bound
// connections with a bounded, timeout-aware close-all operation.
package conn
