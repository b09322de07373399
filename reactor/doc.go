// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the core poll-mode event reactor abstraction, its
// Linux epoll(7) implementation, and the eventfd-backed wake primitive the
// loop thread controller uses to drain posted work.
package reactor
