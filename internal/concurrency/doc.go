// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package concurrency provides the lock-free, loop-affine primitives the core
// dispatch engine is built from: the MPMC double-buffered work queue and
// close-handle queue (workqueue.go, closequeue.go), the posted-flag wake
// dedup protocol (postedflag.go), and the external executor that plays the
// role of the spec's "thread pool" collaborator (executor.go, threadpool.go).
package concurrency
