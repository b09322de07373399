// File: looprt/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package looprt runs the single-threaded event loop: a dedicated OS thread
// pinned via runtime.LockOSThread, driving a reactor.EventReactor and
// draining the posted work/close queues on every wake-up. It is the
// affinity boundary the rest of the core assumes — native handles are
// touched only from this thread.
package looprt
