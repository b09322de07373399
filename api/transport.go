// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// Transport abstracts a full-duplex, fd-backed connection usable by the
// output pump independent of Go's net.Conn, so the loop thread can reach
// the raw descriptor for unix.Write/Writev/Shutdown.

package api

// Transport abstracts a network connection that exposes its raw OS
// descriptor for zero-copy, syscall-level I/O.
type Transport interface {
	// Read reads into a preallocated buffer.
	Read(p []byte) (n int, err error)

	// Write writes buffer contents into the connection.
	Write(p []byte) (n int, err error)

	// Writev writes multiple buffers in one syscall where supported.
	Writev(bufs [][]byte) (n int, err error)

	// Shutdown half-closes the connection in the given direction
	// (unix.SHUT_RD, SHUT_WR, or SHUT_RDWR).
	Shutdown(how int) error

	// Close shuts down the connection and releases its descriptor.
	Close() error

	// RawFD returns the underlying OS-level file descriptor.
	RawFD() uintptr
}
