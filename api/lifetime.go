// File: api/lifetime.go
// Author: momentics <momentics@gmail.com>
//
// ApplicationLifetime lets the loop thread controller notify the embedding
// application when a fatal error forces the loop to stop unexpectedly.

package api

// ApplicationLifetime is the embedding application's shutdown trigger.
type ApplicationLifetime interface {
	// Stop requests the embedding application to begin shutting down.
	Stop()
}

// NopLifetime implements ApplicationLifetime with no effect, for use when
// the loop runs standalone (e.g. in tests).
type NopLifetime struct{}

func (NopLifetime) Stop() {}

var _ ApplicationLifetime = NopLifetime{}
