package resolve

import (
	"context"
	"fmt"

	"github.com/yukirin-dev/douga/internal/media"
)

// Resolver turns a video locator into playable metadata and streams.
// The playback session depends only on this interface, so tests can
// substitute a fake without touching the network.
type Resolver interface {
	// Resolve returns the descriptor and stream manifest for a locator.
	// Failures are reported as *ResolveError.
	Resolve(ctx context.Context, locator string) (*media.Descriptor, *media.Manifest, error)
	// Close releases any resources held by the resolver
	Close() error
}

// ResolveError reports a failed resolution attempt, keeping the locator
// that was being resolved alongside the underlying cause
type ResolveError struct {
	Locator string
	Err     error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolving %q: %v", e.Locator, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}
