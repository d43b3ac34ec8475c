package publisher

import "context"

// Publisher performs an idempotent create-or-update of a file in a remote
// store. Implementations must supply the prior revision identifier when the
// path already exists, so concurrent writers cannot silently lose updates.
type Publisher interface {
	Publish(ctx context.Context, path string, content []byte, message string) error
}
