package ports

import "context"

// DocumentSource supplies the current serialized form of the document.
// The editing layer owns the document; the saver only snapshots it at the
// moment a save cycle dispatches, so the latest content reaches the store.
type DocumentSource interface {
	// Snapshot returns the serialized document. The returned bytes must not
	// be mutated afterward by the implementation.
	Snapshot(ctx context.Context) ([]byte, error)
}

// DocumentSourceFunc adapts a function to the DocumentSource interface.
type DocumentSourceFunc func(ctx context.Context) ([]byte, error)

// Snapshot calls f.
func (f DocumentSourceFunc) Snapshot(ctx context.Context) ([]byte, error) {
	return f(ctx)
}
