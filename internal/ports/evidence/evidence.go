// Package evidence stores punch and payment evidence blobs (photos,
// signatures, comprovantes). Content is opaque to the rest of the service;
// only the returned reference is recorded on punch and payment rows.
package evidence

import "context"

// Store accepts a binary blob and returns an opaque reference to it.
type Store interface {
	Put(ctx context.Context, prefix string, data []byte, contentType string) (string, error)
}
