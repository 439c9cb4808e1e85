package blob

import (
	"bytes"
	"context"
)

// Images adapts a Store to the visit image interface the service layer
// consumes. Missing keys on delete are not an error.
type Images struct {
	store Store
}

// NewImages wraps a Store for visit image storage.
func NewImages(store Store) *Images { return &Images{store: store} }

// Put writes image bytes under key.
func (i *Images) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := i.store.Put(ctx, key, bytes.NewReader(data), PutOptions{ContentType: contentType})
	return err
}

// Delete removes the image stored under key if present.
func (i *Images) Delete(ctx context.Context, key string) error {
	_, err := i.store.Delete(ctx, key)
	return err
}

// Store exposes the underlying blob store for read paths.
func (i *Images) Store() Store { return i.store }
