package model

import (
	"context"
	"io"
)

// Storage is the object store backing avatar uploads. Upload overwrites
// an existing object at the same key (last write wins). PublicURL returns
// a reference resolvable without credentials.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	PublicURL(key string) string
}
