// Package storage provides the object store backing file uploads. Stored
// objects are addressed by a folder namespace and served by public URL; the
// rest of the system only ever sees the URL.
package storage

import (
	"context"
	"io"
)

// ObjectStore uploads binary blobs into a folder-scoped namespace and lists
// the public URLs already present in a folder.
type ObjectStore interface {
	Upload(ctx context.Context, folder, filename string, r io.Reader, size int64, contentType string) (string, error)
	List(ctx context.Context, folder string) ([]string, error)
}
