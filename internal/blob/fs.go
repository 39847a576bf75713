package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FSReader reads "objects" from the local filesystem, treating the bucket as
// a directory. It backs the local CLI so the pipeline runs unchanged.
type FSReader struct{}

// Fetch reads bucket/key as a file path. An empty bucket means key is the
// full path.
func (FSReader) Fetch(ctx context.Context, bucket, key string) (string, error) {
	path := key
	if bucket != "" {
		path = filepath.Join(bucket, key)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
