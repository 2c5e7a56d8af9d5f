package storage

import (
	"context"
	"fmt"
	"io"
	"os"
)

// LocalCopy writes the object under key to a temporary file in dir and returns
// its path. The PDF tools need a real file; cleanup removes it.
func LocalCopy(ctx context.Context, s Storage, key, dir string) (path string, cleanup func(), err error) {
	rc, _, err := s.Get(ctx, key)
	if err != nil {
		return "", nil, fmt.Errorf("get object %q: %w", key, err)
	}
	defer rc.Close()

	f, err := os.CreateTemp(dir, "receipt-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup = func() { _ = os.Remove(f.Name()) }

	if _, err := io.Copy(f, rc); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("copy object %q: %w", key, err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), cleanup, nil
}
