// Package storage holds uploaded receipt PDFs in an S3-compatible object store.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"time"
)

// ReceiptPrefix is the key prefix of uploaded receipt PDFs.
const ReceiptPrefix = "receipts"

// ErrObjectNotFound is returned by Get and PresignGet when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ReceiptKey returns the object key of the receipt file with the given ID.
func ReceiptKey(fileID string) string {
	return path.Join(ReceiptPrefix, fileID+".pdf")
}

// PutObjectOptions describes an upload. Size is -1 when unknown.
// FileName is the client's name for the file, served back on download.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	FileName    string
	Metadata    map[string]string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the object store used for receipt uploads.
type Storage interface {
	// Put uploads r under key.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get streams the object under key.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes the object under key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited download URL.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
