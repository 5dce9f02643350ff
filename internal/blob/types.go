// Package blob provides object storage for serialized reaction network
// archives. Backends: local filesystem (default), S3-compatible services,
// and an in-memory store for tests.
package blob

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifies a concrete blob storage backend.
type Driver string

const (
	// DriverFilesystem stores objects under a local directory root.
	DriverFilesystem Driver = "fs"
	// DriverS3 targets AWS S3 or an S3-compatible endpoint such as MinIO.
	DriverS3 Driver = "s3"
	// DriverMemory keeps objects in process memory, for tests.
	DriverMemory Driver = "memory"
)

// PutOptions carries optional parameters for Put.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// SignedURLOptions holds options for generating a pre-signed URL.
type SignedURLOptions struct {
	Method string        // GET|PUT (only GET is used internally)
	Expiry time.Duration // default 15m
}

// ObjectInfo describes a stored archive object.
type ObjectInfo struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
	URL          string            `json:"url,omitempty"`
}

// Store is a thin S3-like abstraction over archive object storage.
// Put is create-only: writing an existing key fails with ErrExists.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (ObjectInfo, error)
	Get(ctx context.Context, key string) (ObjectInfo, io.ReadCloser, error)
	Head(ctx context.Context, key string) (ObjectInfo, error)
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	PresignURL(ctx context.Context, key string, opts SignedURLOptions) (string, error)
	Driver() Driver
}

// ErrUnsupported is returned when an optional capability is not available.
var ErrUnsupported = errors.New("blob: unsupported operation")

// ErrExists is returned by Put when the key is already present.
var ErrExists = errors.New("blob: object already exists")

// ErrNotFound is returned when the requested key is absent.
var ErrNotFound = errors.New("blob: object not found")

func cloneStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
