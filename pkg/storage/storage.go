// Package storage holds uploaded catalog images. Three drivers share the
// ImageStore interface: local filesystem, S3/MinIO and process memory.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Driver identifies an ImageStore backend.
type Driver string

const (
	DriverFS     Driver = "fs"
	DriverS3     Driver = "s3"
	DriverMemory Driver = "memory"
)

// sniffLen is the number of leading bytes inspected for content detection.
const sniffLen = 3072

var (
	// ErrNotFound is returned when a key does not exist in the store.
	ErrNotFound = errors.New("image not found")
	// ErrInvalidKey is returned for empty keys or keys that could escape the store root.
	ErrInvalidKey = errors.New("invalid image key")
	// ErrExists is returned by Put when the key is already taken.
	ErrExists = errors.New("image already exists")
)

// Object describes a stored image.
type Object struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// ImageStore is the object store uploaded images are written to and served from.
type ImageStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Object, error)
	Get(ctx context.Context, key string) (Object, io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]Object, error)
	Driver() Driver
}

// Upload is a sniffed image ready to be written under Key.
type Upload struct {
	Key         string
	ContentType string
	Body        io.Reader
}

// PrepareUpload detects the content type of r and generates a fresh storage
// key carrying the detected extension. The returned Body replays the sniffed
// prefix followed by the rest of r.
func PrepareUpload(r io.Reader, now time.Time) (Upload, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Upload{}, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	mt := mimetype.Detect(head)
	return Upload{
		Key:         NewKey(mt.Extension(), now),
		ContentType: mt.String(),
		Body:        io.MultiReader(bytes.NewReader(head), r),
	}, nil
}

// NewKey returns "<unix-millis>-<uuid><ext>".
func NewKey(ext string, now time.Time) string {
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), uuid.NewString(), ext)
}

// ValidateKey rejects keys that are empty or that contain path components.
// Stored images live in a flat namespace.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
