package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FSStore writes images as flat files under a root directory.
type FSStore struct {
	root string
}

// NewFSStore returns a filesystem store rooted at root, creating it if needed.
func NewFSStore(root string) (*FSStore, error) {
	if root == "" {
		root = "uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FSStore{root: root}, nil
}

func (s *FSStore) Driver() Driver { return DriverFS }

func (s *FSStore) path(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.root, key), nil
}

// Put streams r to a temp file and renames it into place so readers never
// observe a partial image.
func (s *FSStore) Put(_ context.Context, key string, r io.Reader, contentType string) (Object, error) {
	p, err := s.path(key)
	if err != nil {
		return Object{}, err
	}
	if _, err := os.Stat(p); err == nil {
		return Object{}, fmt.Errorf("%w: %s", ErrExists, key)
	}

	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return Object{}, fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	size, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		return Object{}, fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Object{}, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return Object{}, fmt.Errorf("move image into place: %w", err)
	}

	st, err := os.Stat(p)
	if err != nil {
		return Object{}, fmt.Errorf("stat image: %w", err)
	}
	return Object{Key: key, Size: size, ContentType: contentType, LastModified: st.ModTime().UTC()}, nil
}

func (s *FSStore) Get(_ context.Context, key string) (Object, io.ReadCloser, error) {
	p, err := s.path(key)
	if err != nil {
		return Object{}, nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Object{}, nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return Object{}, nil, fmt.Errorf("open image: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return Object{}, nil, fmt.Errorf("stat image: %w", err)
	}
	return Object{
		Key:          key,
		Size:         st.Size(),
		ContentType:  mime.TypeByExtension(filepath.Ext(key)),
		LastModified: st.ModTime().UTC(),
	}, f, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *FSStore) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

func (s *FSStore) List(_ context.Context) ([]Object, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read upload dir: %w", err)
	}
	out := make([]Object, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Object{
			Key:          e.Name(),
			Size:         info.Size(),
			ContentType:  mime.TypeByExtension(filepath.Ext(e.Name())),
			LastModified: info.ModTime().UTC(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
