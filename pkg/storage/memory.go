package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

type memoryEntry struct {
	obj  Object
	data []byte
}

// MemoryStore keeps images in process memory. Intended for tests.
type MemoryStore struct {
	mu   sync.RWMutex
	objs map[string]memoryEntry
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objs: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Driver() Driver { return DriverMemory }

func (s *MemoryStore) Put(_ context.Context, key string, r io.Reader, contentType string) (Object, error) {
	if err := ValidateKey(key); err != nil {
		return Object{}, err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return Object{}, fmt.Errorf("read image: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objs[key]; exists {
		return Object{}, fmt.Errorf("%w: %s", ErrExists, key)
	}
	obj := Object{Key: key, Size: int64(len(b)), ContentType: contentType, LastModified: time.Now().UTC()}
	s.objs[key] = memoryEntry{obj: obj, data: b}
	return obj, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (Object, io.ReadCloser, error) {
	s.mu.RLock()
	e, ok := s.objs[key]
	s.mu.RUnlock()
	if !ok {
		return Object{}, nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	data := make([]byte, len(e.data))
	copy(data, e.data)
	return e.obj, io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.objs, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]Object, error) {
	s.mu.RLock()
	out := make([]Object, 0, len(s.objs))
	for _, e := range s.objs {
		out = append(out, e.obj)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Has reports whether key is stored.
func (s *MemoryStore) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objs[key]
	return ok
}

// Backdate shifts the modification time of key into the past.
func (s *MemoryStore) Backdate(key string, age time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.objs[key]; ok {
		e.obj.LastModified = e.obj.LastModified.Add(-age)
		s.objs[key] = e
	}
}
