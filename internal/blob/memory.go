package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is a thread-safe, in-memory Store for testing and
// development.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Upload(_ context.Context, content io.Reader, _, _ string) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("reading content: %w", err)
	}

	blobID := uuid.NewString()

	s.mu.Lock()
	s.blobs[blobID] = data
	s.mu.Unlock()

	return blobID, nil
}

func (s *MemoryStore) Download(_ context.Context, blobID string) (io.ReadCloser, error) {
	s.mu.RLock()
	data, ok := s.blobs[blobID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryStore) Delete(_ context.Context, blobID string) error {
	s.mu.Lock()
	delete(s.blobs, blobID)
	s.mu.Unlock()
	return nil
}

// Len reports the number of stored payloads. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
