package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Object is a stored blob of the in-memory backend.
type Object struct {
	ContentType string
	Body        []byte
}

// MemoryStorage keeps objects in process. Download URLs use the memory:// scheme.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]Object
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: map[string]Object{}}
}

func (m *MemoryStorage) PutObject(_ context.Context, objectKey, contentType string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectKey] = Object{ContentType: contentType, Body: append([]byte(nil), body...)}
	return nil
}

func (m *MemoryStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, expires time.Duration) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.objects[objectKey]; !ok {
		return "", ErrObjectNotFound
	}
	if expires <= 0 {
		expires = DefaultPresignedURLExpiry
	}
	return fmt.Sprintf("memory://%s?expires=%d", objectKey, int(expires.Seconds())), nil
}

func (m *MemoryStorage) DeleteObject(_ context.Context, objectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[objectKey]; !ok {
		return ErrObjectNotFound
	}
	delete(m.objects, objectKey)
	return nil
}

// Get returns a stored object.
func (m *MemoryStorage) Get(objectKey string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[objectKey]
	return obj, ok
}
