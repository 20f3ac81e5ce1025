package mock

import (
	"context"
	"io"
	"sync"

	"github.com/avaldeso/machina"
)

// Compile-time interface check
var _ machina.FileStorage = (*FileStorage)(nil)

// FileStorage is a mock implementation of machina.FileStorage. Without Fn
// overrides it stores file contents in memory.
type FileStorage struct {
	UploadFn func(ctx context.Context, key string, reader io.Reader, contentType string) (*machina.StoredObject, error)
	DeleteFn func(ctx context.Context, key string) error
	GetURLFn func(key string) string
	ExistsFn func(ctx context.Context, key string) (bool, error)

	mu    sync.RWMutex
	files map[string][]byte
}

// NewFileStorage creates a new mock file storage with initialized state.
func NewFileStorage() *FileStorage {
	return &FileStorage{
		files: make(map[string][]byte),
	}
}

func (s *FileStorage) Upload(ctx context.Context, key string, reader io.Reader, contentType string) (*machina.StoredObject, error) {
	if s.UploadFn != nil {
		return s.UploadFn(ctx, key, reader, contentType)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files == nil {
		s.files = make(map[string][]byte)
	}
	s.files[key] = data

	return &machina.StoredObject{
		URL:         s.GetURL(key),
		Size:        int64(len(data)),
		ContentType: contentType,
	}, nil
}

func (s *FileStorage) Delete(ctx context.Context, key string) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, key)
	return nil
}

func (s *FileStorage) GetURL(key string) string {
	if s.GetURLFn != nil {
		return s.GetURLFn(key)
	}
	return "https://storage.test/" + key
}

func (s *FileStorage) Exists(ctx context.Context, key string) (bool, error) {
	if s.ExistsFn != nil {
		return s.ExistsFn(ctx, key)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[key]
	return ok, nil
}
