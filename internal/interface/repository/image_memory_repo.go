package repository

import (
	"context"
	"fmt"
	"io"
	"sync"

	"safarsathi-service/internal/domain/repository"

	"github.com/google/uuid"
)

const memoryImageScheme = "memory://"

// MemoryImageRepository implements the ImageRepository interface in memory.
// It backs local runs without object storage.
type MemoryImageRepository struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryImageRepository() *MemoryImageRepository {
	return &MemoryImageRepository{objects: make(map[string][]byte)}
}

func (r *MemoryImageRepository) Upload(_ context.Context, folder string, image repository.Image) (string, error) {
	if image.Content == nil {
		return "", fmt.Errorf("image %q has no content", image.Filename)
	}
	data, err := io.ReadAll(image.Content)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	url := fmt.Sprintf("%s%s/%s_%s", memoryImageScheme, folder, uuid.New().String(), sanitizeFilename(image.Filename))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects[url] = data
	return url, nil
}

func (r *MemoryImageRepository) Delete(_ context.Context, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.objects[url]; !ok {
		return fmt.Errorf("object %s not found", url)
	}
	delete(r.objects, url)
	return nil
}

// Has reports whether url is stored
func (r *MemoryImageRepository) Has(url string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.objects[url]
	return ok
}
