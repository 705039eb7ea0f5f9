package repository

import (
	"context"
	"sync"
	"time"

	"safarsathi-service/internal/domain/repository"
)

type codeEntry struct {
	code      string
	expiresAt time.Time
}

// MemoryCodeRepository implements the CodeRepository interface in process.
// Entries are lost on restart.
type MemoryCodeRepository struct {
	mu      sync.Mutex
	entries map[string]codeEntry
	now     func() time.Time
	done    chan struct{}
	once    sync.Once
}

// NewMemoryCodeRepository creates an in-memory code store. When sweep is
// positive a janitor goroutine evicts stale entries at that interval until
// Close is called.
func NewMemoryCodeRepository(sweep time.Duration, now func() time.Time) *MemoryCodeRepository {
	if now == nil {
		now = time.Now
	}
	r := &MemoryCodeRepository{
		entries: make(map[string]codeEntry),
		now:     now,
		done:    make(chan struct{}),
	}
	if sweep > 0 {
		go r.janitor(sweep)
	}
	return r
}

// Put stores code for email, replacing any previous one
func (r *MemoryCodeRepository) Put(_ context.Context, email, code string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[email] = codeEntry{code: code, expiresAt: r.now().Add(ttl)}
	return nil
}

// Consume checks and deletes the code
func (r *MemoryCodeRepository) Consume(_ context.Context, email, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[email]
	if !ok || entry.code != code {
		return repository.ErrInvalidCode
	}
	delete(r.entries, email)

	if r.now().After(entry.expiresAt) {
		return repository.ErrCodeExpired
	}
	return nil
}

// Len returns the number of stored entries
func (r *MemoryCodeRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep evicts entries that expired more than the grace period ago
func (r *MemoryCodeRepository) Sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-expiredGrace)
	for email, entry := range r.entries {
		if entry.expiresAt.Before(cutoff) {
			delete(r.entries, email)
		}
	}
}

func (r *MemoryCodeRepository) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-r.done:
			return
		}
	}
}

// Close stops the janitor
func (r *MemoryCodeRepository) Close() {
	r.once.Do(func() { close(r.done) })
}
