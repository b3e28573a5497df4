package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/north-cloud/curator/internal/domain"
)

// MemoryStore is an in-process ConfigStore for tests and local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	configs map[string]domain.FeedConfig
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{configs: make(map[string]domain.FeedConfig)}
}

var _ ConfigStore = (*MemoryStore)(nil)

// Create stores a new configuration.
func (s *MemoryStore) Create(_ context.Context, cfg *domain.FeedConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if _, exists := s.configs[cfg.ID]; exists {
		return fmt.Errorf("feed config already exists: %s", cfg.ID)
	}

	now := time.Now().UTC()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now
	s.configs[cfg.ID] = *cfg
	return nil
}

// Get returns the configuration for a feed ID.
func (s *MemoryStore) Get(_ context.Context, id string) (*domain.FeedConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.configs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, id)
	}
	return &cfg, nil
}

// List returns all configurations, newest first.
func (s *MemoryStore) List(_ context.Context) ([]domain.FeedConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	configs := make([]domain.FeedConfig, 0, len(s.configs))
	for _, cfg := range s.configs {
		configs = append(configs, cfg)
	}
	sort.Slice(configs, func(i, j int) bool {
		return configs[i].CreatedAt.After(configs[j].CreatedAt)
	})
	return configs, nil
}

// Update replaces a stored configuration.
func (s *MemoryStore) Update(_ context.Context, cfg *domain.FeedConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.configs[cfg.ID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrConfigNotFound, cfg.ID)
	}

	cfg.CreatedAt = existing.CreatedAt
	cfg.UpdatedAt = time.Now().UTC()
	s.configs[cfg.ID] = *cfg
	return nil
}

// Delete removes a configuration.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.configs[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrConfigNotFound, id)
	}
	delete(s.configs, id)
	return nil
}
