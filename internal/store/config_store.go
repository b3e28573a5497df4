package store

import (
	"context"

	"github.com/jonesrussell/north-cloud/curator/internal/domain"
)

// ConfigStore persists feed configurations keyed by feed ID.
type ConfigStore interface {
	// Create stores a new configuration, assigning its ID and timestamps.
	Create(ctx context.Context, cfg *domain.FeedConfig) error
	// Get returns the configuration for a feed ID, or
	// domain.ErrConfigNotFound.
	Get(ctx context.Context, id string) (*domain.FeedConfig, error)
	// List returns all configurations, newest first.
	List(ctx context.Context) ([]domain.FeedConfig, error)
	// Update replaces the stored configuration, refreshing UpdatedAt, or
	// returns domain.ErrConfigNotFound.
	Update(ctx context.Context, cfg *domain.FeedConfig) error
	// Delete removes the configuration, or returns
	// domain.ErrConfigNotFound.
	Delete(ctx context.Context, id string) error
}
