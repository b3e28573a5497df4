package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jonesrussell/north-cloud/curator/internal/domain"
)

// FeedConfigRepository handles database operations for feed
// configurations.
type FeedConfigRepository struct {
	db *sqlx.DB
}

// NewFeedConfigRepository creates a new feed configuration repository.
func NewFeedConfigRepository(db *sqlx.DB) *FeedConfigRepository {
	return &FeedConfigRepository{db: db}
}

var _ ConfigStore = (*FeedConfigRepository)(nil)

const feedConfigColumns = `
	id, name, description, author_filters, keywords, keyword_threshold,
	min_likes, min_reposts, min_replies, window_start, window_end,
	content_types, created_at, updated_at
`

// Create inserts a new feed configuration, assigning its ID.
func (r *FeedConfigRepository) Create(ctx context.Context, cfg *domain.FeedConfig) error {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}

	query := `
		INSERT INTO feed_configs (
			id, name, description, author_filters, keywords, keyword_threshold,
			min_likes, min_reposts, min_replies, window_start, window_end,
			content_types
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	windowStart, windowEnd := windowColumns(cfg.TimeRange)

	err := r.db.QueryRowContext(
		ctx,
		query,
		cfg.ID,
		cfg.Name,
		cfg.Description,
		pq.Array(cfg.AuthorFilters),
		pq.Array(cfg.Keywords),
		cfg.KeywordThreshold,
		cfg.Thresholds.MinLikes,
		cfg.Thresholds.MinReposts,
		cfg.Thresholds.MinReplies,
		windowStart,
		windowEnd,
		pq.Array(cfg.ContentTypes),
	).Scan(&cfg.CreatedAt, &cfg.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create feed config: %w", err)
	}

	return nil
}

// Get retrieves a feed configuration by ID.
func (r *FeedConfigRepository) Get(ctx context.Context, id string) (*domain.FeedConfig, error) {
	query := `
		SELECT ` + feedConfigColumns + `
		FROM feed_configs
		WHERE id = $1
	`

	cfg, err := scanFeedConfig(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, id)
		}
		return nil, fmt.Errorf("failed to get feed config: %w", err)
	}

	return cfg, nil
}

// List retrieves all feed configurations, newest first.
func (r *FeedConfigRepository) List(ctx context.Context) ([]domain.FeedConfig, error) {
	query := `
		SELECT ` + feedConfigColumns + `
		FROM feed_configs
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed configs: %w", err)
	}
	defer rows.Close()

	var configs []domain.FeedConfig
	for rows.Next() {
		cfg, scanErr := scanFeedConfig(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan feed config: %w", scanErr)
		}
		configs = append(configs, *cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feed configs: %w", err)
	}

	return configs, nil
}

// Update replaces a stored feed configuration.
func (r *FeedConfigRepository) Update(ctx context.Context, cfg *domain.FeedConfig) error {
	query := `
		UPDATE feed_configs
		SET name = $2, description = $3, author_filters = $4, keywords = $5,
		    keyword_threshold = $6, min_likes = $7, min_reposts = $8,
		    min_replies = $9, window_start = $10, window_end = $11,
		    content_types = $12, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	windowStart, windowEnd := windowColumns(cfg.TimeRange)

	err := r.db.QueryRowContext(
		ctx,
		query,
		cfg.ID,
		cfg.Name,
		cfg.Description,
		pq.Array(cfg.AuthorFilters),
		pq.Array(cfg.Keywords),
		cfg.KeywordThreshold,
		cfg.Thresholds.MinLikes,
		cfg.Thresholds.MinReposts,
		cfg.Thresholds.MinReplies,
		windowStart,
		windowEnd,
		pq.Array(cfg.ContentTypes),
	).Scan(&cfg.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", domain.ErrConfigNotFound, cfg.ID)
		}
		return fmt.Errorf("failed to update feed config: %w", err)
	}

	return nil
}

// Delete removes a feed configuration by ID.
func (r *FeedConfigRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM feed_configs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete feed config: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrConfigNotFound, id)
	}

	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeedConfig(row rowScanner) (*domain.FeedConfig, error) {
	var (
		cfg         domain.FeedConfig
		windowStart sql.NullTime
		windowEnd   sql.NullTime
	)

	err := row.Scan(
		&cfg.ID,
		&cfg.Name,
		&cfg.Description,
		pq.Array(&cfg.AuthorFilters),
		pq.Array(&cfg.Keywords),
		&cfg.KeywordThreshold,
		&cfg.Thresholds.MinLikes,
		&cfg.Thresholds.MinReposts,
		&cfg.Thresholds.MinReplies,
		&windowStart,
		&windowEnd,
		pq.Array(&cfg.ContentTypes),
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if windowStart.Valid && windowEnd.Valid {
		cfg.TimeRange = &domain.TimeRange{Start: windowStart.Time, End: windowEnd.Time}
	}

	return &cfg, nil
}

// windowColumns splits an optional time range into nullable columns.
func windowColumns(tr *domain.TimeRange) (start, end sql.NullTime) {
	if tr == nil {
		return sql.NullTime{}, sql.NullTime{}
	}
	return sql.NullTime{Time: tr.Start, Valid: true},
		sql.NullTime{Time: tr.End, Valid: true}
}
