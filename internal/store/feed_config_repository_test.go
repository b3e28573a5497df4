package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/north-cloud/curator/internal/domain"
	"github.com/jonesrussell/north-cloud/curator/internal/store"
)

func newMockRepo(t *testing.T) (*store.FeedConfigRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return store.NewFeedConfigRepository(sqlx.NewDb(db, "postgres")), mock
}

func feedConfigRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "description", "author_filters", "keywords",
		"keyword_threshold", "min_likes", "min_reposts", "min_replies",
		"window_start", "window_end", "content_types", "created_at", "updated_at",
	}).AddRow(
		"feed-1", "Science", "posts about science", "{following}", "{science,space}",
		10.0, 5, 0, 0,
		nil, nil, "{text,link}", now, now,
	)
}

func TestFeedConfigRepository_Create(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO feed_configs").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	cfg := &domain.FeedConfig{Name: "Science", Keywords: []string{"science"}}
	if err := repo.Create(context.Background(), cfg); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if cfg.ID == "" {
		t.Error("Create() did not assign an ID")
	}
	if !cfg.CreatedAt.Equal(now) {
		t.Errorf("Create() CreatedAt = %v, want %v", cfg.CreatedAt, now)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFeedConfigRepository_Get(t *testing.T) {
	testCases := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name: "returns config when exists",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT (.+) FROM feed_configs WHERE id").
					WithArgs("feed-1").
					WillReturnRows(feedConfigRows(time.Now()))
			},
		},
		{
			name: "returns not found for missing id",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT (.+) FROM feed_configs WHERE id").
					WithArgs("feed-1").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrConfigNotFound,
		},
		{
			name: "propagates database failure",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT (.+) FROM feed_configs WHERE id").
					WithArgs("feed-1").
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			tc.setupMock(mock)

			cfg, err := repo.Get(context.Background(), "feed-1")

			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Get() error = %v, want %v", err, tc.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if cfg.Name != "Science" {
				t.Errorf("Get() name = %q, want %q", cfg.Name, "Science")
			}
			if len(cfg.Keywords) != 2 || cfg.Keywords[0] != "science" {
				t.Errorf("Get() keywords = %v", cfg.Keywords)
			}
			if cfg.Thresholds.MinLikes != 5 {
				t.Errorf("Get() min_likes = %d, want 5", cfg.Thresholds.MinLikes)
			}
			if cfg.TimeRange != nil {
				t.Errorf("Get() time range = %v, want nil", cfg.TimeRange)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestFeedConfigRepository_GetWithWindow(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now()
	start := now.Add(-48 * time.Hour)
	rows := sqlmock.NewRows([]string{
		"id", "name", "description", "author_filters", "keywords",
		"keyword_threshold", "min_likes", "min_reposts", "min_replies",
		"window_start", "window_end", "content_types", "created_at", "updated_at",
	}).AddRow(
		"feed-2", "Recent", "", "{}", "{}",
		5.0, 0, 0, 0,
		start, now, "{}", now, now,
	)
	mock.ExpectQuery("SELECT (.+) FROM feed_configs WHERE id").
		WithArgs("feed-2").
		WillReturnRows(rows)

	cfg, err := repo.Get(context.Background(), "feed-2")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if cfg.TimeRange == nil {
		t.Fatal("Get() time range = nil, want bounded window")
	}
	if !cfg.TimeRange.Start.Equal(start) || !cfg.TimeRange.End.Equal(now) {
		t.Errorf("Get() window = [%v, %v]", cfg.TimeRange.Start, cfg.TimeRange.End)
	}
}

func TestFeedConfigRepository_List(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM feed_configs ORDER BY created_at DESC").
		WillReturnRows(feedConfigRows(time.Now()))

	configs, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(configs) != 1 {
		t.Fatalf("List() returned %d configs, want 1", len(configs))
	}
	if configs[0].ID != "feed-1" {
		t.Errorf("List() id = %q, want feed-1", configs[0].ID)
	}
}

func TestFeedConfigRepository_Update(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("UPDATE feed_configs SET").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	cfg := &domain.FeedConfig{ID: "feed-1", Name: "Science v2"}
	if err := repo.Update(context.Background(), cfg); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !cfg.UpdatedAt.Equal(now) {
		t.Errorf("Update() UpdatedAt = %v, want %v", cfg.UpdatedAt, now)
	}
}

func TestFeedConfigRepository_UpdateMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("UPDATE feed_configs SET").
		WillReturnError(sql.ErrNoRows)

	err := repo.Update(context.Background(), &domain.FeedConfig{ID: "ghost", Name: "x"})
	if !errors.Is(err, domain.ErrConfigNotFound) {
		t.Errorf("Update() error = %v, want %v", err, domain.ErrConfigNotFound)
	}
}

func TestFeedConfigRepository_Delete(t *testing.T) {
	testCases := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "deletes existing config", affected: 1},
		{name: "returns not found when nothing deleted", affected: 0, wantErr: domain.ErrConfigNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			mock.ExpectExec("DELETE FROM feed_configs WHERE id").
				WithArgs("feed-1").
				WillReturnResult(sqlmock.NewResult(0, tc.affected))

			err := repo.Delete(context.Background(), "feed-1")
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Errorf("Delete() error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("Delete() error = %v", err)
			}
		})
	}
}
