// Package pipeline assembles custom feeds: it pulls candidate posts
// from a content source, resolves per-item thread context in bounded
// concurrent batches, applies the configured filters in order and
// publishes surviving items batch-by-batch in original fetch order.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonesrussell/north-cloud/curator/internal/domain"
	"github.com/jonesrussell/north-cloud/curator/internal/logger"
	"github.com/jonesrussell/north-cloud/curator/internal/metrics"
	"github.com/jonesrussell/north-cloud/curator/internal/scoring"
)

// Source is the external content provider consumed by the pipeline.
type Source interface {
	// FetchRecent returns one bounded page of recent candidate posts.
	FetchRecent(ctx context.Context, limit int) ([]domain.Post, error)
	// FetchThread resolves the thread context around one post.
	FetchThread(ctx context.Context, uri string, depth int) (*domain.Thread, error)
}

// Exclusion reasons, in filter order.
const (
	ReasonLookupFailed   = "lookup_failed"
	ReasonAlreadyReplied = "already_replied"
	ReasonInteractions   = "interactions"
	ReasonTimeRelevance  = "time_relevance"
	ReasonKeywords       = "keywords"
)

const (
	// timeScoreCutoff is the fixed floor applied to the time relevance
	// score; the scorers themselves never cut off.
	timeScoreCutoff = 0.2
	// defaultBatchSize bounds concurrently outstanding thread lookups.
	defaultBatchSize = 10
	defaultFetchLimit = 100
	threadDepth       = 1
)

// Options tunes one pipeline instance.
type Options struct {
	FetchLimit int
	BatchSize  int
	// ContextTTL bounds thread context staleness in the cache; zero
	// takes DefaultContextTTL.
	ContextTTL time.Duration
	// OnBatch, when set, receives each batch's surviving items as soon
	// as the batch resolves, before the next batch starts.
	OnBatch func(items []domain.FeedItem)
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Pipeline produces the ordered, decorated item list for one feed
// configuration. It owns its context cache; the cache survives across
// runs of the same instance and is dropped on Reset.
type Pipeline struct {
	source  Source
	scorer  *scoring.KeywordScorer
	cache   *ContextCache
	logger  logger.Logger
	metrics *metrics.Metrics
	opts    Options
}

// New creates a pipeline for one feed. The metrics argument may be nil.
func New(source Source, log logger.Logger, m *metrics.Metrics, opts Options) *Pipeline {
	if opts.FetchLimit <= 0 {
		opts.FetchLimit = defaultFetchLimit
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{
		source:  source,
		scorer:  scoring.NewKeywordScorer(log),
		cache:   NewContextCache(opts.ContextTTL),
		logger:  log,
		metrics: m,
		opts:    opts,
	}
}

// Cache exposes the pipeline-owned context cache.
func (p *Pipeline) Cache() *ContextCache {
	return p.cache
}

// Reset clears the context cache. Call when the pipeline is repointed
// at a different feed or torn down.
func (p *Pipeline) Reset() {
	p.cache.Reset()
}

// resolved is a candidate post with its thread context, or the lookup
// error that excluded it.
type resolved struct {
	post   domain.Post
	thread *domain.Thread
	err    error
}

// Run executes one pipeline pass. A fetch failure aborts the run with
// no partial results; a single item's lookup failure excludes only
// that item. Returns the full ordered included list; OnBatch sees the
// same items incrementally.
func (p *Pipeline) Run(ctx context.Context, cfg domain.FeedConfig, userDID string) ([]domain.FeedItem, error) {
	start := time.Now()

	posts, err := p.source.FetchRecent(ctx, p.opts.FetchLimit)
	if err != nil {
		p.recordRun("fetch_error", start)
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceFetch, err)
	}
	if p.metrics != nil {
		p.metrics.ItemsFetchedTotal.Add(float64(len(posts)))
	}

	// At-most-once processing within a run.
	seen := make(map[string]struct{}, len(posts))
	candidates := make([]domain.Post, 0, len(posts))
	for _, post := range posts {
		if _, dup := seen[post.URI]; dup {
			continue
		}
		seen[post.URI] = struct{}{}
		candidates = append(candidates, post)
	}

	p.logger.Debug("feed run started",
		logger.String("feed_id", cfg.ID),
		logger.Int("candidates", len(candidates)),
		logger.Int("batch_size", p.opts.BatchSize))

	included := make([]domain.FeedItem, 0, len(candidates))
	for batchStart := 0; batchStart < len(candidates); batchStart += p.opts.BatchSize {
		if ctx.Err() != nil {
			p.recordRun("canceled", start)
			return included, ctx.Err()
		}

		end := batchStart + p.opts.BatchSize
		if end > len(candidates) {
			end = len(candidates)
		}

		batch := p.resolveBatch(ctx, candidates[batchStart:end])
		items := p.filterBatch(cfg, userDID, batch)
		included = append(included, items...)

		if p.opts.OnBatch != nil && len(items) > 0 {
			p.opts.OnBatch(items)
		}
	}

	p.logger.Info("feed run complete",
		logger.String("feed_id", cfg.ID),
		logger.Int("fetched", len(posts)),
		logger.Int("included", len(included)),
		logger.Duration("duration", time.Since(start)))

	p.recordRun("ok", start)
	if p.metrics != nil {
		p.metrics.ItemsIncludedTotal.Add(float64(len(included)))
	}

	return included, nil
}

// resolveBatch fans the batch out to one worker per outstanding lookup
// and reassembles results in original candidate order once the whole
// batch resolves.
func (p *Pipeline) resolveBatch(ctx context.Context, batch []domain.Post) []resolved {
	results := make([]resolved, len(batch))

	var wg sync.WaitGroup
	for i := range batch {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			post := batch[idx]
			thread, err := p.resolveContext(ctx, post)
			results[idx] = resolved{post: post, thread: thread, err: err}
		}(i)
	}
	wg.Wait()

	return results
}

// resolveContext returns the thread context for a post, consulting the
// cache first.
func (p *Pipeline) resolveContext(ctx context.Context, post domain.Post) (*domain.Thread, error) {
	if thread, ok := p.cache.Get(post.URI); ok {
		if p.metrics != nil {
			p.metrics.CacheHitsTotal.Inc()
		}
		return thread, nil
	}
	if p.metrics != nil {
		p.metrics.CacheMissesTotal.Inc()
	}

	thread, err := p.source.FetchThread(ctx, post.URI, threadDepth)
	if err != nil {
		return nil, err
	}
	p.cache.Put(post.URI, thread)
	return thread, nil
}

// filterBatch applies the filter chain to each resolved candidate in
// order and decorates survivors. Filter decisions are terminal within
// a run; nothing is retried.
func (p *Pipeline) filterBatch(cfg domain.FeedConfig, userDID string, batch []resolved) []domain.FeedItem {
	now := p.opts.Now()
	items := make([]domain.FeedItem, 0, len(batch))

	for _, r := range batch {
		if r.err != nil {
			p.exclude(r.post, ReasonLookupFailed)
			p.logger.Warn("thread context lookup failed",
				logger.String("uri", r.post.URI),
				logger.Error(r.err))
			if p.metrics != nil {
				p.metrics.LookupFailures.Inc()
			}
			continue
		}

		// The engine surfaces un-engaged content: anything the user
		// already replied to is dropped first.
		if r.thread.HasReplyFrom(userDID) {
			p.exclude(r.post, ReasonAlreadyReplied)
			continue
		}

		// MinReplies is part of the configuration but is intentionally
		// not enforced here; only likes and reposts gate items.
		if r.post.LikeCount < cfg.Thresholds.MinLikes || r.post.RepostCount < cfg.Thresholds.MinReposts {
			p.exclude(r.post, ReasonInteractions)
			continue
		}

		timeScore := scoring.ScoreTime(r.post.IndexedAt, cfg.TimeRange, now)
		if timeScore < timeScoreCutoff {
			p.exclude(r.post, ReasonTimeRelevance)
			continue
		}

		var match *domain.KeywordMatch
		if cfg.HasKeywords() {
			match = p.scorer.Match(r.post.Text, cfg.Keywords)
			if match.Percentage < cfg.KeywordThreshold {
				p.exclude(r.post, ReasonKeywords)
				continue
			}
		}

		item := domain.FeedItem{
			Post:         r.post,
			KeywordMatch: match,
			TimeScore:    timeScore,
		}
		if r.post.IsReply() && r.thread.Parent != nil {
			item.ParentPost = r.thread.Parent
		}
		items = append(items, item)
	}

	return items
}

func (p *Pipeline) exclude(post domain.Post, reason string) {
	p.logger.Debug("item excluded",
		logger.String("uri", post.URI),
		logger.String("reason", reason))
	if p.metrics != nil {
		p.metrics.ItemsExcludedTotal.WithLabelValues(reason).Inc()
	}
}

func (p *Pipeline) recordRun(status string, start time.Time) {
	if p.metrics == nil {
		return
	}
	p.metrics.RunsTotal.WithLabelValues(status).Inc()
	p.metrics.RunDurationSeconds.Observe(time.Since(start).Seconds())
}
