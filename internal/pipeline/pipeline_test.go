package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/curator/internal/domain"
	"github.com/jonesrussell/north-cloud/curator/internal/logger"
)

const testUserDID = "did:plc:curator-user"

// fakeSource serves a fixed post list and per-URI thread contexts,
// counting thread lookups so cache behavior is observable.
type fakeSource struct {
	mu          sync.Mutex
	posts       []domain.Post
	threads     map[string]*domain.Thread
	threadErrs  map[string]error
	fetchErr    error
	threadCalls map[string]int
}

func newFakeSource(posts ...domain.Post) *fakeSource {
	return &fakeSource{
		posts:       posts,
		threads:     make(map[string]*domain.Thread),
		threadErrs:  make(map[string]error),
		threadCalls: make(map[string]int),
	}
}

func (s *fakeSource) FetchRecent(_ context.Context, limit int) ([]domain.Post, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	if limit < len(s.posts) {
		return s.posts[:limit], nil
	}
	return s.posts, nil
}

func (s *fakeSource) FetchThread(_ context.Context, uri string, _ int) (*domain.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threadCalls[uri]++
	if err, ok := s.threadErrs[uri]; ok {
		return nil, err
	}
	if t, ok := s.threads[uri]; ok {
		return t, nil
	}
	return &domain.Thread{}, nil
}

func (s *fakeSource) calls(uri string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.threadCalls[uri]
}

func testPost(uri string, age time.Duration, now time.Time) domain.Post {
	return domain.Post{
		URI:       uri,
		CID:       "cid-" + uri,
		Author:    domain.Author{DID: "did:plc:author", Handle: "author.test"},
		Text:      "a fresh post about science news",
		IndexedAt: now.Add(-age),
	}
}

func testPipeline(src Source, now time.Time, opts Options) *Pipeline {
	if opts.Now == nil {
		opts.Now = func() time.Time { return now }
	}
	return New(src, logger.NewNop(), nil, opts)
}

func openConfig() domain.FeedConfig {
	return domain.FeedConfig{ID: "feed-1", Name: "open"}
}

func TestRunIncludesFreshPosts(t *testing.T) {
	now := time.Now()
	src := newFakeSource(
		testPost("at://a", time.Hour, now),
		testPost("at://b", 2*time.Hour, now),
	)
	p := testPipeline(src, now, Options{})

	items, err := p.Run(context.Background(), openConfig(), testUserDID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "at://a", items[0].Post.URI)
	assert.Equal(t, "at://b", items[1].Post.URI)
	assert.Greater(t, items[0].TimeScore, timeScoreCutoff)
}

func TestRunExcludesBelowInteractionThresholds(t *testing.T) {
	now := time.Now()
	popular := testPost("at://popular", time.Hour, now)
	popular.LikeCount = 150
	quiet := testPost("at://quiet", time.Hour, now)
	quiet.LikeCount = 50

	src := newFakeSource(popular, quiet)
	p := testPipeline(src, now, Options{})

	cfg := openConfig()
	cfg.Thresholds.MinLikes = 100

	items, err := p.Run(context.Background(), cfg, testUserDID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "at://popular", items[0].Post.URI)
}

func TestRunIgnoresMinReplies(t *testing.T) {
	// MinReplies may be configured but never gates items.
	now := time.Now()
	post := testPost("at://no-replies", time.Hour, now)
	post.ReplyCount = 0

	src := newFakeSource(post)
	p := testPipeline(src, now, Options{})

	cfg := openConfig()
	cfg.Thresholds.MinReplies = 10

	items, err := p.Run(context.Background(), cfg, testUserDID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRunExcludesAlreadyReplied(t *testing.T) {
	now := time.Now()
	answered := testPost("at://answered", time.Hour, now)
	open := testPost("at://open", time.Hour, now)

	src := newFakeSource(answered, open)
	src.threads["at://answered"] = &domain.Thread{
		Post: answered,
		Replies: []domain.Post{
			{URI: "at://reply", Author: domain.Author{DID: testUserDID}},
		},
	}
	p := testPipeline(src, now, Options{})

	items, err := p.Run(context.Background(), openConfig(), testUserDID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "at://open", items[0].Post.URI)
}

func TestRunExcludesStalePosts(t *testing.T) {
	now := time.Now()
	// At 60 days the unbounded curve is well under the cutoff.
	src := newFakeSource(
		testPost("at://fresh", time.Hour, now),
		testPost("at://stale", 60*24*time.Hour, now),
	)
	p := testPipeline(src, now, Options{})

	items, err := p.Run(context.Background(), openConfig(), testUserDID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "at://fresh", items[0].Post.URI)
}

func TestRunKeywordThreshold(t *testing.T) {
	now := time.Now()
	onTopic := testPost("at://on-topic", time.Hour, now)
	onTopic.Text = "new science results published today"
	offTopic := testPost("at://off-topic", time.Hour, now)
	offTopic.Text = "what I had for lunch"

	src := newFakeSource(onTopic, offTopic)
	p := testPipeline(src, now, Options{})

	cfg := openConfig()
	cfg.Keywords = []string{"science"}
	cfg.KeywordThreshold = 50

	items, err := p.Run(context.Background(), cfg, testUserDID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "at://on-topic", items[0].Post.URI)
	require.NotNil(t, items[0].KeywordMatch)
	assert.InDelta(t, 100.0, items[0].KeywordMatch.Percentage, 1e-9)
}

func TestRunEmptyKeywordsSkipsScoring(t *testing.T) {
	now := time.Now()
	src := newFakeSource(testPost("at://a", time.Hour, now))
	p := testPipeline(src, now, Options{})

	items, err := p.Run(context.Background(), openConfig(), testUserDID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].KeywordMatch)
}

func TestRunFetchFailureAborts(t *testing.T) {
	src := newFakeSource()
	src.fetchErr = errors.New("upstream 503")
	p := testPipeline(src, time.Now(), Options{})

	items, err := p.Run(context.Background(), openConfig(), testUserDID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceFetch)
	assert.Nil(t, items)
}

func TestRunLookupFailureExcludesOnlyThatItem(t *testing.T) {
	now := time.Now()
	src := newFakeSource(
		testPost("at://ok-1", time.Hour, now),
		testPost("at://broken", time.Hour, now),
		testPost("at://ok-2", time.Hour, now),
	)
	src.threadErrs["at://broken"] = errors.New("thread not found")
	p := testPipeline(src, now, Options{})

	items, err := p.Run(context.Background(), openConfig(), testUserDID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "at://ok-1", items[0].Post.URI)
	assert.Equal(t, "at://ok-2", items[1].Post.URI)
}

func TestRunDeduplicatesByURI(t *testing.T) {
	now := time.Now()
	post := testPost("at://dup", time.Hour, now)
	src := newFakeSource(post, post, post)
	p := testPipeline(src, now, Options{})

	items, err := p.Run(context.Background(), openConfig(), testUserDID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, src.calls("at://dup"))
}

func TestRunPreservesFetchOrder(t *testing.T) {
	now := time.Now()
	posts := make([]domain.Post, 0, 25)
	for i := 0; i < 25; i++ {
		posts = append(posts, testPost(fmt.Sprintf("at://post-%02d", i), time.Hour, now))
	}
	src := newFakeSource(posts...)
	p := testPipeline(src, now, Options{BatchSize: 10})

	items, err := p.Run(context.Background(), openConfig(), testUserDID)
	require.NoError(t, err)
	require.Len(t, items, 25)
	for i, item := range items {
		assert.Equal(t, fmt.Sprintf("at://post-%02d", i), item.Post.URI)
	}
}

func TestRunPublishesBatchesProgressively(t *testing.T) {
	now := time.Now()
	posts := make([]domain.Post, 0, 25)
	for i := 0; i < 25; i++ {
		posts = append(posts, testPost(fmt.Sprintf("at://post-%02d", i), time.Hour, now))
	}
	src := newFakeSource(posts...)

	var batches [][]domain.FeedItem
	p := testPipeline(src, now, Options{
		BatchSize: 10,
		OnBatch: func(items []domain.FeedItem) {
			batches = append(batches, items)
		},
	})

	items, err := p.Run(context.Background(), openConfig(), testUserDID)
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 10)
	assert.Len(t, batches[1], 10)
	assert.Len(t, batches[2], 5)

	var flat []domain.FeedItem
	for _, b := range batches {
		flat = append(flat, b...)
	}
	assert.Equal(t, items, flat)
}

func TestRunWarmCacheSkipsLookups(t *testing.T) {
	now := time.Now()
	src := newFakeSource(
		testPost("at://a", time.Hour, now),
		testPost("at://b", time.Hour, now),
	)
	p := testPipeline(src, now, Options{})

	first, err := p.Run(context.Background(), openConfig(), testUserDID)
	require.NoError(t, err)
	second, err := p.Run(context.Background(), openConfig(), testUserDID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.calls("at://a"))
	assert.Equal(t, 1, src.calls("at://b"))
}

func TestRunExpiredContextIsResolvedAgain(t *testing.T) {
	now := time.Now()
	src := newFakeSource(testPost("at://a", time.Hour, now))
	p := testPipeline(src, now, Options{ContextTTL: 10 * time.Minute})

	clock := now
	p.Cache().now = func() time.Time { return clock }

	_, err := p.Run(context.Background(), openConfig(), testUserDID)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls("at://a"))

	clock = clock.Add(11 * time.Minute)
	_, err = p.Run(context.Background(), openConfig(), testUserDID)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls("at://a"))
}

func TestRunFailedLookupIsNotCached(t *testing.T) {
	now := time.Now()
	src := newFakeSource(testPost("at://flaky", time.Hour, now))
	src.threadErrs["at://flaky"] = errors.New("timeout")
	p := testPipeline(src, now, Options{})

	items, err := p.Run(context.Background(), openConfig(), testUserDID)
	require.NoError(t, err)
	assert.Empty(t, items)

	// The next run retries the lookup once the source recovers.
	src.mu.Lock()
	delete(src.threadErrs, "at://flaky")
	src.mu.Unlock()

	items, err = p.Run(context.Background(), openConfig(), testUserDID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 2, src.calls("at://flaky"))
}

func TestRunDecoratesReplyWithParent(t *testing.T) {
	now := time.Now()
	parent := testPost("at://parent", 2*time.Hour, now)
	reply := testPost("at://reply", time.Hour, now)
	reply.Reply = &domain.ReplyRef{RootURI: "at://parent", ParentURI: "at://parent"}

	src := newFakeSource(reply)
	src.threads["at://reply"] = &domain.Thread{Post: reply, Parent: &parent}
	p := testPipeline(src, now, Options{})

	items, err := p.Run(context.Background(), openConfig(), testUserDID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].ParentPost)
	assert.Equal(t, "at://parent", items[0].ParentPost.URI)
}

func TestRunCanceledContextReturnsPartial(t *testing.T) {
	now := time.Now()
	posts := make([]domain.Post, 0, 20)
	for i := 0; i < 20; i++ {
		posts = append(posts, testPost(fmt.Sprintf("at://post-%02d", i), time.Hour, now))
	}
	src := newFakeSource(posts...)

	ctx, cancel := context.WithCancel(context.Background())
	p := testPipeline(src, now, Options{
		BatchSize: 10,
		OnBatch:   func([]domain.FeedItem) { cancel() },
	})

	items, err := p.Run(ctx, openConfig(), testUserDID)
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, items, 10)
}

func TestResetClearsCache(t *testing.T) {
	now := time.Now()
	src := newFakeSource(testPost("at://a", time.Hour, now))
	p := testPipeline(src, now, Options{})

	_, err := p.Run(context.Background(), openConfig(), testUserDID)
	require.NoError(t, err)
	require.Equal(t, 1, p.Cache().Len())

	p.Reset()
	assert.Equal(t, 0, p.Cache().Len())

	_, err = p.Run(context.Background(), openConfig(), testUserDID)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls("at://a"))
}
