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

	"jobsonar/internal/classify"
	"jobsonar/internal/config"
	"jobsonar/internal/dedup"
	"jobsonar/internal/embeddings/providers"
	"jobsonar/internal/match"
	"jobsonar/pkg/models"
)

type fakeLedger struct {
	mu        sync.Mutex
	processed map[string]bool
	hashes    map[string]time.Time
	scores    map[string]*int
	isJob     map[string]bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		processed: make(map[string]bool),
		hashes:    make(map[string]time.Time),
		scores:    make(map[string]*int),
		isJob:     make(map[string]bool),
	}
}

func ledgerKey(channelID string, messageID int64) string {
	return fmt.Sprintf("%s/%d", channelID, messageID)
}

func (l *fakeLedger) IsMessageProcessed(ctx context.Context, channelID string, messageID int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.processed[ledgerKey(channelID, messageID)], nil
}

func (l *fakeLedger) IsContentDuplicate(ctx context.Context, hash string, window time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	seen, ok := l.hashes[hash]
	return ok && time.Since(seen) < window, nil
}

func (l *fakeLedger) AddProcessedMessage(ctx context.Context, channelID string, messageID int64, hash string, isJob bool, score *int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := ledgerKey(channelID, messageID)
	l.processed[key] = true
	l.hashes[hash] = time.Now()
	l.scores[key] = score
	l.isJob[key] = isJob
	return nil
}

func (l *fakeLedger) CleanupOldMessages(ctx context.Context, olderThan time.Duration) (int64, error) {
	return 0, nil
}

type fakeScraper struct {
	mu    sync.Mutex
	pages map[string]*models.ScrapedPage
	err   error
	calls []string
}

func (s *fakeScraper) ScrapePage(ctx context.Context, url string) (*models.ScrapedPage, error) {
	s.mu.Lock()
	s.calls = append(s.calls, url)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if page, ok := s.pages[url]; ok {
		return page, nil
	}
	return &models.ScrapedPage{URL: url}, nil
}

func (s *fakeScraper) Cleanup()        {}
func (s *fakeScraper) IsHealthy() bool { return true }

type fakeStore struct {
	filters models.FilterSet
	mu      sync.Mutex
	jobs    []*models.MatchedJob
}

func (s *fakeStore) FilterSet(ctx context.Context) (models.FilterSet, error) {
	return s.filters, nil
}

func (s *fakeStore) AddMatchedJob(ctx context.Context, job *models.MatchedJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	return nil
}

type fakeProfiles struct {
	profile *match.Profile
	err     error
}

func (p *fakeProfiles) OwnerProfile(ctx context.Context) (*match.Profile, error) {
	return p.profile, p.err
}

type fakeAlerter struct {
	mu     sync.Mutex
	alerts []models.MatchResult
}

func (a *fakeAlerter) SendJobAlert(ctx context.Context, posting *models.Posting, fields *models.JobFields, result models.MatchResult) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts = append(a.alerts, result)
	return nil
}

type fixture struct {
	pipeline *Pipeline
	ledger   *fakeLedger
	scraper  *fakeScraper
	store    *fakeStore
	profiles *fakeProfiles
	alerter  *fakeAlerter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := config.DefaultConfig()
	provider := providers.NewHashingProvider(128)

	profile, err := match.BuildProfile(context.Background(),
		provider, "Experienced golang developer building backend services with postgresql and kubernetes")
	require.NoError(t, err)

	f := &fixture{
		ledger:   newFakeLedger(),
		scraper:  &fakeScraper{pages: make(map[string]*models.ScrapedPage)},
		store:    &fakeStore{filters: models.FilterSet{Remote: models.RemoteAny, Threshold: 5}},
		profiles: &fakeProfiles{profile: profile},
		alerter:  &fakeAlerter{},
	}

	gate := dedup.NewGate(f.ledger, nil, cfg.Pipeline.DedupWindow)
	f.pipeline = New(cfg,
		classify.NewClassifier(cfg.Pipeline.MinKeywords),
		match.NewMatcher(provider),
		gate, f.store, f.scraper, f.profiles, f.alerter)
	return f
}

// longJobText is over the short-post limit so the scrape-first path is
// not taken
var longJobText = "We are hiring a Senior Backend Engineer to join our platform team. " +
	"You will design and run distributed services written in golang, work with postgresql " +
	"and kubernetes, and own your systems end to end. This is a remote position with a " +
	"salary of $120k-$150k depending on experience. Requirements: 5+ years of backend " +
	"experience. Apply here: https://jobs.lever.co/acme/backend-engineer"

func newPosting(text string) *models.Posting {
	return &models.Posting{
		ChannelID: "-1001234",
		MessageID: 42,
		Text:      text,
		Date:      time.Now(),
	}
}

func TestProcessFullFlow(t *testing.T) {
	f := newFixture(t)
	f.scraper.pages["https://jobs.lever.co/acme/backend-engineer"] = &models.ScrapedPage{
		Description: "Full description: golang, postgresql, kubernetes, docker and aws",
	}

	outcome, err := f.pipeline.Process(context.Background(), newPosting(longJobText), Options{})
	require.NoError(t, err)

	assert.Equal(t, SkipNone, outcome.Skipped)
	assert.True(t, outcome.IsJob)
	assert.GreaterOrEqual(t, outcome.KeywordCount, 2)
	require.NotNil(t, outcome.Fields)
	assert.Equal(t, "https://jobs.lever.co/acme/backend-engineer", outcome.Fields.ApplicationLink)
	assert.Contains(t, outcome.Fields.RawText, "--- From Application Page ---")
	require.NotNil(t, outcome.Result)
	assert.True(t, outcome.WouldAlert)

	// Alert sent and match persisted
	assert.Len(t, f.alerter.alerts, 1)
	require.Len(t, f.store.jobs, 1)
	assert.Equal(t, outcome.Result.Score, f.store.jobs[0].Result.Score)

	// Marked processed with the final score
	key := ledgerKey("-1001234", 42)
	assert.True(t, f.ledger.processed[key])
	require.NotNil(t, f.ledger.scores[key])
	assert.Equal(t, outcome.Result.Score, *f.ledger.scores[key])
}

func TestProcessNotAJob(t *testing.T) {
	f := newFixture(t)

	outcome, err := f.pipeline.Process(context.Background(),
		newPosting("Happy birthday to our community admin, what a great day"), Options{})
	require.NoError(t, err)

	assert.Equal(t, SkipNotJob, outcome.Skipped)
	assert.False(t, outcome.IsJob)

	// Still marked processed so it is never reclassified
	key := ledgerKey("-1001234", 42)
	assert.True(t, f.ledger.processed[key])
	assert.False(t, f.ledger.isJob[key])
	assert.Nil(t, f.ledger.scores[key])
	assert.Empty(t, f.alerter.alerts)
}

func TestProcessDuplicate(t *testing.T) {
	f := newFixture(t)
	posting := newPosting(longJobText)

	_, err := f.pipeline.Process(context.Background(), posting, Options{})
	require.NoError(t, err)

	outcome, err := f.pipeline.Process(context.Background(), posting, Options{})
	require.NoError(t, err)
	assert.Equal(t, SkipDuplicate, outcome.Skipped)
	assert.Len(t, f.alerter.alerts, 1, "only the first run alerts")
}

func TestProcessNoProfile(t *testing.T) {
	f := newFixture(t)
	f.profiles.profile = nil

	outcome, err := f.pipeline.Process(context.Background(), newPosting(longJobText), Options{})
	require.NoError(t, err)

	assert.Equal(t, SkipNoProfile, outcome.Skipped)
	assert.True(t, outcome.IsJob)
	assert.Nil(t, outcome.Result)

	// Marked processed with score zero so it is not reprocessed later
	key := ledgerKey("-1001234", 42)
	require.NotNil(t, f.ledger.scores[key])
	assert.Zero(t, *f.ledger.scores[key])
}

func TestProcessProfileErrorFails(t *testing.T) {
	f := newFixture(t)
	f.profiles.profile = nil
	f.profiles.err = errors.New("decrypt failed")

	_, err := f.pipeline.Process(context.Background(), newPosting(longJobText), Options{})
	assert.Error(t, err)
}

func TestProcessShortPostingScrapesFirst(t *testing.T) {
	f := newFixture(t)
	url := "https://jobs.lever.co/acme/backend-engineer"
	f.scraper.pages[url] = &models.ScrapedPage{
		FullText: "Senior Backend Engineer position. We are hiring golang developers. " +
			"Salary $140k. Apply today. Requirements: experience with postgresql.",
	}

	outcome, err := f.pipeline.Process(context.Background(),
		newPosting("Check this out: "+url), Options{})
	require.NoError(t, err)

	assert.True(t, outcome.IsJob)
	assert.Equal(t, url, outcome.Fields.ApplicationLink)

	// Already scraped before classification, no second fetch
	assert.Equal(t, []string{url}, f.scraper.calls)
}

func TestProcessJobURLOverridesKeywords(t *testing.T) {
	f := newFixture(t)
	f.scraper.err = errors.New("connection refused")

	outcome, err := f.pipeline.Process(context.Background(),
		newPosting("interesting https://boards.greenhouse.io/acme/4567"), Options{})
	require.NoError(t, err)

	// The link vouches for the posting even though scraping failed and
	// the text has no job keywords
	assert.True(t, outcome.IsJob)
	assert.Equal(t, "https://boards.greenhouse.io/acme/4567", outcome.Fields.ApplicationLink)
}

func TestProcessTestRunDoesNotPersist(t *testing.T) {
	f := newFixture(t)

	outcome, err := f.pipeline.Process(context.Background(), newPosting(longJobText),
		Options{Test: true, SkipScrape: true})
	require.NoError(t, err)

	assert.True(t, outcome.WouldAlert)
	assert.Empty(t, f.alerter.alerts)
	assert.Empty(t, f.store.jobs)
	assert.Empty(t, f.ledger.processed)

	// Re-running a test never hits the dedup gate
	outcome, err = f.pipeline.Process(context.Background(), newPosting(longJobText),
		Options{Test: true, SkipScrape: true})
	require.NoError(t, err)
	assert.Equal(t, SkipNone, outcome.Skipped)
}

func TestProcessThresholdOverride(t *testing.T) {
	f := newFixture(t)
	high := 101

	outcome, err := f.pipeline.Process(context.Background(), newPosting(longJobText),
		Options{Test: true, SkipScrape: true, Threshold: &high})
	require.NoError(t, err)

	assert.Equal(t, 101, outcome.Threshold)
	assert.False(t, outcome.WouldAlert)
}

func TestProcessSkipScrape(t *testing.T) {
	f := newFixture(t)

	url := "https://jobs.lever.co/acme/backend-engineer"
	outcome, err := f.pipeline.Process(context.Background(),
		newPosting("We are hiring! Apply now, salary $100k: "+url),
		Options{Test: true, SkipScrape: true})
	require.NoError(t, err)

	assert.True(t, outcome.IsJob)
	assert.Empty(t, f.scraper.calls)
	assert.Equal(t, url, outcome.Fields.ApplicationLink)
}

func TestPoolProcessesPostings(t *testing.T) {
	f := newFixture(t)
	cfg := config.DefaultConfig()
	cfg.Workers.PoolSize = 2

	pool := NewPool(cfg, f.pipeline)
	require.NoError(t, pool.Start())
	defer pool.Stop()

	assert.Error(t, pool.Start(), "double start fails")

	for i := int64(1); i <= 3; i++ {
		posting := newPosting(longJobText)
		posting.MessageID = i
		posting.Text += " team " + string(rune('a'+i)) // distinct content hashes
		require.NoError(t, pool.Submit(posting))
	}

	require.Eventually(t, func() bool {
		return pool.Stats().Processed == 3
	}, 5*time.Second, 10*time.Millisecond)

	stats := pool.Stats()
	assert.Equal(t, int64(3), stats.Queued)
	assert.Equal(t, int64(3), stats.Alerted)
}

func TestPoolRejectsWhenStopped(t *testing.T) {
	f := newFixture(t)
	pool := NewPool(config.DefaultConfig(), f.pipeline)

	assert.Error(t, pool.Submit(newPosting("text")))

	require.NoError(t, pool.Start())
	pool.Stop()
	assert.Error(t, pool.Submit(newPosting("text")))
}
