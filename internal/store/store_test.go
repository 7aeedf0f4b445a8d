package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobsonar/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestChannelLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	added, err := s.AddChannel(ctx, "-1001234", "Go Jobs")
	require.NoError(t, err)
	assert.True(t, added)

	// Second registration is a no-op
	added, err = s.AddChannel(ctx, "-1001234", "Go Jobs")
	require.NoError(t, err)
	assert.False(t, added)

	monitored, err := s.IsChannelMonitored(ctx, "-1001234")
	require.NoError(t, err)
	assert.True(t, monitored)

	channels, err := s.ListChannels(ctx, false)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "Go Jobs", channels[0].ChannelName)

	removed, err := s.RemoveChannel(ctx, "-1001234")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.RemoveChannel(ctx, "-1001234")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestProcessedMessageLedger(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	processed, err := s.IsMessageProcessed(ctx, "-100a", 1)
	require.NoError(t, err)
	assert.False(t, processed)

	score := 85
	require.NoError(t, s.AddProcessedMessage(ctx, "-100a", 1, "hash-1", true, &score))

	processed, err = s.IsMessageProcessed(ctx, "-100a", 1)
	require.NoError(t, err)
	assert.True(t, processed)

	// Same message ID in another channel is a different message
	processed, err = s.IsMessageProcessed(ctx, "-100b", 1)
	require.NoError(t, err)
	assert.False(t, processed)

	// Re-inserting the same pair does not error
	require.NoError(t, s.AddProcessedMessage(ctx, "-100a", 1, "hash-1", true, nil))
}

func TestContentDuplicateWindow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddProcessedMessage(ctx, "-100a", 1, "hash-1", true, nil))

	dup, err := s.IsContentDuplicate(ctx, "hash-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, dup)

	dup, err = s.IsContentDuplicate(ctx, "hash-other", time.Hour)
	require.NoError(t, err)
	assert.False(t, dup)

	// A row older than the window no longer counts
	time.Sleep(5 * time.Millisecond)
	dup, err = s.IsContentDuplicate(ctx, "hash-1", time.Millisecond)
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestCleanupOldMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddProcessedMessage(ctx, "-100a", 1, "h1", false, nil))
	require.NoError(t, s.AddProcessedMessage(ctx, "-100a", 2, "h2", false, nil))

	time.Sleep(5 * time.Millisecond)
	removed, err := s.CleanupOldMessages(ctx, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	removed, err = s.CleanupOldMessages(ctx, time.Millisecond)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestMatchedJobs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	remote := true
	job := &models.MatchedJob{
		ChannelID: "-100a",
		MessageID: 10,
		Fields: models.JobFields{
			RoleTitle:       "Backend Engineer",
			Company:         "Acme",
			Location:        "Berlin",
			Remote:          &remote,
			Seniority:       models.SenioritySenior,
			SalaryInfo:      "$120k",
			ApplicationLink: "https://jobs.example.com/1",
			RawText:         "We are hiring a backend engineer",
		},
		Result: models.MatchResult{
			Score:         88,
			MatchReasons:  []string{"Skills match: go, postgresql", "Remote position"},
			FilterReasons: []string{"Remote as preferred"},
			SemanticScore: 52.3,
			KeywordScore:  21,
		},
	}
	require.NoError(t, s.AddMatchedJob(ctx, job))
	assert.NotZero(t, job.ID)
	assert.False(t, job.CreatedAt.IsZero())

	job2 := &models.MatchedJob{
		ChannelID: "-100a",
		MessageID: 11,
		Fields:    models.JobFields{RoleTitle: "Data Engineer", RawText: "data"},
		Result:    models.MatchResult{Score: 72},
	}
	require.NoError(t, s.AddMatchedJob(ctx, job2))

	recent, err := s.RecentMatches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	// Newest first, round-tripped reason lists intact
	assert.Equal(t, int64(11), recent[0].MessageID)
	assert.Equal(t, "Backend Engineer", recent[1].Fields.RoleTitle)
	assert.Equal(t, []string{"Skills match: go, postgresql", "Remote position"}, recent[1].Result.MatchReasons)
	require.NotNil(t, recent[1].Fields.Remote)
	assert.True(t, *recent[1].Fields.Remote)

	last, err := s.LastMatch(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, int64(11), last.MessageID)
}

func TestLastMatchEmpty(t *testing.T) {
	s := newTestStore(t)

	last, err := s.LastMatch(context.Background())
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.AddFilter(ctx, models.FilterKeyword, "golang")
	require.NoError(t, err)
	assert.NotZero(t, id)

	_, err = s.AddFilter(ctx, models.FilterExcluded, "crypto")
	require.NoError(t, err)
	_, err = s.AddFilter(ctx, models.FilterRemote, "yes")
	require.NoError(t, err)

	filters, err := s.ListFilters(ctx)
	require.NoError(t, err)
	assert.Len(t, filters, 3)

	fs, err := s.FilterSet(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"golang"}, fs.Keywords)
	assert.Equal(t, []string{"crypto"}, fs.Excluded)
	assert.Equal(t, models.RemoteYes, fs.Remote)
	assert.Equal(t, models.DefaultThreshold, fs.Threshold)

	removed, err := s.RemoveFilter(ctx, id)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.RemoveFilter(ctx, id)
	require.NoError(t, err)
	assert.False(t, removed)

	cleared, err := s.ClearFilters(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cleared)
}

func TestFilterSetUsesStoredThreshold(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetSetting(ctx, SettingMatchThreshold, "85"))

	fs, err := s.FilterSet(ctx)
	require.NoError(t, err)
	assert.Equal(t, 85, fs.Threshold)
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	value, err := s.GetSetting(ctx, "missing", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", value)

	require.NoError(t, s.SetSetting(ctx, SettingPaused, "true"))
	paused, err := s.GetBoolSetting(ctx, SettingPaused, false)
	require.NoError(t, err)
	assert.True(t, paused)

	// Overwriting replaces the value
	require.NoError(t, s.SetSetting(ctx, SettingPaused, "false"))
	paused, err = s.GetBoolSetting(ctx, SettingPaused, true)
	require.NoError(t, err)
	assert.False(t, paused)

	threshold, err := s.GetIntSetting(ctx, SettingMatchThreshold, 70)
	require.NoError(t, err)
	assert.Equal(t, 70, threshold)

	require.NoError(t, s.SetSetting(ctx, SettingMatchThreshold, "not a number"))
	threshold, err = s.GetIntSetting(ctx, SettingMatchThreshold, 70)
	require.NoError(t, err)
	assert.Equal(t, 70, threshold)
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddChannel(ctx, "-100a", "A")
	require.NoError(t, err)
	require.NoError(t, s.AddProcessedMessage(ctx, "-100a", 1, "h1", true, nil))
	require.NoError(t, s.AddMatchedJob(ctx, &models.MatchedJob{
		ChannelID: "-100a",
		MessageID: 1,
		Fields:    models.JobFields{RawText: "x"},
		Result:    models.MatchResult{Score: 90},
	}))
	_, err = s.AddFilter(ctx, models.FilterKeyword, "go")
	require.NoError(t, err)

	status, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), status.ChannelsCount)
	assert.Equal(t, int64(1), status.ProcessedCount)
	assert.Equal(t, int64(1), status.MatchedCount)
	assert.Equal(t, int64(1), status.FiltersCount)
	require.NotNil(t, status.LastMatch)
}
