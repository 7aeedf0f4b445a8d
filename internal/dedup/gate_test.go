package dedup

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobsonar/pkg/models"
)

type fakeLedger struct {
	byMessage map[string]bool
	byHash    map[string]time.Time
	added     int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		byMessage: make(map[string]bool),
		byHash:    make(map[string]time.Time),
	}
}

func messageKey(channelID string, messageID int64) string {
	return fmt.Sprintf("%s/%d", channelID, messageID)
}

func (l *fakeLedger) IsMessageProcessed(_ context.Context, channelID string, messageID int64) (bool, error) {
	return l.byMessage[messageKey(channelID, messageID)], nil
}

func (l *fakeLedger) IsContentDuplicate(_ context.Context, hash string, window time.Duration) (bool, error) {
	at, ok := l.byHash[hash]
	if !ok {
		return false, nil
	}
	return time.Since(at) <= window, nil
}

func (l *fakeLedger) AddProcessedMessage(_ context.Context, channelID string, messageID int64, hash string, _ bool, _ *int) error {
	key := messageKey(channelID, messageID)
	if l.byMessage[key] {
		return nil
	}
	l.byMessage[key] = true
	l.byHash[hash] = time.Now()
	l.added++
	return nil
}

func (l *fakeLedger) CleanupOldMessages(_ context.Context, olderThan time.Duration) (int64, error) {
	var removed int64
	for hash, at := range l.byHash {
		if time.Since(at) > olderThan {
			delete(l.byHash, hash)
			removed++
		}
	}
	return removed, nil
}

func posting(channelID string, messageID int64, text string) *models.Posting {
	return &models.Posting{
		ChannelID: channelID,
		MessageID: messageID,
		Text:      text,
		Date:      time.Now(),
	}
}

func TestGateExactDuplicate(t *testing.T) {
	ledger := newFakeLedger()
	gate := NewGate(ledger, nil, 7*24*time.Hour)
	ctx := context.Background()

	p := posting("-1001", 10, "Senior Go Developer at Acme, apply now")

	dup, err := gate.IsDuplicate(ctx, p)
	require.NoError(t, err)
	assert.False(t, dup)

	require.NoError(t, gate.MarkProcessed(ctx, p, true, nil))

	dup, err = gate.IsDuplicate(ctx, p)
	require.NoError(t, err)
	assert.True(t, dup)
}

func TestGateContentDuplicateAcrossChannels(t *testing.T) {
	ledger := newFakeLedger()
	gate := NewGate(ledger, nil, 7*24*time.Hour)
	ctx := context.Background()

	original := posting("-1001", 10, "Senior Go Developer at Acme, salary 120000, apply now")
	repost := posting("-1002", 99, "SENIOR GO DEVELOPER at Acme, salary 135000, apply now")

	require.NoError(t, gate.MarkProcessed(ctx, original, true, nil))

	dup, err := gate.IsDuplicate(ctx, repost)
	require.NoError(t, err)
	assert.True(t, dup, "repost with different numbers and casing should be a duplicate")
}

func TestGateWindowExpiry(t *testing.T) {
	ledger := newFakeLedger()
	gate := NewGate(ledger, nil, time.Millisecond)
	ctx := context.Background()

	original := posting("-1001", 10, "Senior Go Developer at Acme, apply now")
	repost := posting("-1002", 99, "Senior Go Developer at Acme, apply now")

	require.NoError(t, gate.MarkProcessed(ctx, original, true, nil))
	time.Sleep(5 * time.Millisecond)

	dup, err := gate.IsDuplicate(ctx, repost)
	require.NoError(t, err)
	assert.False(t, dup, "content hash outside the window should not block reprocessing")
}

func TestGateMarkProcessedIdempotent(t *testing.T) {
	ledger := newFakeLedger()
	gate := NewGate(ledger, nil, 7*24*time.Hour)
	ctx := context.Background()

	p := posting("-1001", 10, "Senior Go Developer at Acme")

	require.NoError(t, gate.MarkProcessed(ctx, p, true, nil))
	require.NoError(t, gate.MarkProcessed(ctx, p, true, nil))

	assert.Equal(t, 1, ledger.added)
}

type fakeCache struct {
	seen map[string]bool
}

func (c *fakeCache) SeenHash(_ context.Context, hash string) bool { return c.seen[hash] }
func (c *fakeCache) MarkHash(_ context.Context, hash string)      { c.seen[hash] = true }

func TestGateUsesCacheBeforeLedger(t *testing.T) {
	ledger := newFakeLedger()
	cache := &fakeCache{seen: make(map[string]bool)}
	gate := NewGate(ledger, cache, 7*24*time.Hour)
	ctx := context.Background()

	p := posting("-1001", 10, "Senior Go Developer at Acme")
	require.NoError(t, gate.MarkProcessed(ctx, p, true, nil))

	assert.True(t, cache.seen[Hash(p.Text)], "MarkProcessed should populate the cache")

	repost := posting("-1002", 11, p.Text)
	dup, err := gate.IsDuplicate(ctx, repost)
	require.NoError(t, err)
	assert.True(t, dup)
}
