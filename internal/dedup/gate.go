package dedup

import (
	"context"
	"fmt"
	"time"

	"jobsonar/internal/logging"
	"jobsonar/pkg/models"
)

// Ledger is the persistence surface the gate needs. Implemented by the
// sqlite store.
type Ledger interface {
	IsMessageProcessed(ctx context.Context, channelID string, messageID int64) (bool, error)
	IsContentDuplicate(ctx context.Context, contentHash string, window time.Duration) (bool, error)
	AddProcessedMessage(ctx context.Context, channelID string, messageID int64, contentHash string, isJob bool, score *int) error
	CleanupOldMessages(ctx context.Context, olderThan time.Duration) (int64, error)
}

// HashCache is an optional accelerator in front of the ledger's
// content-hash lookup. Implementations must treat failures as misses.
type HashCache interface {
	SeenHash(ctx context.Context, hash string) bool
	MarkHash(ctx context.Context, hash string)
}

// Gate decides whether a posting has been seen before and records
// processed postings
type Gate struct {
	ledger Ledger
	cache  HashCache
	window time.Duration
	logger logging.Logger
}

// NewGate creates a deduplication gate. cache may be nil, in which case
// every content-hash check goes to the ledger.
func NewGate(ledger Ledger, cache HashCache, window time.Duration) *Gate {
	return &Gate{
		ledger: ledger,
		cache:  cache,
		window: window,
		logger: logging.GetGlobalLogger(),
	}
}

// IsDuplicate reports whether the posting was already processed, either
// by exact (channel_id, message_id) identity or by content hash within
// the dedup window. The exact check runs first so edited reposts of the
// same message never reach the hash comparison.
func (g *Gate) IsDuplicate(ctx context.Context, posting *models.Posting) (bool, error) {
	processed, err := g.ledger.IsMessageProcessed(ctx, posting.ChannelID, posting.MessageID)
	if err != nil {
		return false, fmt.Errorf("failed to check processed message: %w", err)
	}
	if processed {
		g.logger.Debug("Duplicate message ID", map[string]interface{}{
			"channel_id": posting.ChannelID,
			"message_id": posting.MessageID,
		})
		return true, nil
	}

	hash := Hash(posting.Text)

	if g.cache != nil && g.cache.SeenHash(ctx, hash) {
		g.logger.Debug("Duplicate content hash (cache)", map[string]interface{}{
			"content_hash": hash[:16],
		})
		return true, nil
	}

	duplicate, err := g.ledger.IsContentDuplicate(ctx, hash, g.window)
	if err != nil {
		return false, fmt.Errorf("failed to check content hash: %w", err)
	}
	if duplicate {
		g.logger.Debug("Duplicate content hash", map[string]interface{}{
			"content_hash": hash[:16],
		})
	}
	return duplicate, nil
}

// MarkProcessed records the posting in the ledger. Inserting an already
// recorded (channel_id, message_id) pair is a no-op, so marking is
// idempotent.
func (g *Gate) MarkProcessed(ctx context.Context, posting *models.Posting, isJob bool, score *int) error {
	hash := Hash(posting.Text)

	if err := g.ledger.AddProcessedMessage(ctx, posting.ChannelID, posting.MessageID, hash, isJob, score); err != nil {
		return fmt.Errorf("failed to mark message processed: %w", err)
	}

	if g.cache != nil {
		g.cache.MarkHash(ctx, hash)
	}
	return nil
}

// CleanupOld deletes ledger rows older than the retention period and
// returns the number of rows removed
func (g *Gate) CleanupOld(ctx context.Context, retention time.Duration) (int64, error) {
	count, err := g.ledger.CleanupOldMessages(ctx, retention)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up old messages: %w", err)
	}
	if count > 0 {
		g.logger.Info("Cleaned up old message records", map[string]interface{}{
			"count": count,
		})
	}
	return count, nil
}
