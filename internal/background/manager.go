package background

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jobsonar/internal/config"
	"jobsonar/internal/dedup"
	"jobsonar/internal/logging"
	"jobsonar/internal/logging/types"
)

// Janitor periodically expires old ledger rows so the dedup table does
// not grow without bound
type Janitor struct {
	cfg    *config.Config
	gate   *dedup.Gate
	logger types.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewJanitor creates a retention janitor for the dedup ledger
func NewJanitor(cfg *config.Config, gate *dedup.Gate) *Janitor {
	return &Janitor{
		cfg:    cfg,
		gate:   gate,
		logger: logging.GetGlobalLogger(),
	}
}

// Start begins the cleanup loop
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.running {
		return fmt.Errorf("janitor already running")
	}

	j.ctx, j.cancel = context.WithCancel(ctx)
	j.running = true

	j.wg.Add(1)
	go j.loop()

	j.logger.Info("Retention janitor started", map[string]interface{}{
		"interval":  j.cfg.Pipeline.CleanupInterval.String(),
		"retention": j.cfg.Pipeline.Retention.String(),
	})
	return nil
}

// Stop stops the cleanup loop and waits for a run in flight
func (j *Janitor) Stop(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.running {
		return nil
	}

	j.cancel()

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		j.logger.Info("Retention janitor stopped", map[string]interface{}{})
	case <-ctx.Done():
		j.logger.Warn("Retention janitor shutdown timed out", map[string]interface{}{})
	}

	j.running = false
	return nil
}

func (j *Janitor) loop() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.cfg.Pipeline.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-j.ctx.Done():
			return
		case <-ticker.C:
			j.runOnce()
		}
	}
}

func (j *Janitor) runOnce() {
	ctx, cancel := context.WithTimeout(j.ctx, time.Minute)
	defer cancel()

	removed, err := j.gate.CleanupOld(ctx, j.cfg.Pipeline.Retention)
	if err != nil {
		j.logger.Error("Ledger cleanup failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if removed > 0 {
		j.logger.Info("Expired old ledger entries", map[string]interface{}{
			"removed":   removed,
			"retention": j.cfg.Pipeline.Retention.String(),
		})
	}
}
