package pipeline

import (
	"context"
	"fmt"
	"sync"

	"jobsonar/internal/config"
	"jobsonar/internal/logging"
	"jobsonar/pkg/models"
)

// PoolStats tracks worker pool counters
type PoolStats struct {
	Queued    int64
	Processed int64
	Alerted   int64
	Skipped   int64
	Failed    int64
}

// Pool fans postings out to a fixed set of workers, each running the
// pipeline with a per-posting timeout. A failing posting never affects
// the others.
type Pool struct {
	cfg      *config.Config
	pipeline *Pipeline
	queue    chan *models.Posting
	logger   logging.Logger

	mu      sync.Mutex
	stats   PoolStats
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewPool creates a worker pool over the given pipeline
func NewPool(cfg *config.Config, p *Pipeline) *Pool {
	return &Pool{
		cfg:      cfg,
		pipeline: p,
		queue:    make(chan *models.Posting, cfg.Workers.QueueSize),
		logger:   logging.GetGlobalLogger(),
	}
}

// Start launches the workers
func (pl *Pool) Start() error {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	if pl.running {
		return fmt.Errorf("worker pool is already running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	pl.cancel = cancel

	for i := 0; i < pl.cfg.Workers.PoolSize; i++ {
		pl.wg.Add(1)
		go pl.worker(ctx, i+1)
	}

	pl.running = true
	pl.logger.Info("Worker pool started", map[string]interface{}{
		"workers": pl.cfg.Workers.PoolSize,
	})
	return nil
}

// Stop drains the workers and waits for in-flight postings to finish
func (pl *Pool) Stop() {
	pl.mu.Lock()
	if !pl.running {
		pl.mu.Unlock()
		return
	}
	pl.running = false
	cancel := pl.cancel
	pl.mu.Unlock()

	cancel()
	pl.wg.Wait()
	pl.logger.Info("Worker pool stopped", nil)
}

// Submit queues a posting for processing. Returns an error when the
// pool is stopped or the queue is full.
func (pl *Pool) Submit(posting *models.Posting) error {
	pl.mu.Lock()
	if !pl.running {
		pl.mu.Unlock()
		return fmt.Errorf("worker pool is not running")
	}
	pl.mu.Unlock()

	select {
	case pl.queue <- posting:
		pl.mu.Lock()
		pl.stats.Queued++
		pl.mu.Unlock()
		return nil
	default:
		return fmt.Errorf("posting queue is full")
	}
}

// Stats returns a snapshot of the pool counters
func (pl *Pool) Stats() PoolStats {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.stats
}

// IsRunning reports whether the pool accepts postings
func (pl *Pool) IsRunning() bool {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.running
}

func (pl *Pool) worker(ctx context.Context, id int) {
	defer pl.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case posting := <-pl.queue:
			pl.processOne(ctx, id, posting)
		}
	}
}

func (pl *Pool) processOne(ctx context.Context, workerID int, posting *models.Posting) {
	runCtx, cancel := context.WithTimeout(ctx, pl.cfg.Workers.Timeout)
	defer cancel()

	outcome, err := pl.run(runCtx, posting)

	pl.mu.Lock()
	defer pl.mu.Unlock()
	pl.stats.Processed++

	switch {
	case err != nil:
		pl.stats.Failed++
		pl.logger.Error("Pipeline run failed", map[string]interface{}{
			"worker_id":  workerID,
			"channel_id": posting.ChannelID,
			"message_id": posting.MessageID,
			"error":      err.Error(),
		})
	case outcome.Skipped != SkipNone:
		pl.stats.Skipped++
	case outcome.WouldAlert:
		pl.stats.Alerted++
	}
}

// run isolates a single pipeline run, a panic in one posting must not
// take down the worker
func (pl *Pool) run(ctx context.Context, posting *models.Posting) (outcome *Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome = nil
			err = fmt.Errorf("pipeline run panicked: %v", r)
		}
	}()
	return pl.pipeline.Process(ctx, posting, Options{})
}
