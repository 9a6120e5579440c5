package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	applog "spesebot/internal/log"
)

// PendingProcessor re-drives one batch of records that have not reached the sheet.
type PendingProcessor interface {
	ProcessPending(ctx context.Context) error
}

// SyncProcessorConfig holds configuration for the sync processor
type SyncProcessorConfig struct {
	// PollInterval is how often pending records are re-driven (default: 1m)
	PollInterval time.Duration
}

func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval: time.Minute,
	}
}

// SyncProcessor periodically runs a PendingProcessor so rows whose AMQP message
// was lost still reach the sheet.
type SyncProcessor struct {
	processor PendingProcessor
	config    SyncProcessorConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSyncProcessor(processor PendingProcessor, config SyncProcessorConfig) *SyncProcessor {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultSyncProcessorConfig().PollInterval
	}
	return &SyncProcessor{
		processor: processor,
		config:    config,
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	applog.FromContext(ctx).WithComponent(applog.ComponentWorker).InfoContext(ctx, "Sync processor started",
		"poll_interval", p.config.PollInterval)

	return nil
}

// Stop signals the loop and waits for the current batch to finish.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	logger := applog.FromContext(ctx).WithComponent(applog.ComponentWorker)
	select {
	case <-doneCh:
		logger.InfoContext(ctx, "Sync processor stopped gracefully")
	case <-ctx.Done():
		logger.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.processor.ProcessPending(ctx); err != nil {
				applog.FromContext(ctx).WithComponent(applog.ComponentWorker).
					LogError(ctx, "Periodic pending sync failed", err, applog.OpSync, nil)
			}
		}
	}
}
