package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// PendingProcessor mirrors entries that were never mirrored.
type PendingProcessor interface {
	ProcessPending(ctx context.Context) error
}

// SweepProcessorConfig holds configuration for the sweep processor.
type SweepProcessorConfig struct {
	// Interval between sweeps (default: 5m)
	Interval time.Duration
}

func DefaultSweepProcessorConfig() SweepProcessorConfig {
	return SweepProcessorConfig{Interval: 5 * time.Minute}
}

// SweepProcessor periodically re-mirrors pending entries, covering events
// lost while the broker or the worker was down.
type SweepProcessor struct {
	pending PendingProcessor
	config  SweepProcessorConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSweepProcessor(pending PendingProcessor, config SweepProcessorConfig) *SweepProcessor {
	if config.Interval <= 0 {
		config.Interval = DefaultSweepProcessorConfig().Interval
	}
	return &SweepProcessor{pending: pending, config: config}
}

// Start begins the sweep loop. Returns an error if already running.
func (p *SweepProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return errors.New("sweep processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})

	go p.runLoop(ctx, p.stopCh, p.doneCh)

	slog.InfoContext(ctx, "Sweep processor started", "interval", p.config.Interval)
	return nil
}

// Stop signals the loop and waits for the current sweep to finish.
func (p *SweepProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	close(p.stopCh)
	done := p.doneCh
	p.mu.Unlock()

	select {
	case <-done:
		slog.InfoContext(ctx, "Sweep processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sweep processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

func (p *SweepProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SweepProcessor) runLoop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.pending.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Sweep failed", "error", err)
			}
		}
	}
}
