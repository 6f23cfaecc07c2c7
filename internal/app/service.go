// Package app owns the scan scheduler: one concurrent execution unit per
// registered scanner, each looping fetch -> evaluate -> dispatch at its own
// interval, fully isolated from the others.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cryptoScanBot/config"
	"cryptoScanBot/internal/domain"
	"cryptoScanBot/internal/ports"
	"cryptoScanBot/internal/scanner"
)

// ScanService drives the registered scanners. Each scanner runs in its own
// goroutine; a per-scanner mutex makes timed and manual cycles single-flight
// so a manual trigger can never race a running timed cycle.
type ScanService struct {
	settings   *config.Store
	dispatcher ports.Dispatcher
	history    ports.AlertRepository
	logger     ports.Logger

	runners map[domain.StrategyKind]*runner
	wg      sync.WaitGroup
}

type runner struct {
	scanner scanner.Scanner
	mu      sync.Mutex // Single-flight: held for the duration of one cycle
}

// NewScanService creates the scheduler over an explicit scanner registry.
func NewScanService(settings *config.Store, dispatcher ports.Dispatcher, history ports.AlertRepository, log ports.Logger, scanners ...scanner.Scanner) (*ScanService, error) {
	if settings == nil || dispatcher == nil || history == nil || log == nil {
		return nil, fmt.Errorf("missing required dependencies for ScanService")
	}
	if len(scanners) == 0 {
		return nil, fmt.Errorf("at least one scanner is required")
	}

	runners := make(map[domain.StrategyKind]*runner, len(scanners))
	for _, sc := range scanners {
		if _, dup := runners[sc.Kind()]; dup {
			return nil, fmt.Errorf("duplicate scanner kind %q", sc.Kind())
		}
		runners[sc.Kind()] = &runner{scanner: sc}
	}

	return &ScanService{
		settings:   settings,
		dispatcher: dispatcher,
		history:    history,
		logger:     log,
		runners:    runners,
	}, nil
}

// Kinds lists the registered strategy kinds.
func (s *ScanService) Kinds() []domain.StrategyKind {
	kinds := make([]domain.StrategyKind, 0, len(s.runners))
	for k := range s.runners {
		kinds = append(kinds, k)
	}
	return kinds
}

// Start launches one loop goroutine per scanner and returns immediately.
// The loops stop when ctx is canceled; Wait blocks until they have drained.
func (s *ScanService) Start(ctx context.Context) {
	for _, r := range s.runners {
		s.wg.Add(1)
		go func(r *runner) {
			defer s.wg.Done()
			s.runLoop(ctx, r)
		}(r)
	}
	s.logger.Info(ctx, "Scan scheduler started", map[string]interface{}{"scanners": len(s.runners)})
}

// Wait blocks until all scanner loops have exited.
func (s *ScanService) Wait() {
	s.wg.Wait()
}

// runLoop is one scanner's execution unit. The interval is measured from the
// end of the previous cycle, and the settings snapshot is re-taken each
// iteration so configuration updates apply atomically between cycles.
func (s *ScanService) runLoop(ctx context.Context, r *runner) {
	kind := r.scanner.Kind()
	for {
		settings := s.settings.Snapshot()
		enabled, interval := r.scanner.Schedule(settings)
		if enabled {
			s.runCycle(ctx, r, settings)
		} else {
			s.logger.Debug(ctx, "Scanner disabled, skipping cycle", map[string]interface{}{"scanner": string(kind)})
		}

		if interval <= 0 {
			interval = time.Minute
		}
		select {
		case <-ctx.Done():
			s.logger.Info(context.Background(), "Scanner loop stopped", map[string]interface{}{"scanner": string(kind)})
			return
		case <-time.After(interval):
		}
	}
}

// runCycle executes one fetch-evaluate-dispatch cycle under the runner's
// single-flight lock. Errors log and return to idle; they never propagate to
// other scanners or terminate the loop.
func (s *ScanService) runCycle(ctx context.Context, r *runner, settings config.Settings) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	kind := r.scanner.Kind()
	alerts, err := r.scanner.Scan(ctx, settings)
	if err != nil {
		s.logger.Error(ctx, err, "Scan cycle failed, skipping", map[string]interface{}{"scanner": string(kind)})
		return 0
	}
	if len(alerts) == 0 {
		return 0
	}

	// Cooldowns are already recorded by the scanner; a dispatch failure is
	// logged and never rolls them back.
	if err := s.dispatcher.Dispatch(ctx, alerts); err != nil {
		s.logger.Error(ctx, err, "Alert dispatch failed", map[string]interface{}{
			"scanner": string(kind), "alerts": len(alerts)})
	}

	for _, a := range alerts {
		if _, err := s.history.RecordAlert(ctx, &a); err != nil {
			s.logger.Warn(ctx, "Failed to record alert history", map[string]interface{}{
				"scanner": string(kind), "symbol": a.Symbol, "error": err.Error()})
		}
	}
	return len(alerts)
}

// Trigger runs one on-demand cycle for the named scanner, serialized with its
// timed loop. A disabled scanner yields zero alerts without error, matching
// the timed behavior. Returns the number of dispatched alerts.
func (s *ScanService) Trigger(ctx context.Context, kind domain.StrategyKind) (int, error) {
	r, ok := s.runners[kind]
	if !ok {
		return 0, fmt.Errorf("%w: unknown scanner %q", ports.ErrNotFound, kind)
	}

	settings := s.settings.Snapshot()
	if enabled, _ := r.scanner.Schedule(settings); !enabled {
		s.logger.Info(ctx, "Manual scan requested for disabled scanner", map[string]interface{}{"scanner": string(kind)})
		return 0, nil
	}
	return s.runCycle(ctx, r, settings), nil
}
