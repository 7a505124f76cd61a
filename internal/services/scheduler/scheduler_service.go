// Package scheduler runs the watchlist on a cron schedule, re-analyzing each
// configured ticker so the report archive stays current.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/common"
)

// Analyzer is the slice of the application the scheduler drives.
type Analyzer interface {
	AnalyzeTicker(ctx context.Context, ticker string) error
}

// Service schedules watchlist analysis runs.
type Service struct {
	analyzer Analyzer
	config   common.WatchlistConfig
	cron     *cron.Cron
	logger   arbor.ILogger

	mu           sync.Mutex // Protects isProcessing and run bookkeeping
	isProcessing bool
	running      bool
	lastRun      *time.Time
	lastError    string
}

// NewService creates a watchlist scheduler.
func NewService(analyzer Analyzer, config common.WatchlistConfig, logger arbor.ILogger) *Service {
	return &Service{
		analyzer: analyzer,
		config:   config,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start begins the scheduler using the configured cron expression.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if len(s.config.Tickers) == 0 {
		return fmt.Errorf("watchlist is empty")
	}

	schedule := s.config.Schedule
	if schedule == "" {
		schedule = "0 7 * * 1-5" // Default: weekday mornings
	}

	if _, err := s.cron.AddFunc(schedule, s.runWatchlist); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", schedule).
		Int("tickers", len(s.config.Tickers)).
		Msg("Watchlist scheduler started")
	return nil
}

// Stop halts the scheduler and waits for an in-flight run to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	running := s.running
	s.running = false
	s.mu.Unlock()

	if !running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Watchlist scheduler stopped")
}

// Status reports the scheduler's current state.
func (s *Service) Status() (running bool, lastRun *time.Time, lastError string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running, s.lastRun, s.lastError
}

// runWatchlist analyzes every watchlist ticker in sequence. Overlapping
// scheduled runs are skipped rather than queued.
func (s *Service) runWatchlist() {
	s.mu.Lock()
	if s.isProcessing {
		s.mu.Unlock()
		s.logger.Warn().Msg("Previous watchlist run still in progress, skipping")
		return
	}
	s.isProcessing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isProcessing = false
		now := time.Now()
		s.lastRun = &now
		s.mu.Unlock()
	}()

	ctx := context.Background()
	var failures int
	for _, ticker := range s.config.Tickers {
		s.logger.Info().Str("ticker", ticker).Msg("Running scheduled analysis")
		if err := s.analyzer.AnalyzeTicker(ctx, ticker); err != nil {
			failures++
			s.mu.Lock()
			s.lastError = fmt.Sprintf("%s: %v", ticker, err)
			s.mu.Unlock()
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Scheduled analysis failed")
		}
	}

	s.logger.Info().
		Int("tickers", len(s.config.Tickers)).
		Int("failures", failures).
		Msg("Watchlist run complete")
}
