package trigger

import (
	"context"
	"errors"
	"sync"
	"time"

	"catalog-sync/feature/catalog"

	"go.uber.org/zap"
)

// ErrRunInProgress is returned by Start while a run is executing.
var ErrRunInProgress = errors.New("a sync run is already in progress")

// RunFunc executes one complete sync run.
type RunFunc func(ctx context.Context) (*catalog.RunSummary, error)

// Status describes the trigger state.
type Status struct {
	Running   bool                `json:"running"`
	StartedAt *time.Time          `json:"started_at,omitempty"`
	Last      *catalog.RunSummary `json:"last,omitempty"`
	LastError string              `json:"last_error,omitempty"`
}

// Service runs at most one sync at a time in the background.
type Service struct {
	run    RunFunc
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	running   bool
	startedAt time.Time
	last      *catalog.RunSummary
	lastErr   error
}

// NewService creates a service. Runs are cancelled by Shutdown.
func NewService(run RunFunc, logger *zap.Logger) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{run: run, logger: logger, ctx: ctx, cancel: cancel}
}

// Start launches a run and returns immediately.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrRunInProgress
	}
	if err := s.ctx.Err(); err != nil {
		return err
	}

	s.running = true
	s.startedAt = time.Now()
	s.wg.Add(1)
	go s.execute()
	return nil
}

func (s *Service) execute() {
	defer s.wg.Done()

	summary, err := s.run(s.ctx)
	if err != nil {
		s.logger.Error("Triggered sync run failed", zap.Error(err))
	} else if summary != nil {
		s.logger.Info("Triggered sync run finished", zap.String("run_id", summary.ID))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.lastErr = err
	if summary != nil {
		s.last = summary
	}
}

// Status returns a snapshot of the current state.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{Running: s.running, Last: s.last}
	if s.running {
		started := s.startedAt
		st.StartedAt = &started
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

// Shutdown cancels a running sync and waits for it to stop or for ctx to end.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
