package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"evodash/internal/api"
)

// RunsSnapshot is a read-only view of the run catalog. Runs keep server
// arrival order; the store never sorts them.
type RunsSnapshot struct {
	Runs       []api.EvolutionRun
	CurrentRun *api.EvolutionRun
	Loading    bool
	Error      string
}

// RunStore owns the catalog of evolution runs and their lifecycle status.
//
// Overlapping FetchRuns calls are not deduplicated: whichever response
// settles last wins, even if it was issued first. That race is part of
// the contract (and covered by tests), not a bug to paper over.
type RunStore struct {
	mu     sync.Mutex
	client *api.Client
	log    *zap.Logger

	runs    []api.EvolutionRun
	current *api.EvolutionRun
	loading bool
	errMsg  string
}

func NewRunStore(client *api.Client, log *zap.Logger) *RunStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &RunStore{client: client, log: log}
}

// Snapshot returns a copy of the catalog state.
func (s *RunStore) Snapshot() RunsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := RunsSnapshot{
		Runs:    make([]api.EvolutionRun, len(s.runs)),
		Loading: s.loading,
		Error:   s.errMsg,
	}
	copy(snap.Runs, s.runs)
	if s.current != nil {
		cur := *s.current
		snap.CurrentRun = &cur
	}
	return snap
}

// FetchRuns replaces the whole collection with the server's listing.
func (s *RunStore) FetchRuns(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	runs, err := s.client.Runs(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.errMsg = api.Message(err, "Failed to fetch evolution runs")
		return err
	}
	s.runs = runs
	return nil
}

// StartRun submits a new run. On success the returned run is appended and
// becomes the current run; on failure the collection is untouched.
func (s *RunStore) StartRun(ctx context.Context, config map[string]any) error {
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	run, err := s.client.StartRun(ctx, config)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.errMsg = api.Message(err, "Failed to start evolution")
		return err
	}
	s.runs = append(s.runs, run)
	s.current = &run
	s.log.Info("run started", zap.String("id", run.ID), zap.String("name", run.Name))
	return nil
}

// StopRun asks the server to stop a run and reconciles the returned state
// in place. The server decides the resulting status; it is not assumed to
// be "completed".
func (s *RunStore) StopRun(ctx context.Context, id string) error {
	return s.transition(ctx, id, s.client.StopRun)
}

// PauseRun reconciles a pause request the same way StopRun does.
func (s *RunStore) PauseRun(ctx context.Context, id string) error {
	return s.transition(ctx, id, s.client.PauseRun)
}

// ResumeRun reconciles a resume request the same way StopRun does.
func (s *RunStore) ResumeRun(ctx context.Context, id string) error {
	return s.transition(ctx, id, s.client.ResumeRun)
}

// transition applies a server-driven lifecycle change. A response for an
// id no longer in the collection is silently dropped; transition failures
// are reported to the caller but do not touch the store error field.
func (s *RunStore) transition(ctx context.Context, id string, call func(context.Context, string) (api.EvolutionRun, error)) error {
	run, err := call(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.runs {
		if s.runs[i].ID == run.ID {
			s.runs[i].Status = run.Status
			break
		}
	}
	if s.current != nil && s.current.ID == run.ID {
		cur := run
		s.current = &cur
	}
	return nil
}

// SetCurrentRun marks a run as the one the UI is focused on.
func (s *RunStore) SetCurrentRun(run api.EvolutionRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &run
}

// UpdateRunStatus mutates one run's status in place, for status-change
// events arriving outside the request/response cycle. Unknown ids are
// dropped.
func (s *RunStore) UpdateRunStatus(id string, status api.RunStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.runs {
		if s.runs[i].ID == id {
			s.runs[i].Status = status
			break
		}
	}
	if s.current != nil && s.current.ID == id {
		s.current.Status = status
	}
}

// ClearError resets the error field only.
func (s *RunStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

// ---------------------------------------------------------------------------
// Derived reads
// ---------------------------------------------------------------------------

// StatusCounts tallies runs by lifecycle status.
func (s *RunStore) StatusCounts() map[api.RunStatus]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[api.RunStatus]int, 4)
	for _, r := range s.runs {
		counts[r.Status]++
	}
	return counts
}

// BestScore is the maximum bestScore across all runs, 0 when empty.
func (s *RunStore) BestScore() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	best := 0.0
	for _, r := range s.runs {
		if r.BestScore > best {
			best = r.BestScore
		}
	}
	return best
}

// TotalIterations sums currentIteration across all runs.
func (s *RunStore) TotalIterations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, r := range s.runs {
		total += r.CurrentIteration
	}
	return total
}
