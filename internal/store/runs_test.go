package store

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"evodash/internal/api"
)

func TestFetchRunsReplacesCollection(t *testing.T) {
	t.Parallel()

	listing := []api.EvolutionRun{
		{ID: "r1", Name: "alpha", Status: api.RunRunning, CurrentIteration: 10, MaxIterations: 100, BestScore: 0.4},
		{ID: "r2", Name: "beta", Status: api.RunCompleted, CurrentIteration: 100, MaxIterations: 100, BestScore: 0.9},
	}
	client, _ := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/evolution/runs", r.URL.Path)
		writeJSON(t, w, listing)
	}))
	s := NewRunStore(client, nil)
	s.runs = []api.EvolutionRun{{ID: "stale"}}

	require.NoError(t, s.FetchRuns(context.Background()))

	snap := s.Snapshot()
	require.Len(t, snap.Runs, 2)
	require.Equal(t, "r1", snap.Runs[0].ID)
	require.Equal(t, "r2", snap.Runs[1].ID)
	require.False(t, snap.Loading)
	require.Empty(t, snap.Error)
}

func TestFetchRunsFailureSetsReadableError(t *testing.T) {
	t.Parallel()

	client, _ := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	s := NewRunStore(client, nil)
	s.runs = []api.EvolutionRun{{ID: "r1"}}

	require.Error(t, s.FetchRuns(context.Background()))

	snap := s.Snapshot()
	require.Equal(t, "Failed to fetch evolution runs", snap.Error)
	require.False(t, snap.Loading)

	s.ClearError()
	require.Empty(t, s.Snapshot().Error)
}

func TestStartRunAppendsAndBecomesCurrent(t *testing.T) {
	t.Parallel()

	client, _ := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		writeJSON(t, w, api.EvolutionRun{ID: "r9", Name: "fresh", Status: api.RunRunning})
	}))
	s := NewRunStore(client, nil)
	s.runs = []api.EvolutionRun{{ID: "r1"}}

	require.NoError(t, s.StartRun(context.Background(), map[string]any{"name": "fresh"}))

	snap := s.Snapshot()
	require.Len(t, snap.Runs, 2)
	require.Equal(t, "r9", snap.Runs[1].ID)
	require.NotNil(t, snap.CurrentRun)
	require.Equal(t, "r9", snap.CurrentRun.ID)
}

func TestStopRunReconcilesServerStatus(t *testing.T) {
	t.Parallel()

	// The server reports "failed", not the "completed" a client might
	// assume. The store takes the server's word.
	client, _ := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/evolution/runs/r1/stop", r.URL.Path)
		writeJSON(t, w, api.EvolutionRun{ID: "r1", Name: "alpha", Status: api.RunFailed, BestScore: 0.7})
	}))
	s := NewRunStore(client, nil)
	s.runs = []api.EvolutionRun{
		{ID: "r1", Name: "alpha", Status: api.RunRunning},
		{ID: "r2", Name: "beta", Status: api.RunRunning},
	}
	s.current = &api.EvolutionRun{ID: "r1", Name: "alpha", Status: api.RunRunning}

	require.NoError(t, s.StopRun(context.Background(), "r1"))

	snap := s.Snapshot()
	require.Equal(t, api.RunFailed, snap.Runs[0].Status)
	require.Equal(t, api.RunRunning, snap.Runs[1].Status)
	// The current run is replaced wholesale with the server's record.
	require.InDelta(t, 0.7, snap.CurrentRun.BestScore, 1e-9)
	require.Equal(t, api.RunFailed, snap.CurrentRun.Status)
}

func TestTransitionForUnknownRunIsSilentlyDropped(t *testing.T) {
	t.Parallel()

	client, _ := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, api.EvolutionRun{ID: "ghost", Status: api.RunCompleted})
	}))
	s := NewRunStore(client, nil)
	s.runs = []api.EvolutionRun{{ID: "r1", Status: api.RunRunning}}

	require.NoError(t, s.StopRun(context.Background(), "ghost"))

	snap := s.Snapshot()
	require.Len(t, snap.Runs, 1)
	require.Equal(t, api.RunRunning, snap.Runs[0].Status)
	require.Empty(t, snap.Error)
}

func TestTransitionFailureDoesNotTouchErrorField(t *testing.T) {
	t.Parallel()

	client, _ := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"Run already stopped"}`))
	}))
	s := NewRunStore(client, nil)
	s.runs = []api.EvolutionRun{{ID: "r1", Status: api.RunRunning}}

	err := s.PauseRun(context.Background(), "r1")
	require.Error(t, err)
	require.Equal(t, "Run already stopped", api.Message(err, "fallback"))

	// Transient action failures belong in a toast, not the store.
	snap := s.Snapshot()
	require.Empty(t, snap.Error)
	require.Equal(t, api.RunRunning, snap.Runs[0].Status)
}

func TestUpdateRunStatusTracksCurrent(t *testing.T) {
	t.Parallel()

	client, _ := newTestBackend(t, http.NotFoundHandler())
	s := NewRunStore(client, nil)
	s.runs = []api.EvolutionRun{{ID: "r1", Status: api.RunRunning}}
	s.SetCurrentRun(s.runs[0])

	s.UpdateRunStatus("r1", api.RunPaused)
	snap := s.Snapshot()
	require.Equal(t, api.RunPaused, snap.Runs[0].Status)
	require.Equal(t, api.RunPaused, snap.CurrentRun.Status)

	s.UpdateRunStatus("ghost", api.RunFailed)
	require.Equal(t, api.RunPaused, s.Snapshot().Runs[0].Status)
}

func TestDerivedReads(t *testing.T) {
	t.Parallel()

	client, _ := newTestBackend(t, http.NotFoundHandler())
	s := NewRunStore(client, nil)

	require.Zero(t, s.BestScore())
	require.Zero(t, s.TotalIterations())
	require.Empty(t, s.StatusCounts())

	s.runs = []api.EvolutionRun{
		{ID: "r1", Status: api.RunRunning, CurrentIteration: 40, BestScore: 0.4},
		{ID: "r2", Status: api.RunRunning, CurrentIteration: 60, BestScore: 0.9},
		{ID: "r3", Status: api.RunCompleted, CurrentIteration: 100, BestScore: 0.7},
	}

	counts := s.StatusCounts()
	require.Equal(t, 2, counts[api.RunRunning])
	require.Equal(t, 1, counts[api.RunCompleted])
	require.InDelta(t, 0.9, s.BestScore(), 1e-9)
	require.Equal(t, 200, s.TotalIterations())
}

func TestOverlappingFetchesLastSettledWins(t *testing.T) {
	t.Parallel()

	// The first request stalls until the second has been served, so the
	// stale listing settles last and overwrites the fresh one. The store
	// does not deduplicate in-flight fetches, mirroring a refresh storm.
	var calls atomic.Int32
	firstArrived := make(chan struct{})
	release := make(chan struct{})
	client, _ := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			close(firstArrived)
			<-release
			writeJSON(t, w, []api.EvolutionRun{{ID: "stale"}})
		default:
			writeJSON(t, w, []api.EvolutionRun{{ID: "fresh"}})
		}
	}))
	s := NewRunStore(client, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.FetchRuns(context.Background())
	}()

	<-firstArrived
	// The second fetch settles "fresh" while the first is still blocked.
	require.NoError(t, s.FetchRuns(context.Background()))
	require.Equal(t, "fresh", s.Snapshot().Runs[0].ID)

	close(release)
	wg.Wait()

	snap := s.Snapshot()
	require.Len(t, snap.Runs, 1)
	require.Equal(t, "stale", snap.Runs[0].ID, "stale response settles last and wins")
	require.False(t, snap.Loading)
}
