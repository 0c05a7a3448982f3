package store

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"evodash/internal/api"
)

// SortKey selects the field the program view is ordered by.
type SortKey string

const (
	SortGeneration SortKey = "generation"
	SortScore      SortKey = "score"
	SortTimestamp  SortKey = "timestamp"
)

// SortOrder is the direction of the program view ordering.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Filters holds the optional predicates applied to the program view.
// A nil field imposes no constraint.
type Filters struct {
	Generation *int
	Island     *int
	MinScore   *float64
}

// ProgramsSnapshot is a read-only view of the program catalog.
type ProgramsSnapshot struct {
	Programs  []api.Program
	Selected  *api.Program
	Loading   bool
	Error     string
	Filters   Filters
	SortBy    SortKey
	SortOrder SortOrder
}

// ProgramCatalog owns the programs fetched for one run. The collection is
// replaced wholesale on each fetch; filtering and sorting are derived at
// read time and never touch the stored slice.
type ProgramCatalog struct {
	mu     sync.Mutex
	client *api.Client
	log    *zap.Logger

	programs  []api.Program
	selected  *api.Program
	loading   bool
	errMsg    string
	filters   Filters
	sortBy    SortKey
	sortOrder SortOrder
}

func NewProgramCatalog(client *api.Client, log *zap.Logger) *ProgramCatalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProgramCatalog{
		client:    client,
		log:       log,
		sortBy:    SortGeneration,
		sortOrder: SortDesc,
	}
}

// Snapshot returns a copy of the catalog state.
func (s *ProgramCatalog) Snapshot() ProgramsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := ProgramsSnapshot{
		Programs:  make([]api.Program, len(s.programs)),
		Loading:   s.loading,
		Error:     s.errMsg,
		Filters:   s.filters,
		SortBy:    s.sortBy,
		SortOrder: s.sortOrder,
	}
	copy(snap.Programs, s.programs)
	if s.selected != nil {
		sel := *s.selected
		snap.Selected = &sel
	}
	return snap
}

// FetchPrograms replaces the collection with the programs of runID. If the
// previously selected program no longer exists in the new collection, the
// selection is cleared rather than left dangling.
func (s *ProgramCatalog) FetchPrograms(ctx context.Context, runID string) error {
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	programs, err := s.client.Programs(ctx, runID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.errMsg = api.Message(err, "Failed to fetch programs")
		return err
	}
	s.programs = programs
	if s.selected != nil {
		found := false
		for i := range programs {
			if programs[i].ID == s.selected.ID {
				found = true
				break
			}
		}
		if !found {
			s.log.Debug("selected program gone after refetch", zap.String("id", s.selected.ID))
			s.selected = nil
		}
	}
	return nil
}

// FetchDetails loads the full record for one program and settles it into
// the selection.
func (s *ProgramCatalog) FetchDetails(ctx context.Context, id string) error {
	program, err := s.client.ProgramDetails(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = &program
	return nil
}

// SelectProgram sets or clears the selection used by the detail view.
func (s *ProgramCatalog) SelectProgram(p *api.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == nil {
		s.selected = nil
		return
	}
	sel := *p
	s.selected = &sel
}

// SetFilters merges the non-nil fields of patch into the current criteria.
// Fields absent from the patch are left unchanged; ClearFilters resets
// everything at once.
func (s *ProgramCatalog) SetFilters(patch Filters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if patch.Generation != nil {
		s.filters.Generation = patch.Generation
	}
	if patch.Island != nil {
		s.filters.Island = patch.Island
	}
	if patch.MinScore != nil {
		s.filters.MinScore = patch.MinScore
	}
}

// ClearFilters drops every criterion.
func (s *ProgramCatalog) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = Filters{}
}

// SetSorting replaces both sort fields atomically.
func (s *ProgramCatalog) SetSorting(key SortKey, order SortOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortBy = key
	s.sortOrder = order
}

// ClearError resets the error field only.
func (s *ProgramCatalog) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

// View returns the filtered, sorted projection of the collection. Equal
// sort keys keep the underlying fetch order (stable sort).
func (s *ProgramCatalog) View() []api.Program {
	s.mu.Lock()
	programs := make([]api.Program, len(s.programs))
	copy(programs, s.programs)
	filters := s.filters
	sortBy := s.sortBy
	sortOrder := s.sortOrder
	s.mu.Unlock()

	out := programs[:0]
	for _, p := range programs {
		if passesFilters(p, filters) {
			out = append(out, p)
		}
	}
	sortPrograms(out, sortBy, sortOrder)
	return out
}

// passesFilters reports whether p matches every set criterion: generation
// and island by exact equality, minScore against the combined_score metric
// (a program lacking that metric fails the criterion).
func passesFilters(p api.Program, f Filters) bool {
	if f.Generation != nil && p.Generation != *f.Generation {
		return false
	}
	if f.Island != nil && p.Island != *f.Island {
		return false
	}
	if f.MinScore != nil {
		score, ok := p.CombinedScore()
		if !ok || score < *f.MinScore {
			return false
		}
	}
	return true
}

func sortPrograms(programs []api.Program, key SortKey, order SortOrder) {
	value := func(p api.Program) float64 {
		switch key {
		case SortScore:
			score, _ := p.CombinedScore()
			return score
		case SortTimestamp:
			return float64(p.TimestampMillis())
		default:
			return float64(p.Generation)
		}
	}
	sort.SliceStable(programs, func(i, j int) bool {
		a, b := value(programs[i]), value(programs[j])
		if order == SortAsc {
			return a < b
		}
		return a > b
	})
}
