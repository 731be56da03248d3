package session

import (
	"strings"
	"sync"

	"modelhub/pkg/catalog"
	"modelhub/pkg/dispatch"
)

// State is the per-session UI state: the catalog filter, the selected
// capability, the pending input and the outcome of the last submission.
// Every transition happens under one lock so selection and result can
// never go stale relative to each other.
type State struct {
	mu sync.Mutex

	searchTerm     string
	categoryFilter string
	selected       *catalog.Descriptor
	input          string
	loading        bool
	lastError      string
	lastResult     *dispatch.Result

	// generation identifies the current selection. Submissions capture
	// it as a token; an outcome whose token no longer matches belongs to
	// a previous selection and is discarded on arrival.
	generation uint64
}

// Snapshot is a copy of the observable session state for channels/UI.
type Snapshot struct {
	SearchTerm     string
	CategoryFilter string
	Selected       *catalog.Descriptor
	Input          string
	Loading        bool
	LastError      string
	LastResult     *dispatch.Result
}

// NewState creates a fresh session with the unfiltered catalog view.
func NewState() *State {
	return &State{categoryFilter: catalog.CategoryFilterAll}
}

// Select switches the session to a new capability and atomically clears
// input, last result and last error. An in-flight submission keeps
// running; its outcome will carry a stale token and be dropped.
func (s *State) Select(d *catalog.Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = d
	s.input = ""
	s.lastResult = nil
	s.lastError = ""
	s.generation++
}

// SetInput replaces the current input verbatim. Vision inputs arrive as
// data-URI strings; no validation happens here, only at submission time.
func (s *State) SetInput(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = v
}

// SetFilter updates the catalog search term and category filter.
func (s *State) SetFilter(term, category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchTerm = term
	if category == "" {
		category = catalog.CategoryFilterAll
	}
	s.categoryFilter = category
}

// BeginSubmit validates the session for submission and, on success,
// marks it loading and hands out the selection token plus the frozen
// descriptor and input for the pipeline. Rejections happen before any
// network activity: no capability, blank input, or an outstanding
// submission (ErrBusy, a no-op for callers).
func (s *State) BeginSubmit() (token uint64, d *catalog.Descriptor, input string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected == nil {
		return 0, nil, "", dispatch.ErrNoCapability
	}
	if strings.TrimSpace(s.input) == "" {
		return 0, nil, "", dispatch.ErrEmptyInput
	}
	if s.loading {
		return 0, nil, "", dispatch.ErrBusy
	}

	s.loading = true
	s.lastError = ""
	return s.generation, s.selected, s.input, nil
}

// Finish applies a submission outcome. The outcome lands only if the
// token still matches the current selection; otherwise it is discarded
// wholesale and only the loading flag is released (the stale submission
// was the one outstanding invocation). Returns whether it was applied.
func (s *State) Finish(token uint64, result *dispatch.Result, userErr string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false
	if token != s.generation {
		return false
	}

	s.lastResult = result
	s.lastError = userErr
	return true
}

// Snapshot returns a copy of the observable state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		SearchTerm:     s.searchTerm,
		CategoryFilter: s.categoryFilter,
		Selected:       s.selected,
		Input:          s.input,
		Loading:        s.loading,
		LastError:      s.lastError,
		LastResult:     s.lastResult,
	}
}

// Manager hands out one State per session key and keeps them for the
// lifetime of the process. Keys combine channel, user and chat IDs.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*State
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*State)}
}

// Get returns the State for the key, creating it on first use.
func (m *Manager) Get(key string) *State {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[key]
	if !ok {
		st = NewState()
		m.sessions[key] = st
	}
	return st
}
