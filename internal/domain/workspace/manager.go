package workspace

import (
	"sync"

	"github.com/coraldesk/studio/backend/internal/domain/recents"
	"github.com/coraldesk/studio/backend/internal/domain/tabs"
	"github.com/coraldesk/studio/backend/internal/infrastructure/logging"
	"github.com/coraldesk/studio/backend/internal/infrastructure/monitoring"
	"github.com/coraldesk/studio/backend/internal/shared/events"
	"github.com/coraldesk/studio/backend/internal/storage"
)

// Workspace binds tab state, the recency tracker and persistence to a
// single workspace ref
type Workspace struct {
	Ref     string
	Tabs    *tabs.Manager
	Recents *recents.Tracker

	emitter     *events.Emitter
	unsubscribe func()
}

// Subscribe registers a handler for this workspace's mutation events and
// returns an unsubscribe function
func (w *Workspace) Subscribe(h events.Handler) func() {
	return w.emitter.Subscribe(h)
}

// Manager hands out workspace bindings keyed by ref. Each binding is
// constructed fresh from persisted state; switching refs never leaks tabs
// or recent items between workspaces.
type Manager struct {
	mu         sync.Mutex
	loader     *storage.Loader
	logger     *logging.Logger
	metrics    *monitoring.Metrics
	recentsCap int
	workspaces map[string]*Workspace
}

// NewManager creates a workspace manager over the given loader
func NewManager(loader *storage.Loader, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewDefault()
	}
	return &Manager{
		loader:     loader,
		logger:     logger,
		recentsCap: recents.DefaultCap,
		workspaces: make(map[string]*Workspace),
	}
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// WithRecentsCap overrides the table-like recency cap for new bindings
func (m *Manager) WithRecentsCap(capacity int) *Manager {
	if capacity > 0 {
		m.recentsCap = capacity
	}
	return m
}

// Bind returns the live binding for a ref, constructing it from persisted
// state on first use
func (m *Manager) Bind(ref string) *Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ws, ok := m.workspaces[ref]; ok {
		return ws
	}
	ws := m.buildLocked(ref)
	m.workspaces[ref] = ws
	m.setBoundLocked()
	return ws
}

// Rebind discards any live binding for a ref and reconstructs it from
// persisted state. This is a hard reset, not a merge.
func (m *Manager) Rebind(ref string) *Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.workspaces[ref]; ok {
		old.unsubscribe()
		delete(m.workspaces, ref)
	}
	ws := m.buildLocked(ref)
	m.workspaces[ref] = ws
	m.setBoundLocked()
	return ws
}

// Release drops a live binding without touching persisted state
func (m *Manager) Release(ref string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ws, ok := m.workspaces[ref]; ok {
		ws.unsubscribe()
		delete(m.workspaces, ref)
		m.setBoundLocked()
	}
}

// Refs returns the refs with live bindings
func (m *Manager) Refs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	refs := make([]string, 0, len(m.workspaces))
	for ref := range m.workspaces {
		refs = append(refs, ref)
	}
	return refs
}

// buildLocked constructs a fresh binding from persisted state. The ref is
// captured by the persistence subscription at bind time, so a later switch
// can never write one workspace's state under another's key.
func (m *Manager) buildLocked(ref string) *Workspace {
	emitter := events.NewEmitter()

	state := m.loader.LoadTabs(ref)
	recentSnap := m.loader.LoadRecents(ref)

	tracker := recents.NewTracker(ref, recentSnap.Items, m.recentsCap, emitter)
	tabManager := tabs.NewManager(ref, state, tracker, emitter)
	if m.metrics != nil {
		tabManager = tabManager.WithMetrics(m.metrics)
	}

	ws := &Workspace{
		Ref:     ref,
		Tabs:    tabManager,
		Recents: tracker,
		emitter: emitter,
	}

	// Persist the changed slice on every mutation, unconditionally
	ws.unsubscribe = emitter.Subscribe(func(ev events.Event) {
		switch ev.Kind {
		case events.KindTabs:
			st := tabManager.State()
			m.loader.SaveTabs(ref, st)
			if m.metrics != nil {
				m.metrics.SetTabsOpen(ref, len(st.OpenTabs))
			}
		case events.KindRecents:
			m.loader.SaveRecents(ref, tracker.Snapshot())
			if m.metrics != nil {
				m.metrics.SetRecentItems(ref, tracker.Len())
			}
		}
	})

	return ws
}

func (m *Manager) setBoundLocked() {
	if m.metrics != nil {
		m.metrics.SetWorkspacesBound(len(m.workspaces))
	}
}
