package tabs

import (
	"sync"
	"time"

	"github.com/coraldesk/studio/backend/internal/infrastructure/monitoring"
	"github.com/coraldesk/studio/backend/internal/shared/events"
	"github.com/coraldesk/studio/backend/internal/shared/types"
)

// NewTabID is the sentinel the dashboard uses for the not-yet-saved editor
// surface. It never appears in the registry but closing it behaves like
// closing the active tab.
const NewTabID = "new"

// Router is the navigation collaborator. Push is fire-and-forget; the
// manager never depends on the outcome.
type Router interface {
	Push(path string)
}

// Recents receives visit notifications for non-preview tabs
type Recents interface {
	Touch(tab types.Tab)
}

// Manager owns the tab state of a single workspace: the open-tab order,
// the id-to-tab registry, the active tab and the single preview slot.
// All operations are synchronous and atomic from the caller's perspective;
// unknown ids are no-ops, never errors.
type Manager struct {
	mu      sync.Mutex
	ref     string
	state   types.State
	recents Recents
	emitter *events.Emitter
	metrics *monitoring.Metrics
}

// NewManager creates a manager seeded from a loaded (or default) state
func NewManager(ref string, state types.State, recents Recents, emitter *events.Emitter) *Manager {
	if state.OpenTabs == nil {
		state.OpenTabs = []string{}
	}
	if state.TabsMap == nil {
		state.TabsMap = map[string]types.Tab{}
	}
	return &Manager{
		ref:     ref,
		state:   state,
		recents: recents,
		emitter: emitter,
	}
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Ref returns the workspace ref this manager is bound to
func (m *Manager) Ref() string {
	return m.ref
}

// Add opens a tab. Re-adding an open tab only activates it. A permanent
// tab appends to the strip; a preview tab replaces the current preview.
func (m *Manager) Add(tab types.Tab) {
	if tab.CreatedAt.IsZero() {
		tab.CreatedAt = time.Now()
	}

	m.mu.Lock()
	if existing, ok := m.state.TabsMap[tab.ID]; ok {
		if m.state.ActiveTab != nil && *m.state.ActiveTab == tab.ID {
			m.mu.Unlock()
			return
		}
		activeID := tab.ID
		m.state.ActiveTab = &activeID
		m.mu.Unlock()

		if !existing.IsPreview && m.recents != nil {
			m.recents.Touch(existing)
		}
		m.emit("activate", tab.ID)
		return
	}

	if !tab.IsPreview {
		m.state.OpenTabs = append(m.state.OpenTabs, tab.ID)
		m.state.TabsMap[tab.ID] = tab
		activeID := tab.ID
		m.state.ActiveTab = &activeID
		m.mu.Unlock()

		if m.recents != nil {
			m.recents.Touch(tab)
		}
		if m.metrics != nil {
			m.metrics.RecordTabOpened(string(tab.Type), false)
		}
		m.emit("add", tab.ID)
		return
	}

	// New preview tab: the current preview, if any, gets evicted first
	evicted := false
	if m.state.PreviewTabID != nil {
		evicted = true
		m.dropLocked(*m.state.PreviewTabID)
	}

	m.state.OpenTabs = append(m.state.OpenTabs, tab.ID)
	m.state.TabsMap[tab.ID] = tab
	previewID := tab.ID
	activeID := tab.ID
	m.state.PreviewTabID = &previewID
	m.state.ActiveTab = &activeID
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.RecordTabOpened(string(tab.Type), true)
		if evicted {
			m.metrics.RecordPreviewEvicted()
		}
	}
	m.emit("add", tab.ID)
}

// Update applies a partial update to an open tab. Unknown ids are a no-op.
// Scroll position lands under the tab's metadata and is dropped when the
// tab has none; label updates always apply. Persisted dashboards depend on
// this asymmetry, so it is pinned by tests rather than fixed here.
func (m *Manager) Update(id string, upd types.TabUpdate) bool {
	m.mu.Lock()
	tab, ok := m.state.TabsMap[id]
	if !ok {
		m.mu.Unlock()
		return false
	}

	if upd.Label != nil {
		tab.Label = *upd.Label
	}
	if upd.ScrollTop != nil && tab.Metadata != nil {
		meta := *tab.Metadata
		meta.ScrollTop = *upd.ScrollTop
		tab.Metadata = &meta
	}
	m.state.TabsMap[id] = tab
	m.mu.Unlock()

	m.emit("update", id)
	return true
}

// Remove drops a tab from the registry. When the removed tab was active,
// the predecessor in strip order becomes active, falling back to the
// successor, then to none. This is the storage-layer removal; it issues no
// navigation.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	tab, ok := m.state.TabsMap[id]
	if !ok {
		m.mu.Unlock()
		return false
	}

	idx := indexOf(m.state.OpenTabs, id)
	wasActive := m.state.ActiveTab != nil && *m.state.ActiveTab == id

	m.dropLocked(id)

	if wasActive {
		m.state.ActiveTab = nil
		if idx > 0 {
			next := m.state.OpenTabs[idx-1]
			m.state.ActiveTab = &next
		} else if len(m.state.OpenTabs) > 0 {
			next := m.state.OpenTabs[0]
			m.state.ActiveTab = &next
		}
	}
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.RecordTabClosed(string(tab.Type))
	}
	m.emit("remove", id)
	return true
}

// RemoveMany applies Remove for each id in the given order
func (m *Manager) RemoveMany(ids []string) {
	for _, id := range ids {
		m.Remove(id)
	}
}

// Reorder moves a tab from one strip position to another. The active tab
// is unaffected.
func (m *Manager) Reorder(oldIndex, newIndex int) bool {
	m.mu.Lock()
	n := len(m.state.OpenTabs)
	if oldIndex < 0 || oldIndex >= n || newIndex < 0 || newIndex >= n {
		m.mu.Unlock()
		return false
	}

	moved := m.state.OpenTabs[oldIndex]
	rest := append(m.state.OpenTabs[:oldIndex], m.state.OpenTabs[oldIndex+1:]...)
	m.state.OpenTabs = append(rest[:newIndex], append([]string{moved}, rest[newIndex:]...)...)
	m.mu.Unlock()

	m.emit("reorder", moved)
	return true
}

// MakePermanent promotes a preview tab into a permanent one
func (m *Manager) MakePermanent(id string) bool {
	m.mu.Lock()
	tab, ok := m.state.TabsMap[id]
	if !ok || !tab.IsPreview {
		m.mu.Unlock()
		return false
	}

	tab.IsPreview = false
	m.state.TabsMap[id] = tab
	m.state.PreviewTabID = nil
	m.mu.Unlock()

	if m.recents != nil {
		m.recents.Touch(tab)
	}
	if m.metrics != nil {
		m.metrics.RecordPreviewPromoted()
	}
	m.emit("promote", id)
	return true
}

// MakeActivePermanent promotes the active tab if it is a preview. The
// return value tells callers whether a promotion happened, so they can
// suppress a follow-up navigation.
func (m *Manager) MakeActivePermanent() bool {
	m.mu.Lock()
	if m.state.ActiveTab == nil {
		m.mu.Unlock()
		return false
	}
	id := *m.state.ActiveTab
	m.mu.Unlock()

	return m.MakePermanent(id)
}

// HandleNavigation activates a tab and pushes its route to the router.
// Unknown ids navigate nowhere.
func (m *Manager) HandleNavigation(id string, router Router) {
	m.mu.Lock()
	tab, ok := m.state.TabsMap[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	activeID := id
	m.state.ActiveTab = &activeID
	m.mu.Unlock()

	if !tab.IsPreview && m.recents != nil {
		m.recents.Touch(tab)
	}
	m.emit("navigate", id)

	if router != nil {
		router.Push(TabPath(m.ref, tab))
	}
}

// CloseRequest carries the user-facing close flow inputs
type CloseRequest struct {
	ID     string
	Editor types.EditorFamily
	Router Router
	// OnClose is invoked last, on every branch
	OnClose func(id string)
	// OnClearDashboardHistory fires when focus falls back to a section root
	OnClearDashboardHistory func()
}

// HandleClose runs the full user-facing close flow: pick the replacement
// tab in the same editor family before mutating, drop the tab, then either
// navigate to the replacement or fall back to the section root. Closing an
// inactive tab never navigates.
func (m *Manager) HandleClose(req CloseRequest) {
	m.mu.Lock()
	closed, existed := m.state.TabsMap[req.ID]

	// Replacement candidate, computed against the post-removal strip
	var candidate *types.Tab
	for _, openID := range m.state.OpenTabs {
		if openID == req.ID {
			continue
		}
		t := m.state.TabsMap[openID]
		if t.Type.Family() == req.Editor {
			candidate = &t
			break
		}
	}

	wasActive := req.ID == NewTabID ||
		(m.state.ActiveTab != nil && *m.state.ActiveTab == req.ID)

	if existed {
		m.dropLocked(req.ID)
		if m.state.ActiveTab != nil && *m.state.ActiveTab == req.ID {
			m.state.ActiveTab = nil
		}
	}
	m.mu.Unlock()

	if existed {
		if m.metrics != nil {
			m.metrics.RecordTabClosed(string(closed.Type))
		}
		m.emit("close", req.ID)
	}

	if wasActive {
		if candidate != nil {
			m.HandleNavigation(candidate.ID, req.Router)
		} else {
			if req.OnClearDashboardHistory != nil {
				req.OnClearDashboardHistory()
			}
			if req.Router != nil {
				if existed {
					req.Router.Push(SectionPath(m.ref, closed.Type.Family()))
				} else {
					req.Router.Push(EditorPath(m.ref, req.Editor))
				}
			}
		}
	}

	if req.OnClose != nil {
		req.OnClose(req.ID)
	}
}

// HandleCloseAll closes every tab belonging to one editor family, clears
// dashboard history and navigates to the family's section root
func (m *Manager) HandleCloseAll(editor types.EditorFamily, router Router, onClearDashboardHistory func()) {
	m.mu.Lock()
	var removed []string
	for _, id := range m.state.OpenTabs {
		if familyFromID(id) == editor {
			removed = append(removed, id)
		}
	}
	for _, id := range removed {
		m.dropLocked(id)
	}
	if m.state.ActiveTab != nil {
		if _, ok := m.state.TabsMap[*m.state.ActiveTab]; !ok {
			m.state.ActiveTab = nil
		}
	}
	m.mu.Unlock()

	for range removed {
		m.emit("close", "")
	}

	if onClearDashboardHistory != nil {
		onClearDashboardHistory()
	}
	if router != nil {
		router.Push(SectionPath(m.ref, editor))
	}
}

// HandleDragEnd finishes a drag: a dragged preview becomes permanent, the
// strip is reordered, and the dragged tab ends up active
func (m *Manager) HandleDragEnd(oldIndex, newIndex int, tabID string, router Router) {
	m.mu.Lock()
	tab, ok := m.state.TabsMap[tabID]
	m.mu.Unlock()
	if !ok {
		return
	}

	if tab.IsPreview {
		m.MakePermanent(tabID)
	}
	m.Reorder(oldIndex, newIndex)
	m.HandleNavigation(tabID, router)
}

// Get retrieves a tab by id
func (m *Manager) Get(id string) (types.Tab, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tab, ok := m.state.TabsMap[id]
	return tab, ok
}

// State returns a copy of the workspace tab state
func (m *Manager) State() types.State {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := types.State{
		OpenTabs: make([]string, len(m.state.OpenTabs)),
		TabsMap:  make(map[string]types.Tab, len(m.state.TabsMap)),
	}
	copy(out.OpenTabs, m.state.OpenTabs)
	for k, v := range m.state.TabsMap {
		out.TabsMap[k] = v
	}
	if m.state.ActiveTab != nil {
		id := *m.state.ActiveTab
		out.ActiveTab = &id
	}
	if m.state.PreviewTabID != nil {
		id := *m.state.PreviewTabID
		out.PreviewTabID = &id
	}
	return out
}

// Stats returns manager statistics
func (m *Manager) Stats() types.TabStats {
	state := m.State()
	return types.TabStats{
		OpenTabs:     len(state.OpenTabs),
		ActiveTab:    state.ActiveTab,
		PreviewTabID: state.PreviewTabID,
	}
}

// dropLocked removes a tab from the strip, the registry and the preview
// slot without touching the active pointer. Caller must hold the lock.
func (m *Manager) dropLocked(id string) {
	if idx := indexOf(m.state.OpenTabs, id); idx >= 0 {
		m.state.OpenTabs = append(m.state.OpenTabs[:idx], m.state.OpenTabs[idx+1:]...)
	}
	delete(m.state.TabsMap, id)
	if m.state.PreviewTabID != nil && *m.state.PreviewTabID == id {
		m.state.PreviewTabID = nil
	}
}

func (m *Manager) emit(op, tabID string) {
	if m.emitter == nil {
		return
	}
	m.emitter.Emit(events.Event{
		Workspace: m.ref,
		Kind:      events.KindTabs,
		Op:        op,
		TabID:     tabID,
	})
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
