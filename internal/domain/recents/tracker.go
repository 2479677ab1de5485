package recents

import (
	"sync"
	"time"

	"github.com/coraldesk/studio/backend/internal/shared/events"
	"github.com/coraldesk/studio/backend/internal/shared/types"
)

// DefaultCap bounds the table-like partition of the list. SQL snippets are
// never trimmed; users accumulate few of them and trimming would lose the
// only record of closed snippets.
const DefaultCap = 8

// Tracker is a bounded most-recently-used list of visited tabs, kept
// independently of whether the tab is still open.
type Tracker struct {
	mu        sync.Mutex
	workspace string
	items     []types.RecentItem
	cap       int
	now       func() time.Time
	emitter   *events.Emitter
}

// NewTracker creates a tracker for a workspace, seeded from a persisted
// snapshot. Seeding does not emit events.
func NewTracker(workspace string, seed []types.RecentItem, capacity int, emitter *events.Emitter) *Tracker {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	items := make([]types.RecentItem, len(seed))
	copy(items, seed)

	return &Tracker{
		workspace: workspace,
		items:     items,
		cap:       capacity,
		now:       time.Now,
		emitter:   emitter,
	}
}

// WithClock overrides the time source. Used in tests.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Touch records a visit to a tab. An existing entry is updated in place
// (timestamp and display fields); a new entry is prepended. After insertion
// the table-like partition is trimmed to capacity, so a fresh insert can
// evict the oldest table-like entry.
func (t *Tracker) Touch(tab types.Tab) {
	label := tab.Label
	if label == "" {
		label = "Untitled"
	}

	t.mu.Lock()
	updated := false
	for i := range t.items {
		if t.items[i].ID == tab.ID {
			t.items[i].Timestamp = t.now().UnixMilli()
			t.items[i].Label = label
			t.items[i].Metadata = tab.Metadata
			updated = true
			break
		}
	}

	if !updated {
		item := types.RecentItem{
			ID:        tab.ID,
			Type:      tab.Type,
			Label:     label,
			Timestamp: t.now().UnixMilli(),
			Metadata:  tab.Metadata,
		}
		t.items = append([]types.RecentItem{item}, t.items...)
		t.trimLocked()
	}
	t.mu.Unlock()

	t.emit("touch", tab.ID)
}

// trimLocked caps the table-like partition, preserving sequence order.
// Non-table types are unbounded. Caller must hold the lock.
func (t *Tracker) trimLocked() {
	var tableLike, other []types.RecentItem
	for _, item := range t.items {
		if item.Type.IsTableLike() {
			tableLike = append(tableLike, item)
		} else {
			other = append(other, item)
		}
	}
	if len(tableLike) <= t.cap {
		return
	}
	t.items = append(tableLike[:t.cap:t.cap], other...)
}

// Items returns a copy of the tracked list in underlying sequence order.
// Callers sort by timestamp at render time.
func (t *Tracker) Items() []types.RecentItem {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]types.RecentItem, len(t.items))
	copy(out, t.items)
	return out
}

// ByType returns the tracked items of a single type
func (t *Tracker) ByType(tabType types.TabType) []types.RecentItem {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []types.RecentItem
	for _, item := range t.items {
		if item.Type == tabType {
			out = append(out, item)
		}
	}
	return out
}

// Remove drops a single item. Missing ids are a no-op.
func (t *Tracker) Remove(id string) {
	t.RemoveMany([]string{id})
}

// RemoveMany drops the given ids. Missing ids are skipped.
func (t *Tracker) RemoveMany(ids []string) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	t.mu.Lock()
	kept := t.items[:0]
	for _, item := range t.items {
		if !drop[item.ID] {
			kept = append(kept, item)
		}
	}
	t.items = kept
	t.mu.Unlock()

	t.emit("remove", "")
}

// RemoveByType drops every item of the given type
func (t *Tracker) RemoveByType(tabType types.TabType) {
	t.mu.Lock()
	kept := t.items[:0]
	for _, item := range t.items {
		if item.Type != tabType {
			kept = append(kept, item)
		}
	}
	t.items = kept
	t.mu.Unlock()

	t.emit("remove_by_type", "")
}

// Clear empties the tracker
func (t *Tracker) Clear() {
	t.mu.Lock()
	t.items = t.items[:0]
	t.mu.Unlock()

	t.emit("clear", "")
}

// Len returns the number of tracked items
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

// Snapshot returns the persisted shape of the tracker
func (t *Tracker) Snapshot() types.RecentSnapshot {
	return types.RecentSnapshot{Items: t.Items()}
}

func (t *Tracker) emit(op, tabID string) {
	if t.emitter == nil {
		return
	}
	t.emitter.Emit(events.Event{
		Workspace: t.workspace,
		Kind:      events.KindRecents,
		Op:        op,
		TabID:     tabID,
	})
}
