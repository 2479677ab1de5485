package storage

import (
	"bytes"
	"encoding/json"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/coraldesk/studio/backend/internal/infrastructure/logging"
	"github.com/coraldesk/studio/backend/internal/infrastructure/monitoring"
	"github.com/coraldesk/studio/backend/internal/shared/types"
)

// Loader reads and writes workspace snapshots through a Store.
//
// Load never fails: a missing key, unparseable document, or wrong-shaped
// document all yield the documented default. Save is fire-and-forget; a
// failed write is logged and swallowed because the in-memory state remains
// authoritative for the session.
type Loader struct {
	store   Store
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewLoader creates a loader over the given store
func NewLoader(store Store, logger *logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NewDefault()
	}
	return &Loader{store: store, logger: logger}
}

// WithMetrics adds metrics tracking to the loader
func (l *Loader) WithMetrics(metrics *monitoring.Metrics) *Loader {
	l.metrics = metrics
	return l
}

// tabsProbe holds the raw slices needed for shape validation before the
// full document is trusted
type tabsProbe struct {
	OpenTabs json.RawMessage `json:"openTabs"`
	TabsMap  json.RawMessage `json:"tabsMap"`
}

// LoadTabs returns the persisted tab state for a workspace, or the default
// state when the slot is absent or corrupt
func (l *Loader) LoadTabs(ref string) types.State {
	data, ok, err := l.store.Get(TabsKey(ref))
	if err != nil {
		l.loadFailed(ref, "tabs", err)
		return types.DefaultState()
	}
	if !ok {
		return types.DefaultState()
	}

	var probe tabsProbe
	if err := sonic.Unmarshal(data, &probe); err != nil {
		l.loadFailed(ref, "tabs", err)
		return types.DefaultState()
	}
	if !isJSONArray(probe.OpenTabs) || !isJSONObject(probe.TabsMap) {
		l.logger.Warn("Persisted tab state has unexpected shape, using defaults",
			zap.String("workspace", ref))
		if l.metrics != nil {
			l.metrics.RecordSnapshotLoadFailure("tabs")
		}
		return types.DefaultState()
	}

	var state types.State
	if err := sonic.Unmarshal(data, &state); err != nil {
		l.loadFailed(ref, "tabs", err)
		return types.DefaultState()
	}
	if state.OpenTabs == nil {
		state.OpenTabs = []string{}
	}
	if state.TabsMap == nil {
		state.TabsMap = map[string]types.Tab{}
	}
	return state
}

// LoadRecents returns the persisted recent items for a workspace, or the
// default empty list when the slot is absent or corrupt
func (l *Loader) LoadRecents(ref string) types.RecentSnapshot {
	data, ok, err := l.store.Get(RecentsKey(ref))
	if err != nil {
		l.loadFailed(ref, "recents", err)
		return types.DefaultRecents()
	}
	if !ok {
		return types.DefaultRecents()
	}

	var snap types.RecentSnapshot
	if err := sonic.Unmarshal(data, &snap); err != nil {
		l.loadFailed(ref, "recents", err)
		return types.DefaultRecents()
	}
	if snap.Items == nil {
		snap.Items = []types.RecentItem{}
	}
	return snap
}

// SaveTabs persists the tab state slice. Failures are swallowed.
func (l *Loader) SaveTabs(ref string, state types.State) {
	data, err := sonic.Marshal(state)
	if err != nil {
		l.saveFailed(ref, "tabs", err)
		return
	}
	if err := l.store.Set(TabsKey(ref), data); err != nil {
		l.saveFailed(ref, "tabs", err)
		return
	}
	if l.metrics != nil {
		l.metrics.RecordSnapshotSave("tabs")
	}
}

// SaveRecents persists the recent items slice. Failures are swallowed.
func (l *Loader) SaveRecents(ref string, snap types.RecentSnapshot) {
	data, err := sonic.Marshal(snap)
	if err != nil {
		l.saveFailed(ref, "recents", err)
		return
	}
	if err := l.store.Set(RecentsKey(ref), data); err != nil {
		l.saveFailed(ref, "recents", err)
		return
	}
	if l.metrics != nil {
		l.metrics.RecordSnapshotSave("recents")
	}
}

func (l *Loader) loadFailed(ref, slice string, err error) {
	l.logger.Warn("Failed to load persisted snapshot, using defaults",
		zap.String("workspace", ref),
		zap.String("slice", slice),
		zap.Error(err),
	)
	if l.metrics != nil {
		l.metrics.RecordSnapshotLoadFailure(slice)
	}
}

func (l *Loader) saveFailed(ref, slice string, err error) {
	l.logger.Warn("Failed to persist snapshot",
		zap.String("workspace", ref),
		zap.String("slice", slice),
		zap.Error(err),
	)
	if l.metrics != nil {
		l.metrics.RecordSnapshotSaveFailure(slice)
	}
}

func isJSONArray(raw json.RawMessage) bool {
	return firstByte(raw) == '['
}

func isJSONObject(raw json.RawMessage) bool {
	return firstByte(raw) == '{'
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
