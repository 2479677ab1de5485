package types

import "time"

// TabType identifies the kind of editor surface a tab points at
type TabType string

const (
	TypeTable            TabType = "table"
	TypeView             TabType = "view"
	TypeMaterializedView TabType = "materialized-view"
	TypeForeignTable     TabType = "foreign-table"
	TypePartitionedTable TabType = "partitioned-table"
	TypeSQL              TabType = "sql"
)

// EditorFamily selects between the two editor surfaces
type EditorFamily string

const (
	EditorTable EditorFamily = "table"
	EditorSQL   EditorFamily = "sql"
)

// tableLike holds every relation kind handled by the table editor
var tableLike = map[TabType]bool{
	TypeTable:            true,
	TypeView:             true,
	TypeMaterializedView: true,
	TypeForeignTable:     true,
	TypePartitionedTable: true,
}

// IsTableLike reports whether a tab type belongs to the table editor family
func (t TabType) IsTableLike() bool {
	return tableLike[t]
}

// IsValid reports whether t is a member of the closed type set
func (t TabType) IsValid() bool {
	return t == TypeSQL || tableLike[t]
}

// Family maps a tab type to its editor family
func (t TabType) Family() EditorFamily {
	if t == TypeSQL {
		return EditorSQL
	}
	return EditorTable
}

// TabMetadata carries kind-specific payload for a tab
type TabMetadata struct {
	Schema    string `json:"schema,omitempty"`
	TableID   string `json:"tableId,omitempty"`
	SQLID     string `json:"sqlId,omitempty"`
	ScrollTop int    `json:"scrollTop,omitempty"`
}

// Tab represents an open editor surface tracked by the workspace state
type Tab struct {
	ID        string       `json:"id"`
	Type      TabType      `json:"type"`
	Label     string       `json:"label"`
	Metadata  *TabMetadata `json:"metadata,omitempty"`
	IsPreview bool         `json:"isPreview"`
	CreatedAt time.Time    `json:"createdAt"`
}

// TabUpdate is a partial update applied to an existing tab.
// Only non-nil fields are written.
type TabUpdate struct {
	Label     *string `json:"label,omitempty"`
	ScrollTop *int    `json:"scrollTop,omitempty"`
}

// State is the per-workspace tab state. OpenTabs order is the tab strip
// order. TabsMap keys are exactly the members of OpenTabs.
type State struct {
	ActiveTab    *string        `json:"activeTab"`
	OpenTabs     []string       `json:"openTabs"`
	TabsMap      map[string]Tab `json:"tabsMap"`
	PreviewTabID *string        `json:"previewTabId,omitempty"`
}

// DefaultState returns the documented empty workspace state
func DefaultState() State {
	return State{
		ActiveTab:    nil,
		OpenTabs:     []string{},
		TabsMap:      map[string]Tab{},
		PreviewTabID: nil,
	}
}

// RecentItem is a timestamped record of a previously visited tab,
// kept independently of whether the tab is still open
type RecentItem struct {
	ID        string       `json:"id"`
	Type      TabType      `json:"type"`
	Label     string       `json:"label"`
	Timestamp int64        `json:"timestamp"`
	Metadata  *TabMetadata `json:"metadata,omitempty"`
}

// RecentSnapshot is the persisted shape of the recency tracker
type RecentSnapshot struct {
	Items []RecentItem `json:"items"`
}

// DefaultRecents returns the documented empty recents snapshot
func DefaultRecents() RecentSnapshot {
	return RecentSnapshot{Items: []RecentItem{}}
}

// TabStats contains tab manager statistics
type TabStats struct {
	OpenTabs     int     `json:"open_tabs"`
	ActiveTab    *string `json:"active_tab,omitempty"`
	PreviewTabID *string `json:"preview_tab_id,omitempty"`
}
