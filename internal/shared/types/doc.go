// Package types provides shared data structures for the studio backend.
//
// This package defines core types used across all backend components,
// ensuring type safety and consistent data structures.
//
// Core Types:
//   - Tab: Open editor surface (relation or SQL snippet)
//   - TabMetadata: Kind-specific payload (schema, entity id, scroll offset)
//   - State: Per-workspace tab state (open order, registry, active, preview)
//   - RecentItem: Timestamped record of a previously visited tab
//
// State Management:
//   - TabType: Closed set of editor surface kinds
//   - EditorFamily: Table editor vs SQL editor partition
//   - TabStats: Workspace statistics
//
// Invariants (enforced by domain/tabs):
//   - TabsMap keys are exactly the members of OpenTabs
//   - At most one tab has IsPreview set; PreviewTabID points at it
//   - ActiveTab, if set, is a key of TabsMap
//
// Example Usage:
//
//	tab := types.Tab{
//	    ID:    id.ForEntity(types.TypeTable, "291"),
//	    Type:  types.TypeTable,
//	    Label: "orders",
//	}
package types
