// Package tabs orchestrates the tab lifecycle of a workspace.
//
// The manager is the source of truth for "what is open": an ordered tab
// strip, an id-to-tab registry, the active tab and a single preview slot.
//
// Preview semantics implement a peek UX: opening a tab as preview replaces
// the current preview, while permanent tabs accumulate until explicitly
// closed. Promoting a preview (explicit action, or dragging it in the
// strip) makes it permanent and records it as recently visited.
//
// Operations:
//   - Add, Update, Remove, RemoveMany, Reorder: registry mutations
//   - MakePermanent, MakeActivePermanent: preview promotion
//   - HandleNavigation, HandleClose, HandleCloseAll, HandleDragEnd:
//     user-facing flows that additionally drive the Router collaborator
//
// Invariants:
//   - Registry keys are exactly the members of the strip
//   - At most one preview tab exists; PreviewTabID points at it
//   - The active tab, if set, is in the registry
//
// Every mutation emits an event after committing; persistence and the
// WebSocket fan-out subscribe to the stream. No operation fails on an
// unknown id: tab state loss is recoverable and must never block editing.
package tabs
