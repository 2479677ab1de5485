// Package recents tracks recently visited tabs per workspace.
//
// The list is fed by tab lifecycle events and survives tab closure: closing
// a table editor does not forget that the table was visited. Entries are
// deduplicated by id; re-visiting refreshes the timestamp in place. The
// table-like partition is bounded, SQL snippets are kept indefinitely.
package recents
