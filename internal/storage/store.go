// Package storage translates between in-memory workspace state and a
// durable key-value slot scoped by workspace ref.
//
// Two keys exist per workspace: one for the tab state, one for the recent
// items list. Persisted data is never trusted blindly: the loader shape
// validates on read and falls back to documented defaults on any corruption,
// because the persisted format can predate a schema change. Writes are
// best-effort; tab-state loss is recoverable and must never block editing.
package storage

import "fmt"

// Store is a durable key-value slot. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the stored value and whether the key exists
	Get(key string) ([]byte, bool, error)
	// Set writes a value, replacing any existing one
	Set(key string, value []byte) error
	// Delete removes a key; missing keys are not an error
	Delete(key string) error
}

// TabsKey returns the storage key for a workspace's tab state
func TabsKey(ref string) string {
	return fmt.Sprintf("tabs:%s", ref)
}

// RecentsKey returns the storage key for a workspace's recent items
func RecentsKey(ref string) string {
	return fmt.Sprintf("recents:%s", ref)
}
