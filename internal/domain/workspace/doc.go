// Package workspace binds tab state and recency tracking to a workspace
// ref and keeps both persisted.
//
// A binding is constructed fresh from the persistent store loader; there
// is no merging with whatever was live before. Every mutation event causes
// the changed slice to be serialized back under the ref captured at bind
// time. Persistence is fire-and-forget: a failed write never rolls back or
// surfaces into the mutating operation.
package workspace
