// Package main is the entry point for the studio state server.
//
// This service holds the dashboard's editor state server-side: the open
// tab strip, the single preview slot, the active tab and the recently
// visited items of every workspace, persisted per workspace ref.
//
// The server provides:
//   - REST API for tab and recents operations
//   - WebSocket streaming of state mutations
//   - Per-workspace snapshot persistence
//   - Rate limiting and security
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8000 -data /var/lib/studio-state
//
//	# Development mode (colored logs, debug level, in-memory store)
//	./server -dev -data ""
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
