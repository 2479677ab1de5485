// Package ws streams workspace state changes to dashboard clients.
//
// Each connection is pinned to one workspace ref and receives an event
// frame for every tab or recents mutation in that workspace. Slow
// consumers drop frames instead of blocking mutations; clients are
// expected to refetch full state after a reconnect.
//
// Message Types (Client → Server):
//   - ping: Keep-alive ping
//
// Message Types (Server → Client):
//   - system: Connection established
//   - event: Workspace mutation (kind, op, tabId)
//   - pong: Keep-alive reply
//   - error: Unknown client message
//
// Example Usage:
//
//	handler := ws.NewHandler(workspaces, logger).WithMetrics(metrics)
//	router.GET("/stream", handler.HandleConnection)
package ws
