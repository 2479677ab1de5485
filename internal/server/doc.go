// Package server provides HTTP server setup and initialization.
//
// This package orchestrates all components:
//   - HTTP routing with Gin framework
//   - Middleware stack (CORS, rate limiting, recovery, metrics)
//   - Snapshot store selection (file or in-memory)
//   - Workspace manager initialization
//
// Server Lifecycle:
//  1. Load configuration from environment
//  2. Initialize logger (production or development)
//  3. Open the snapshot store and loader
//  4. Create the workspace manager
//  5. Setup HTTP routes and middleware
//  6. Start HTTP server
//  7. Graceful shutdown on signal
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
