/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the studio
state backend, tracking HTTP requests, tab lifecycle operations, snapshot
persistence, and system metrics.

# Features

- HTTP request metrics (latency, throughput, size)
- Tab lifecycle metrics (opened, closed, preview promotions and evictions)
- Recency tracker metrics
- Snapshot persistence metrics (saves, swallowed failures, corrupt loads)
- WebSocket connection metrics
- System metrics (uptime)

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Record custom metrics
	metrics.RecordTabOpened("table", false)
	metrics.SetTabsOpen("proj1", 5)

# Metrics Endpoint

Expose metrics via the standard Prometheus endpoint:

	import "github.com/prometheus/client_golang/prometheus/promhttp"
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
