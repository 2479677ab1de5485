package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Tab metrics
	TabsOpen         *prometheus.GaugeVec
	TabsOpened       *prometheus.CounterVec
	TabsClosed       *prometheus.CounterVec
	PreviewsPromoted prometheus.Counter
	PreviewsEvicted  prometheus.Counter

	// Recency metrics
	RecentItems *prometheus.GaugeVec

	// Workspace metrics
	WorkspacesBound prometheus.Gauge

	// Snapshot persistence metrics
	SnapshotSaves        *prometheus.CounterVec
	SnapshotSaveFailures *prometheus.CounterVec
	SnapshotLoadFailures *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests     int64
	TotalErrors       int64
	OpenTabs          int64
	ActiveConnections int64
	TotalDuration     float64 // sum of all request durations
	RequestCount      int64   // count for averaging
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studio_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studio_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studio_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		// Tab metrics
		TabsOpen: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "studio_tabs_open",
				Help: "Number of open tabs per workspace",
			},
			[]string{"workspace"},
		),
		TabsOpened: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_tabs_opened_total",
				Help: "Total number of tabs opened",
			},
			[]string{"type", "preview"},
		),
		TabsClosed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_tabs_closed_total",
				Help: "Total number of tabs closed",
			},
			[]string{"type"},
		),
		PreviewsPromoted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "studio_previews_promoted_total",
				Help: "Total number of preview tabs made permanent",
			},
		),
		PreviewsEvicted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "studio_previews_evicted_total",
				Help: "Total number of preview tabs replaced by a newer preview",
			},
		),

		// Recency metrics
		RecentItems: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "studio_recent_items",
				Help: "Number of tracked recent items per workspace",
			},
			[]string{"workspace"},
		),

		// Workspace metrics
		WorkspacesBound: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "studio_workspaces_bound",
				Help: "Number of workspaces with live state bindings",
			},
		),

		// Snapshot persistence metrics
		SnapshotSaves: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_snapshot_saves_total",
				Help: "Total number of snapshot writes",
			},
			[]string{"slice"},
		),
		SnapshotSaveFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_snapshot_save_failures_total",
				Help: "Total number of swallowed snapshot write failures",
			},
			[]string{"slice"},
		),
		SnapshotLoadFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_snapshot_load_failures_total",
				Help: "Total number of corrupt or unreadable snapshots replaced by defaults",
			},
			[]string{"slice"},
		),

		// WebSocket metrics
		WSConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "studio_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),

		// System metrics
		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "studio_uptime_seconds",
				Help: "Backend uptime in seconds",
			},
		),
	}

	// Start uptime updater
	go m.updateUptime()

	return m
}

// updateUptime continuously updates the uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	// Update snapshot
	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordTabOpened records a tab entering the registry
func (m *Metrics) RecordTabOpened(tabType string, preview bool) {
	label := "false"
	if preview {
		label = "true"
	}
	m.TabsOpened.WithLabelValues(tabType, label).Inc()
}

// RecordTabClosed records a tab leaving the registry
func (m *Metrics) RecordTabClosed(tabType string) {
	m.TabsClosed.WithLabelValues(tabType).Inc()
}

// RecordPreviewPromoted records a preview tab becoming permanent
func (m *Metrics) RecordPreviewPromoted() {
	m.PreviewsPromoted.Inc()
}

// RecordPreviewEvicted records a preview tab replaced by a newer preview
func (m *Metrics) RecordPreviewEvicted() {
	m.PreviewsEvicted.Inc()
}

// SetTabsOpen sets the open tab count for a workspace
func (m *Metrics) SetTabsOpen(workspace string, count int) {
	m.TabsOpen.WithLabelValues(workspace).Set(float64(count))
	m.mu.Lock()
	m.snapshot.OpenTabs = int64(count)
	m.mu.Unlock()
}

// SetRecentItems sets the recent item count for a workspace
func (m *Metrics) SetRecentItems(workspace string, count int) {
	m.RecentItems.WithLabelValues(workspace).Set(float64(count))
}

// SetWorkspacesBound sets the number of live workspace bindings
func (m *Metrics) SetWorkspacesBound(count int) {
	m.WorkspacesBound.Set(float64(count))
}

// RecordSnapshotSave records a successful snapshot write
func (m *Metrics) RecordSnapshotSave(slice string) {
	m.SnapshotSaves.WithLabelValues(slice).Inc()
}

// RecordSnapshotSaveFailure records a swallowed snapshot write failure
func (m *Metrics) RecordSnapshotSaveFailure(slice string) {
	m.SnapshotSaveFailures.WithLabelValues(slice).Inc()
}

// RecordSnapshotLoadFailure records a corrupt snapshot replaced by defaults
func (m *Metrics) RecordSnapshotLoadFailure(slice string) {
	m.SnapshotLoadFailures.WithLabelValues(slice).Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// Snapshot returns current aggregate values for the JSON metrics API
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
