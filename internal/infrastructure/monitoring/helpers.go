package monitoring

// Summary holds aggregate metric values for the JSON metrics endpoint
type Summary struct {
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	ErrorRate         float64 `json:"error_rate"`
	AvgDurationMs     float64 `json:"avg_duration_ms"`
	OpenTabs          int64   `json:"open_tabs"`
	ActiveConnections int64   `json:"active_connections"`
}

// Summarize computes a Summary from the current snapshot
func (m *Metrics) Summarize() Summary {
	snap := m.Snapshot()

	s := Summary{
		TotalRequests:     snap.TotalRequests,
		TotalErrors:       snap.TotalErrors,
		OpenTabs:          snap.OpenTabs,
		ActiveConnections: snap.ActiveConnections,
	}
	if snap.TotalRequests > 0 {
		s.ErrorRate = float64(snap.TotalErrors) / float64(snap.TotalRequests)
	}
	if snap.RequestCount > 0 {
		s.AvgDurationMs = snap.TotalDuration / float64(snap.RequestCount) * 1000
	}
	return s
}
