package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")

	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(health)
}

// handleReady reports ready once templates are parsed and a snapshot is loaded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	snap, err := s.snapshots.Current()
	if err != nil {
		checks["dataset"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["dataset"] = map[string]interface{}{
			"status":      "ok",
			"snapshot":    snap.ID,
			"source":      snap.Source,
			"loaded_at":   snap.LoadedAt.Format(time.RFC3339),
			"salespeople": len(snap.Data.Salespeople()),
			"lines":       snap.Data.Len(),
		}
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(response)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.exportLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()
	uptime := time.Since(s.startedAt)

	w.WriteHeader(http.StatusOK)

	// Write metrics in Prometheus-like format
	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP http_server_errors_total Total number of 5xx responses\n")
	fmt.Fprintf(w, "# TYPE http_server_errors_total counter\n")
	fmt.Fprintf(w, "http_server_errors_total %d\n\n", traceMetrics.ServerErrors)

	fmt.Fprintf(w, "# HELP http_response_time_avg_seconds Average response time\n")
	fmt.Fprintf(w, "# TYPE http_response_time_avg_seconds gauge\n")
	fmt.Fprintf(w, "http_response_time_avg_seconds %.6f\n\n", traceMetrics.AverageResponseTime.Seconds())

	if s.cache != nil {
		stats := s.cache.Stats()
		fmt.Fprintf(w, "# HELP cache_hits_total Total cache hits\n")
		fmt.Fprintf(w, "# TYPE cache_hits_total counter\n")
		fmt.Fprintf(w, "cache_hits_total %d\n\n", stats.Hits)

		fmt.Fprintf(w, "# HELP cache_misses_total Total cache misses\n")
		fmt.Fprintf(w, "# TYPE cache_misses_total counter\n")
		fmt.Fprintf(w, "cache_misses_total %d\n\n", stats.Misses)

		fmt.Fprintf(w, "# HELP cache_entries Current cache entries\n")
		fmt.Fprintf(w, "# TYPE cache_entries gauge\n")
		fmt.Fprintf(w, "cache_entries{type=\"dashboard\"} %d\n\n", stats.Size)
	}

	if snap, err := s.snapshots.Current(); err == nil {
		fmt.Fprintf(w, "# HELP dataset_lines Invoice lines in the current snapshot\n")
		fmt.Fprintf(w, "# TYPE dataset_lines gauge\n")
		fmt.Fprintf(w, "dataset_lines %d\n\n", snap.Data.Len())

		fmt.Fprintf(w, "# HELP dataset_salespeople Salespeople in the current snapshot\n")
		fmt.Fprintf(w, "# TYPE dataset_salespeople gauge\n")
		fmt.Fprintf(w, "dataset_salespeople %d\n\n", len(snap.Data.Salespeople()))
	}

	fmt.Fprintf(w, "# HELP export_rate_limit_hits_total Total export requests rejected by the rate limiter\n")
	fmt.Fprintf(w, "# TYPE export_rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "export_rate_limit_hits_total %d\n\n", rateLimitMetrics.Rejected)

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", rateLimitMetrics.ClientCount)

	fmt.Fprintf(w, "# HELP suspicious_requests_total Total suspicious requests detected\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", securityMetrics.SuspiciousRequests)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n\n", uptime.Seconds())
}
