package runtime

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/asthra-lang/asthra-runtime/internal/safety"
)

// MetricFunc returns a map of metric name -> value (float64 for compatibility).
// Names should be simple tokens using [a-zA-Z0-9_:] to ease exposition.
type MetricFunc func() map[string]float64

// SystemCollectors exposes the memory and safety counters as metric
// collectors for text exposition.
func SystemCollectors(sys *System) map[string]MetricFunc {
	return map[string]MetricFunc{
		"memory": func() map[string]float64 {
			st := sys.Memory().Stats()
			return map[string]float64{
				"total_allocations":   float64(st.TotalAllocations),
				"total_frees":         float64(st.TotalFrees),
				"current_allocations": float64(st.CurrentAllocations),
				"peak_allocations":    float64(st.PeakAllocations),
				"bytes_allocated":     float64(st.BytesAllocated),
				"bytes_freed":         float64(st.BytesFreed),
				"current_bytes":       float64(st.CurrentBytes),
				"peak_bytes":          float64(st.PeakBytes),
				"slice_count":         float64(st.SliceCount),
				"string_count":        float64(st.StringCount),
				"result_count":        float64(st.ResultCount),
			}
		},
		"safety": func() map[string]float64 {
			mon := sys.Safety()
			perf := mon.PerformanceMetrics()
			out := map[string]float64{
				"violations_total": float64(mon.ViolationCount()),
				"ffi_pointers":     float64(mon.FFIPointerCount()),
				"result_trackers":  float64(mon.ResultTrackerCount()),
				"stack_canaries":   float64(mon.CanaryCount()),
				"task_events":      float64(mon.TaskEventCount()),
				"checks_performed": float64(perf.SafetyCheckCount),
			}
			for k := safety.ViolationGrammar; k <= safety.ViolationSecurity; k++ {
				out["violations_"+strings.ReplaceAll(k.String(), "-", "_")] = float64(mon.ViolationCountByKind(k))
			}
			return out
		},
	}
}

// writeMetrics renders every collector in text exposition format. Output
// order is stable so scrapes diff cleanly.
func writeMetrics(w http.ResponseWriter, collectors map[string]MetricFunc) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	names := make([]string, 0, len(collectors))
	for name := range collectors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fn := collectors[name]
		if fn == nil {
			continue
		}
		snapshot := fn()
		keys := make([]string, 0, len(snapshot))
		for k := range snapshot {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			metricName := sanitizeMetricToken(name + "_" + k)
			fmt.Fprintf(w, "%s %g\n", metricName, snapshot[k])
		}
	}
}

// StartMetricsServer starts a minimal text exposition endpoint for metrics on
// addr (host:port). The handler aggregates all provided collectors under
// "/metrics". It returns the bound address (which may differ if port 0 was
// used), and a shutdown function.
func StartMetricsServer(addr string, collectors map[string]MetricFunc) (string, func(ctx context.Context) error, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		writeMetrics(w, collectors)
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 3 * time.Second}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, err
	}
	bound := ln.Addr().String()
	go func() {
		_ = srv.Serve(ln)
	}()
	stop := func(ctx context.Context) error {
		return srv.Shutdown(ctx)
	}
	return bound, stop, nil
}

func sanitizeMetricToken(s string) string {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == ':' {
			b[i] = c
		} else {
			b[i] = '_'
		}
	}
	// Avoid leading digits per Prometheus conventions.
	if len(b) > 0 && b[0] >= '0' && b[0] <= '9' {
		return "_" + string(b)
	}
	return strings.ReplaceAll(string(b), "__", "_")
}
