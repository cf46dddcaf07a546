package runtime

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/asthra-lang/asthra-runtime/internal/compat"
	"github.com/asthra-lang/asthra-runtime/internal/safety"
)

// safetySnapshot is the /api/safety payload: the active configuration plus
// every counter an operator needs to judge the health of the foreign
// boundary.
type safetySnapshot struct {
	Config          safety.Config             `json:"config"`
	TotalViolations uint64                    `json:"total_violations"`
	Violations      map[string]uint64         `json:"violations"`
	Performance     safety.PerformanceMetrics `json:"performance"`
	FFIPointers     int                       `json:"ffi_pointers"`
	ResultTrackers  int                       `json:"result_trackers"`
	StackCanaries   int                       `json:"stack_canaries"`
	TaskEvents      uint64                    `json:"task_events"`
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func debugMux(sys *System) *http.ServeMux {
	mux := http.NewServeMux()

	// Memory statistics
	mux.HandleFunc("/api/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, sys.Memory().Stats())
	})

	// Live block dump
	mux.HandleFunc("/api/blocks", func(w http.ResponseWriter, r *http.Request) {
		blocks := sys.Memory().Blocks()
		if nStr := r.URL.Query().Get("limit"); nStr != "" {
			n, err := strconv.Atoi(nStr)
			if err != nil || n < 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			if n < len(blocks) {
				blocks = blocks[:n]
			}
		}
		writeJSON(w, blocks)
	})

	// Safety configuration and counters
	mux.HandleFunc("/api/safety", func(w http.ResponseWriter, r *http.Request) {
		mon := sys.Safety()
		snap := safetySnapshot{
			Config:          mon.Config(),
			TotalViolations: mon.ViolationCount(),
			Violations:      make(map[string]uint64),
			Performance:     mon.PerformanceMetrics(),
			FFIPointers:     mon.FFIPointerCount(),
			ResultTrackers:  mon.ResultTrackerCount(),
			StackCanaries:   mon.CanaryCount(),
			TaskEvents:      mon.TaskEventCount(),
		}
		for k := safety.ViolationGrammar; k <= safety.ViolationSecurity; k++ {
			if n := mon.ViolationCountByKind(k); n > 0 {
				snap.Violations[k.String()] = n
			}
		}
		writeJSON(w, snap)
	})

	// Build and version handshake info
	mux.HandleFunc("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, compat.Info())
	})

	// Text exposition of the same counters for scrapers
	collectors := SystemCollectors(sys)
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		writeMetrics(w, collectors)
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	return mux
}

// StartDebugHTTP exposes a minimal JSON debugging endpoint backed by the
// runtime system.
//
// Endpoints:
//
//	GET /api/stats    -> memory statistics snapshot
//	GET /api/blocks   -> live block dump          Query params: limit=<count>
//	GET /api/safety   -> safety config and violation counters
//	GET /api/version  -> runtime build info
//	GET /metrics      -> counters in text exposition format
//	GET /healthz      -> liveness probe
//
// It returns a shutdown function compatible with http.Server.Shutdown.
func StartDebugHTTP(sys *System, addr string) (func(ctx context.Context) error, error) {
	shutdown, _, err := StartDebugHTTPOn(sys, addr)
	return shutdown, err
}

// StartDebugHTTPOn starts the debug HTTP server on an explicit listener
// address and returns the shutdown function along with the bound address
// string (useful when addr uses :0).
func StartDebugHTTPOn(sys *System, addr string) (shutdown func(ctx context.Context) error, boundAddr string, err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", err
	}
	server := &http.Server{Handler: debugMux(sys), ReadHeaderTimeout: 3 * time.Second}
	go func() { _ = server.Serve(ln) }()
	return server.Shutdown, ln.Addr().String(), nil
}
