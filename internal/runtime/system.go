// Package runtime assembles the FFI runtime's components behind one handle:
// the memory manager, the safety monitor, and the version handshake, plus
// the debug HTTP/HTTP3 surface that exposes their state.
package runtime

import (
	"fmt"
	"io"
	"time"

	"github.com/asthra-lang/asthra-runtime/internal/compat"
	"github.com/asthra-lang/asthra-runtime/internal/diag"
	"github.com/asthra-lang/asthra-runtime/internal/memory"
	"github.com/asthra-lang/asthra-runtime/internal/safety"
)

// System bundles the runtime's injected singletons. Embedders construct one
// with Init, hand its components to the code that needs them, and call
// Shutdown when the foreign boundary closes.
type System struct {
	mem     *memory.Manager
	monitor *safety.Monitor
	logger  *diag.Logger
	watcher *safety.ConfigWatcher
	started time.Time
}

type systemConfig struct {
	preset     string
	configFile string
	collector  memory.CollectorHooks
	logWriter  io.Writer
	abortHook  func(safety.ViolationKind, string)
}

// Option configures Init.
type Option func(*systemConfig)

// WithSafetyPreset selects a named safety preset (debug, release, testing,
// paranoid) instead of the default.
func WithSafetyPreset(name string) Option {
	return func(c *systemConfig) { c.preset = name }
}

// WithConfigFile loads the safety configuration from a JSON file and watches
// it for changes. The file takes precedence over a preset.
func WithConfigFile(path string) Option {
	return func(c *systemConfig) { c.configFile = path }
}

// WithCollector wires the GC zone to a real collector.
func WithCollector(hooks memory.CollectorHooks) Option {
	return func(c *systemConfig) { c.collector = hooks }
}

// WithLogWriter routes all runtime logging to w.
func WithLogWriter(w io.Writer) Option {
	return func(c *systemConfig) { c.logWriter = w }
}

// WithAbortHook replaces process termination on fatal safety violations.
// Test harnesses only.
func WithAbortHook(hook func(safety.ViolationKind, string)) Option {
	return func(c *systemConfig) { c.abortHook = hook }
}

// Init constructs the runtime system. Environment overrides
// (ASTHRA_SAFETY_*) are applied on top of whatever preset or file the
// options name.
func Init(options ...Option) (*System, error) {
	var cfg systemConfig
	for _, opt := range options {
		opt(&cfg)
	}

	logger := diag.Default()
	if cfg.logWriter != nil {
		logger = diag.New(cfg.logWriter)
	}

	safetyCfg := safety.DebugConfig()
	if cfg.preset != "" {
		loaded, err := safety.LoadPreset(cfg.preset)
		if err != nil {
			return nil, err
		}
		safetyCfg = loaded
	}
	if cfg.configFile != "" {
		loaded, err := safety.LoadConfigFile(cfg.configFile)
		if err != nil {
			return nil, fmt.Errorf("runtime: %w", err)
		}
		safetyCfg = loaded
	}
	safetyCfg = safety.ApplyEnv(safetyCfg)

	monitorOpts := []safety.MonitorOption{
		safety.WithConfig(safetyCfg),
		safety.WithMonitorLogger(logger),
	}
	if cfg.abortHook != nil {
		monitorOpts = append(monitorOpts, safety.WithAbortHook(cfg.abortHook))
	}
	monitor := safety.NewMonitor(monitorOpts...)

	memOpts := []memory.Option{memory.WithLogger(logger)}
	if cfg.collector.Allocate != nil && cfg.collector.Free != nil {
		memOpts = append(memOpts, memory.WithCollector(cfg.collector))
	}
	// The newest system owns the process-wide handle; embedders that hold
	// no *System reach the same manager through memory.Global.
	mem := memory.Initialize(memOpts...)

	sys := &System{
		mem:     mem,
		monitor: monitor,
		logger:  logger,
		started: time.Now(),
	}

	if cfg.configFile != "" {
		watcher, err := safety.WatchConfigFile(monitor, cfg.configFile)
		if err != nil {
			return nil, fmt.Errorf("runtime: watch %s: %w", cfg.configFile, err)
		}
		sys.watcher = watcher
	}

	logger.Logf(diag.LevelInfo, diag.CategoryGeneral,
		"%s initialized (safety level %s)", compat.Info(), safetyCfg.Level)
	return sys, nil
}

// Memory returns the system's memory manager.
func (s *System) Memory() *memory.Manager { return s.mem }

// Safety returns the system's safety monitor.
func (s *System) Safety() *safety.Monitor { return s.monitor }

// Logger returns the system's diagnostics sink.
func (s *System) Logger() *diag.Logger { return s.logger }

// Uptime reports how long the system has been running.
func (s *System) Uptime() time.Duration { return time.Since(s.started) }

// Shutdown stops the config watcher, sweeps for unhandled results, releases
// every outstanding block, and clears the safety tables. Returns the number
// of blocks that were still live; a non-zero count is a leak in the
// embedder.
func (s *System) Shutdown() int {
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}

	s.monitor.CheckUnhandledResults()

	leaked := s.mem.BlockCount()
	if leaked > 0 {
		s.logger.Logf(diag.LevelWarn, diag.CategoryMemory,
			"shutdown with %d live blocks", leaked)
	}

	s.mem.Shutdown()
	s.monitor.Shutdown()

	s.logger.Logf(diag.LevelInfo, diag.CategoryGeneral,
		"runtime shut down after %s", s.Uptime().Round(time.Millisecond))
	return leaked
}
