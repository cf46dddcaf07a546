// Package safety implements the runtime's cross-cutting violation monitor:
// a process-wide configuration of layered checks, an FFI pointer tracker for
// annotation verification, stack canaries, secure-memory validation, fault
// injection, and the reporting path that decides whether a violation is
// logged or fatal. The monitor observes the other runtime components; it
// never owns their state.
package safety

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Level orders violation severities and doubles as the abort threshold: a
// violation at or above the configured level terminates the process.
type Level int32

const (
	// LevelNone disables escalation entirely.
	LevelNone Level = iota
	// LevelBasic covers cheap bounds and null checks.
	LevelBasic
	// LevelStandard is the default checking depth.
	LevelStandard
	// LevelEnhanced adds debugging aids.
	LevelEnhanced
	// LevelParanoid enables every validation the runtime has.
	LevelParanoid
)

var levelNames = [...]string{"none", "basic", "standard", "enhanced", "paranoid"}

func (l Level) String() string {
	if l < LevelNone || l > LevelParanoid {
		return fmt.Sprintf("level(%d)", int32(l))
	}
	return levelNames[l]
}

// ParseLevel converts a configuration string into a Level.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return LevelStandard, fmt.Errorf("unknown safety level %q", s)
}

// MarshalJSON encodes the level as its stable name.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts either the stable name or the numeric value.
func (l *Level) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		parsed, perr := ParseLevel(name)
		if perr != nil {
			return perr
		}
		*l = parsed
		return nil
	}
	var n int32
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("safety level must be a name or number: %s", data)
	}
	if n < int32(LevelNone) || n > int32(LevelParanoid) {
		return fmt.Errorf("safety level %d out of range", n)
	}
	*l = Level(n)
	return nil
}

// Config is the process-wide bag of check flags plus the severity threshold.
// Every guarded operation reads it; it changes only through Monitor.SetConfig
// so readers always observe a consistent snapshot.
type Config struct {
	Level Level `json:"level"`

	BoundsChecking         bool `json:"bounds_checking"`
	TypeSafetyChecks       bool `json:"type_safety_checks"`
	OwnershipTracking      bool `json:"ownership_tracking"`
	AnnotationVerification bool `json:"annotation_verification"`
	PatternMatchingChecks  bool `json:"pattern_matching_checks"`
	StringValidation       bool `json:"string_validation"`
	MemoryLayoutValidation bool `json:"memory_layout_validation"`
	ConcurrencyDebugging   bool `json:"concurrency_debugging"`
	ErrorHandlingAids      bool `json:"error_handling_aids"`
	SecurityEnforcement    bool `json:"security_enforcement"`
	StackCanaries          bool `json:"stack_canaries"`
	FFICallLogging         bool `json:"ffi_call_logging"`
	ConstantTimeChecks     bool `json:"constant_time_checks"`
	SecureMemoryValidation bool `json:"secure_memory_validation"`
	FaultInjection         bool `json:"fault_injection"`
	PerformanceMonitoring  bool `json:"performance_monitoring"`
}

// DebugConfig is the preset used when no explicit configuration is given:
// everything a developer wants on, nothing that needs test harness support.
func DebugConfig() Config {
	return Config{
		Level:                  LevelEnhanced,
		BoundsChecking:         true,
		TypeSafetyChecks:       true,
		OwnershipTracking:      true,
		AnnotationVerification: true,
		PatternMatchingChecks:  true,
		StringValidation:       true,
		MemoryLayoutValidation: true,
		ConcurrencyDebugging:   true,
		ErrorHandlingAids:      true,
		SecurityEnforcement:    true,
		StackCanaries:          true,
		FFICallLogging:         true,
		SecureMemoryValidation: true,
		PerformanceMonitoring:  true,
	}
}

// ReleaseConfig keeps only the checks cheap enough for production.
func ReleaseConfig() Config {
	return Config{
		Level:          LevelBasic,
		BoundsChecking: true,
	}
}

// TestingConfig is DebugConfig plus fault injection, for exercising failure
// paths in test harnesses.
func TestingConfig() Config {
	cfg := DebugConfig()
	cfg.Level = LevelStandard
	cfg.FaultInjection = true
	return cfg
}

// ParanoidConfig enables every check at the maximum threshold.
func ParanoidConfig() Config {
	cfg := DebugConfig()
	cfg.Level = LevelParanoid
	cfg.ConstantTimeChecks = true
	cfg.FaultInjection = true
	return cfg
}

// PresetNames lists the configuration presets LoadPreset accepts.
var PresetNames = []string{"debug", "release", "testing", "paranoid"}

// LoadPreset returns the named preset configuration.
func LoadPreset(name string) (Config, error) {
	switch strings.ToLower(name) {
	case "debug":
		return DebugConfig(), nil
	case "release":
		return ReleaseConfig(), nil
	case "testing":
		return TestingConfig(), nil
	case "paranoid":
		return ParanoidConfig(), nil
	default:
		return Config{}, fmt.Errorf("unknown safety preset %q", name)
	}
}

// LoadConfigFile reads a JSON configuration from path.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse safety config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfigFile writes cfg to path as indented JSON.
func SaveConfigFile(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// envPrefix scopes the environment overrides recognized by ApplyEnv.
const envPrefix = "ASTHRA_SAFETY_"

// ApplyEnv overlays ASTHRA_SAFETY_* environment variables onto cfg and
// returns the result. ASTHRA_SAFETY_LEVEL names the threshold; the remaining
// variables are boolean flags (1/0, true/false) named after the JSON keys,
// e.g. ASTHRA_SAFETY_STACK_CANARIES=0.
func ApplyEnv(cfg Config) Config {
	if v, ok := os.LookupEnv(envPrefix + "LEVEL"); ok {
		if level, err := ParseLevel(v); err == nil {
			cfg.Level = level
		}
	}

	flags := map[string]*bool{
		"BOUNDS_CHECKING":          &cfg.BoundsChecking,
		"TYPE_SAFETY_CHECKS":       &cfg.TypeSafetyChecks,
		"OWNERSHIP_TRACKING":       &cfg.OwnershipTracking,
		"ANNOTATION_VERIFICATION":  &cfg.AnnotationVerification,
		"PATTERN_MATCHING_CHECKS":  &cfg.PatternMatchingChecks,
		"STRING_VALIDATION":        &cfg.StringValidation,
		"MEMORY_LAYOUT_VALIDATION": &cfg.MemoryLayoutValidation,
		"CONCURRENCY_DEBUGGING":    &cfg.ConcurrencyDebugging,
		"ERROR_HANDLING_AIDS":      &cfg.ErrorHandlingAids,
		"SECURITY_ENFORCEMENT":     &cfg.SecurityEnforcement,
		"STACK_CANARIES":           &cfg.StackCanaries,
		"FFI_CALL_LOGGING":         &cfg.FFICallLogging,
		"CONSTANT_TIME_CHECKS":     &cfg.ConstantTimeChecks,
		"SECURE_MEMORY_VALIDATION": &cfg.SecureMemoryValidation,
		"FAULT_INJECTION":          &cfg.FaultInjection,
		"PERFORMANCE_MONITORING":   &cfg.PerformanceMonitoring,
	}
	for suffix, field := range flags {
		if v, ok := os.LookupEnv(envPrefix + suffix); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				*field = b
			}
		}
	}
	return cfg
}
