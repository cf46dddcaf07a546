package safety

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresets(t *testing.T) {
	debug := DebugConfig()
	assert.Equal(t, LevelEnhanced, debug.Level)
	assert.True(t, debug.BoundsChecking)
	assert.True(t, debug.OwnershipTracking)
	assert.False(t, debug.FaultInjection, "debug preset must not inject faults")
	assert.False(t, debug.ConstantTimeChecks, "timing checks need a paranoid run")

	release := ReleaseConfig()
	assert.Equal(t, LevelBasic, release.Level)
	assert.True(t, release.BoundsChecking, "bounds checks stay on in release")
	assert.False(t, release.OwnershipTracking)
	assert.False(t, release.FFICallLogging)

	harness := TestingConfig()
	assert.Equal(t, LevelStandard, harness.Level)
	assert.True(t, harness.FaultInjection)

	paranoid := ParanoidConfig()
	assert.Equal(t, LevelParanoid, paranoid.Level)
	assert.True(t, paranoid.ConstantTimeChecks)
	assert.True(t, paranoid.FaultInjection)
}

func TestLoadPreset(t *testing.T) {
	for _, name := range PresetNames {
		cfg, err := LoadPreset(name)
		require.NoErrorf(t, err, "preset %q", name)
		assert.NotEqualf(t, Config{}, cfg, "preset %q is empty", name)
	}

	cfg, err := LoadPreset("DEBUG")
	require.NoError(t, err, "preset names are case-insensitive")
	assert.Equal(t, DebugConfig(), cfg)

	_, err = LoadPreset("yolo")
	require.Error(t, err)
}

func TestConfigFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "safety.json")

	want := TestingConfig()
	want.StackCanaries = false
	require.NoError(t, SaveConfigFile(path, want))

	got, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// The file must spell flags with their stable JSON names.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"stack_canaries": false`)
	assert.Contains(t, string(raw), `"level": "standard"`)
}

func TestLoadConfigFileErrors(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = LoadConfigFile(bad)
	require.Error(t, err)
}

func TestLevelJSON(t *testing.T) {
	t.Run("NamesRoundTrip", func(t *testing.T) {
		for _, level := range []Level{LevelNone, LevelBasic, LevelStandard, LevelEnhanced, LevelParanoid} {
			data, err := json.Marshal(level)
			require.NoError(t, err)

			var back Level
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, level, back)
		}
	})

	t.Run("AcceptsNumbers", func(t *testing.T) {
		var level Level
		require.NoError(t, json.Unmarshal([]byte(`3`), &level))
		assert.Equal(t, LevelEnhanced, level)
	})

	t.Run("RejectsGarbage", func(t *testing.T) {
		var level Level
		assert.Error(t, json.Unmarshal([]byte(`"casual"`), &level))
		assert.Error(t, json.Unmarshal([]byte(`99`), &level))
		assert.Error(t, json.Unmarshal([]byte(`true`), &level))
	})
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("PARANOID")
	require.NoError(t, err)
	assert.Equal(t, LevelParanoid, level)

	_, err = ParseLevel("medium")
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ASTHRA_SAFETY_LEVEL", "paranoid")
	t.Setenv("ASTHRA_SAFETY_STACK_CANARIES", "0")
	t.Setenv("ASTHRA_SAFETY_FAULT_INJECTION", "true")
	t.Setenv("ASTHRA_SAFETY_BOUNDS_CHECKING", "not-a-bool") // ignored

	cfg := ApplyEnv(DebugConfig())
	assert.Equal(t, LevelParanoid, cfg.Level)
	assert.False(t, cfg.StackCanaries)
	assert.True(t, cfg.FaultInjection)
	assert.True(t, cfg.BoundsChecking, "unparseable values leave the flag alone")
}
