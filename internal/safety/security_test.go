package safety

import (
	"testing"
	"time"
	"unsafe"
)

func TestValidateSecureZero(t *testing.T) {
	loc := Here("security_test.go", 1, "TestValidateSecureZero")

	t.Run("CleanBufferPasses", func(t *testing.T) {
		m := newFFITestMonitor(t)
		buf := make([]byte, 32)

		v := m.ValidateSecureZero(unsafe.Pointer(&buf[0]), 32, loc)
		if !v.Zeroed || v.NonZeroBytes != 0 {
			t.Errorf("clean buffer flagged: %+v", v)
		}
		if m.ViolationCount() != 0 {
			t.Error("clean buffer reported a violation")
		}
	})

	t.Run("SurvivorsAreCounted", func(t *testing.T) {
		m := newFFITestMonitor(t)
		buf := make([]byte, 32)
		buf[3] = 0xAA
		buf[17] = 0x01
		buf[31] = 0xFF

		v := m.ValidateSecureZero(unsafe.Pointer(&buf[0]), 32, loc)
		if v.Zeroed {
			t.Fatal("dirty buffer passed")
		}
		if v.NonZeroBytes != 3 {
			t.Errorf("non-zero bytes = %d, want 3", v.NonZeroBytes)
		}
		if m.ViolationCountByKind(ViolationSecurity) != 1 {
			t.Error("dirty buffer not reported as security violation")
		}
	})

	t.Run("NilAndEmptyPass", func(t *testing.T) {
		m := newFFITestMonitor(t)
		buf := make([]byte, 4)
		buf[0] = 0xFF

		if v := m.ValidateSecureZero(nil, 32, loc); !v.Zeroed {
			t.Error("nil pointer flagged")
		}
		if v := m.ValidateSecureZero(unsafe.Pointer(&buf[0]), 0, loc); !v.Zeroed {
			t.Error("zero size flagged")
		}
	})

	t.Run("DisabledValidationPasses", func(t *testing.T) {
		m := NewMonitor(WithConfig(ReleaseConfig()), WithMonitorLogger(quietLogger()))
		buf := []byte{0xFF, 0xFF}

		if v := m.ValidateSecureZero(unsafe.Pointer(&buf[0]), 2, loc); !v.Zeroed {
			t.Error("disabled validation still scanned")
		}
	})
}

func TestVerifyConstantTime(t *testing.T) {
	loc := Here("security_test.go", 2, "TestVerifyConstantTime")

	t.Run("VariableTimingIsFlagged", func(t *testing.T) {
		cfg := ParanoidConfig()
		cfg.Level = LevelNone
		m := NewMonitor(WithConfig(cfg), WithMonitorLogger(quietLogger()))

		// Every tenth call stalls, so the spread dwarfs the mean.
		calls := 0
		v := m.VerifyConstantTime("lookup", func() {
			calls++
			if calls%10 == 0 {
				time.Sleep(2 * time.Millisecond)
			}
		}, loc)

		if v.ConstantTime {
			t.Fatalf("variable operation passed: %+v", v)
		}
		if v.Iterations != constantTimeIterations || calls != constantTimeIterations {
			t.Errorf("ran %d iterations, want %d", calls, constantTimeIterations)
		}
		if v.MaxDuration < v.MinDuration {
			t.Errorf("max %v below min %v", v.MaxDuration, v.MinDuration)
		}
		if m.ViolationCountByKind(ViolationSecurity) != 1 {
			t.Error("timing leak not reported")
		}
	})

	t.Run("DisabledChecksPass", func(t *testing.T) {
		m := newFFITestMonitor(t) // debug preset leaves constant-time checks off
		ran := false

		v := m.VerifyConstantTime("lookup", func() { ran = true }, loc)
		if !v.ConstantTime {
			t.Error("disabled check failed the operation")
		}
		if ran {
			t.Error("disabled check still executed the operation")
		}
	})

	t.Run("NilOperationPasses", func(t *testing.T) {
		cfg := ParanoidConfig()
		cfg.Level = LevelNone
		m := NewMonitor(WithConfig(cfg), WithMonitorLogger(quietLogger()))

		if v := m.VerifyConstantTime("noop", nil, loc); !v.ConstantTime {
			t.Error("nil operation flagged")
		}
	})
}
