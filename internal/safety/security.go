package safety

import (
	"fmt"
	"time"
	"unsafe"
)

// ZeroingValidation reports whether a buffer that should have been securely
// wiped actually holds only zeros.
type ZeroingValidation struct {
	Size         uintptr
	NonZeroBytes uintptr
	Zeroed       bool
}

// ValidateSecureZero scans size bytes at ptr and counts survivors of the
// wipe. Any non-zero byte is a security violation: secret material that was
// supposed to be erased is still resident. Disabled validation passes
// everything.
func (m *Monitor) ValidateSecureZero(ptr unsafe.Pointer, size uintptr, loc Location) ZeroingValidation {
	if !m.Config().SecureMemoryValidation || ptr == nil || size == 0 {
		return ZeroingValidation{Size: size, Zeroed: true}
	}

	buf := unsafe.Slice((*byte)(ptr), size)
	v := ZeroingValidation{Size: size}
	for _, b := range buf {
		if b != 0 {
			v.NonZeroBytes++
		}
	}
	v.Zeroed = v.NonZeroBytes == 0

	if !v.Zeroed {
		m.ReportViolation(ViolationSecurity, LevelStandard,
			fmt.Sprintf("memory not properly zeroed: %d non-zero bytes out of %d", v.NonZeroBytes, size), loc)
	}
	return v
}

// constantTimeIterations is how many times VerifyConstantTime runs the
// operation to estimate its timing spread.
const constantTimeIterations = 100

// timingVarianceLimit is the spread, relative to the mean, above which an
// operation is not considered constant-time.
const timingVarianceLimit = 0.1

// TimingVerification reports the measured timing behavior of an operation
// that is supposed to run in constant time.
type TimingVerification struct {
	Operation    string
	Iterations   int
	MinDuration  time.Duration
	MaxDuration  time.Duration
	MeanDuration time.Duration
	Variance     float64
	ConstantTime bool
}

// VerifyConstantTime measures op repeatedly and flags a timing spread above
// ten percent of the mean as a security violation. The measurement is
// wall-clock and best-effort: scheduler noise can fail a genuinely
// constant-time operation, so the violation severity stays below the abort
// threshold of the standard presets.
func (m *Monitor) VerifyConstantTime(name string, op func(), loc Location) TimingVerification {
	v := TimingVerification{Operation: name, Iterations: constantTimeIterations}
	if !m.Config().ConstantTimeChecks || op == nil {
		v.ConstantTime = true
		return v
	}

	var total time.Duration
	var min, max time.Duration
	for i := 0; i < constantTimeIterations; i++ {
		start := time.Now()
		op()
		elapsed := time.Since(start)

		total += elapsed
		if i == 0 || elapsed < min {
			min = elapsed
		}
		if elapsed > max {
			max = elapsed
		}
	}

	v.MinDuration = min
	v.MaxDuration = max
	v.MeanDuration = total / constantTimeIterations
	if v.MeanDuration > 0 {
		v.Variance = float64(max-min) / float64(v.MeanDuration)
	}
	v.ConstantTime = v.Variance < timingVarianceLimit

	if !v.ConstantTime {
		m.ReportViolation(ViolationSecurity, LevelBasic,
			fmt.Sprintf("operation %q is not constant-time: min %v, max %v, variance %.2f%%",
				name, min, max, v.Variance*100), loc)
	}
	return v
}
