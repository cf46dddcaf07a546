package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestErrorCodes(t *testing.T) {
	t.Run("StableNumericValues", func(t *testing.T) {
		codes := map[Code]int32{
			CodeNone:         0,
			CodeNullPointer:  1,
			CodeOutOfMemory:  2,
			CodeBoundsCheck:  3,
			CodeInvalidSlice: 4,
			CodeOwnership:    5,
			CodeTypeMismatch: 6,
			CodeInvalidArgs:  7,
		}
		for code, want := range codes {
			if int32(code) != want {
				t.Errorf("code %s = %d, want %d", code, int32(code), want)
			}
		}
	})

	t.Run("CodeStrings", func(t *testing.T) {
		if got := CodeBoundsCheck.String(); got != "Bounds check failed" {
			t.Errorf("CodeBoundsCheck.String() = %q", got)
		}
		if got := Code(99).String(); got != "Unknown error" {
			t.Errorf("unknown code string = %q", got)
		}
	})
}

func TestRuntimeError(t *testing.T) {
	t.Run("SentinelMatching", func(t *testing.T) {
		err := NotRegistered(0xdeadbeef)
		if !stderrors.Is(err, ErrNotRegistered) {
			t.Error("NotRegistered should match ErrNotRegistered")
		}
		if stderrors.Is(err, ErrAlreadyRegistered) {
			t.Error("NotRegistered must not match ErrAlreadyRegistered")
		}
	})

	t.Run("CarriesNumericCode", func(t *testing.T) {
		err := IndexOutOfBounds(5, 3)
		if err.Code != CodeBoundsCheck {
			t.Errorf("bounds error code = %d, want %d", err.Code, CodeBoundsCheck)
		}
		if err.Context["index"].(uintptr) != 5 {
			t.Errorf("context index = %v", err.Context["index"])
		}
	})

	t.Run("ErrorFormat", func(t *testing.T) {
		err := NullPointer("Free")
		msg := err.Error()
		if !strings.Contains(msg, "[MEMORY:NULL_POINTER]") {
			t.Errorf("error message missing category/kind: %q", msg)
		}
		if !strings.Contains(msg, "caller:") {
			t.Errorf("error message missing caller: %q", msg)
		}
	})

	t.Run("AsRuntimeError", func(t *testing.T) {
		var rte *RuntimeError
		err := NotMutable("Set")
		if !stderrors.As(err, &rte) {
			t.Fatal("errors.As should extract *RuntimeError")
		}
		if rte.Code != CodeInvalidArgs {
			t.Errorf("NotMutable code = %d, want %d", rte.Code, CodeInvalidArgs)
		}
	})
}
