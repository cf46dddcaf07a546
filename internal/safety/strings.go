package safety

import (
	"fmt"
	"unicode/utf8"

	"github.com/asthra-lang/asthra-runtime/internal/slice"
)

// maxSafeStringLength is the conservative cap on concatenation results.
const maxSafeStringLength = ^uintptr(0) / 2

// StringOpValidation reports the outcome of a string-operation check.
type StringOpValidation struct {
	Deterministic  bool
	OverflowRisk   bool
	EncodingIssues bool
	ResultLength   uintptr
	Message        string
}

// ValidateConcat checks a concatenation's operands for null data, length
// overflow, and encoding problems before the copy happens. When string
// validation is disabled the operation is approved unconditionally.
func (m *Monitor) ValidateConcat(operands []slice.StringBuffer) StringOpValidation {
	if !m.Config().StringValidation {
		return StringOpValidation{Deterministic: true}
	}
	if len(operands) == 0 {
		return StringOpValidation{Deterministic: true}
	}

	validation := StringOpValidation{Deterministic: true}
	var total uintptr
	for i, op := range operands {
		if op.Pointer() == nil && op.Len() > 0 {
			validation.OverflowRisk = true
			validation.Message = fmt.Sprintf("null string data at index %d", i)
			return validation
		}
		if total > maxSafeStringLength-op.Len() {
			validation.OverflowRisk = true
			validation.Message = fmt.Sprintf("string concatenation would overflow at index %d", i)
			return validation
		}
		total += op.Len()

		if !op.IsValidUTF8() {
			validation.EncodingIssues = true
			validation.Message = fmt.Sprintf("invalid UTF-8 encoding in string at index %d", i)
		}
	}

	validation.ResultLength = total
	if total > maxSafeStringLength {
		validation.OverflowRisk = true
		validation.Message = fmt.Sprintf("total length %d exceeds safe limit %d", total, maxSafeStringLength)
	}
	return validation
}

// ValidateInterpolation checks that a template's `{}` placeholder count
// matches the number of supplied arguments. Passes unconditionally when
// string validation is disabled.
func (m *Monitor) ValidateInterpolation(template string, argCount int) bool {
	if !m.Config().StringValidation {
		return true
	}
	return slice.CountPlaceholders(template) == argCount
}

// ValidateStringEncoding reports whether data is well-formed UTF-8. Empty
// input is valid.
func (m *Monitor) ValidateStringEncoding(data []byte) bool {
	if !m.Config().StringValidation {
		return true
	}
	return utf8.Valid(data)
}
