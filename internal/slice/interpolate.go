package slice

import (
	"unicode/utf8"
	"unsafe"

	"github.com/asthra-lang/asthra-runtime/internal/errors"
	"github.com/asthra-lang/asthra-runtime/internal/memory"
)

// Interpolate substitutes each "{}" placeholder in template with the next
// argument's text and returns a fresh owned string.
//
// The output buffer is estimated conservatively at len(template) plus 64
// bytes per argument. A substitution that does not fit in the remaining
// estimate is dropped rather than overflowing, and the template stops
// copying once the estimate is exhausted. Foreign callers parse truncated
// output, so the policy must not change.
func Interpolate(m *memory.Manager, template string, args VariantArray) (StringBuffer, error) {
	estimated := len(template) + args.Count()*64
	scratch := make([]byte, estimated)

	resultPos := 0
	templatePos := 0
	argIndex := 0

	for templatePos < len(template) && resultPos < estimated-1 {
		if template[templatePos] == '{' && templatePos+1 < len(template) && template[templatePos+1] == '}' {
			if argIndex < args.Count() {
				if insert, ok := args.args[argIndex].interpolationText(); ok {
					if resultPos+len(insert) < estimated-1 {
						copy(scratch[resultPos:], insert)
						resultPos += len(insert)
					}
				}
				argIndex++
			}
			// A placeholder is consumed even with no argument left.
			templatePos += 2
		} else {
			scratch[resultPos] = template[templatePos]
			resultPos++
			templatePos++
		}
	}

	out := scratch[:resultPos]

	ptr := m.Alloc(uintptr(resultPos)+1, memory.ZoneManual)
	if ptr == nil {
		return StringBuffer{}, errors.OutOfMemory(uintptr(resultPos)+1, "slice.Interpolate")
	}
	dst := unsafe.Slice((*byte)(ptr), resultPos+1)
	copy(dst, out)
	dst[resultPos] = 0

	m.AddStringCount(1)
	return StringBuffer{
		ptr:       ptr,
		len:       uintptr(resultPos),
		cap:       uintptr(resultPos) + 1,
		charLen:   utf8.RuneCount(out),
		ownership: memory.TransferFull,
		mutable:   true,
		zone:      memory.ZoneManual,
		magic:     Magic,
	}, nil
}

// CountPlaceholders returns the number of "{}" placeholders in template.
// The safety monitor uses it to cross-check argument counts before an
// interpolation crosses the boundary.
func CountPlaceholders(template string) int {
	n := 0
	for i := 0; i+1 < len(template); i++ {
		if template[i] == '{' && template[i+1] == '}' {
			n++
			i++
		}
	}
	return n
}
