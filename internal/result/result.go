// Package result implements the tagged Result and Option values that carry
// fallible outcomes across the foreign boundary, plus the pattern-matching
// dispatch that consumes them. Results are small values copied freely; only
// a fully owned Ok payload holds manager memory.
package result

import (
	"unsafe"

	"github.com/asthra-lang/asthra-runtime/internal/errors"
	"github.com/asthra-lang/asthra-runtime/internal/memory"
	"github.com/asthra-lang/asthra-runtime/internal/slice"
)

type tag int32

const (
	tagOk tag = iota
	tagErr
)

// maxErrMessage is the inline message capacity reserved by foreign
// consumers. Longer messages are truncated, never rejected.
const maxErrMessage = 255

// Result is a tagged ok/err union. The zero value is an Ok carrying no
// payload. Accessors are total: asking an Ok for its error code or an Err
// for its payload yields a neutral value, never a fault.
type Result struct {
	tag       tag
	value     unsafe.Pointer
	valueSize uintptr
	typeID    uint32
	ownership memory.OwnershipTransfer

	errCode    errors.Code
	errMessage string
	errSource  string
	errContext unsafe.Pointer
}

// Ok wraps a successful payload. The ownership decides whether Free releases
// the payload through the manager.
func Ok(m *memory.Manager, value unsafe.Pointer, size uintptr, typeID uint32, ownership memory.OwnershipTransfer) Result {
	m.AddResultCount(1)
	return Result{
		tag:       tagOk,
		value:     value,
		valueSize: size,
		typeID:    typeID,
		ownership: ownership,
	}
}

// Err wraps a failure with its stable numeric code. The message is capped
// at 255 bytes; source names the operation that failed; context is an
// opaque caller pointer carried through unchanged.
func Err(m *memory.Manager, code errors.Code, message, source string, context unsafe.Pointer) Result {
	if len(message) > maxErrMessage {
		message = message[:maxErrMessage]
	}
	m.AddResultCount(1)
	return Result{
		tag:        tagErr,
		errCode:    code,
		errMessage: message,
		errSource:  source,
		errContext: context,
	}
}

// IsOk reports whether the result holds a payload.
func (r Result) IsOk() bool { return r.tag == tagOk }

// IsErr reports whether the result holds an error.
func (r Result) IsErr() bool { return r.tag == tagErr }

// UnwrapOk returns the payload pointer, nil when the result is an error.
// Callers must check the tag; a nil return never faults.
func (r Result) UnwrapOk() unsafe.Pointer {
	if r.tag != tagOk {
		return nil
	}
	return r.value
}

// Expect returns the payload pointer after verifying the payload carries
// the given type tag. Unwrapping an error result, or a payload of another
// type, reports a type mismatch naming both tags.
func (r Result) Expect(typeID uint32) (unsafe.Pointer, error) {
	if r.tag != tagOk || r.typeID != typeID {
		return nil, errors.TypeMismatch(typeID, r.typeID)
	}
	return r.value, nil
}

// ValueSize returns the payload size in bytes, zero for errors.
func (r Result) ValueSize() uintptr {
	if r.tag != tagOk {
		return 0
	}
	return r.valueSize
}

// TypeID returns the payload's runtime type tag.
func (r Result) TypeID() uint32 { return r.typeID }

// Ownership returns the payload's transfer semantics.
func (r Result) Ownership() memory.OwnershipTransfer { return r.ownership }

// ErrCode returns the error code, CodeNone for ok results.
func (r Result) ErrCode() errors.Code {
	if r.tag != tagErr {
		return errors.CodeNone
	}
	return r.errCode
}

// ErrMessage returns the error message, empty for ok results.
func (r Result) ErrMessage() string {
	if r.tag != tagErr {
		return ""
	}
	return r.errMessage
}

// ErrSource returns the failing operation's name, empty for ok results.
func (r Result) ErrSource() string {
	if r.tag != tagErr {
		return ""
	}
	return r.errSource
}

// ErrContext returns the opaque error context pointer.
func (r Result) ErrContext() unsafe.Pointer {
	if r.tag != tagErr {
		return nil
	}
	return r.errContext
}

// Free releases a fully owned Ok payload back to the manager. Borrowed and
// shared payloads, error results, and repeated frees are all no-ops.
func (r Result) Free(m *memory.Manager) {
	if r.tag == tagOk && r.ownership == memory.TransferFull && r.value != nil {
		m.Free(r.value, memory.ZoneGC)
	}
}

// Typed constructors box a scalar in the collector zone so the payload
// outlives the caller's frame. Allocation failure degrades to an Err result
// rather than a fault.

// OkInt64 boxes a signed 64-bit payload.
func OkInt64(m *memory.Manager, value int64) Result {
	p := m.Alloc(unsafe.Sizeof(value), memory.ZoneGC)
	if p == nil {
		return Err(m, errors.CodeOutOfMemory, "Failed to allocate memory for int64 value", "result.OkInt64", nil)
	}
	*(*int64)(p) = value
	return Ok(m, p, unsafe.Sizeof(value), slice.TypeI64, memory.TransferFull)
}

// OkUint64 boxes an unsigned 64-bit payload.
func OkUint64(m *memory.Manager, value uint64) Result {
	p := m.Alloc(unsafe.Sizeof(value), memory.ZoneGC)
	if p == nil {
		return Err(m, errors.CodeOutOfMemory, "Failed to allocate memory for uint64 value", "result.OkUint64", nil)
	}
	*(*uint64)(p) = value
	return Ok(m, p, unsafe.Sizeof(value), slice.TypeU64, memory.TransferFull)
}

// OkFloat64 boxes a 64-bit float payload.
func OkFloat64(m *memory.Manager, value float64) Result {
	p := m.Alloc(unsafe.Sizeof(value), memory.ZoneGC)
	if p == nil {
		return Err(m, errors.CodeOutOfMemory, "Failed to allocate memory for double value", "result.OkFloat64", nil)
	}
	*(*float64)(p) = value
	return Ok(m, p, unsafe.Sizeof(value), slice.TypeF64, memory.TransferFull)
}

// OkBool boxes a boolean payload.
func OkBool(m *memory.Manager, value bool) Result {
	p := m.Alloc(unsafe.Sizeof(value), memory.ZoneGC)
	if p == nil {
		return Err(m, errors.CodeOutOfMemory, "Failed to allocate memory for bool value", "result.OkBool", nil)
	}
	*(*bool)(p) = value
	return Ok(m, p, unsafe.Sizeof(value), slice.TypeBool, memory.TransferFull)
}

// OkStringBuffer wraps a string buffer payload. The box lives on the Go
// heap where the collector can trace the buffer's data pointer, so the
// manager never frees the box itself; the buffer keeps its own ownership
// and is released by the consumer through StringBuffer.Free.
func OkStringBuffer(m *memory.Manager, s slice.StringBuffer) Result {
	p := new(slice.StringBuffer)
	*p = s
	return Ok(m, unsafe.Pointer(p), unsafe.Sizeof(*p), slice.TypeString, memory.TransferBorrowed)
}

// UnwrapInt64 reads a boxed int64 payload, zero on tag mismatch.
func (r Result) UnwrapInt64() int64 {
	p := r.UnwrapOk()
	if p == nil {
		return 0
	}
	return *(*int64)(p)
}

// UnwrapUint64 reads a boxed uint64 payload, zero on tag mismatch.
func (r Result) UnwrapUint64() uint64 {
	p := r.UnwrapOk()
	if p == nil {
		return 0
	}
	return *(*uint64)(p)
}

// UnwrapFloat64 reads a boxed float64 payload, zero on tag mismatch.
func (r Result) UnwrapFloat64() float64 {
	p := r.UnwrapOk()
	if p == nil {
		return 0
	}
	return *(*float64)(p)
}

// UnwrapBool reads a boxed bool payload, false on tag mismatch.
func (r Result) UnwrapBool() bool {
	p := r.UnwrapOk()
	if p == nil {
		return false
	}
	return *(*bool)(p)
}

// UnwrapStringBuffer reads a string buffer payload, the zero buffer on tag
// mismatch.
func (r Result) UnwrapStringBuffer() slice.StringBuffer {
	p := r.UnwrapOk()
	if p == nil {
		return slice.StringBuffer{}
	}
	return *(*slice.StringBuffer)(p)
}
