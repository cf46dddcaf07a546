package slice

import (
	"fmt"
	"strconv"
	"unsafe"

	"github.com/asthra-lang/asthra-runtime/internal/errors"
	"github.com/asthra-lang/asthra-runtime/internal/memory"
)

// VariantKind discriminates the payload of a Variant. The numeric values
// are part of the foreign interface.
type VariantKind int32

const (
	KindNull VariantKind = iota
	KindBool
	KindI8
	KindU8
	KindI16
	KindU16
	KindI32
	KindU32
	KindI64
	KindU64
	KindF32
	KindF64
	KindPtr
	KindString
	KindSlice
)

var variantKindNames = [...]string{
	"null", "bool",
	"i8", "u8", "i16", "u16", "i32", "u32", "i64", "u64",
	"f32", "f64",
	"ptr", "string", "slice",
}

func (k VariantKind) String() string {
	if k < 0 || int(k) >= len(variantKindNames) {
		return fmt.Sprintf("kind(%d)", int32(k))
	}
	return variantKindNames[k]
}

// Variant is a dynamically typed argument value, used mainly by string
// interpolation. Scalar payloads are widened into the i/u/f fields; the
// kind decides which field is live.
type Variant struct {
	kind VariantKind
	b    bool
	i    int64
	u    uint64
	f    float64
	ptr  unsafe.Pointer
	str  StringBuffer
	view SliceView
}

// Null returns the empty variant.
func Null() Variant { return Variant{kind: KindNull} }

// Bool wraps a boolean argument.
func Bool(v bool) Variant { return Variant{kind: KindBool, b: v} }

// I8 wraps a signed 8-bit argument.
func I8(v int8) Variant { return Variant{kind: KindI8, i: int64(v)} }

// U8 wraps an unsigned 8-bit argument.
func U8(v uint8) Variant { return Variant{kind: KindU8, u: uint64(v)} }

// I16 wraps a signed 16-bit argument.
func I16(v int16) Variant { return Variant{kind: KindI16, i: int64(v)} }

// U16 wraps an unsigned 16-bit argument.
func U16(v uint16) Variant { return Variant{kind: KindU16, u: uint64(v)} }

// I32 wraps a signed 32-bit argument.
func I32(v int32) Variant { return Variant{kind: KindI32, i: int64(v)} }

// U32 wraps an unsigned 32-bit argument.
func U32(v uint32) Variant { return Variant{kind: KindU32, u: uint64(v)} }

// I64 wraps a signed 64-bit argument.
func I64(v int64) Variant { return Variant{kind: KindI64, i: v} }

// U64 wraps an unsigned 64-bit argument.
func U64(v uint64) Variant { return Variant{kind: KindU64, u: v} }

// F32 wraps a 32-bit float argument.
func F32(v float32) Variant { return Variant{kind: KindF32, f: float64(v)} }

// F64 wraps a 64-bit float argument.
func F64(v float64) Variant { return Variant{kind: KindF64, f: v} }

// Ptr wraps a raw pointer argument.
func Ptr(p unsafe.Pointer) Variant { return Variant{kind: KindPtr, ptr: p} }

// Str wraps a string buffer argument. The variant shares the buffer's
// storage; VariantArray.Free releases it when the buffer is owned.
func Str(s StringBuffer) Variant { return Variant{kind: KindString, str: s} }

// View wraps a slice view argument.
func View(v SliceView) Variant { return Variant{kind: KindSlice, view: v} }

// Kind returns the live payload's kind.
func (v Variant) Kind() VariantKind { return v.kind }

// AsBool returns the boolean payload; false when the kind differs.
func (v Variant) AsBool() bool { return v.kind == KindBool && v.b }

// AsInt returns the widened signed payload.
func (v Variant) AsInt() int64 { return v.i }

// AsUint returns the widened unsigned payload.
func (v Variant) AsUint() uint64 { return v.u }

// AsFloat returns the widened float payload.
func (v Variant) AsFloat() float64 { return v.f }

// AsPtr returns the pointer payload.
func (v Variant) AsPtr() unsafe.Pointer { return v.ptr }

// AsString returns the string payload.
func (v Variant) AsString() StringBuffer { return v.str }

// AsSlice returns the slice payload.
func (v Variant) AsSlice() SliceView { return v.view }

// interpolationText stringifies the variant the way interpolation inserts
// it. The second return is false only for a string variant with no data,
// which is skipped entirely.
func (v Variant) interpolationText() (string, bool) {
	switch v.kind {
	case KindBool:
		if v.b {
			return "true", true
		}
		return "false", true
	case KindI32, KindI64:
		return strconv.FormatInt(v.i, 10), true
	case KindU32, KindU64:
		return strconv.FormatUint(v.u, 10), true
	case KindF32, KindF64:
		return strconv.FormatFloat(v.f, 'f', 6, 64), true
	case KindString:
		if v.str.ptr == nil {
			return "", false
		}
		return v.str.String(), true
	case KindPtr:
		return fmt.Sprintf("%p", v.ptr), true
	default:
		return "<unknown>", true
	}
}

// VariantArray is a growable argument list. Growth doubles the capacity,
// starting at four slots.
type VariantArray struct {
	args []Variant
}

// NewVariantArray returns an array with room for capacity variants.
func NewVariantArray(capacity int) VariantArray {
	a := VariantArray{}
	if capacity > 0 {
		a.args = make([]Variant, 0, capacity)
	}
	return a
}

// Variants builds an array directly from its arguments.
func Variants(args ...Variant) VariantArray {
	a := NewVariantArray(len(args))
	a.args = append(a.args, args...)
	return a
}

// Count returns the number of stored variants.
func (a *VariantArray) Count() int {
	if a == nil {
		return 0
	}
	return len(a.args)
}

// Push appends a variant, growing the backing store when full.
func (a *VariantArray) Push(v Variant) error {
	if a == nil {
		return errors.NullPointer("slice.VariantArray.Push")
	}
	if len(a.args) >= cap(a.args) {
		newCap := 4
		if cap(a.args) > 0 {
			newCap = cap(a.args) * 2
		}
		grown := make([]Variant, len(a.args), newCap)
		copy(grown, a.args)
		a.args = grown
	}
	a.args = append(a.args, v)
	return nil
}

// Get returns a copy of the variant at index. String and slice payloads
// share storage with the original.
func (a *VariantArray) Get(index int) (Variant, error) {
	if a == nil || index < 0 || index >= len(a.args) {
		return Variant{}, errors.IndexOutOfBounds(uintptr(index), uintptr(a.Count()))
	}
	return a.args[index], nil
}

// Free releases owned string payloads and drops the backing store.
func (a *VariantArray) Free(m *memory.Manager) {
	if a == nil || a.args == nil {
		return
	}
	for i := range a.args {
		if a.args[i].kind == KindString {
			a.args[i].str.Free(m)
		}
	}
	a.args = nil
}
