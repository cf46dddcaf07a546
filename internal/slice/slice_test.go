package slice

import (
	"errors"
	"strings"
	"testing"
	"unsafe"

	rterrors "github.com/asthra-lang/asthra-runtime/internal/errors"
	"github.com/asthra-lang/asthra-runtime/internal/memory"
)

const i32Size = unsafe.Sizeof(int32(0))

func newInt32Slice(t *testing.T, m *memory.Manager, values ...int32) SliceView {
	t.Helper()
	s, err := New(m, i32Size, uintptr(len(values)), uintptr(len(values)), memory.ZoneManual)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := range values {
		if err := s.Set(uintptr(i), unsafe.Pointer(&values[i])); err != nil {
			t.Fatalf("Set(%d): %v", i, err)
		}
	}
	return s
}

func TestSliceNew(t *testing.T) {
	t.Run("AllocatesOwnedMutableView", func(t *testing.T) {
		m := memory.NewManager()
		s, err := New(m, i32Size, 3, 3, memory.ZoneManual)
		if err != nil {
			t.Fatalf("New: %v", err)
		}

		if s.Len() != 3 || s.Cap() != 3 || s.ElementSize() != i32Size {
			t.Errorf("header = len %d cap %d elem %d", s.Len(), s.Cap(), s.ElementSize())
		}
		if s.Ownership() != memory.TransferFull || !s.IsMutable() {
			t.Errorf("fresh slice should be fully owned and mutable")
		}
		if s.TypeID() != TypeSlice {
			t.Errorf("TypeID = %d, want %d", s.TypeID(), TypeSlice)
		}
		if err := s.Validate(); err != nil {
			t.Errorf("Validate: %v", err)
		}
		if got := m.Stats().CurrentBytes; got != int64(3*i32Size) {
			t.Errorf("CurrentBytes = %d, want %d", got, 3*i32Size)
		}
		if got := m.Stats().SliceCount; got != 1 {
			t.Errorf("SliceCount = %d, want 1", got)
		}
	})

	t.Run("ZeroElementSizeFails", func(t *testing.T) {
		m := memory.NewManager()
		if _, err := New(m, 0, 1, 1, memory.ZoneManual); !errors.Is(err, rterrors.ErrInvalidArgs) {
			t.Errorf("err = %v, want invalid args", err)
		}
	})

	t.Run("LenExceedingCapFails", func(t *testing.T) {
		m := memory.NewManager()
		if _, err := New(m, 1, 4, 2, memory.ZoneManual); !errors.Is(err, rterrors.ErrInvalidArgs) {
			t.Errorf("err = %v, want invalid args", err)
		}
	})

	t.Run("ZeroCapacityIsValidAndUnallocated", func(t *testing.T) {
		m := memory.NewManager()
		s, err := New(m, i32Size, 0, 0, memory.ZoneManual)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := s.Validate(); err != nil {
			t.Errorf("empty slice should validate: %v", err)
		}
		if m.BlockCount() != 0 {
			t.Errorf("empty slice must not allocate, BlockCount = %d", m.BlockCount())
		}

		// Nothing was allocated, so free must be a no-op.
		s.Free(m)
		if got := m.Stats().TotalFrees; got != 0 {
			t.Errorf("TotalFrees = %d after freeing empty slice", got)
		}
	})
}

func TestSliceGetSet(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		m := memory.NewManager()
		s := newInt32Slice(t, m, 1, 2, 3)
		defer s.Free(m)

		p, err := s.Get(1)
		if err != nil {
			t.Fatalf("Get(1): %v", err)
		}
		if got := *(*int32)(p); got != 2 {
			t.Errorf("element 1 = %d, want 2", got)
		}
	})

	t.Run("GetAtLenFails", func(t *testing.T) {
		m := memory.NewManager()
		s := newInt32Slice(t, m, 1, 2, 3)
		defer s.Free(m)

		if _, err := s.Get(3); !errors.Is(err, rterrors.ErrIndexOutOfBounds) {
			t.Errorf("Get(len) err = %v, want bounds error", err)
		}
	})

	t.Run("GetBeyondLenWithinCapFails", func(t *testing.T) {
		m := memory.NewManager()
		s, err := New(m, i32Size, 2, 8, memory.ZoneManual)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		defer s.Free(m)

		// Capacity is 8 but only 2 elements are accessible.
		if _, err := s.Get(2); !errors.Is(err, rterrors.ErrIndexOutOfBounds) {
			t.Errorf("Get(2) err = %v, want bounds error", err)
		}
		if _, err := s.Get(7); !errors.Is(err, rterrors.ErrIndexOutOfBounds) {
			t.Errorf("Get(cap-1) err = %v, want bounds error", err)
		}
	})

	t.Run("SetOutOfBoundsFails", func(t *testing.T) {
		m := memory.NewManager()
		s := newInt32Slice(t, m, 1, 2, 3)
		defer s.Free(m)

		v := int32(9)
		if err := s.Set(3, unsafe.Pointer(&v)); !errors.Is(err, rterrors.ErrIndexOutOfBounds) {
			t.Errorf("Set(len) err = %v, want bounds error", err)
		}
	})

	t.Run("SetNilValueFails", func(t *testing.T) {
		m := memory.NewManager()
		s := newInt32Slice(t, m, 1)
		defer s.Free(m)

		if err := s.Set(0, nil); !errors.Is(err, rterrors.ErrNullPointer) {
			t.Errorf("Set(nil) err = %v, want null pointer", err)
		}
	})

	t.Run("ImmutableSetFails", func(t *testing.T) {
		backing := []int32{10, 20}
		view := FromRawParts(unsafe.Pointer(&backing[0]), 2, i32Size, false, memory.TransferBorrowed)

		v := int32(99)
		err := view.Set(0, unsafe.Pointer(&v))
		if !errors.Is(err, rterrors.ErrNotMutable) {
			t.Fatalf("err = %v, want not mutable", err)
		}
		if !strings.Contains(err.Error(), "Cannot modify immutable slice") {
			t.Errorf("message = %q, want the stable immutable-slice text", err.Error())
		}
		// Mutability is checked before bounds, so an out-of-range index on an
		// immutable slice still reports the mutability violation.
		if err := view.Set(9, unsafe.Pointer(&v)); !errors.Is(err, rterrors.ErrNotMutable) {
			t.Errorf("out-of-range immutable Set err = %v, want not mutable", err)
		}
		if backing[0] != 10 {
			t.Errorf("immutable backing store changed to %d", backing[0])
		}
	})
}

func TestSliceSubslice(t *testing.T) {
	t.Run("ZeroCopyWindow", func(t *testing.T) {
		m := memory.NewManager()
		s := newInt32Slice(t, m, 1, 2, 3)
		defer s.Free(m)

		before := m.Stats()

		sub, err := s.Subslice(1, 3)
		if err != nil {
			t.Fatalf("Subslice: %v", err)
		}

		if sub.Len() != 2 {
			t.Errorf("sub len = %d, want 2", sub.Len())
		}
		if sub.Cap() != s.Cap()-1 {
			t.Errorf("sub cap = %d, want %d", sub.Cap(), s.Cap()-1)
		}
		if sub.Ownership() != memory.TransferBorrowed {
			t.Errorf("sub ownership = %v, want borrowed", sub.Ownership())
		}
		wantPtr := uintptr(s.Pointer()) + 1*i32Size
		if uintptr(sub.Pointer()) != wantPtr {
			t.Errorf("sub base = %#x, want %#x", uintptr(sub.Pointer()), wantPtr)
		}

		p, err := sub.Get(0)
		if err != nil {
			t.Fatalf("sub.Get(0): %v", err)
		}
		if got := *(*int32)(p); got != 2 {
			t.Errorf("sub[0] = %d, want 2", got)
		}

		after := m.Stats()
		if after.CurrentBytes != before.CurrentBytes || after.TotalAllocations != before.TotalAllocations {
			t.Errorf("subslicing must not allocate: before %+v after %+v", before, after)
		}
	})

	t.Run("SubsliceFreeIsNoOp", func(t *testing.T) {
		m := memory.NewManager()
		s := newInt32Slice(t, m, 1, 2, 3)

		sub, err := s.Subslice(1, 3)
		if err != nil {
			t.Fatalf("Subslice: %v", err)
		}

		sub.Free(m)
		if got := m.Stats().TotalFrees; got != 0 {
			t.Errorf("borrowed free must not release, TotalFrees = %d", got)
		}

		s.Free(m)
		st := m.Stats()
		if st.TotalFrees != 1 || st.BytesFreed != uint64(3*i32Size) || st.CurrentBytes != 0 {
			t.Errorf("owner free: frees %d bytesFreed %d current %d", st.TotalFrees, st.BytesFreed, st.CurrentBytes)
		}
	})

	t.Run("WritesThroughToParent", func(t *testing.T) {
		m := memory.NewManager()
		s := newInt32Slice(t, m, 1, 2, 3)
		defer s.Free(m)

		sub, err := s.Subslice(0, 2)
		if err != nil {
			t.Fatalf("Subslice: %v", err)
		}
		v := int32(42)
		if err := sub.Set(0, unsafe.Pointer(&v)); err != nil {
			t.Fatalf("sub.Set: %v", err)
		}

		p, _ := s.Get(0)
		if got := *(*int32)(p); got != 42 {
			t.Errorf("parent[0] = %d after write through subslice, want 42", got)
		}
	})

	t.Run("BadBoundsFail", func(t *testing.T) {
		m := memory.NewManager()
		s := newInt32Slice(t, m, 1, 2, 3)
		defer s.Free(m)

		if _, err := s.Subslice(2, 1); !errors.Is(err, rterrors.ErrIndexOutOfBounds) {
			t.Errorf("start > end err = %v, want bounds error", err)
		}
		if _, err := s.Subslice(0, 4); !errors.Is(err, rterrors.ErrIndexOutOfBounds) {
			t.Errorf("end > len err = %v, want bounds error", err)
		}
	})
}

func TestSliceValidate(t *testing.T) {
	t.Run("ZeroValueRejected", func(t *testing.T) {
		var s SliceView
		if err := s.Validate(); !errors.Is(err, rterrors.ErrInvalidSlice) {
			t.Errorf("zero value Validate = %v, want invalid slice", err)
		}
	})

	t.Run("NilPointerWithLenRejected", func(t *testing.T) {
		s := FromRawParts(nil, 3, 1, false, memory.TransferBorrowed)
		if err := s.Validate(); !errors.Is(err, rterrors.ErrInvalidSlice) {
			t.Errorf("Validate = %v, want invalid slice", err)
		}
	})

	t.Run("LenBeyondCapRejected", func(t *testing.T) {
		buf := make([]byte, 4)
		s := SliceView{ptr: unsafe.Pointer(&buf[0]), len: 8, cap: 4, elementSize: 1, magic: Magic}
		if err := s.Validate(); !errors.Is(err, rterrors.ErrInvalidSlice) {
			t.Errorf("Validate = %v, want invalid slice", err)
		}
	})

	t.Run("ZeroElementSizeRejected", func(t *testing.T) {
		buf := make([]byte, 4)
		s := SliceView{ptr: unsafe.Pointer(&buf[0]), len: 4, cap: 4, magic: Magic}
		if err := s.Validate(); !errors.Is(err, rterrors.ErrInvalidSlice) {
			t.Errorf("Validate = %v, want invalid slice", err)
		}
	})

	t.Run("EmptyBorrowedViewIsValid", func(t *testing.T) {
		s := FromRawParts(nil, 0, 1, false, memory.TransferBorrowed)
		if err := s.Validate(); err != nil {
			t.Errorf("Validate: %v", err)
		}
	})
}

func TestSliceFreeIdempotent(t *testing.T) {
	m := memory.NewManager()
	s := newInt32Slice(t, m, 7, 8)

	s.Free(m)
	s.Free(m)

	st := m.Stats()
	if st.TotalFrees != 1 {
		t.Errorf("TotalFrees = %d after double free, want 1", st.TotalFrees)
	}
	if st.SliceCount != 0 {
		t.Errorf("SliceCount = %d after double free, want 0", st.SliceCount)
	}
	if st.CurrentBytes != 0 {
		t.Errorf("CurrentBytes = %d after double free, want 0", st.CurrentBytes)
	}
}

func TestStringBuffer(t *testing.T) {
	t.Run("FullTransferCopies", func(t *testing.T) {
		m := memory.NewManager()
		src := "hello"
		buf, err := NewString(m, src, memory.TransferFull)
		if err != nil {
			t.Fatalf("NewString: %v", err)
		}
		defer buf.Free(m)

		if buf.String() != "hello" {
			t.Errorf("String = %q", buf.String())
		}
		if buf.Pointer() == unsafe.Pointer(unsafe.StringData(src)) {
			t.Error("full transfer must copy, not alias")
		}
		if buf.Cap() != buf.Len()+1 {
			t.Errorf("cap = %d, want len+1 = %d", buf.Cap(), buf.Len()+1)
		}
		// Owned buffers are NUL-terminated for C consumers.
		tail := *(*byte)(unsafe.Add(buf.Pointer(), buf.Len()))
		if tail != 0 {
			t.Errorf("missing NUL terminator, tail byte = %#x", tail)
		}
		if !buf.IsMutable() || buf.Ownership() != memory.TransferFull {
			t.Error("owned string should be mutable with full ownership")
		}
	})

	t.Run("BorrowedAliases", func(t *testing.T) {
		m := memory.NewManager()
		src := "borrowed bytes"
		buf, err := NewString(m, src, memory.TransferBorrowed)
		if err != nil {
			t.Fatalf("NewString: %v", err)
		}

		if buf.Pointer() != unsafe.Pointer(unsafe.StringData(src)) {
			t.Error("borrowed transfer must alias the source bytes")
		}
		if buf.IsMutable() {
			t.Error("borrowed string must not be mutable")
		}
		if m.BlockCount() != 0 {
			t.Errorf("borrowed string must not allocate, BlockCount = %d", m.BlockCount())
		}

		// Freeing a borrowed buffer releases nothing.
		buf.Free(m)
		if got := m.Stats().TotalFrees; got != 0 {
			t.Errorf("TotalFrees = %d after borrowed free", got)
		}
	})

	t.Run("CharLenCountsRunes", func(t *testing.T) {
		m := memory.NewManager()
		buf, err := NewString(m, "héllo", memory.TransferFull)
		if err != nil {
			t.Fatalf("NewString: %v", err)
		}
		defer buf.Free(m)

		if buf.Len() != 6 {
			t.Errorf("byte len = %d, want 6", buf.Len())
		}
		if buf.CharLen() != 5 {
			t.Errorf("char len = %d, want 5", buf.CharLen())
		}
		if !buf.IsValidUTF8() {
			t.Error("IsValidUTF8 = false for valid input")
		}
	})

	t.Run("LiveCountFloorsAtZero", func(t *testing.T) {
		m := memory.NewManager()
		buf, err := NewString(m, "x", memory.TransferFull)
		if err != nil {
			t.Fatalf("NewString: %v", err)
		}
		if got := m.Stats().StringCount; got != 1 {
			t.Fatalf("StringCount = %d, want 1", got)
		}

		buf.Free(m)
		buf.Free(m)
		if got := m.Stats().StringCount; got != 0 {
			t.Errorf("StringCount = %d after double free, want 0", got)
		}
	})

	t.Run("AsSliceSharesBytes", func(t *testing.T) {
		m := memory.NewManager()
		buf, err := NewString(m, "abc", memory.TransferBorrowed)
		if err != nil {
			t.Fatalf("NewString: %v", err)
		}

		view := buf.AsSlice()
		if view.Pointer() != buf.Pointer() || view.Len() != buf.Len() {
			t.Error("AsSlice must view the same bytes")
		}
		if view.Ownership() != buf.Ownership() {
			t.Errorf("AsSlice ownership = %v, want the string's own %v", view.Ownership(), buf.Ownership())
		}
		p, err := view.Get(2)
		if err != nil {
			t.Fatalf("view.Get: %v", err)
		}
		if got := *(*byte)(p); got != 'c' {
			t.Errorf("view[2] = %q, want 'c'", got)
		}
	})
}

func TestStringConcat(t *testing.T) {
	t.Run("AllocatesFreshOwnedBuffer", func(t *testing.T) {
		m := memory.NewManager()
		a, _ := NewString(m, "Hello, ", memory.TransferBorrowed)
		b, _ := NewString(m, "World", memory.TransferBorrowed)

		out, err := Concat(m, a, b)
		if err != nil {
			t.Fatalf("Concat: %v", err)
		}
		defer out.Free(m)

		if out.String() != "Hello, World" {
			t.Errorf("concat = %q", out.String())
		}
		if out.Ownership() != memory.TransferFull || !out.IsMutable() {
			t.Error("concat result must be fresh, owned, and mutable")
		}
		if out.Pointer() == a.Pointer() || out.Pointer() == b.Pointer() {
			t.Error("concat must not alias its inputs")
		}
		if out.CharLen() != a.CharLen()+b.CharLen() {
			t.Errorf("char len = %d, want %d", out.CharLen(), a.CharLen()+b.CharLen())
		}
	})

	t.Run("EmptyOperands", func(t *testing.T) {
		m := memory.NewManager()
		a, _ := NewString(m, "", memory.TransferBorrowed)
		b, _ := NewString(m, "tail", memory.TransferBorrowed)

		out, err := Concat(m, a, b)
		if err != nil {
			t.Fatalf("Concat: %v", err)
		}
		defer out.Free(m)

		if out.String() != "tail" {
			t.Errorf("concat = %q, want %q", out.String(), "tail")
		}
	})
}

func TestInterpolate(t *testing.T) {
	t.Run("SubstitutesInt32", func(t *testing.T) {
		m := memory.NewManager()
		args := Variants(I32(42))

		out, err := Interpolate(m, "Value: {}", args)
		if err != nil {
			t.Fatalf("Interpolate: %v", err)
		}
		defer out.Free(m)

		if out.String() != "Value: 42" {
			t.Errorf("result = %q, want %q", out.String(), "Value: 42")
		}
		if out.Len() != 9 {
			t.Errorf("len = %d, want 9", out.Len())
		}
		if out.Ownership() != memory.TransferFull {
			t.Error("interpolation result must be fully owned")
		}
	})

	t.Run("MixedKinds", func(t *testing.T) {
		m := memory.NewManager()
		name, _ := NewString(m, "zone", memory.TransferBorrowed)
		args := Variants(Bool(true), U64(18446744073709551615), F64(2.5), Str(name))

		out, err := Interpolate(m, "{} {} {} {}", args)
		if err != nil {
			t.Fatalf("Interpolate: %v", err)
		}
		defer out.Free(m)

		if out.String() != "true 18446744073709551615 2.500000 zone" {
			t.Errorf("result = %q", out.String())
		}
	})

	t.Run("FloatsUseSixDigits", func(t *testing.T) {
		m := memory.NewManager()
		out, err := Interpolate(m, "{}", Variants(F32(3.5)))
		if err != nil {
			t.Fatalf("Interpolate: %v", err)
		}
		defer out.Free(m)

		if out.String() != "3.500000" {
			t.Errorf("f32 = %q, want 3.500000", out.String())
		}
	})

	t.Run("PointerFormatsAsHex", func(t *testing.T) {
		m := memory.NewManager()
		v := 7
		out, err := Interpolate(m, "at {}", Variants(Ptr(unsafe.Pointer(&v))))
		if err != nil {
			t.Fatalf("Interpolate: %v", err)
		}
		defer out.Free(m)

		if !strings.HasPrefix(out.String(), "at 0x") {
			t.Errorf("pointer text = %q, want 0x prefix", out.String())
		}
	})

	t.Run("UnhandledKindsPrintUnknown", func(t *testing.T) {
		m := memory.NewManager()
		out, err := Interpolate(m, "{} {}", Variants(Null(), I8(5)))
		if err != nil {
			t.Fatalf("Interpolate: %v", err)
		}
		defer out.Free(m)

		if out.String() != "<unknown> <unknown>" {
			t.Errorf("result = %q", out.String())
		}
	})

	t.Run("ExhaustedArgsConsumePlaceholder", func(t *testing.T) {
		m := memory.NewManager()
		out, err := Interpolate(m, "a {} b {}", Variants(I32(1)))
		if err != nil {
			t.Fatalf("Interpolate: %v", err)
		}
		defer out.Free(m)

		if out.String() != "a 1 b " {
			t.Errorf("result = %q, want %q", out.String(), "a 1 b ")
		}
	})

	t.Run("OversizedSubstitutionIsDropped", func(t *testing.T) {
		m := memory.NewManager()
		long, _ := NewString(m, strings.Repeat("x", 100), memory.TransferBorrowed)

		out, err := Interpolate(m, "[{}]", Variants(Str(long)))
		if err != nil {
			t.Fatalf("Interpolate: %v", err)
		}
		defer out.Free(m)

		// Estimate is len("[{}]") + 64 = 68; a 100-byte insert cannot fit and
		// is skipped while the surrounding text survives.
		if out.String() != "[]" {
			t.Errorf("result = %q, want %q", out.String(), "[]")
		}
	})

	t.Run("EstimateBoundsPlainTemplate", func(t *testing.T) {
		m := memory.NewManager()
		out, err := Interpolate(m, "hi", VariantArray{})
		if err != nil {
			t.Fatalf("Interpolate: %v", err)
		}
		defer out.Free(m)

		// With no arguments the estimate equals the template length and the
		// last byte is reserved, so "hi" truncates to "h". Compatibility
		// requires keeping this exact behavior.
		if out.String() != "h" {
			t.Errorf("result = %q, want %q", out.String(), "h")
		}
	})
}

func TestCountPlaceholders(t *testing.T) {
	cases := []struct {
		template string
		want     int
	}{
		{"", 0},
		{"no holes", 0},
		{"{}", 1},
		{"a {} b {} c", 2},
		{"{{}}", 1},
		{"{ }", 0},
	}
	for _, tc := range cases {
		if got := CountPlaceholders(tc.template); got != tc.want {
			t.Errorf("CountPlaceholders(%q) = %d, want %d", tc.template, got, tc.want)
		}
	}
}

func TestVariantArray(t *testing.T) {
	t.Run("PushGrowsByDoubling", func(t *testing.T) {
		var a VariantArray
		for i := 0; i < 5; i++ {
			if err := a.Push(I32(int32(i))); err != nil {
				t.Fatalf("Push(%d): %v", i, err)
			}
		}
		if a.Count() != 5 {
			t.Errorf("Count = %d, want 5", a.Count())
		}
		if cap(a.args) != 8 {
			t.Errorf("cap = %d, want 8 after growing 4 -> 8", cap(a.args))
		}
	})

	t.Run("GetReturnsCopy", func(t *testing.T) {
		a := Variants(I32(1), Bool(true))

		v, err := a.Get(1)
		if err != nil {
			t.Fatalf("Get(1): %v", err)
		}
		if v.Kind() != KindBool || !v.AsBool() {
			t.Errorf("Get(1) = kind %v", v.Kind())
		}
		if _, err := a.Get(2); !errors.Is(err, rterrors.ErrIndexOutOfBounds) {
			t.Errorf("Get(2) err = %v, want bounds error", err)
		}
		if _, err := a.Get(-1); !errors.Is(err, rterrors.ErrIndexOutOfBounds) {
			t.Errorf("Get(-1) err = %v, want bounds error", err)
		}
	})

	t.Run("FreeReleasesOwnedStrings", func(t *testing.T) {
		m := memory.NewManager()
		owned, err := NewString(m, "payload", memory.TransferFull)
		if err != nil {
			t.Fatalf("NewString: %v", err)
		}

		a := Variants(Str(owned), I32(1))
		a.Free(m)

		st := m.Stats()
		if st.StringCount != 0 {
			t.Errorf("StringCount = %d after array free, want 0", st.StringCount)
		}
		if st.CurrentBytes != 0 {
			t.Errorf("CurrentBytes = %d after array free, want 0", st.CurrentBytes)
		}
		if a.Count() != 0 {
			t.Errorf("Count = %d after free, want 0", a.Count())
		}
	})

	t.Run("KindNames", func(t *testing.T) {
		if KindF32.String() != "f32" || KindString.String() != "string" {
			t.Errorf("kind names = %q, %q", KindF32.String(), KindString.String())
		}
		if got := VariantKind(99).String(); got != "kind(99)" {
			t.Errorf("out-of-range kind = %q", got)
		}
	})
}

func TestNewStringUTF16(t *testing.T) {
	t.Run("DecodesLittleEndian", func(t *testing.T) {
		m := memory.NewManager()
		data := []byte{'H', 0, 'i', 0, 0xE9, 0} // "Hié" in UTF-16LE
		buf, err := NewStringUTF16(m, unsafe.Pointer(&data[0]), uintptr(len(data)))
		if err != nil {
			t.Fatalf("NewStringUTF16: %v", err)
		}
		defer buf.Free(m)

		if buf.String() != "Hié" {
			t.Errorf("decoded = %q, want %q", buf.String(), "Hié")
		}
		if buf.CharLen() != 3 {
			t.Errorf("char len = %d, want 3", buf.CharLen())
		}
	})

	t.Run("TrimsTrailingNul", func(t *testing.T) {
		m := memory.NewManager()
		data := []byte{'o', 0, 'k', 0, 0, 0}
		buf, err := NewStringUTF16(m, unsafe.Pointer(&data[0]), uintptr(len(data)))
		if err != nil {
			t.Fatalf("NewStringUTF16: %v", err)
		}
		defer buf.Free(m)

		if buf.String() != "ok" {
			t.Errorf("decoded = %q, want %q", buf.String(), "ok")
		}
	})

	t.Run("OddLengthFails", func(t *testing.T) {
		m := memory.NewManager()
		data := []byte{'H', 0, 'i'}
		if _, err := NewStringUTF16(m, unsafe.Pointer(&data[0]), 3); !errors.Is(err, rterrors.ErrInvalidArgs) {
			t.Errorf("err = %v, want invalid args", err)
		}
	})

	t.Run("NilPointerFails", func(t *testing.T) {
		m := memory.NewManager()
		if _, err := NewStringUTF16(m, nil, 4); !errors.Is(err, rterrors.ErrNullPointer) {
			t.Errorf("err = %v, want null pointer", err)
		}
	})

	t.Run("EmptyInput", func(t *testing.T) {
		m := memory.NewManager()
		buf, err := NewStringUTF16(m, nil, 0)
		if err != nil {
			t.Fatalf("NewStringUTF16: %v", err)
		}
		defer buf.Free(m)

		if buf.String() != "" || buf.CharLen() != 0 {
			t.Errorf("empty decode = %q (chars %d)", buf.String(), buf.CharLen())
		}
	})
}

func TestTypeRegistry(t *testing.T) {
	t.Run("RegisterAndLookup", func(t *testing.T) {
		id := RegisterType("Matrix4x4", 64, nil)
		if id <= TypeResult {
			t.Fatalf("registered id %d must be above the builtin range", id)
		}

		name, ok := TypeName(id)
		if !ok || name != "Matrix4x4" {
			t.Errorf("TypeName = %q, %v", name, ok)
		}
		if got := TypeSize(id); got != 64 {
			t.Errorf("TypeSize = %d, want 64", got)
		}

		second := RegisterType("Quaternion", 16, nil)
		if second <= id {
			t.Errorf("ids must increase: %d then %d", id, second)
		}
	})

	t.Run("UnknownIDs", func(t *testing.T) {
		if _, ok := TypeName(0xFFFF0000); ok {
			t.Error("unknown id should have no name")
		}
		if got := TypeSize(0xFFFF0000); got != 0 {
			t.Errorf("unknown TypeSize = %d, want 0", got)
		}
		if TypeDestructor(0xFFFF0000) != nil {
			t.Error("unknown id should have no destructor")
		}
	})

	t.Run("NameTruncatedAt63Bytes", func(t *testing.T) {
		long := strings.Repeat("n", 80)
		id := RegisterType(long, 8, nil)

		name, ok := TypeName(id)
		if !ok {
			t.Fatal("registered type missing")
		}
		if len(name) != 63 {
			t.Errorf("stored name length = %d, want 63", len(name))
		}
	})

	t.Run("DestructorRetained", func(t *testing.T) {
		called := false
		id := RegisterType("WithDtor", 8, func(unsafe.Pointer) { called = true })

		dtor := TypeDestructor(id)
		if dtor == nil {
			t.Fatal("destructor not retained")
		}
		dtor(nil)
		if !called {
			t.Error("stored destructor did not run")
		}
	})
}

func BenchmarkSliceGet(b *testing.B) {
	m := memory.NewManager()
	s, err := New(m, i32Size, 1024, 1024, memory.ZoneManual)
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	defer s.Free(m)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Get(uintptr(i) % 1024); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkInterpolate(b *testing.B) {
	m := memory.NewManager()
	args := Variants(I32(42), Bool(true))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		out, err := Interpolate(m, "value {} flag {}", args)
		if err != nil {
			b.Fatal(err)
		}
		out.Free(m)
	}
}
