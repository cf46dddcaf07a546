package result

import (
	"unsafe"

	"github.com/asthra-lang/asthra-runtime/internal/memory"
)

// Option is the presence-tagged sibling of Result: Some carries a payload,
// None carries nothing. The zero value is None. Lifecycle and accounting
// follow Result exactly.
type Option struct {
	present   bool
	value     unsafe.Pointer
	valueSize uintptr
	typeID    uint32
	ownership memory.OwnershipTransfer
}

// Some wraps a present payload.
func Some(m *memory.Manager, value unsafe.Pointer, size uintptr, typeID uint32, ownership memory.OwnershipTransfer) Option {
	m.AddResultCount(1)
	return Option{
		present:   true,
		value:     value,
		valueSize: size,
		typeID:    typeID,
		ownership: ownership,
	}
}

// None wraps an absent value.
func None(m *memory.Manager) Option {
	m.AddResultCount(1)
	return Option{}
}

// IsSome reports whether a payload is present.
func (o Option) IsSome() bool { return o.present }

// IsNone reports whether the option is empty.
func (o Option) IsNone() bool { return !o.present }

// UnwrapSome returns the payload pointer, nil when the option is empty.
func (o Option) UnwrapSome() unsafe.Pointer {
	if !o.present {
		return nil
	}
	return o.value
}

// ValueSize returns the payload size in bytes, zero when empty.
func (o Option) ValueSize() uintptr {
	if !o.present {
		return 0
	}
	return o.valueSize
}

// TypeID returns the payload's runtime type tag.
func (o Option) TypeID() uint32 { return o.typeID }

// Ownership returns the payload's transfer semantics.
func (o Option) Ownership() memory.OwnershipTransfer { return o.ownership }

// UnwrapOr returns the payload or fallback.
func (o Option) UnwrapOr(fallback unsafe.Pointer) unsafe.Pointer {
	if o.present {
		return o.value
	}
	return fallback
}

// Free releases a fully owned payload back to the manager; empty and
// borrowed options are no-ops.
func (o Option) Free(m *memory.Manager) {
	if o.present && o.ownership == memory.TransferFull && o.value != nil {
		m.Free(o.value, memory.ZoneGC)
	}
}

// OptionPattern selects which options a match arm accepts.
type OptionPattern int32

const (
	// MatchSome accepts present options.
	MatchSome OptionPattern = iota
	// MatchNone accepts empty options.
	MatchNone
	// MatchAny accepts anything.
	MatchAny
)

// OptionArm pairs an option pattern with its handler, mirroring MatchArm.
type OptionArm struct {
	Pattern        OptionPattern
	ExpectedTypeID uint32
	Handler        func(Option)
}

// MatchOption dispatches o to the first arm that accepts it and returns
// that arm's index, NoMatch when none fired. Ordering rules are the same
// as Match.
func MatchOption(o Option, arms []OptionArm) int {
	for i := range arms {
		arm := &arms[i]
		matches := false

		switch arm.Pattern {
		case MatchSome:
			matches = o.present
		case MatchNone:
			matches = !o.present
		case MatchAny:
			matches = true
		}
		if matches && arm.ExpectedTypeID != 0 && arm.Pattern != MatchAny {
			matches = o.typeID == arm.ExpectedTypeID
		}

		if matches && arm.Handler != nil {
			arm.Handler(o)
			return i
		}
	}
	return NoMatch
}
