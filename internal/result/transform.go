package result

import (
	"unsafe"

	"github.com/asthra-lang/asthra-runtime/internal/errors"
	"github.com/asthra-lang/asthra-runtime/internal/memory"
)

// MapOk applies mapper to the payload of an ok result and rewraps the
// mapped pointer under the original size, type id, and ownership. Error
// results pass through unchanged. A mapper returning nil degrades to an
// error result.
func (r Result) MapOk(m *memory.Manager, mapper func(unsafe.Pointer) unsafe.Pointer) Result {
	if r.tag != tagOk {
		return r
	}

	mapped := mapper(r.value)
	if mapped == nil {
		return Err(m, errors.CodeInvalidArgs, "Mapping function returned NULL", "result.MapOk", nil)
	}
	return Ok(m, mapped, r.valueSize, r.typeID, r.ownership)
}

// MapErr rewrites the code and message of an error result, keeping its
// source and context. Ok results pass through unchanged.
func (r Result) MapErr(m *memory.Manager, mapper func(code errors.Code, message string) (errors.Code, string)) Result {
	if r.tag != tagErr {
		return r
	}

	code, message := mapper(r.errCode, r.errMessage)
	out := Err(m, code, message, r.errSource, r.errContext)
	return out
}

// AndThen chains a fallible step onto an ok result. Error results pass
// through unchanged.
func (r Result) AndThen(next func(unsafe.Pointer) Result) Result {
	if r.tag != tagOk {
		return r
	}
	return next(r.value)
}

// OrElse recovers from an error result. Ok results pass through unchanged.
func (r Result) OrElse(alt func(Result) Result) Result {
	if r.tag != tagErr {
		return r
	}
	return alt(r)
}

// UnwrapOr returns the ok payload or fallback.
func (r Result) UnwrapOr(fallback unsafe.Pointer) unsafe.Pointer {
	if r.tag == tagOk {
		return r.value
	}
	return fallback
}

// UnwrapOrElse returns the ok payload or derives one from the error. A nil
// derivation yields nil.
func (r Result) UnwrapOrElse(derive func(Result) unsafe.Pointer) unsafe.Pointer {
	if r.tag == tagOk {
		return r.value
	}
	if derive == nil {
		return nil
	}
	return derive(r)
}

// Clone returns a shallow copy of the result. Payload storage is shared
// between the copies; the registry's free path keeps a double release of the
// same payload harmless.
func (r Result) Clone(m *memory.Manager) Result {
	m.AddResultCount(1)
	return r
}

// IsOkAnd reports whether the result is ok and its payload satisfies
// predicate. A nil predicate accepts any ok payload.
func (r Result) IsOkAnd(predicate func(unsafe.Pointer) bool) bool {
	if r.tag != tagOk {
		return false
	}
	return predicate == nil || predicate(r.value)
}

// IsErrAnd reports whether the result is an error satisfying predicate. A
// nil predicate accepts any error.
func (r Result) IsErrAnd(predicate func(code errors.Code, message string) bool) bool {
	if r.tag != tagErr {
		return false
	}
	return predicate == nil || predicate(r.errCode, r.errMessage)
}
