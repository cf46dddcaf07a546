package slice

import (
	"sync"
	"unsafe"
)

// Builtin runtime type ids. An id of TypeVoid in a match arm or slice
// header means "untyped": the type verification layer skips it. User types
// register above TypeResult.
const (
	TypeVoid uint32 = iota
	TypeBool
	TypeI8
	TypeU8
	TypeI16
	TypeU16
	TypeI32
	TypeU32
	TypeI64
	TypeU64
	TypeF32
	TypeF64
	TypePtr
	TypeString
	TypeSlice
	TypeResult
)

// typeInfo describes one registered runtime type.
type typeInfo struct {
	name       string
	size       uintptr
	destructor func(unsafe.Pointer)
}

var (
	typeMu     sync.Mutex
	typeTable  = map[uint32]typeInfo{}
	nextTypeID = TypeResult + 1
)

// RegisterType assigns a fresh runtime type id to a named type. Names are
// capped at 63 bytes. The destructor is retained for payload teardown by
// foreign bindings; passing nil is fine.
func RegisterType(name string, size uintptr, destructor func(unsafe.Pointer)) uint32 {
	if len(name) > 63 {
		name = name[:63]
	}

	typeMu.Lock()
	defer typeMu.Unlock()

	id := nextTypeID
	nextTypeID++
	typeTable[id] = typeInfo{name: name, size: size, destructor: destructor}
	return id
}

// TypeName returns the registered name for id. Builtin ids have no
// registered name.
func TypeName(id uint32) (string, bool) {
	typeMu.Lock()
	defer typeMu.Unlock()

	info, ok := typeTable[id]
	if !ok {
		return "", false
	}
	return info.name, true
}

// TypeSize returns the registered size for id, zero when unknown.
func TypeSize(id uint32) uintptr {
	typeMu.Lock()
	defer typeMu.Unlock()
	return typeTable[id].size
}

// TypeDestructor returns the registered destructor for id, nil when the
// type is unknown or registered without one.
func TypeDestructor(id uint32) func(unsafe.Pointer) {
	typeMu.Lock()
	defer typeMu.Unlock()
	return typeTable[id].destructor
}
