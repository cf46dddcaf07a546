package slice

import (
	"unsafe"

	"golang.org/x/text/encoding/unicode"

	"github.com/asthra-lang/asthra-runtime/internal/errors"
	"github.com/asthra-lang/asthra-runtime/internal/memory"
)

// NewStringUTF16 decodes UTF-16 bytes from foreign memory into a fresh
// fully owned UTF-8 string buffer. Byte order follows the BOM when present
// and defaults to little endian, which is what foreign wide-string
// producers emit. A trailing NUL code unit is trimmed; invalid code units
// decode to the replacement character.
func NewStringUTF16(m *memory.Manager, ptr unsafe.Pointer, byteLen uintptr) (StringBuffer, error) {
	if byteLen == 0 {
		return NewString(m, "", memory.TransferFull)
	}
	if ptr == nil {
		return StringBuffer{}, errors.NullPointer("slice.NewStringUTF16")
	}
	if byteLen%2 != 0 {
		return StringBuffer{}, errors.InvalidArgs("slice.NewStringUTF16", "UTF-16 data has odd length")
	}

	data := unsafe.Slice((*byte)(ptr), byteLen)
	if n := len(data); n >= 2 && data[n-2] == 0 && data[n-1] == 0 {
		data = data[:n-2]
	}

	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	decoded, err := dec.Bytes(data)
	if err != nil {
		return StringBuffer{}, errors.InvalidArgs("slice.NewStringUTF16", err.Error())
	}

	return NewString(m, string(decoded), memory.TransferFull)
}
