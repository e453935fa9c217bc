package guest

import (
	"encoding/binary"
	"fmt"
)

// StringEntrySize is the width of one VARCHAR vector entry.
//
// Layout of an entry:
//
//	[0:4)   length
//	[4:16)  the string itself when length <= StringInlineLength
//	[4:8)   first four bytes of the string otherwise
//	[8:12)  offset of the string in the vector's string heap
const StringEntrySize = 16

// StringInlineLength is the longest string stored inside its entry.
const StringInlineLength = 12

// Vector is a flat column of fixed-width entries over one byte allocation.
// VARCHAR vectors own a string heap that holds strings too long to inline.
type Vector struct {
	Type LogicalType
	data []byte
	heap *stringHeap
}

type stringHeap struct {
	buf      []byte
	interned map[string]uint32
}

func (h *stringHeap) add(s string) uint32 {
	if off, ok := h.interned[s]; ok {
		return off
	}
	off := uint32(len(h.buf))
	h.buf = append(h.buf, s...)
	h.interned[s] = off
	return off
}

// NewVector allocates a vector holding capacity entries of t.
func NewVector(t LogicalType, capacity int) *Vector {
	width := t.Physical.Size()
	if width == 0 {
		panic(fmt.Sprintf("guest: cannot allocate vector of type %s", t))
	}
	v := &Vector{Type: t, data: make([]byte, capacity*width)}
	if t.Physical == PhysicalVarchar {
		v.heap = &stringHeap{interned: make(map[string]uint32)}
	}
	return v
}

// WrapVector returns a vector viewing data without copying it. The view
// does not own data and must not outlive whatever does.
func WrapVector(t LogicalType, data []byte) *Vector {
	return &Vector{Type: t, data: data}
}

// Data returns the vector's backing bytes.
func (v *Vector) Data() []byte {
	return v.data
}

// Capacity returns the number of entries the allocation can hold.
func (v *Vector) Capacity() int {
	return len(v.data) / v.Type.Physical.Size()
}

// SetString stores s at entry i, interning it in the string heap when it
// does not fit inline. Identical strings share heap storage.
func (v *Vector) SetString(i int, s string) {
	v.mustBe(PhysicalVarchar)
	if v.heap == nil {
		panic("guest: cannot add strings to a vector view")
	}
	entry := v.entry(i)
	clear(entry)
	binary.LittleEndian.PutUint32(entry[0:4], uint32(len(s)))
	if len(s) <= StringInlineLength {
		copy(entry[4:], s)
		return
	}
	copy(entry[4:8], s[:4])
	binary.LittleEndian.PutUint32(entry[8:12], v.heap.add(s))
}

// GetString returns the string at entry i.
func (v *Vector) GetString(i int) string {
	v.mustBe(PhysicalVarchar)
	entry := v.entry(i)
	n := int(binary.LittleEndian.Uint32(entry[0:4]))
	if n <= StringInlineLength {
		return string(entry[4 : 4+n])
	}
	off := int(binary.LittleEndian.Uint32(entry[8:12]))
	return string(v.heap.buf[off : off+n])
}

// SetUint32 stores x at entry i of a UINT32 vector.
func (v *Vector) SetUint32(i int, x uint32) {
	v.mustBe(PhysicalUInt32)
	binary.LittleEndian.PutUint32(v.entry(i), x)
}

// GetUint32 returns entry i of a UINT32 vector.
func (v *Vector) GetUint32(i int) uint32 {
	v.mustBe(PhysicalUInt32)
	return binary.LittleEndian.Uint32(v.entry(i))
}

func (v *Vector) entry(i int) []byte {
	width := v.Type.Physical.Size()
	if i < 0 || (i+1)*width > len(v.data) {
		panic(fmt.Sprintf("guest: vector index %d out of range [0, %d)", i, v.Capacity()))
	}
	return v.data[i*width : (i+1)*width]
}

func (v *Vector) mustBe(p PhysicalType) {
	if v.Type.Physical != p {
		panic(fmt.Sprintf("guest: %s access on %s vector", p, v.Type.Physical))
	}
}
