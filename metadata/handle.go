package metadata

// Limits shared by every backend. These mirror the fixed-size arrays of the
// wire-level create parameters; exceeding them is a creation failure.
const (
	MaxVertexBuffers    = 8
	MaxVertexAttributes = 8
	MaxColorFormats     = 8
	MaxShaderBindings   = 16
)

// Handle is an opaque generational reference to a pooled resource. The low
// 16 bits are the pool slot index, the high 16 bits the slot generation.
// The zero value is the universal "none/invalid" sentinel: generations
// start at 1, so no live resource ever combines to 0.
type Handle uint32

// NilHandle never refers to a live resource.
const NilHandle Handle = 0

// MakeHandle combines a slot index and generation into a handle.
func MakeHandle(index, generation uint16) Handle {
	return Handle(uint32(generation)<<16 | uint32(index))
}

// Index returns the pool slot index encoded in the handle.
func (h Handle) Index() uint16 {
	return uint16(h & 0xFFFF)
}

// Generation returns the slot generation encoded in the handle.
func (h Handle) Generation() uint16 {
	return uint16(h >> 16)
}

// IsNil reports whether the handle is the invalid sentinel.
func (h Handle) IsNil() bool {
	return h == NilHandle
}

// Range describes a byte sub-range of a buffer. A zero Length means "the
// whole buffer" wherever a range is optional.
type Range struct {
	Offset uint64
	Length uint64
}
