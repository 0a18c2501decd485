package metadata

type VertexAttributeType int

const (
	VertexAttributeTypeDefault VertexAttributeType = iota
	VertexAttributeTypeF32
	VertexAttributeTypeF16
	VertexAttributeTypeU8Norm
	VertexAttributeTypeU16Norm
	VertexAttributeTypeI8Norm
	VertexAttributeTypeI16Norm
	VertexAttributeTypeU8
	VertexAttributeTypeU16
	VertexAttributeTypeI8
	VertexAttributeTypeI16
	VertexAttributeTypeI10_10_10_2Norm
	VertexAttributeTypeU10_10_10_2Norm
)

// Size returns the byte size of the attribute with the given component
// count, or 0 for an unknown type.
func (t VertexAttributeType) Size(components uint32) uint64 {
	switch t {
	case VertexAttributeTypeF32:
		return 4 * uint64(components)
	case VertexAttributeTypeF16, VertexAttributeTypeU16Norm, VertexAttributeTypeI16Norm,
		VertexAttributeTypeU16, VertexAttributeTypeI16:
		return 2 * uint64(components)
	case VertexAttributeTypeU8Norm, VertexAttributeTypeI8Norm,
		VertexAttributeTypeU8, VertexAttributeTypeI8:
		return uint64(components)
	case VertexAttributeTypeI10_10_10_2Norm, VertexAttributeTypeU10_10_10_2Norm:
		// Packed into a single 32-bit word, components must be 4.
		return 4
	default:
		return 0
	}
}

// VertexAttribute describes one attribute within a vertex buffer. A zero
// Offset means "immediately after the previous attribute".
type VertexAttribute struct {
	Location   uint32
	Components uint32
	Type       VertexAttributeType
	Offset     uint64
}

// VertexBufferLayout binds a buffer to a set of attributes. A zero Stride
// is inferred from the attribute sizes.
type VertexBufferLayout struct {
	Buffer       Handle
	BufferOffset uint64
	Stride       uint64
	Attributes   []VertexAttribute
}

type DrawMode int

const (
	DrawModeDefault DrawMode = iota
	DrawModeTriangles
	DrawModeTriangleStrip
	DrawModeLines
	DrawModeLineStrip
)

type IndexType int

const (
	IndexTypeNone IndexType = iota
	IndexTypeU8
	IndexTypeU16
	IndexTypeU32
)

// Size returns the byte size of one index, or 0 for IndexTypeNone.
func (t IndexType) Size() uint64 {
	switch t {
	case IndexTypeU8:
		return 1
	case IndexTypeU16:
		return 2
	case IndexTypeU32:
		return 4
	default:
		return 0
	}
}

// GeometryConfig is the flat creation parameter struct for a geometry.
// Vertex and index counts are derived from the referenced buffer sizes
// when left zero; an explicit count larger than a buffer can supply is a
// creation failure.
type GeometryConfig struct {
	DrawMode          DrawMode // default: TRIANGLES
	VertexBuffers     []VertexBufferLayout
	IndexBuffer       Handle    // optional
	IndexType         IndexType // mandatory if IndexBuffer is given
	IndexBufferOffset uint64
	VertexCount       uint32
	IndexCount        uint32
	Name              string // optional debug label
}

// WithDefaults returns a copy with every unset optional field resolved to
// its documented default.
func (c GeometryConfig) WithDefaults() GeometryConfig {
	if c.DrawMode == DrawModeDefault {
		c.DrawMode = DrawModeTriangles
	}
	return c
}

// Geometry is a vertex layout descriptor over externally owned buffers; it
// owns no vertex or index data itself.
type Geometry struct {
	Name              string
	DrawMode          DrawMode
	VertexBuffers     []VertexBufferLayout
	IndexBuffer       Handle
	IndexType         IndexType
	IndexBufferOffset uint64
	VertexCount       uint32
	IndexCount        uint32
	InternalID        uint32
}
