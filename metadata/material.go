package metadata

type DepthFunc int

const (
	DepthFuncDefault DepthFunc = iota
	DepthFuncNever
	DepthFuncLess
	DepthFuncEqual
	DepthFuncLEqual
	DepthFuncGreater
	DepthFuncNotEqual
	DepthFuncGEqual
	DepthFuncAlways
)

// WriteMask selects which channels a material writes. WriteMaskNone is a
// real member rather than the zero value so that an unset mask can still
// default to RGBA|DEPTH.
type WriteMask int

const (
	WriteMaskDefault WriteMask = 0
	WriteMaskNone    WriteMask = 1
	WriteMaskR       WriteMask = 2
	WriteMaskG       WriteMask = 4
	WriteMaskB       WriteMask = 8
	WriteMaskA       WriteMask = 16
	WriteMaskRGBA    WriteMask = 30
	WriteMaskDepth   WriteMask = 32
)

// Valid reports whether the mask is a legal combination: NONE must not be
// combined with any channel bit.
func (m WriteMask) Valid() bool {
	if m == WriteMaskDefault {
		return false
	}
	if m&WriteMaskNone != 0 && m != WriteMaskNone {
		return false
	}
	return m <= WriteMaskRGBA|WriteMaskNone|WriteMaskDepth
}

type CullFaceMode int

const (
	CullFaceModeDefault CullFaceMode = iota
	CullFaceModeNone
	CullFaceModeFront
	CullFaceModeBack
	CullFaceModeFrontAndBack
)

type BlendFunc int

const (
	BlendFuncDefault BlendFunc = iota
	BlendFuncZero
	BlendFuncOne
	BlendFuncSrcColor
	BlendFuncOneMinusSrcColor
	BlendFuncDstColor
	BlendFuncOneMinusDstColor
	BlendFuncSrcAlpha
	BlendFuncOneMinusSrcAlpha
	BlendFuncDstAlpha
	BlendFuncOneMinusDstAlpha
)

type PolygonMode int

const (
	PolygonModeDefault PolygonMode = iota
	PolygonModeFill
	PolygonModeLine
	PolygonModePoint
)

type StencilFunc int

const (
	StencilFuncDefault StencilFunc = iota
	StencilFuncNever
	StencilFuncLess
	StencilFuncEqual
	StencilFuncLEqual
	StencilFuncGreater
	StencilFuncNotEqual
	StencilFuncGEqual
	StencilFuncAlways
)

// MaterialConfig pairs a vertex and fragment shader with the full
// fixed-function pipeline state.
type MaterialConfig struct {
	VertShader    Handle
	FragShader    Handle
	DepthFunc     DepthFunc    // default: LEQUAL
	WriteMask     WriteMask    // default: RGBA | DEPTH
	CullFace      CullFaceMode // default: NONE
	SrcBlend      BlendFunc    // default: ONE
	DstBlend      BlendFunc    // default: ZERO
	BlendColor    [4]float32
	PolygonMode   PolygonMode // default: FILL
	StencilEnable bool
	StencilFunc   StencilFunc // default: ALWAYS
	StencilRef    int32
	StencilMask   uint32
	Name          string // optional debug label
}

// WithDefaults returns a copy with every unset optional field resolved to
// its documented default.
func (c MaterialConfig) WithDefaults() MaterialConfig {
	if c.DepthFunc == DepthFuncDefault {
		c.DepthFunc = DepthFuncLEqual
	}
	if c.WriteMask == WriteMaskDefault {
		c.WriteMask = WriteMaskRGBA | WriteMaskDepth
	}
	if c.CullFace == CullFaceModeDefault {
		c.CullFace = CullFaceModeNone
	}
	if c.SrcBlend == BlendFuncDefault {
		c.SrcBlend = BlendFuncOne
	}
	if c.DstBlend == BlendFuncDefault {
		c.DstBlend = BlendFuncZero
	}
	if c.PolygonMode == PolygonModeDefault {
		c.PolygonMode = PolygonModeFill
	}
	if c.StencilFunc == StencilFuncDefault {
		c.StencilFunc = StencilFuncAlways
	}
	return c
}

// BindingKey identifies one binding point of a material. Uniform-block
// bindings and sampler units are separate namespaces in every backend, so
// the type is part of the key.
type BindingKey struct {
	Type    ShaderBindingType
	Binding uint32
}

// Material captures a linked shader program plus all fixed-function state.
// BindingLocations caches the backend location of every declared uniform
// block and sampler binding, resolved once at creation so that draw time
// never queries the backend.
type Material struct {
	Name          string
	VertShader    Handle
	FragShader    Handle
	DepthFunc     DepthFunc
	WriteMask     WriteMask
	CullFace      CullFaceMode
	SrcBlend      BlendFunc
	DstBlend      BlendFunc
	BlendColor    [4]float32
	PolygonMode   PolygonMode
	StencilEnable bool
	StencilFunc   StencilFunc
	StencilRef    int32
	StencilMask   uint32

	VertBindings     []ShaderBinding
	FragBindings     []ShaderBinding
	BindingLocations map[BindingKey]uint32

	InternalID uint32
}

// BindingLocation returns the cached backend location for a binding point.
func (m *Material) BindingLocation(t ShaderBindingType, binding uint32) (uint32, bool) {
	loc, ok := m.BindingLocations[BindingKey{Type: t, Binding: binding}]
	return loc, ok
}
