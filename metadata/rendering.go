package metadata

// ClearMask selects which aspects of the pass target a clear touches.
type ClearMask int

const (
	ClearColor   ClearMask = 1 << 0
	ClearDepth   ClearMask = 1 << 1
	ClearStencil ClearMask = 1 << 2

	ClearColorDepth   = ClearColor | ClearDepth
	ClearDepthStencil = ClearDepth | ClearStencil
	ClearAll          = ClearColor | ClearDepth | ClearStencil
)

// ClearValues holds the values written by a clear.
type ClearValues struct {
	Color   [4]float32
	Depth   float32
	Stencil int32
}

// DefaultClearValues returns black color, depth 1.0 and stencil 0.
func DefaultClearValues() ClearValues {
	return ClearValues{Depth: 1.0}
}

// BindingType tags one entry of a draw's binding list.
type BindingType int

const (
	BindingTypeDefault BindingType = iota
	BindingTypeUniformData
	BindingTypeTexture
	BindingTypeBuffer
)

// DrawBinding attaches one resource to a binding point for the duration of
// a draw. It is a tagged variant: exactly the fields for its Type are
// meaningful. Range only applies to raw buffer bindings; a zero Range
// binds the whole buffer.
type DrawBinding struct {
	Type    BindingType
	Binding uint32
	Handle  Handle
	Range   Range
}

// UniformBinding builds a uniform-data binding.
func UniformBinding(binding uint32, h Handle) DrawBinding {
	return DrawBinding{Type: BindingTypeUniformData, Binding: binding, Handle: h}
}

// TextureBinding builds a texture binding. Binding is the texture unit.
func TextureBinding(binding uint32, h Handle) DrawBinding {
	return DrawBinding{Type: BindingTypeTexture, Binding: binding, Handle: h}
}

// BufferBinding builds a raw buffer-range binding.
func BufferBinding(binding uint32, h Handle, r Range) DrawBinding {
	return DrawBinding{Type: BindingTypeBuffer, Binding: binding, Handle: h, Range: r}
}
