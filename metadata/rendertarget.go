package metadata

// RenderTargetBackbuffer denotes the default output surface. It is never
// allocated from a pool and needs no explicit creation or destruction.
const RenderTargetBackbuffer = NilHandle

// RenderTargetConfig is the flat creation parameter struct for an
// off-screen render target.
type RenderTargetConfig struct {
	Width        uint32
	Height       uint32
	ColorFormats []PixelFormat // default: [RGBA8]
	DepthFormat  PixelFormat   // default: DEPTH24
	Samples      uint32
	Name         string // optional debug label
}

// WithDefaults returns a copy with every unset optional field resolved to
// its documented default.
func (c RenderTargetConfig) WithDefaults() RenderTargetConfig {
	if len(c.ColorFormats) == 0 {
		c.ColorFormats = []PixelFormat{PixelFormatRGBA8}
	}
	if c.DepthFormat == PixelFormatDefault {
		c.DepthFormat = PixelFormatDepth24
	}
	return c
}

type RenderTarget struct {
	Name         string
	Width        uint32
	Height       uint32
	ColorFormats []PixelFormat
	DepthFormat  PixelFormat
	Samples      uint32
	InternalID   uint32
}
