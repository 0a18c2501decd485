package metadata

type PixelFormat int

const (
	PixelFormatDefault PixelFormat = iota
	PixelFormatRGB8
	PixelFormatRGBA8
	PixelFormatRGB16F
	PixelFormatRGBA16F
	PixelFormatRGB32F
	PixelFormatRGBA32F
	PixelFormatDepth24
	PixelFormatDepth32F
	PixelFormatDepth24Stencil8
)

// IsDepth reports whether the format is a depth or depth/stencil format.
func (f PixelFormat) IsDepth() bool {
	switch f {
	case PixelFormatDepth24, PixelFormatDepth32F, PixelFormatDepth24Stencil8:
		return true
	}
	return false
}

type TextureWrapMode int

const (
	TextureWrapDefault TextureWrapMode = iota
	TextureWrapRepeat
	TextureWrapClampToEdge
	TextureWrapMirroredRepeat
)

type TextureMinFilter int

const (
	TextureMinFilterDefault TextureMinFilter = iota
	TextureMinFilterNearest
	TextureMinFilterLinear
	TextureMinFilterNearestMipmapNearest
	TextureMinFilterLinearMipmapNearest
	TextureMinFilterNearestMipmapLinear
	TextureMinFilterLinearMipmapLinear
)

type TextureMagFilter int

const (
	TextureMagFilterDefault TextureMagFilter = iota
	TextureMagFilterNearest
	TextureMagFilterLinear
)

// TextureConfig is the flat creation parameter struct for a texture.
// Zero-valued optional fields are resolved by WithDefaults.
type TextureConfig struct {
	Width           uint32
	Height          uint32
	Format          PixelFormat      // default: RGBA8
	WrapS           TextureWrapMode  // default: REPEAT
	WrapT           TextureWrapMode  // default: WrapS
	MinFilter       TextureMinFilter // default: mipmaps ? linear_mipmap_linear : linear
	MagFilter       TextureMagFilter // default: LINEAR
	GenerateMipmaps bool
	Data            []byte      // optional initial pixel data
	DataFormat      PixelFormat // default: Format
	Name            string      // optional debug label
}

// WithDefaults returns a copy with every unset optional field resolved to
// its documented default.
func (c TextureConfig) WithDefaults() TextureConfig {
	if c.Format == PixelFormatDefault {
		c.Format = PixelFormatRGBA8
	}
	if c.WrapS == TextureWrapDefault {
		c.WrapS = TextureWrapRepeat
	}
	if c.WrapT == TextureWrapDefault {
		c.WrapT = c.WrapS
	}
	if c.MinFilter == TextureMinFilterDefault {
		if c.GenerateMipmaps {
			c.MinFilter = TextureMinFilterLinearMipmapLinear
		} else {
			c.MinFilter = TextureMinFilterLinear
		}
	}
	if c.MagFilter == TextureMagFilterDefault {
		c.MagFilter = TextureMagFilterLinear
	}
	if c.DataFormat == PixelFormatDefault {
		c.DataFormat = c.Format
	}
	return c
}

type Texture struct {
	Name       string
	Width      uint32
	Height     uint32
	Format     PixelFormat
	WrapS      TextureWrapMode
	WrapT      TextureWrapMode
	MinFilter  TextureMinFilter
	MagFilter  TextureMagFilter
	HasMipmaps bool
	InternalID uint32
}
