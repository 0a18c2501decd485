package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleEncoding(t *testing.T) {
	h := MakeHandle(513, 42)
	assert.Equal(t, uint16(513), h.Index())
	assert.Equal(t, uint16(42), h.Generation())
	assert.False(t, h.IsNil())
}

func TestNilHandle(t *testing.T) {
	assert.True(t, NilHandle.IsNil())
	assert.True(t, MakeHandle(0, 0).IsNil())
	// Generations start at 1, so index 0 is representable.
	assert.False(t, MakeHandle(0, 1).IsNil())
}

func TestTextureConfigDefaults(t *testing.T) {
	c := TextureConfig{Width: 4, Height: 4}.WithDefaults()
	assert.Equal(t, PixelFormatRGBA8, c.Format)
	assert.Equal(t, TextureWrapRepeat, c.WrapS)
	assert.Equal(t, c.WrapS, c.WrapT)
	assert.Equal(t, TextureMinFilterLinear, c.MinFilter)
	assert.Equal(t, TextureMagFilterLinear, c.MagFilter)
	assert.Equal(t, c.Format, c.DataFormat)

	mips := TextureConfig{Width: 4, Height: 4, GenerateMipmaps: true}.WithDefaults()
	assert.Equal(t, TextureMinFilterLinearMipmapLinear, mips.MinFilter)

	clamped := TextureConfig{Width: 4, Height: 4, WrapS: TextureWrapClampToEdge}.WithDefaults()
	assert.Equal(t, TextureWrapClampToEdge, clamped.WrapT)
}

func TestMaterialConfigDefaults(t *testing.T) {
	c := MaterialConfig{}.WithDefaults()
	assert.Equal(t, DepthFuncLEqual, c.DepthFunc)
	assert.Equal(t, WriteMaskRGBA|WriteMaskDepth, c.WriteMask)
	assert.Equal(t, CullFaceModeNone, c.CullFace)
	assert.Equal(t, BlendFuncOne, c.SrcBlend)
	assert.Equal(t, BlendFuncZero, c.DstBlend)
	assert.Equal(t, PolygonModeFill, c.PolygonMode)
	assert.Equal(t, StencilFuncAlways, c.StencilFunc)
}

func TestWriteMaskValid(t *testing.T) {
	assert.True(t, WriteMaskNone.Valid())
	assert.True(t, (WriteMaskRGBA | WriteMaskDepth).Valid())
	assert.True(t, (WriteMaskR | WriteMaskA).Valid())
	assert.False(t, WriteMaskDefault.Valid())
	assert.False(t, (WriteMaskNone | WriteMaskR).Valid())
}

func TestBufferConfigDefaults(t *testing.T) {
	c := BufferConfig{Data: make([]byte, 24)}.WithDefaults()
	assert.Equal(t, BufferTargetArray, c.Target)
	assert.Equal(t, BufferUsageHintStatic, c.Usage)
	assert.Equal(t, uint64(24), c.Size)
}

func TestVertexAttributeTypeSize(t *testing.T) {
	assert.Equal(t, uint64(12), VertexAttributeTypeF32.Size(3))
	assert.Equal(t, uint64(8), VertexAttributeTypeF16.Size(4))
	assert.Equal(t, uint64(2), VertexAttributeTypeU8Norm.Size(2))
	// Packed formats are one 32-bit word no matter what.
	assert.Equal(t, uint64(4), VertexAttributeTypeI10_10_10_2Norm.Size(4))
	assert.Equal(t, uint64(0), VertexAttributeTypeDefault.Size(4))
}
