// Package backend defines the opaque device interface the graphics layer
// delegates to. Implementations own the native API (GL, Vulkan, ...) and
// are single-thread affine: every call must originate from the thread that
// owns the native context.
package backend

import (
	"github.com/spaghettifunk/vetro/metadata"
)

// Backend is implemented by a native device. On creation calls the backend
// fills in the resource's InternalID with its native object; a returned
// error means no native object was leaked (the backend cleans up its own
// partial state). Destroy calls are idempotent per resource because the
// pool invokes them exactly once per slot lifetime.
type Backend interface {
	Initialize() error
	Shutdown() error

	// Identity of the underlying device, owned by the backend.
	RendererName() string
	VendorName() string
	APIName() string
	APIVersion() string

	ShaderCreate(shader *metadata.Shader, source string) error
	ShaderDestroy(shader *metadata.Shader)

	TextureCreate(texture *metadata.Texture, data []byte, dataFormat metadata.PixelFormat) error
	TextureWriteData(texture *metadata.Texture, data []byte, dataFormat metadata.PixelFormat) error
	TextureDestroy(texture *metadata.Texture)

	// ProgramLink links the two stages into the material's native program.
	// ResolveBinding queries the native location of one declared binding;
	// an error is a linkage error and the caller tears the program down.
	ProgramLink(material *metadata.Material, vert, frag *metadata.Shader) error
	ResolveBinding(material *metadata.Material, binding metadata.ShaderBinding) (uint32, error)
	ProgramDestroy(material *metadata.Material)

	BufferCreate(buffer *metadata.Buffer, data []byte) error
	BufferUpdate(buffer *metadata.Buffer, offset uint64, data []byte) error
	// BufferOrphan discards the buffer contents and reallocates storage of
	// the same size, without blocking on prior GPU reads.
	BufferOrphan(buffer *metadata.Buffer) error
	BufferDestroy(buffer *metadata.Buffer)

	GeometryCreate(geometry *metadata.Geometry, vertexBuffers []*metadata.Buffer, indexBuffer *metadata.Buffer) error
	GeometryDestroy(geometry *metadata.Geometry)

	RenderTargetCreate(target *metadata.RenderTarget) error
	RenderTargetDestroy(target *metadata.RenderTarget)

	// BeginPass binds the target's framebuffer; a nil target means the
	// backbuffer.
	BeginPass(target *metadata.RenderTarget) error
	EndPass() error
	Clear(mask metadata.ClearMask, values metadata.ClearValues)

	ApplyPipeline(material *metadata.Material) error
	BindUniformBuffer(location uint32, buffer *metadata.Buffer, r metadata.Range) error
	BindTexture(unit uint32, texture *metadata.Texture) error
	BindBufferRange(location uint32, buffer *metadata.Buffer, r metadata.Range) error

	// Draw issues an indexed draw when the geometry has an index buffer,
	// a non-indexed draw otherwise. instanceCount 1 is a plain draw.
	Draw(geometry *metadata.Geometry, instanceCount uint32) error

	SetViewport(x, y int32, width, height uint32)
	SetScissor(x, y int32, width, height uint32)

	// Flush submits all queued work for the current pass.
	Flush()
}
