package backend

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/vetro/metadata"
)

// Recorder is an in-memory Backend that allocates fake native IDs and
// records every call it receives. It backs the module's tests and is also
// usable for headless runs. Failure knobs let tests drive error paths
// without a real device.
type Recorder struct {
	Calls []string

	DrawCount     int
	InstanceTotal int
	PipelineBinds int

	FailShaderCreate       bool
	FailTextureCreate      bool
	FailProgramLink        bool
	FailBufferCreate       bool
	FailGeometryCreate     bool
	FailRenderTargetCreate bool
	FailDraw               bool
	// UnresolvableBindings makes ResolveBinding fail for these binding
	// points, simulating a linkage error.
	UnresolvableBindings map[uint32]bool

	// BufferContents shadows what each native buffer holds, keyed by
	// InternalID, so tests can assert on flushed uniform bytes.
	BufferContents map[uint32][]byte

	nextID uint32
}

var _ Backend = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{
		BufferContents: make(map[uint32][]byte),
	}
}

func (r *Recorder) record(format string, args ...interface{}) {
	r.Calls = append(r.Calls, fmt.Sprintf(format, args...))
}

// CallsOf returns the recorded calls whose name matches prefix.
func (r *Recorder) CallsOf(prefix string) []string {
	var out []string
	for _, c := range r.Calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (r *Recorder) allocID() uint32 {
	r.nextID++
	return r.nextID
}

func (r *Recorder) Initialize() error {
	r.record("Initialize")
	return nil
}

func (r *Recorder) Shutdown() error {
	r.record("Shutdown")
	return nil
}

func (r *Recorder) RendererName() string { return "recorder" }
func (r *Recorder) VendorName() string   { return "vetro" }
func (r *Recorder) APIName() string      { return "none" }
func (r *Recorder) APIVersion() string   { return "0.0" }

func (r *Recorder) ShaderCreate(shader *metadata.Shader, source string) error {
	if r.FailShaderCreate {
		return fmt.Errorf("shader compilation failed")
	}
	shader.InternalID = r.allocID()
	r.record("ShaderCreate(%d)", shader.InternalID)
	return nil
}

func (r *Recorder) ShaderDestroy(shader *metadata.Shader) {
	r.record("ShaderDestroy(%d)", shader.InternalID)
}

func (r *Recorder) TextureCreate(texture *metadata.Texture, data []byte, dataFormat metadata.PixelFormat) error {
	if r.FailTextureCreate {
		return fmt.Errorf("texture allocation failed")
	}
	texture.InternalID = r.allocID()
	r.record("TextureCreate(%d)", texture.InternalID)
	return nil
}

func (r *Recorder) TextureWriteData(texture *metadata.Texture, data []byte, dataFormat metadata.PixelFormat) error {
	r.record("TextureWriteData(%d, %d bytes)", texture.InternalID, len(data))
	return nil
}

func (r *Recorder) TextureDestroy(texture *metadata.Texture) {
	r.record("TextureDestroy(%d)", texture.InternalID)
}

func (r *Recorder) ProgramLink(material *metadata.Material, vert, frag *metadata.Shader) error {
	if r.FailProgramLink {
		return fmt.Errorf("program link failed")
	}
	material.InternalID = r.allocID()
	r.record("ProgramLink(%d)", material.InternalID)
	return nil
}

func (r *Recorder) ResolveBinding(material *metadata.Material, binding metadata.ShaderBinding) (uint32, error) {
	if r.UnresolvableBindings[binding.Binding] {
		return 0, fmt.Errorf("binding %d not found in program", binding.Binding)
	}
	r.record("ResolveBinding(%d, %d)", material.InternalID, binding.Binding)
	// Locations mirror the binding index, like a layout(binding=N)
	// qualifier.
	return binding.Binding, nil
}

func (r *Recorder) ProgramDestroy(material *metadata.Material) {
	r.record("ProgramDestroy(%d)", material.InternalID)
}

func (r *Recorder) BufferCreate(buffer *metadata.Buffer, data []byte) error {
	if r.FailBufferCreate {
		return fmt.Errorf("buffer allocation failed")
	}
	buffer.InternalID = r.allocID()
	contents := make([]byte, buffer.Size)
	copy(contents, data)
	r.BufferContents[buffer.InternalID] = contents
	r.record("BufferCreate(%d, %d bytes)", buffer.InternalID, buffer.Size)
	return nil
}

func (r *Recorder) BufferUpdate(buffer *metadata.Buffer, offset uint64, data []byte) error {
	if contents, ok := r.BufferContents[buffer.InternalID]; ok {
		copy(contents[offset:], data)
	}
	r.record("BufferUpdate(%d, %d, %d bytes)", buffer.InternalID, offset, len(data))
	return nil
}

func (r *Recorder) BufferOrphan(buffer *metadata.Buffer) error {
	r.BufferContents[buffer.InternalID] = make([]byte, buffer.Size)
	r.record("BufferOrphan(%d)", buffer.InternalID)
	return nil
}

func (r *Recorder) BufferDestroy(buffer *metadata.Buffer) {
	delete(r.BufferContents, buffer.InternalID)
	r.record("BufferDestroy(%d)", buffer.InternalID)
}

func (r *Recorder) GeometryCreate(geometry *metadata.Geometry, vertexBuffers []*metadata.Buffer, indexBuffer *metadata.Buffer) error {
	if r.FailGeometryCreate {
		return fmt.Errorf("vertex array creation failed")
	}
	geometry.InternalID = r.allocID()
	r.record("GeometryCreate(%d)", geometry.InternalID)
	return nil
}

func (r *Recorder) GeometryDestroy(geometry *metadata.Geometry) {
	r.record("GeometryDestroy(%d)", geometry.InternalID)
}

func (r *Recorder) RenderTargetCreate(target *metadata.RenderTarget) error {
	if r.FailRenderTargetCreate {
		return fmt.Errorf("framebuffer incomplete")
	}
	target.InternalID = r.allocID()
	r.record("RenderTargetCreate(%d)", target.InternalID)
	return nil
}

func (r *Recorder) RenderTargetDestroy(target *metadata.RenderTarget) {
	r.record("RenderTargetDestroy(%d)", target.InternalID)
}

func (r *Recorder) BeginPass(target *metadata.RenderTarget) error {
	if target == nil {
		r.record("BeginPass(backbuffer)")
	} else {
		r.record("BeginPass(%d)", target.InternalID)
	}
	return nil
}

func (r *Recorder) EndPass() error {
	r.record("EndPass")
	return nil
}

func (r *Recorder) Clear(mask metadata.ClearMask, values metadata.ClearValues) {
	r.record("Clear(%d)", mask)
}

func (r *Recorder) ApplyPipeline(material *metadata.Material) error {
	r.PipelineBinds++
	r.record("ApplyPipeline(%d)", material.InternalID)
	return nil
}

func (r *Recorder) BindUniformBuffer(location uint32, buffer *metadata.Buffer, rng metadata.Range) error {
	r.record("BindUniformBuffer(%d, %d)", location, buffer.InternalID)
	return nil
}

func (r *Recorder) BindTexture(unit uint32, texture *metadata.Texture) error {
	r.record("BindTexture(%d, %d)", unit, texture.InternalID)
	return nil
}

func (r *Recorder) BindBufferRange(location uint32, buffer *metadata.Buffer, rng metadata.Range) error {
	r.record("BindBufferRange(%d, %d)", location, buffer.InternalID)
	return nil
}

func (r *Recorder) Draw(geometry *metadata.Geometry, instanceCount uint32) error {
	if r.FailDraw {
		return fmt.Errorf("draw submission failed")
	}
	r.DrawCount++
	r.InstanceTotal += int(instanceCount)
	r.record("Draw(%d, %d)", geometry.InternalID, instanceCount)
	return nil
}

func (r *Recorder) SetViewport(x, y int32, width, height uint32) {
	r.record("SetViewport(%d, %d, %d, %d)", x, y, width, height)
}

func (r *Recorder) SetScissor(x, y int32, width, height uint32) {
	r.record("SetScissor(%d, %d, %d, %d)", x, y, width, height)
}

func (r *Recorder) Flush() {
	r.record("Flush")
}
