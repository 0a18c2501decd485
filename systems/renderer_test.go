package systems

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/vetro/backend"
	"github.com/spaghettifunk/vetro/core"
	"github.com/spaghettifunk/vetro/metadata"
	"github.com/spaghettifunk/vetro/std140"
)

type rendererFixture struct {
	rec     *backend.Recorder
	manager *SystemManager

	material metadata.Handle
	geometry metadata.Handle
	uniform  metadata.Handle
	texture  metadata.Handle
}

// newRendererFixture builds the smallest drawable scene: a shader pair
// with one uniform block and one sampler, a material, a triangle and a
// texture.
func newRendererFixture(t *testing.T) *rendererFixture {
	t.Helper()
	rec := backend.NewRecorder()
	manager, err := NewSystemManager(Config{}, rec)
	require.NoError(t, err)

	vert, err := manager.Shaders.Create(metadata.ShaderConfig{
		Stage:  metadata.ShaderStageVertex,
		Source: dummyVertSource,
		Bindings: []metadata.ShaderBinding{
			{
				Type:    metadata.ShaderBindingTypeUniform,
				Binding: 0,
				Fields:  []std140.Field{{Name: "tint", Type: std140.TypeVec4}},
			},
		},
	})
	require.NoError(t, err)
	frag, err := manager.Shaders.Create(metadata.ShaderConfig{
		Stage:  metadata.ShaderStageFragment,
		Source: dummyFragSource,
		Bindings: []metadata.ShaderBinding{
			{Type: metadata.ShaderBindingTypeSampler, Binding: 0},
		},
	})
	require.NoError(t, err)

	material, err := manager.Materials.Create(metadata.MaterialConfig{
		VertShader: vert,
		FragShader: frag,
	})
	require.NoError(t, err)

	// Three 2D vertices.
	positions := make([]byte, 0, 24)
	for _, v := range []float32{0, 0.5, -0.5, -0.5, 0.5, -0.5} {
		positions = binary.LittleEndian.AppendUint32(positions, math.Float32bits(v))
	}
	vbuf, err := manager.Buffers.Create(metadata.BufferConfig{Data: positions})
	require.NoError(t, err)
	ibuf, err := manager.Buffers.Create(metadata.BufferConfig{
		Target: metadata.BufferTargetIndex,
		Data:   []byte{0, 0, 1, 0, 2, 0}, // 3 u16 indices
	})
	require.NoError(t, err)
	geometry, err := manager.Geometries.Create(metadata.GeometryConfig{
		VertexBuffers: []metadata.VertexBufferLayout{{
			Buffer: vbuf,
			Attributes: []metadata.VertexAttribute{
				{Location: 0, Components: 2, Type: metadata.VertexAttributeTypeF32},
			},
		}},
		IndexBuffer: ibuf,
		IndexType:   metadata.IndexTypeU16,
	})
	require.NoError(t, err)

	layout, err := std140.Calculate([]std140.Field{{Name: "tint", Type: std140.TypeVec4}})
	require.NoError(t, err)
	uniform, err := manager.UniformData.Create(metadata.UniformDataConfig{Layout: layout})
	require.NoError(t, err)

	texture, err := manager.Textures.Create(metadata.TextureConfig{
		Width:  2,
		Height: 2,
		Data:   make([]byte, 16),
	})
	require.NoError(t, err)

	return &rendererFixture{
		rec:      rec,
		manager:  manager,
		material: material,
		geometry: geometry,
		uniform:  uniform,
		texture:  texture,
	}
}

func (f *rendererFixture) bindings() []metadata.DrawBinding {
	return []metadata.DrawBinding{
		metadata.UniformBinding(0, f.uniform),
		metadata.TextureBinding(0, f.texture),
	}
}

func TestRendererFrameProtocol(t *testing.T) {
	f := newRendererFixture(t)
	r := f.manager.Renderer

	// Nothing is legal before a frame except beginning one.
	assert.ErrorIs(t, r.BeginPass(metadata.RenderTargetBackbuffer), core.ErrProtocolViolation)
	assert.ErrorIs(t, r.EndFrame(), core.ErrProtocolViolation)
	assert.ErrorIs(t, r.EndPass(), core.ErrProtocolViolation)
	assert.ErrorIs(t, r.Draw(f.material, f.geometry, nil), core.ErrProtocolViolation)

	require.NoError(t, r.BeginFrame())
	assert.ErrorIs(t, r.BeginFrame(), core.ErrProtocolViolation)
	assert.ErrorIs(t, r.Draw(f.material, f.geometry, nil), core.ErrProtocolViolation)
	assert.ErrorIs(t, r.EndPass(), core.ErrProtocolViolation)

	require.NoError(t, r.BeginPass(metadata.RenderTargetBackbuffer))
	assert.ErrorIs(t, r.BeginPass(metadata.RenderTargetBackbuffer), core.ErrProtocolViolation)
	assert.ErrorIs(t, r.BeginFrame(), core.ErrProtocolViolation)
	assert.ErrorIs(t, r.EndFrame(), core.ErrProtocolViolation)

	require.NoError(t, r.EndPass())
	require.NoError(t, r.EndFrame())

	// A failed call leaves the state machine usable; a full new cycle
	// still works.
	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.BeginPass(metadata.RenderTargetBackbuffer))
	require.NoError(t, r.EndPass())
	require.NoError(t, r.EndFrame())
}

func TestRendererDrawScenario(t *testing.T) {
	f := newRendererFixture(t)
	r := f.manager.Renderer

	geom, ok := f.manager.Geometries.Get(f.geometry)
	require.True(t, ok)
	assert.Equal(t, uint32(3), geom.VertexCount)
	assert.Equal(t, uint32(3), geom.IndexCount)

	tint := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	require.NoError(t, f.manager.UniformData.WriteField(f.uniform, "tint", tint))

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.BeginPass(metadata.RenderTargetBackbuffer))
	require.NoError(t, r.Clear(metadata.ClearColorDepth, metadata.DefaultClearValues()))
	require.NoError(t, r.Draw(f.material, f.geometry, f.bindings()))
	require.NoError(t, r.EndPass())
	require.NoError(t, r.EndFrame())

	assert.Equal(t, 1, f.rec.DrawCount)
	assert.Equal(t, 1, f.rec.PipelineBinds)
	assert.Len(t, f.rec.CallsOf("BindUniformBuffer"), 1)
	assert.Len(t, f.rec.CallsOf("BindTexture"), 1)
	assert.Len(t, f.rec.CallsOf("Clear"), 1)

	// The dirty uniform bytes were flushed into the backing buffer.
	ud, _ := f.manager.UniformData.Get(f.uniform)
	buffer, _ := f.manager.Buffers.Get(ud.Buffer)
	assert.Equal(t, tint, f.rec.BufferContents[buffer.InternalID])
	assert.False(t, ud.Dirty)
}

func TestRendererUniformFlushCoalesces(t *testing.T) {
	f := newRendererFixture(t)
	r := f.manager.Renderer

	require.NoError(t, f.manager.UniformData.Write(f.uniform, 0, []byte{1, 2, 3, 4}))

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.BeginPass(metadata.RenderTargetBackbuffer))

	require.NoError(t, r.Draw(f.material, f.geometry, f.bindings()))
	require.NoError(t, r.Draw(f.material, f.geometry, f.bindings()))
	// One upload serves both draws; the block was only dirtied once.
	assert.Len(t, f.rec.CallsOf("BufferUpdate"), 1)

	require.NoError(t, f.manager.UniformData.Write(f.uniform, 0, []byte{9}))
	require.NoError(t, r.Draw(f.material, f.geometry, f.bindings()))
	assert.Len(t, f.rec.CallsOf("BufferUpdate"), 2)

	require.NoError(t, r.EndPass())
	require.NoError(t, r.EndFrame())
}

func TestRendererPipelineCoalescing(t *testing.T) {
	f := newRendererFixture(t)
	r := f.manager.Renderer

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.BeginPass(metadata.RenderTargetBackbuffer))
	require.NoError(t, r.Draw(f.material, f.geometry, f.bindings()))
	require.NoError(t, r.Draw(f.material, f.geometry, f.bindings()))
	assert.Equal(t, 1, f.rec.PipelineBinds)
	require.NoError(t, r.EndPass())

	// Pass boundaries invalidate pipeline state, so the next draw
	// re-applies even the same material.
	require.NoError(t, r.BeginPass(metadata.RenderTargetBackbuffer))
	require.NoError(t, r.Draw(f.material, f.geometry, f.bindings()))
	assert.Equal(t, 2, f.rec.PipelineBinds)
	require.NoError(t, r.EndPass())
	require.NoError(t, r.EndFrame())
}

func TestRendererDrawResolvesBeforeMutating(t *testing.T) {
	f := newRendererFixture(t)
	r := f.manager.Renderer

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.BeginPass(metadata.RenderTargetBackbuffer))

	// One bad binding fails the whole draw before any backend mutation.
	bad := append(f.bindings(), metadata.TextureBinding(1, metadata.NilHandle))
	assert.Error(t, r.Draw(f.material, f.geometry, bad))
	assert.Zero(t, f.rec.DrawCount)
	assert.Zero(t, f.rec.PipelineBinds)
	assert.Empty(t, f.rec.CallsOf("BindTexture"))
	assert.Empty(t, f.rec.CallsOf("BindUniformBuffer"))

	// A binding point the material never declared is also caught in the
	// resolve phase.
	undeclared := []metadata.DrawBinding{metadata.UniformBinding(3, f.uniform)}
	assert.Error(t, r.Draw(f.material, f.geometry, undeclared))
	assert.Zero(t, f.rec.PipelineBinds)

	require.NoError(t, r.EndPass())
	require.NoError(t, r.EndFrame())
}

func TestRendererDrawInvalidHandles(t *testing.T) {
	f := newRendererFixture(t)
	r := f.manager.Renderer

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.BeginPass(metadata.RenderTargetBackbuffer))

	assert.Error(t, r.Draw(metadata.NilHandle, f.geometry, nil))
	assert.Error(t, r.Draw(f.material, metadata.NilHandle, nil))

	// A destroyed geometry's stale handle is rejected like any other.
	require.True(t, f.manager.Geometries.Destroy(f.geometry))
	assert.Error(t, r.Draw(f.material, f.geometry, nil))
	assert.Zero(t, f.rec.DrawCount)

	require.NoError(t, r.EndPass())
	require.NoError(t, r.EndFrame())
}

func TestRendererDrawInstanced(t *testing.T) {
	f := newRendererFixture(t)
	r := f.manager.Renderer

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.BeginPass(metadata.RenderTargetBackbuffer))

	assert.ErrorIs(t, r.DrawInstanced(f.material, f.geometry, f.bindings(), 0), core.ErrInvalidParameter)
	require.NoError(t, r.DrawInstanced(f.material, f.geometry, f.bindings(), 5))
	assert.Equal(t, 1, f.rec.DrawCount)
	assert.Equal(t, 5, f.rec.InstanceTotal)

	require.NoError(t, r.EndPass())
	require.NoError(t, r.EndFrame())
}

func TestRendererBufferRangeBinding(t *testing.T) {
	f := newRendererFixture(t)
	r := f.manager.Renderer

	raw, err := f.manager.Buffers.Create(metadata.BufferConfig{
		Target: metadata.BufferTargetUniform,
		Size:   64,
	})
	require.NoError(t, err)

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.BeginPass(metadata.RenderTargetBackbuffer))

	bindings := append(f.bindings(), metadata.BufferBinding(2, raw, metadata.Range{Offset: 16, Length: 32}))
	require.NoError(t, r.Draw(f.material, f.geometry, bindings))
	assert.Len(t, f.rec.CallsOf("BindBufferRange"), 1)

	// A range past the buffer end fails the draw in the resolve phase.
	over := append(f.bindings(), metadata.BufferBinding(2, raw, metadata.Range{Offset: 48, Length: 32}))
	assert.Error(t, r.Draw(f.material, f.geometry, over))
	assert.Equal(t, 1, f.rec.DrawCount)

	require.NoError(t, r.EndPass())
	require.NoError(t, r.EndFrame())
}

func TestRendererBeginPassWithRenderTarget(t *testing.T) {
	f := newRendererFixture(t)
	r := f.manager.Renderer

	target, err := f.manager.RenderTargets.Create(metadata.RenderTargetConfig{
		Width:  128,
		Height: 128,
	})
	require.NoError(t, err)

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.BeginPass(target))
	require.NoError(t, r.EndPass())

	// A stale target handle fails BeginPass and the frame stays open.
	require.True(t, f.manager.RenderTargets.Destroy(target))
	assert.Error(t, r.BeginPass(target))
	require.NoError(t, r.BeginPass(metadata.RenderTargetBackbuffer))
	require.NoError(t, r.EndPass())
	require.NoError(t, r.EndFrame())
}

func TestRendererClearValidation(t *testing.T) {
	f := newRendererFixture(t)
	r := f.manager.Renderer

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.BeginPass(metadata.RenderTargetBackbuffer))
	assert.ErrorIs(t, r.Clear(0, metadata.DefaultClearValues()), core.ErrInvalidParameter)
	require.NoError(t, r.EndPass())
	require.NoError(t, r.EndFrame())
}

func TestRendererViewportAndScissor(t *testing.T) {
	f := newRendererFixture(t)
	r := f.manager.Renderer

	r.SetViewport(0, 0, 800, 600)
	r.SetScissor(10, 10, 100, 100)
	assert.Len(t, f.rec.CallsOf("SetViewport"), 1)
	assert.Len(t, f.rec.CallsOf("SetScissor"), 1)
}
