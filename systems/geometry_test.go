package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/vetro/backend"
	"github.com/spaghettifunk/vetro/metadata"
)

func newGeometrySystem(t *testing.T) (*GeometrySystem, *BufferSystem, *backend.Recorder) {
	t.Helper()
	rec := backend.NewRecorder()
	buffers, err := NewBufferSystem(16, rec)
	require.NoError(t, err)
	geometries, err := NewGeometrySystem(16, rec, buffers)
	require.NoError(t, err)
	return geometries, buffers, rec
}

// positionColorLayout is 3 float positions plus 4 float colors, 28 bytes
// per vertex.
func positionColorLayout(buffer metadata.Handle) metadata.VertexBufferLayout {
	return metadata.VertexBufferLayout{
		Buffer: buffer,
		Attributes: []metadata.VertexAttribute{
			{Location: 0, Components: 3, Type: metadata.VertexAttributeTypeF32},
			{Location: 1, Components: 4, Type: metadata.VertexAttributeTypeF32},
		},
	}
}

func TestGeometryCreateInfersLayout(t *testing.T) {
	geometries, buffers, _ := newGeometrySystem(t)

	// 3 vertices of 28 bytes.
	vbuf, err := buffers.Create(metadata.BufferConfig{Size: 84})
	require.NoError(t, err)

	h, err := geometries.Create(metadata.GeometryConfig{
		VertexBuffers: []metadata.VertexBufferLayout{positionColorLayout(vbuf)},
	})
	require.NoError(t, err)

	geom, ok := geometries.Get(h)
	require.True(t, ok)
	assert.Equal(t, metadata.DrawModeTriangles, geom.DrawMode)
	assert.Equal(t, uint32(3), geom.VertexCount)
	assert.Equal(t, uint32(0), geom.IndexCount)

	vb := geom.VertexBuffers[0]
	assert.Equal(t, uint64(28), vb.Stride)
	assert.Equal(t, uint64(0), vb.Attributes[0].Offset)
	assert.Equal(t, uint64(12), vb.Attributes[1].Offset)
}

func TestGeometryCreateWithIndexBuffer(t *testing.T) {
	geometries, buffers, _ := newGeometrySystem(t)

	vbuf, err := buffers.Create(metadata.BufferConfig{Size: 84})
	require.NoError(t, err)
	// 6 u16 indices after a 4 byte header.
	ibuf, err := buffers.Create(metadata.BufferConfig{
		Target: metadata.BufferTargetIndex,
		Size:   16,
	})
	require.NoError(t, err)

	h, err := geometries.Create(metadata.GeometryConfig{
		VertexBuffers:     []metadata.VertexBufferLayout{positionColorLayout(vbuf)},
		IndexBuffer:       ibuf,
		IndexType:         metadata.IndexTypeU16,
		IndexBufferOffset: 4,
	})
	require.NoError(t, err)

	geom, _ := geometries.Get(h)
	assert.Equal(t, uint32(6), geom.IndexCount)
}

func TestGeometryCreateExplicitCounts(t *testing.T) {
	geometries, buffers, _ := newGeometrySystem(t)

	vbuf, err := buffers.Create(metadata.BufferConfig{Size: 84})
	require.NoError(t, err)

	h, err := geometries.Create(metadata.GeometryConfig{
		VertexBuffers: []metadata.VertexBufferLayout{positionColorLayout(vbuf)},
		VertexCount:   2,
	})
	require.NoError(t, err)
	geom, _ := geometries.Get(h)
	assert.Equal(t, uint32(2), geom.VertexCount)

	// Asking for more vertices than the buffer holds fails.
	_, err = geometries.Create(metadata.GeometryConfig{
		VertexBuffers: []metadata.VertexBufferLayout{positionColorLayout(vbuf)},
		VertexCount:   4,
	})
	assert.Error(t, err)
}

func TestGeometryCreateIndexCountOverflow(t *testing.T) {
	geometries, buffers, _ := newGeometrySystem(t)

	vbuf, err := buffers.Create(metadata.BufferConfig{Size: 84})
	require.NoError(t, err)
	ibuf, err := buffers.Create(metadata.BufferConfig{Target: metadata.BufferTargetIndex, Size: 12})
	require.NoError(t, err)

	_, err = geometries.Create(metadata.GeometryConfig{
		VertexBuffers: []metadata.VertexBufferLayout{positionColorLayout(vbuf)},
		IndexBuffer:   ibuf,
		IndexType:     metadata.IndexTypeU16,
		IndexCount:    7,
	})
	assert.Error(t, err)
}

func TestGeometryCreateIndexBufferNeedsType(t *testing.T) {
	geometries, buffers, _ := newGeometrySystem(t)

	vbuf, err := buffers.Create(metadata.BufferConfig{Size: 84})
	require.NoError(t, err)
	ibuf, err := buffers.Create(metadata.BufferConfig{Target: metadata.BufferTargetIndex, Size: 12})
	require.NoError(t, err)

	_, err = geometries.Create(metadata.GeometryConfig{
		VertexBuffers: []metadata.VertexBufferLayout{positionColorLayout(vbuf)},
		IndexBuffer:   ibuf,
	})
	assert.Error(t, err)
}

func TestGeometryCreateAttributeValidation(t *testing.T) {
	geometries, buffers, _ := newGeometrySystem(t)

	vbuf, err := buffers.Create(metadata.BufferConfig{Size: 64})
	require.NoError(t, err)

	// No attributes.
	_, err = geometries.Create(metadata.GeometryConfig{
		VertexBuffers: []metadata.VertexBufferLayout{{Buffer: vbuf}},
	})
	assert.Error(t, err)

	// Component count out of range.
	_, err = geometries.Create(metadata.GeometryConfig{
		VertexBuffers: []metadata.VertexBufferLayout{{
			Buffer: vbuf,
			Attributes: []metadata.VertexAttribute{
				{Location: 0, Components: 5, Type: metadata.VertexAttributeTypeF32},
			},
		}},
	})
	assert.Error(t, err)

	// Packed formats require 4 components.
	_, err = geometries.Create(metadata.GeometryConfig{
		VertexBuffers: []metadata.VertexBufferLayout{{
			Buffer: vbuf,
			Attributes: []metadata.VertexAttribute{
				{Location: 0, Components: 3, Type: metadata.VertexAttributeTypeU10_10_10_2Norm},
			},
		}},
	})
	assert.Error(t, err)

	// Duplicate locations.
	_, err = geometries.Create(metadata.GeometryConfig{
		VertexBuffers: []metadata.VertexBufferLayout{{
			Buffer: vbuf,
			Attributes: []metadata.VertexAttribute{
				{Location: 0, Components: 2, Type: metadata.VertexAttributeTypeF32},
				{Location: 0, Components: 2, Type: metadata.VertexAttributeTypeF32},
			},
		}},
	})
	assert.Error(t, err)

	// Stride smaller than the attributes it must cover.
	_, err = geometries.Create(metadata.GeometryConfig{
		VertexBuffers: []metadata.VertexBufferLayout{{
			Buffer: vbuf,
			Stride: 4,
			Attributes: []metadata.VertexAttribute{
				{Location: 0, Components: 3, Type: metadata.VertexAttributeTypeF32},
			},
		}},
	})
	assert.Error(t, err)
}

func TestGeometryCreateInvalidBufferHandle(t *testing.T) {
	geometries, _, _ := newGeometrySystem(t)

	_, err := geometries.Create(metadata.GeometryConfig{
		VertexBuffers: []metadata.VertexBufferLayout{positionColorLayout(metadata.NilHandle)},
	})
	assert.Error(t, err)
}

func TestGeometryDestroyLeavesBuffersAlive(t *testing.T) {
	geometries, buffers, rec := newGeometrySystem(t)

	vbuf, err := buffers.Create(metadata.BufferConfig{Size: 84})
	require.NoError(t, err)
	h, err := geometries.Create(metadata.GeometryConfig{
		VertexBuffers: []metadata.VertexBufferLayout{positionColorLayout(vbuf)},
	})
	require.NoError(t, err)

	assert.True(t, geometries.Destroy(h))
	_, ok := buffers.Get(vbuf)
	assert.True(t, ok)
	assert.Len(t, rec.CallsOf("GeometryDestroy"), 1)
	assert.Empty(t, rec.CallsOf("BufferDestroy"))
}
