package systems

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/vetro/backend"
	"github.com/spaghettifunk/vetro/containers"
	"github.com/spaghettifunk/vetro/core"
	"github.com/spaghettifunk/vetro/metadata"
)

// GeometrySystem manages vertex layout descriptors. A geometry references
// buffers it does not own; destroying a geometry leaves its buffers alive.
type GeometrySystem struct {
	backend backend.Backend
	buffers *BufferSystem
	pool    *containers.Pool[metadata.Geometry]
}

func NewGeometrySystem(maxGeometries int, b backend.Backend, buffers *BufferSystem) (*GeometrySystem, error) {
	pool, err := containers.NewPool[metadata.Geometry](maxGeometries)
	if err != nil {
		return nil, err
	}
	g := &GeometrySystem{
		backend: b,
		buffers: buffers,
		pool:    pool,
	}
	g.pool.SetOnRemove(func(geom *metadata.Geometry) {
		g.backend.GeometryDestroy(geom)
	})
	return g, nil
}

func packedAttributeType(t metadata.VertexAttributeType) bool {
	return t == metadata.VertexAttributeTypeI10_10_10_2Norm || t == metadata.VertexAttributeTypeU10_10_10_2Norm
}

// resolveLayout fills in implicit attribute offsets and the stride of one
// vertex buffer layout. Attributes with a zero offset (other than the
// first) are placed immediately after the previous one; a zero stride
// becomes the tightly packed total.
func resolveLayout(vb *metadata.VertexBufferLayout) error {
	if len(vb.Attributes) == 0 {
		return fmt.Errorf("vertex buffer layout has no attributes")
	}
	if len(vb.Attributes) > metadata.MaxVertexAttributes {
		return fmt.Errorf("vertex buffer layout has %d attributes, maximum is %d",
			len(vb.Attributes), metadata.MaxVertexAttributes)
	}

	var cursor uint64
	seen := make(map[uint32]struct{}, len(vb.Attributes))
	for i := range vb.Attributes {
		attr := &vb.Attributes[i]
		if _, dup := seen[attr.Location]; dup {
			return fmt.Errorf("duplicate attribute location %d", attr.Location)
		}
		seen[attr.Location] = struct{}{}

		if attr.Components < 1 || attr.Components > 4 {
			return fmt.Errorf("attribute location %d: components must be in [1, 4], got %d",
				attr.Location, attr.Components)
		}
		if packedAttributeType(attr.Type) && attr.Components != 4 {
			return fmt.Errorf("attribute location %d: packed types require 4 components, got %d",
				attr.Location, attr.Components)
		}
		size := attr.Type.Size(attr.Components)
		if size == 0 {
			return fmt.Errorf("attribute location %d: invalid type %d", attr.Location, attr.Type)
		}

		if attr.Offset == 0 && i > 0 {
			attr.Offset = cursor
		}
		cursor = attr.Offset + size
	}

	if vb.Stride == 0 {
		vb.Stride = cursor
	} else if vb.Stride < cursor {
		return fmt.Errorf("stride %d is smaller than the attribute span %d", vb.Stride, cursor)
	}
	return nil
}

// Create builds a geometry over existing buffers. Vertex and index counts
// left at zero are derived from the buffer sizes; explicit counts larger
// than a buffer can supply fail creation.
func (g *GeometrySystem) Create(config metadata.GeometryConfig) (metadata.Handle, error) {
	config = config.WithDefaults()
	if config.Name == "" {
		config.Name = uuid.New().String()
	}
	if config.DrawMode < metadata.DrawModeTriangles || config.DrawMode > metadata.DrawModeLineStrip {
		err := fmt.Errorf("geometry '%s': invalid draw mode %d", config.Name, config.DrawMode)
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}
	if len(config.VertexBuffers) == 0 {
		err := fmt.Errorf("geometry '%s': at least one vertex buffer is required", config.Name)
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}
	if len(config.VertexBuffers) > metadata.MaxVertexBuffers {
		err := fmt.Errorf("geometry '%s': %d vertex buffers, maximum is %d",
			config.Name, len(config.VertexBuffers), metadata.MaxVertexBuffers)
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}

	geometry := metadata.Geometry{
		Name:              config.Name,
		DrawMode:          config.DrawMode,
		VertexBuffers:     make([]metadata.VertexBufferLayout, len(config.VertexBuffers)),
		IndexBuffer:       config.IndexBuffer,
		IndexType:         config.IndexType,
		IndexBufferOffset: config.IndexBufferOffset,
		VertexCount:       config.VertexCount,
		IndexCount:        config.IndexCount,
	}
	copy(geometry.VertexBuffers, config.VertexBuffers)

	vertexBuffers := make([]*metadata.Buffer, len(geometry.VertexBuffers))
	for i := range geometry.VertexBuffers {
		vb := &geometry.VertexBuffers[i]
		buffer, ok := g.buffers.Get(vb.Buffer)
		if !ok {
			err := fmt.Errorf("geometry '%s': invalid buffer handle %d in vertex buffer %d",
				config.Name, vb.Buffer, i)
			core.LogError(err.Error())
			return metadata.NilHandle, err
		}
		if err := resolveLayout(vb); err != nil {
			err = fmt.Errorf("geometry '%s': vertex buffer %d: %w", config.Name, i, err)
			core.LogError(err.Error())
			return metadata.NilHandle, err
		}

		derived := uint32(buffer.Size / vb.Stride)
		if geometry.VertexCount == 0 {
			geometry.VertexCount = derived
		} else if geometry.VertexCount > derived {
			err := fmt.Errorf("geometry '%s': vertex count %d exceeds the %d vertices buffer '%s' holds",
				config.Name, geometry.VertexCount, derived, buffer.Name)
			core.LogError(err.Error())
			return metadata.NilHandle, err
		}
		vertexBuffers[i] = buffer
	}

	var indexBuffer *metadata.Buffer
	if !config.IndexBuffer.IsNil() {
		indexSize := config.IndexType.Size()
		if indexSize == 0 {
			err := fmt.Errorf("geometry '%s': an index buffer requires an index type", config.Name)
			core.LogError(err.Error())
			return metadata.NilHandle, err
		}
		buffer, ok := g.buffers.Get(config.IndexBuffer)
		if !ok {
			err := fmt.Errorf("geometry '%s': invalid index buffer handle %d", config.Name, config.IndexBuffer)
			core.LogError(err.Error())
			return metadata.NilHandle, err
		}
		if config.IndexBufferOffset >= buffer.Size {
			err := fmt.Errorf("geometry '%s': index buffer offset %d is past buffer size %d",
				config.Name, config.IndexBufferOffset, buffer.Size)
			core.LogError(err.Error())
			return metadata.NilHandle, err
		}

		derived := uint32((buffer.Size - config.IndexBufferOffset) / indexSize)
		if geometry.IndexCount == 0 {
			geometry.IndexCount = derived
		} else if geometry.IndexCount > derived {
			err := fmt.Errorf("geometry '%s': index count %d exceeds the %d indices buffer '%s' holds",
				config.Name, geometry.IndexCount, derived, buffer.Name)
			core.LogError(err.Error())
			return metadata.NilHandle, err
		}
		indexBuffer = buffer
	}

	if err := g.backend.GeometryCreate(&geometry, vertexBuffers, indexBuffer); err != nil {
		err = fmt.Errorf("failed to create geometry '%s': %w", config.Name, err)
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}

	h, err := g.pool.Insert(geometry)
	if err != nil {
		g.backend.GeometryDestroy(&geometry)
		return metadata.NilHandle, err
	}
	core.LogDebug("created geometry '%s' (%d vertices, %d indices)",
		config.Name, geometry.VertexCount, geometry.IndexCount)
	return h, nil
}

// Get returns the geometry for a handle, or false for a nil or stale
// handle.
func (g *GeometrySystem) Get(h metadata.Handle) (*metadata.Geometry, bool) {
	return g.pool.Get(h)
}

// Destroy releases the geometry. Its buffers are not touched. Returns
// false for a nil or stale handle.
func (g *GeometrySystem) Destroy(h metadata.Handle) bool {
	return g.pool.Remove(h)
}

// Shutdown destroys every live geometry.
func (g *GeometrySystem) Shutdown() {
	for _, h := range g.pool.Handles() {
		g.pool.Remove(h)
	}
}
