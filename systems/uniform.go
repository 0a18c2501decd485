package systems

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/vetro/backend"
	"github.com/spaghettifunk/vetro/containers"
	"github.com/spaghettifunk/vetro/core"
	"github.com/spaghettifunk/vetro/metadata"
)

// UniformDataSystem manages CPU-shadowed uniform blocks. Every block owns a
// backing uniform buffer; writes only touch the CPU shadow and set a dirty
// flag, and the renderer flushes dirty bytes to the backend right before
// the block is bound for a draw. Repeated writes within a frame therefore
// coalesce into a single upload.
type UniformDataSystem struct {
	backend backend.Backend
	buffers *BufferSystem
	pool    *containers.Pool[metadata.UniformData]
}

func NewUniformDataSystem(maxUniformData int, b backend.Backend, buffers *BufferSystem) (*UniformDataSystem, error) {
	pool, err := containers.NewPool[metadata.UniformData](maxUniformData)
	if err != nil {
		return nil, err
	}
	u := &UniformDataSystem{
		backend: b,
		buffers: buffers,
		pool:    pool,
	}
	u.pool.SetOnRemove(func(ud *metadata.UniformData) {
		u.buffers.Destroy(ud.Buffer)
	})
	return u, nil
}

func bufferUsageFor(hint metadata.UniformDataUsageHint) metadata.BufferUsageHint {
	switch hint {
	case metadata.UniformDataUsageHintConstant:
		return metadata.BufferUsageHintStatic
	case metadata.UniformDataUsageHintDraw:
		return metadata.BufferUsageHintStream
	default:
		return metadata.BufferUsageHintDynamic
	}
}

// Create allocates a uniform block and its backing buffer. The size comes
// from the layout when one is given, otherwise Size must be set.
func (u *UniformDataSystem) Create(config metadata.UniformDataConfig) (metadata.Handle, error) {
	config = config.WithDefaults()
	if config.Name == "" {
		config.Name = uuid.New().String()
	}
	if config.UsageHint < metadata.UniformDataUsageHintConstant || config.UsageHint > metadata.UniformDataUsageHintDraw {
		err := fmt.Errorf("uniform data '%s': invalid usage hint %d", config.Name, config.UsageHint)
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}
	if config.Size == 0 {
		err := fmt.Errorf("uniform data '%s': either a layout or a non-zero size is required", config.Name)
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}

	bufHandle, err := u.buffers.Create(metadata.BufferConfig{
		Target: metadata.BufferTargetUniform,
		Usage:  bufferUsageFor(config.UsageHint),
		Size:   config.Size,
		Name:   config.Name + "-ubo",
	})
	if err != nil {
		return metadata.NilHandle, err
	}

	data := metadata.UniformData{
		Name:      config.Name,
		Usage:     config.UsageHint,
		Layout:    config.Layout,
		CPUBuffer: make([]byte, config.Size),
		Buffer:    bufHandle,
		BufferRange: metadata.Range{
			Offset: 0,
			Length: config.Size,
		},
	}

	h, err := u.pool.Insert(data)
	if err != nil {
		u.buffers.Destroy(bufHandle)
		return metadata.NilHandle, err
	}
	core.LogDebug("created uniform data '%s' (%d bytes)", config.Name, config.Size)
	return h, nil
}

// Get returns the uniform block for a handle, or false for a nil or stale
// handle.
func (u *UniformDataSystem) Get(h metadata.Handle) (*metadata.UniformData, bool) {
	return u.pool.Get(h)
}

// Write copies data into the CPU shadow at the given offset and marks the
// block dirty. Writes past the end are clamped with a warning.
func (u *UniformDataSystem) Write(h metadata.Handle, offset uint64, data []byte) error {
	ud, ok := u.pool.Get(h)
	if !ok {
		err := fmt.Errorf("invalid uniform data handle %d: %w", h, core.ErrInvalidHandle)
		core.LogError(err.Error())
		return err
	}

	size := uint64(len(ud.CPUBuffer))
	if offset >= size {
		core.LogWarn("write to uniform data '%s' at offset %d is past its size %d, nothing written",
			ud.Name, offset, size)
		return nil
	}
	length := uint64(len(data))
	if offset+length > size {
		length = size - offset
		core.LogWarn("write to uniform data '%s' clamped from %d to %d bytes", ud.Name, len(data), length)
	}
	copy(ud.CPUBuffer[offset:], data[:length])
	ud.Dirty = true
	return nil
}

// WriteField writes one named field of the block's std140 layout. The
// block must have been created with a layout.
func (u *UniformDataSystem) WriteField(h metadata.Handle, name string, data []byte) error {
	ud, ok := u.pool.Get(h)
	if !ok {
		err := fmt.Errorf("invalid uniform data handle %d: %w", h, core.ErrInvalidHandle)
		core.LogError(err.Error())
		return err
	}
	if ud.Layout == nil {
		err := fmt.Errorf("uniform data '%s' has no layout, write by offset instead", ud.Name)
		core.LogError(err.Error())
		return err
	}
	field, ok := ud.Layout.FieldByName(name)
	if !ok {
		err := fmt.Errorf("uniform data '%s' has no field '%s'", ud.Name, name)
		core.LogError(err.Error())
		return err
	}
	if uint64(len(data)) > uint64(field.Size) {
		err := fmt.Errorf("uniform data '%s': %d bytes do not fit field '%s' (%d bytes)",
			ud.Name, len(data), name, field.Size)
		core.LogError(err.Error())
		return err
	}
	copy(ud.CPUBuffer[field.Offset:], data)
	ud.Dirty = true
	return nil
}

// Data returns the CPU shadow for direct mutation and marks the block
// dirty, since the caller is assumed to write through the slice.
func (u *UniformDataSystem) Data(h metadata.Handle) ([]byte, error) {
	ud, ok := u.pool.Get(h)
	if !ok {
		err := fmt.Errorf("invalid uniform data handle %d: %w", h, core.ErrInvalidHandle)
		core.LogError(err.Error())
		return nil, err
	}
	ud.Dirty = true
	return ud.CPUBuffer, nil
}

// Touch marks the block dirty without writing, forcing a flush on the next
// bind.
func (u *UniformDataSystem) Touch(h metadata.Handle) error {
	ud, ok := u.pool.Get(h)
	if !ok {
		err := fmt.Errorf("invalid uniform data handle %d: %w", h, core.ErrInvalidHandle)
		core.LogError(err.Error())
		return err
	}
	ud.Dirty = true
	return nil
}

// flush uploads the CPU shadow to the backing buffer if the block is
// dirty. Called by the renderer right before the block is bound.
func (u *UniformDataSystem) flush(ud *metadata.UniformData) error {
	if !ud.Dirty {
		return nil
	}
	buffer, ok := u.buffers.Get(ud.Buffer)
	if !ok {
		return fmt.Errorf("uniform data '%s' lost its backing buffer", ud.Name)
	}
	if err := u.backend.BufferUpdate(buffer, ud.BufferRange.Offset, ud.CPUBuffer); err != nil {
		return fmt.Errorf("failed to flush uniform data '%s': %w", ud.Name, err)
	}
	ud.Dirty = false
	return nil
}

// Destroy releases the block and its backing buffer. Returns false for a
// nil or stale handle.
func (u *UniformDataSystem) Destroy(h metadata.Handle) bool {
	return u.pool.Remove(h)
}

// Shutdown destroys every live uniform block.
func (u *UniformDataSystem) Shutdown() {
	for _, h := range u.pool.Handles() {
		u.pool.Remove(h)
	}
}
