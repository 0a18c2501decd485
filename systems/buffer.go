package systems

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/vetro/backend"
	"github.com/spaghettifunk/vetro/containers"
	"github.com/spaghettifunk/vetro/core"
	"github.com/spaghettifunk/vetro/metadata"
)

// BufferSystem manages raw GPU buffers. Buffers are fixed-size: there is no
// resize, only updates within the allocated size and whole-buffer orphaning.
type BufferSystem struct {
	backend backend.Backend
	pool    *containers.Pool[metadata.Buffer]
}

func NewBufferSystem(maxBuffers int, b backend.Backend) (*BufferSystem, error) {
	pool, err := containers.NewPool[metadata.Buffer](maxBuffers)
	if err != nil {
		return nil, err
	}
	s := &BufferSystem{
		backend: b,
		pool:    pool,
	}
	s.pool.SetOnRemove(func(buf *metadata.Buffer) {
		s.backend.BufferDestroy(buf)
	})
	return s, nil
}

// Create allocates a buffer, optionally uploading initial data.
func (s *BufferSystem) Create(config metadata.BufferConfig) (metadata.Handle, error) {
	config = config.WithDefaults()
	if config.Name == "" {
		config.Name = uuid.New().String()
	}
	if config.Target < metadata.BufferTargetArray || config.Target > metadata.BufferTargetUniform {
		err := fmt.Errorf("buffer '%s': invalid target %d", config.Name, config.Target)
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}
	if config.Usage < metadata.BufferUsageHintStatic || config.Usage > metadata.BufferUsageHintStream {
		err := fmt.Errorf("buffer '%s': invalid usage hint %d", config.Name, config.Usage)
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}
	if config.Size == 0 {
		core.LogWarn("creating empty buffer '%s'", config.Name)
	}
	if uint64(len(config.Data)) > config.Size {
		err := fmt.Errorf("buffer '%s': initial data (%d bytes) exceeds size %d", config.Name, len(config.Data), config.Size)
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}

	buffer := metadata.Buffer{
		Name:   config.Name,
		Target: config.Target,
		Usage:  config.Usage,
		Size:   config.Size,
	}
	if err := s.backend.BufferCreate(&buffer, config.Data); err != nil {
		err = fmt.Errorf("failed to create buffer '%s': %w", config.Name, err)
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}

	h, err := s.pool.Insert(buffer)
	if err != nil {
		s.backend.BufferDestroy(&buffer)
		return metadata.NilHandle, err
	}
	core.LogDebug("created buffer '%s' (%d bytes)", config.Name, config.Size)
	return h, nil
}

// Get returns the buffer for a handle, or false for a nil or stale handle.
func (s *BufferSystem) Get(h metadata.Handle) (*metadata.Buffer, bool) {
	return s.pool.Get(h)
}

// Update writes data into the buffer at the given offset. A nil data slice
// orphans the buffer instead: contents are discarded and storage of the
// same size is reallocated, so pending GPU reads of the old contents are
// not stalled on. Writes past the end are clamped to the buffer size with
// a warning.
func (s *BufferSystem) Update(h metadata.Handle, offset uint64, data []byte) error {
	buffer, ok := s.pool.Get(h)
	if !ok {
		err := fmt.Errorf("invalid buffer handle %d: %w", h, core.ErrInvalidHandle)
		core.LogError(err.Error())
		return err
	}

	if data == nil {
		if err := s.backend.BufferOrphan(buffer); err != nil {
			err = fmt.Errorf("failed to orphan buffer '%s': %w", buffer.Name, err)
			core.LogError(err.Error())
			return err
		}
		return nil
	}

	if offset >= buffer.Size {
		core.LogWarn("update of buffer '%s' at offset %d is past its size %d, nothing written",
			buffer.Name, offset, buffer.Size)
		return nil
	}
	length := uint64(len(data))
	if offset+length > buffer.Size {
		length = buffer.Size - offset
		core.LogWarn("update of buffer '%s' clamped from %d to %d bytes", buffer.Name, len(data), length)
	}
	if err := s.backend.BufferUpdate(buffer, offset, data[:length]); err != nil {
		err = fmt.Errorf("failed to update buffer '%s': %w", buffer.Name, err)
		core.LogError(err.Error())
		return err
	}
	return nil
}

// Destroy releases the buffer. Returns false for a nil or stale handle.
func (s *BufferSystem) Destroy(h metadata.Handle) bool {
	return s.pool.Remove(h)
}

// Shutdown destroys every live buffer.
func (s *BufferSystem) Shutdown() {
	for _, h := range s.pool.Handles() {
		s.pool.Remove(h)
	}
}
