package systems

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/vetro/backend"
	"github.com/spaghettifunk/vetro/containers"
	"github.com/spaghettifunk/vetro/core"
	"github.com/spaghettifunk/vetro/metadata"
)

// RenderTargetSystem manages off-screen render targets. The backbuffer is
// the nil handle and never lives in the pool.
type RenderTargetSystem struct {
	backend backend.Backend
	pool    *containers.Pool[metadata.RenderTarget]
}

func NewRenderTargetSystem(maxRenderTargets int, b backend.Backend) (*RenderTargetSystem, error) {
	pool, err := containers.NewPool[metadata.RenderTarget](maxRenderTargets)
	if err != nil {
		return nil, err
	}
	r := &RenderTargetSystem{
		backend: b,
		pool:    pool,
	}
	r.pool.SetOnRemove(func(rt *metadata.RenderTarget) {
		r.backend.RenderTargetDestroy(rt)
	})
	return r, nil
}

// Create allocates an off-screen target with the given attachments.
func (r *RenderTargetSystem) Create(config metadata.RenderTargetConfig) (metadata.Handle, error) {
	config = config.WithDefaults()
	if config.Name == "" {
		config.Name = uuid.New().String()
	}
	if config.Width == 0 || config.Height == 0 {
		err := fmt.Errorf("render target '%s': dimensions must be non-zero, got %dx%d",
			config.Name, config.Width, config.Height)
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}
	if len(config.ColorFormats) > metadata.MaxColorFormats {
		err := fmt.Errorf("render target '%s': %d color attachments, maximum is %d",
			config.Name, len(config.ColorFormats), metadata.MaxColorFormats)
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}
	for i, f := range config.ColorFormats {
		if f <= metadata.PixelFormatDefault || f > metadata.PixelFormatDepth24Stencil8 || f.IsDepth() {
			err := fmt.Errorf("render target '%s': invalid color format %d at attachment %d", config.Name, f, i)
			core.LogError(err.Error())
			return metadata.NilHandle, err
		}
	}
	if !config.DepthFormat.IsDepth() {
		err := fmt.Errorf("render target '%s': %d is not a depth format", config.Name, config.DepthFormat)
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}

	target := metadata.RenderTarget{
		Name:         config.Name,
		Width:        config.Width,
		Height:       config.Height,
		ColorFormats: config.ColorFormats,
		DepthFormat:  config.DepthFormat,
		Samples:      config.Samples,
	}
	if err := r.backend.RenderTargetCreate(&target); err != nil {
		err = fmt.Errorf("failed to create render target '%s': %w", config.Name, err)
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}

	h, err := r.pool.Insert(target)
	if err != nil {
		r.backend.RenderTargetDestroy(&target)
		return metadata.NilHandle, err
	}
	core.LogDebug("created render target '%s' (%dx%d)", config.Name, config.Width, config.Height)
	return h, nil
}

// Get returns the render target for a handle, or false for a nil or stale
// handle. The backbuffer handle returns false: it has no descriptor.
func (r *RenderTargetSystem) Get(h metadata.Handle) (*metadata.RenderTarget, bool) {
	return r.pool.Get(h)
}

// Destroy releases the render target. Returns false for a nil or stale
// handle.
func (r *RenderTargetSystem) Destroy(h metadata.Handle) bool {
	return r.pool.Remove(h)
}

// Shutdown destroys every live render target.
func (r *RenderTargetSystem) Shutdown() {
	for _, h := range r.pool.Handles() {
		r.pool.Remove(h)
	}
}
