package systems

import (
	"fmt"

	"github.com/spaghettifunk/vetro/backend"
	"github.com/spaghettifunk/vetro/core"
	"github.com/spaghettifunk/vetro/metadata"
)

type renderState int

const (
	stateIdle renderState = iota
	stateFrameOpen
	statePassOpen
)

func (s renderState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateFrameOpen:
		return "frame open"
	case statePassOpen:
		return "pass open"
	default:
		return "invalid"
	}
}

// RendererSystem drives frames and passes and submits draws. It enforces
// the begin-frame / begin-pass / draw / end-pass / end-frame protocol: a
// call made in the wrong state logs an error and does nothing, leaving the
// state untouched.
//
// Draws are resolved in two phases. Every handle in the call, including
// every binding, is validated before any backend state changes, so a draw
// that fails leaves the pass exactly as it was.
type RendererSystem struct {
	backend    backend.Backend
	materials  *MaterialSystem
	geometries *GeometrySystem
	uniforms   *UniformDataSystem
	textures   *TextureSystem
	buffers    *BufferSystem
	targets    *RenderTargetSystem

	state renderState
	// boundMaterial coalesces pipeline state: applying the same material
	// twice in a row is skipped. Reset at every pass boundary because the
	// backend's pass setup invalidates pipeline state.
	boundMaterial metadata.Handle
	currentTarget metadata.Handle
}

func NewRendererSystem(
	b backend.Backend,
	materials *MaterialSystem,
	geometries *GeometrySystem,
	uniforms *UniformDataSystem,
	textures *TextureSystem,
	buffers *BufferSystem,
	targets *RenderTargetSystem,
) *RendererSystem {
	return &RendererSystem{
		backend:    b,
		materials:  materials,
		geometries: geometries,
		uniforms:   uniforms,
		textures:   textures,
		buffers:    buffers,
		targets:    targets,
		state:      stateIdle,
	}
}

func (r *RendererSystem) protocolViolation(call string) error {
	err := fmt.Errorf("%s called with %s: %w", call, r.state, core.ErrProtocolViolation)
	core.LogError(err.Error())
	return err
}

// BeginFrame opens a new frame. Fails if a frame is already open.
func (r *RendererSystem) BeginFrame() error {
	if r.state != stateIdle {
		return r.protocolViolation("BeginFrame")
	}
	r.state = stateFrameOpen
	return nil
}

// BeginPass opens a pass rendering into the given target, or into the
// backbuffer for metadata.RenderTargetBackbuffer. Passes never nest.
func (r *RendererSystem) BeginPass(target metadata.Handle) error {
	if r.state != stateFrameOpen {
		return r.protocolViolation("BeginPass")
	}

	var rt *metadata.RenderTarget
	if target != metadata.RenderTargetBackbuffer {
		var ok bool
		rt, ok = r.targets.Get(target)
		if !ok {
			err := fmt.Errorf("invalid render target handle %d: %w", target, core.ErrInvalidHandle)
			core.LogError(err.Error())
			return err
		}
	}
	if err := r.backend.BeginPass(rt); err != nil {
		err = fmt.Errorf("failed to begin pass: %w", err)
		core.LogError(err.Error())
		return err
	}
	r.state = statePassOpen
	r.currentTarget = target
	r.boundMaterial = metadata.NilHandle
	return nil
}

// Clear clears the selected aspects of the current pass target.
func (r *RendererSystem) Clear(mask metadata.ClearMask, values metadata.ClearValues) error {
	if r.state != statePassOpen {
		return r.protocolViolation("Clear")
	}
	if mask == 0 {
		err := fmt.Errorf("clear mask must select at least one aspect: %w", core.ErrInvalidParameter)
		core.LogError(err.Error())
		return err
	}
	r.backend.Clear(mask, values)
	return nil
}

// resolvedBinding is one draw binding with every handle dereferenced and
// its backend location looked up, ready to issue.
type resolvedBinding struct {
	src      metadata.DrawBinding
	location uint32
	uniform  *metadata.UniformData
	texture  *metadata.Texture
	buffer   *metadata.Buffer
	rng      metadata.Range
}

// resolveBindings validates the whole binding list against the material
// without touching the backend. Uniform blocks and textures must be
// declared by one of the material's shaders; raw buffer ranges bind at the
// caller's binding point directly.
func (r *RendererSystem) resolveBindings(mat *metadata.Material, bindings []metadata.DrawBinding) ([]resolvedBinding, error) {
	resolved := make([]resolvedBinding, 0, len(bindings))
	for _, b := range bindings {
		rb := resolvedBinding{src: b}
		switch b.Type {
		case metadata.BindingTypeUniformData:
			ud, ok := r.uniforms.Get(b.Handle)
			if !ok {
				return nil, fmt.Errorf("invalid uniform data handle %d at binding %d", b.Handle, b.Binding)
			}
			buffer, ok := r.buffers.Get(ud.Buffer)
			if !ok {
				return nil, fmt.Errorf("uniform data '%s' lost its backing buffer", ud.Name)
			}
			loc, ok := mat.BindingLocation(metadata.ShaderBindingTypeUniform, b.Binding)
			if !ok {
				return nil, fmt.Errorf("material '%s' declares no uniform block at binding %d", mat.Name, b.Binding)
			}
			rb.uniform = ud
			rb.buffer = buffer
			rb.location = loc
			rb.rng = ud.BufferRange

		case metadata.BindingTypeTexture:
			tex, ok := r.textures.Get(b.Handle)
			if !ok {
				return nil, fmt.Errorf("invalid texture handle %d at binding %d", b.Handle, b.Binding)
			}
			loc, ok := mat.BindingLocation(metadata.ShaderBindingTypeSampler, b.Binding)
			if !ok {
				return nil, fmt.Errorf("material '%s' declares no sampler at binding %d", mat.Name, b.Binding)
			}
			rb.texture = tex
			rb.location = loc

		case metadata.BindingTypeBuffer:
			buffer, ok := r.buffers.Get(b.Handle)
			if !ok {
				return nil, fmt.Errorf("invalid buffer handle %d at binding %d", b.Handle, b.Binding)
			}
			rng := b.Range
			if rng.Length == 0 {
				rng = metadata.Range{Offset: 0, Length: buffer.Size}
			}
			if rng.Offset+rng.Length > buffer.Size {
				return nil, fmt.Errorf("binding %d: range [%d, %d) exceeds buffer '%s' size %d",
					b.Binding, rng.Offset, rng.Offset+rng.Length, buffer.Name, buffer.Size)
			}
			rb.buffer = buffer
			rb.location = b.Binding
			rb.rng = rng

		default:
			return nil, fmt.Errorf("invalid binding type %d at binding %d", b.Type, b.Binding)
		}
		resolved = append(resolved, rb)
	}
	return resolved, nil
}

// Draw submits a single draw of the geometry with the material and
// bindings.
func (r *RendererSystem) Draw(material, geometry metadata.Handle, bindings []metadata.DrawBinding) error {
	return r.draw(material, geometry, bindings, 1)
}

// DrawInstanced submits instanceCount instances in one draw.
func (r *RendererSystem) DrawInstanced(material, geometry metadata.Handle, bindings []metadata.DrawBinding, instanceCount uint32) error {
	if instanceCount == 0 {
		err := fmt.Errorf("instance count must be non-zero: %w", core.ErrInvalidParameter)
		core.LogError(err.Error())
		return err
	}
	return r.draw(material, geometry, bindings, instanceCount)
}

func (r *RendererSystem) draw(material, geometry metadata.Handle, bindings []metadata.DrawBinding, instanceCount uint32) error {
	if r.state != statePassOpen {
		return r.protocolViolation("Draw")
	}

	mat, ok := r.materials.Get(material)
	if !ok {
		err := fmt.Errorf("invalid material handle %d: %w", material, core.ErrInvalidHandle)
		core.LogError(err.Error())
		return err
	}
	geom, ok := r.geometries.Get(geometry)
	if !ok {
		err := fmt.Errorf("invalid geometry handle %d: %w", geometry, core.ErrInvalidHandle)
		core.LogError(err.Error())
		return err
	}
	resolved, err := r.resolveBindings(mat, bindings)
	if err != nil {
		core.LogError(err.Error())
		return err
	}

	// Everything is validated; backend mutation starts here.
	if r.boundMaterial != material {
		if err := r.backend.ApplyPipeline(mat); err != nil {
			err = fmt.Errorf("failed to apply material '%s': %w", mat.Name, err)
			core.LogError(err.Error())
			return err
		}
		r.boundMaterial = material
	}

	for i := range resolved {
		rb := &resolved[i]
		switch rb.src.Type {
		case metadata.BindingTypeUniformData:
			if err := r.uniforms.flush(rb.uniform); err != nil {
				core.LogError(err.Error())
				return err
			}
			if err := r.backend.BindUniformBuffer(rb.location, rb.buffer, rb.rng); err != nil {
				err = fmt.Errorf("failed to bind uniform data '%s': %w", rb.uniform.Name, err)
				core.LogError(err.Error())
				return err
			}
		case metadata.BindingTypeTexture:
			if err := r.backend.BindTexture(rb.location, rb.texture); err != nil {
				err = fmt.Errorf("failed to bind texture '%s': %w", rb.texture.Name, err)
				core.LogError(err.Error())
				return err
			}
		case metadata.BindingTypeBuffer:
			if err := r.backend.BindBufferRange(rb.location, rb.buffer, rb.rng); err != nil {
				err = fmt.Errorf("failed to bind buffer '%s': %w", rb.buffer.Name, err)
				core.LogError(err.Error())
				return err
			}
		}
	}

	if err := r.backend.Draw(geom, instanceCount); err != nil {
		err = fmt.Errorf("failed to draw geometry '%s': %w", geom.Name, err)
		core.LogError(err.Error())
		return err
	}
	return nil
}

// EndPass closes the current pass, flushing its queued work.
func (r *RendererSystem) EndPass() error {
	if r.state != statePassOpen {
		return r.protocolViolation("EndPass")
	}
	r.backend.Flush()
	if err := r.backend.EndPass(); err != nil {
		err = fmt.Errorf("failed to end pass: %w", err)
		core.LogError(err.Error())
		return err
	}
	r.state = stateFrameOpen
	r.currentTarget = metadata.NilHandle
	r.boundMaterial = metadata.NilHandle
	return nil
}

// EndFrame closes the frame. Every pass must be ended first.
func (r *RendererSystem) EndFrame() error {
	if r.state != stateFrameOpen {
		return r.protocolViolation("EndFrame")
	}
	r.backend.Flush()
	r.state = stateIdle
	return nil
}

// Flush submits all queued backend work without waiting for a pass or
// frame boundary.
func (r *RendererSystem) Flush() {
	r.backend.Flush()
}

// SetViewport sets the viewport rectangle in pixels.
func (r *RendererSystem) SetViewport(x, y int32, width, height uint32) {
	r.backend.SetViewport(x, y, width, height)
}

// SetScissor sets the scissor rectangle in pixels.
func (r *RendererSystem) SetScissor(x, y int32, width, height uint32) {
	r.backend.SetScissor(x, y, width, height)
}
