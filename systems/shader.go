package systems

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/vetro/backend"
	"github.com/spaghettifunk/vetro/containers"
	"github.com/spaghettifunk/vetro/core"
	"github.com/spaghettifunk/vetro/metadata"
	"github.com/spaghettifunk/vetro/std140"
)

// ShaderSystem manages compiled shader stages. A shader is immutable after
// creation except for Reload, which swaps the native object in place so
// every material referencing the handle picks up the new code.
type ShaderSystem struct {
	backend backend.Backend
	pool    *containers.Pool[metadata.Shader]
}

func NewShaderSystem(maxShaders int, b backend.Backend) (*ShaderSystem, error) {
	pool, err := containers.NewPool[metadata.Shader](maxShaders)
	if err != nil {
		return nil, err
	}
	s := &ShaderSystem{
		backend: b,
		pool:    pool,
	}
	s.pool.SetOnRemove(func(sh *metadata.Shader) {
		s.backend.ShaderDestroy(sh)
	})
	return s, nil
}

// Create compiles a shader stage. All declared uniform blocks get their
// std140 layout computed here, once, so every UniformData created against
// the shader can share it by reference.
func (s *ShaderSystem) Create(config metadata.ShaderConfig) (metadata.Handle, error) {
	if config.Stage != metadata.ShaderStageVertex && config.Stage != metadata.ShaderStageFragment {
		err := fmt.Errorf("invalid shader stage %d", config.Stage)
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}
	if config.Source == "" {
		err := fmt.Errorf("shader source must not be empty")
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}
	if len(config.Bindings) > metadata.MaxShaderBindings {
		err := fmt.Errorf("shader declares %d bindings, maximum is %d", len(config.Bindings), metadata.MaxShaderBindings)
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}
	if config.Name == "" {
		config.Name = uuid.New().String()
	}

	blockLayouts := make(map[uint32]*std140.Layout)
	seen := make(map[metadata.BindingKey]struct{}, len(config.Bindings))
	for _, b := range config.Bindings {
		switch b.Type {
		case metadata.ShaderBindingTypeUniform, metadata.ShaderBindingTypeSampler:
		default:
			err := fmt.Errorf("shader '%s': invalid binding type %d at binding %d", config.Name, b.Type, b.Binding)
			core.LogError(err.Error())
			return metadata.NilHandle, err
		}
		key := metadata.BindingKey{Type: b.Type, Binding: b.Binding}
		if _, dup := seen[key]; dup {
			err := fmt.Errorf("shader '%s': duplicate binding %d", config.Name, b.Binding)
			core.LogError(err.Error())
			return metadata.NilHandle, err
		}
		seen[key] = struct{}{}

		if b.Type == metadata.ShaderBindingTypeUniform && len(b.Fields) > 0 {
			layout, err := std140.Calculate(b.Fields)
			if err != nil {
				err = fmt.Errorf("shader '%s': binding %d: %w", config.Name, b.Binding, err)
				core.LogError(err.Error())
				return metadata.NilHandle, err
			}
			blockLayouts[b.Binding] = layout
		}
	}

	shader := metadata.Shader{
		Name:         config.Name,
		Stage:        config.Stage,
		Bindings:     config.Bindings,
		BlockLayouts: blockLayouts,
	}
	if err := s.backend.ShaderCreate(&shader, config.Source); err != nil {
		err = fmt.Errorf("failed to create shader '%s': %w", config.Name, err)
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}

	h, err := s.pool.Insert(shader)
	if err != nil {
		s.backend.ShaderDestroy(&shader)
		return metadata.NilHandle, err
	}
	core.LogDebug("created shader '%s'", config.Name)
	return h, nil
}

// Get returns the shader for a handle, or false for a nil or stale handle.
func (s *ShaderSystem) Get(h metadata.Handle) (*metadata.Shader, bool) {
	return s.pool.Get(h)
}

// BlockLayout returns the std140 layout of the uniform block declared at
// the given binding point.
func (s *ShaderSystem) BlockLayout(h metadata.Handle, binding uint32) (*std140.Layout, bool) {
	shader, ok := s.pool.Get(h)
	if !ok {
		return nil, false
	}
	layout, ok := shader.BlockLayouts[binding]
	return layout, ok
}

// Reload recompiles the shader from new source, keeping the handle, name,
// bindings and layouts. On compile failure the old native object stays
// live and the shader keeps working.
func (s *ShaderSystem) Reload(h metadata.Handle, source string) error {
	shader, ok := s.pool.Get(h)
	if !ok {
		err := fmt.Errorf("invalid shader handle %d: %w", h, core.ErrInvalidHandle)
		core.LogError(err.Error())
		return err
	}
	if source == "" {
		err := fmt.Errorf("shader source must not be empty")
		core.LogError(err.Error())
		return err
	}

	fresh := metadata.Shader{
		Name:         shader.Name,
		Stage:        shader.Stage,
		Bindings:     shader.Bindings,
		BlockLayouts: shader.BlockLayouts,
	}
	if err := s.backend.ShaderCreate(&fresh, source); err != nil {
		err = fmt.Errorf("failed to reload shader '%s': %w", shader.Name, err)
		core.LogError(err.Error())
		return err
	}
	s.backend.ShaderDestroy(shader)
	*shader = fresh
	core.LogInfo("reloaded shader '%s'", shader.Name)
	return nil
}

// Destroy releases the shader. Returns false for a nil or stale handle.
func (s *ShaderSystem) Destroy(h metadata.Handle) bool {
	return s.pool.Remove(h)
}

// Shutdown destroys every live shader.
func (s *ShaderSystem) Shutdown() {
	for _, h := range s.pool.Handles() {
		s.pool.Remove(h)
	}
}
