package systems

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/vetro/backend"
	"github.com/spaghettifunk/vetro/containers"
	"github.com/spaghettifunk/vetro/core"
	"github.com/spaghettifunk/vetro/metadata"
)

// MaterialSystem manages linked shader programs plus their fixed-function
// pipeline state. Every binding point declared by either stage is resolved
// against the linked program at creation time; draw-time binding is then a
// pure cache lookup and cannot fail against the backend.
type MaterialSystem struct {
	backend backend.Backend
	shaders *ShaderSystem
	pool    *containers.Pool[metadata.Material]
}

func NewMaterialSystem(maxMaterials int, b backend.Backend, shaders *ShaderSystem) (*MaterialSystem, error) {
	pool, err := containers.NewPool[metadata.Material](maxMaterials)
	if err != nil {
		return nil, err
	}
	m := &MaterialSystem{
		backend: b,
		shaders: shaders,
		pool:    pool,
	}
	m.pool.SetOnRemove(func(mat *metadata.Material) {
		m.backend.ProgramDestroy(mat)
	})
	return m, nil
}

func validMaterialConfig(c metadata.MaterialConfig) error {
	if c.DepthFunc < metadata.DepthFuncNever || c.DepthFunc > metadata.DepthFuncAlways {
		return fmt.Errorf("invalid depth func %d", c.DepthFunc)
	}
	if !c.WriteMask.Valid() {
		return fmt.Errorf("invalid write mask %d", c.WriteMask)
	}
	if c.CullFace < metadata.CullFaceModeNone || c.CullFace > metadata.CullFaceModeFrontAndBack {
		return fmt.Errorf("invalid cull face mode %d", c.CullFace)
	}
	if c.SrcBlend < metadata.BlendFuncZero || c.SrcBlend > metadata.BlendFuncOneMinusDstAlpha {
		return fmt.Errorf("invalid source blend func %d", c.SrcBlend)
	}
	if c.DstBlend < metadata.BlendFuncZero || c.DstBlend > metadata.BlendFuncOneMinusDstAlpha {
		return fmt.Errorf("invalid destination blend func %d", c.DstBlend)
	}
	if c.PolygonMode < metadata.PolygonModeFill || c.PolygonMode > metadata.PolygonModePoint {
		return fmt.Errorf("invalid polygon mode %d", c.PolygonMode)
	}
	if c.StencilFunc < metadata.StencilFuncNever || c.StencilFunc > metadata.StencilFuncAlways {
		return fmt.Errorf("invalid stencil func %d", c.StencilFunc)
	}
	return nil
}

// Create links a vertex and a fragment shader into a material. A failure
// anywhere, including an unresolvable binding, tears the partial program
// down and leaves no material behind.
func (m *MaterialSystem) Create(config metadata.MaterialConfig) (metadata.Handle, error) {
	config = config.WithDefaults()
	if config.Name == "" {
		config.Name = uuid.New().String()
	}
	if err := validMaterialConfig(config); err != nil {
		err = fmt.Errorf("material '%s': %w", config.Name, err)
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}

	vert, ok := m.shaders.Get(config.VertShader)
	if !ok {
		err := fmt.Errorf("material '%s': invalid vertex shader handle %d", config.Name, config.VertShader)
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}
	if vert.Stage != metadata.ShaderStageVertex {
		err := fmt.Errorf("material '%s': shader '%s' is not a vertex shader", config.Name, vert.Name)
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}
	frag, ok := m.shaders.Get(config.FragShader)
	if !ok {
		err := fmt.Errorf("material '%s': invalid fragment shader handle %d", config.Name, config.FragShader)
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}
	if frag.Stage != metadata.ShaderStageFragment {
		err := fmt.Errorf("material '%s': shader '%s' is not a fragment shader", config.Name, frag.Name)
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}

	material := metadata.Material{
		Name:          config.Name,
		VertShader:    config.VertShader,
		FragShader:    config.FragShader,
		DepthFunc:     config.DepthFunc,
		WriteMask:     config.WriteMask,
		CullFace:      config.CullFace,
		SrcBlend:      config.SrcBlend,
		DstBlend:      config.DstBlend,
		BlendColor:    config.BlendColor,
		PolygonMode:   config.PolygonMode,
		StencilEnable: config.StencilEnable,
		StencilFunc:   config.StencilFunc,
		StencilRef:    config.StencilRef,
		StencilMask:   config.StencilMask,

		VertBindings:     vert.Bindings,
		FragBindings:     frag.Bindings,
		BindingLocations: make(map[metadata.BindingKey]uint32),
	}

	if err := m.backend.ProgramLink(&material, vert, frag); err != nil {
		err = fmt.Errorf("failed to link material '%s': %w", config.Name, err)
		core.LogError(err.Error())
		return metadata.NilHandle, err
	}

	for _, bindings := range [][]metadata.ShaderBinding{vert.Bindings, frag.Bindings} {
		for _, b := range bindings {
			if b.Type == metadata.ShaderBindingTypeNone {
				continue
			}
			key := metadata.BindingKey{Type: b.Type, Binding: b.Binding}
			if _, done := material.BindingLocations[key]; done {
				// The same block bound in both stages resolves once.
				continue
			}
			loc, err := m.backend.ResolveBinding(&material, b)
			if err != nil {
				m.backend.ProgramDestroy(&material)
				err = fmt.Errorf("material '%s': cannot resolve binding %d: %w", config.Name, b.Binding, err)
				core.LogError(err.Error())
				return metadata.NilHandle, err
			}
			material.BindingLocations[key] = loc
		}
	}

	h, err := m.pool.Insert(material)
	if err != nil {
		m.backend.ProgramDestroy(&material)
		return metadata.NilHandle, err
	}
	core.LogDebug("created material '%s'", config.Name)
	return h, nil
}

// Get returns the material for a handle, or false for a nil or stale
// handle.
func (m *MaterialSystem) Get(h metadata.Handle) (*metadata.Material, bool) {
	return m.pool.Get(h)
}

// Destroy releases the material. The shaders it was linked from are not
// touched. Returns false for a nil or stale handle.
func (m *MaterialSystem) Destroy(h metadata.Handle) bool {
	return m.pool.Remove(h)
}

// Shutdown destroys every live material.
func (m *MaterialSystem) Shutdown() {
	for _, h := range m.pool.Handles() {
		m.pool.Remove(h)
	}
}
