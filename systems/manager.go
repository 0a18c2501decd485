package systems

import (
	"fmt"

	"github.com/spaghettifunk/vetro/backend"
	"github.com/spaghettifunk/vetro/core"
)

// SystemManager owns the backend and every resource system and wires them
// together in dependency order. It is the single entry point of the
// library: create one, use the systems it exposes, shut it down.
type SystemManager struct {
	config  Config
	backend backend.Backend

	Shaders       *ShaderSystem
	Textures      *TextureSystem
	Buffers       *BufferSystem
	UniformData   *UniformDataSystem
	Materials     *MaterialSystem
	Geometries    *GeometrySystem
	RenderTargets *RenderTargetSystem
	Renderer      *RendererSystem
}

// NewSystemManager initializes the backend and builds every system with
// the configured pool capacities.
func NewSystemManager(config Config, b backend.Backend) (*SystemManager, error) {
	config = config.WithDefaults()

	if err := b.Initialize(); err != nil {
		err = fmt.Errorf("failed to initialize backend: %w", err)
		core.LogError(err.Error())
		return nil, err
	}
	core.LogInfo("backend: %s / %s (%s %s)", b.RendererName(), b.VendorName(), b.APIName(), b.APIVersion())

	shaders, err := NewShaderSystem(config.MaxShaders, b)
	if err != nil {
		return nil, err
	}
	textures, err := NewTextureSystem(config.MaxTextures, b)
	if err != nil {
		return nil, err
	}
	buffers, err := NewBufferSystem(config.MaxBuffers, b)
	if err != nil {
		return nil, err
	}
	uniformData, err := NewUniformDataSystem(config.MaxUniformData, b, buffers)
	if err != nil {
		return nil, err
	}
	materials, err := NewMaterialSystem(config.MaxMaterials, b, shaders)
	if err != nil {
		return nil, err
	}
	geometries, err := NewGeometrySystem(config.MaxGeometries, b, buffers)
	if err != nil {
		return nil, err
	}
	renderTargets, err := NewRenderTargetSystem(config.MaxRenderTargets, b)
	if err != nil {
		return nil, err
	}

	return &SystemManager{
		config:        config,
		backend:       b,
		Shaders:       shaders,
		Textures:      textures,
		Buffers:       buffers,
		UniformData:   uniformData,
		Materials:     materials,
		Geometries:    geometries,
		RenderTargets: renderTargets,
		Renderer:      NewRendererSystem(b, materials, geometries, uniformData, textures, buffers, renderTargets),
	}, nil
}

// Backend returns the device the manager was built with.
func (m *SystemManager) Backend() backend.Backend {
	return m.backend
}

// Shutdown destroys every live resource and shuts the backend down.
// Resources that reference others go first so nothing is released out
// from under a referent.
func (m *SystemManager) Shutdown() error {
	m.Geometries.Shutdown()
	m.UniformData.Shutdown()
	m.Materials.Shutdown()
	m.Shaders.Shutdown()
	m.Textures.Shutdown()
	m.RenderTargets.Shutdown()
	m.Buffers.Shutdown()

	if err := m.backend.Shutdown(); err != nil {
		err = fmt.Errorf("failed to shut backend down: %w", err)
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("shut down")
	return nil
}
