// Package systems holds the resource managers and the renderer. Each
// manager owns a fixed-capacity pool of one resource kind and is the only
// place that talks to the backend for that kind.
package systems

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/vetro/core"
)

// Config sets the fixed pool capacities. Capacities are sized once at
// initialization and never grow; running out of a pool at runtime is
// reported as an error on the failing create call.
type Config struct {
	MaxShaders       int `toml:"max_shaders"`
	MaxTextures      int `toml:"max_textures"`
	MaxUniformData   int `toml:"max_uniform_data"`
	MaxBuffers       int `toml:"max_buffers"`
	MaxMaterials     int `toml:"max_materials"`
	MaxGeometries    int `toml:"max_geometries"`
	MaxRenderTargets int `toml:"max_render_targets"`
}

// DefaultConfig returns the default pool capacities.
func DefaultConfig() Config {
	return Config{
		MaxShaders:       64,
		MaxTextures:      128,
		MaxUniformData:   1024,
		MaxBuffers:       1024,
		MaxMaterials:     512,
		MaxGeometries:    1024,
		MaxRenderTargets: 32,
	}
}

// WithDefaults returns a copy with every zero capacity replaced by its
// default.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.MaxShaders == 0 {
		c.MaxShaders = def.MaxShaders
	}
	if c.MaxTextures == 0 {
		c.MaxTextures = def.MaxTextures
	}
	if c.MaxUniformData == 0 {
		c.MaxUniformData = def.MaxUniformData
	}
	if c.MaxBuffers == 0 {
		c.MaxBuffers = def.MaxBuffers
	}
	if c.MaxMaterials == 0 {
		c.MaxMaterials = def.MaxMaterials
	}
	if c.MaxGeometries == 0 {
		c.MaxGeometries = def.MaxGeometries
	}
	if c.MaxRenderTargets == 0 {
		c.MaxRenderTargets = def.MaxRenderTargets
	}
	return c
}

// LoadConfig reads a TOML configuration file. Capacities missing from the
// file fall back to their defaults.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("failed to read config %s: %w", path, err)
		core.LogError(err.Error())
		return Config{}, err
	}

	var c Config
	if err := toml.Unmarshal(raw, &c); err != nil {
		err = fmt.Errorf("failed to parse config %s: %w", path, err)
		core.LogError(err.Error())
		return Config{}, err
	}
	return c.WithDefaults(), nil
}
