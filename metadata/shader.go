package metadata

import (
	"github.com/spaghettifunk/vetro/std140"
)

type ShaderStage int

const (
	ShaderStageDefault ShaderStage = iota
	ShaderStageVertex
	ShaderStageFragment
)

type ShaderBindingType int

const (
	ShaderBindingTypeNone ShaderBindingType = iota
	ShaderBindingTypeUniform
	ShaderBindingTypeSampler
)

// ShaderBinding declares one binding point of a shader stage. For uniform
// blocks the field list describes the std140 block layout, computed once at
// shader creation and shared by reference with any UniformData created
// against it.
type ShaderBinding struct {
	Type    ShaderBindingType
	Binding uint32
	Fields  []std140.Field
}

// ShaderConfig is the flat creation parameter struct for a shader stage.
type ShaderConfig struct {
	Stage    ShaderStage
	Source   string
	Bindings []ShaderBinding
	// Name is an optional debug label. Generated when empty.
	Name string
}

// Shader is an immutable compiled shader stage. InternalID is the backend
// native object; BlockLayouts maps a uniform binding point to its computed
// std140 layout.
type Shader struct {
	Name         string
	Stage        ShaderStage
	Bindings     []ShaderBinding
	BlockLayouts map[uint32]*std140.Layout
	InternalID   uint32
}

// BindingAt returns the declared binding with the given index, or nil.
func (s *Shader) BindingAt(binding uint32) *ShaderBinding {
	for i := range s.Bindings {
		if s.Bindings[i].Binding == binding {
			return &s.Bindings[i]
		}
	}
	return nil
}
