/*
This is an example application that renders a frame against the recording
backend, so the whole pipeline can be exercised without a native device.
*/
package main

import (
	"encoding/binary"
	"math"

	"github.com/spaghettifunk/vetro/backend"
	"github.com/spaghettifunk/vetro/core"
	"github.com/spaghettifunk/vetro/metadata"
	"github.com/spaghettifunk/vetro/std140"
	"github.com/spaghettifunk/vetro/systems"
)

const vertSource = `#version 450
layout(location = 0) in vec2 position;
layout(binding = 0) uniform Constants { vec4 tint; };
void main() { gl_Position = vec4(position, 0.0, 1.0); }`

const fragSource = `#version 450
layout(binding = 0) uniform Constants { vec4 tint; };
out vec4 color;
void main() { color = tint; }`

func floatBytes(values ...float32) []byte {
	out := make([]byte, 0, len(values)*4)
	for _, v := range values {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}

func main() {
	manager, err := systems.NewSystemManager(systems.Config{}, backend.NewRecorder())
	if err != nil {
		panic(err)
	}
	defer manager.Shutdown()

	constants := []std140.Field{{Name: "tint", Type: std140.TypeVec4}}

	vert, err := manager.Shaders.Create(metadata.ShaderConfig{
		Stage:  metadata.ShaderStageVertex,
		Source: vertSource,
		Bindings: []metadata.ShaderBinding{
			{Type: metadata.ShaderBindingTypeUniform, Binding: 0, Fields: constants},
		},
		Name: "triangle-vert",
	})
	if err != nil {
		panic(err)
	}
	frag, err := manager.Shaders.Create(metadata.ShaderConfig{
		Stage:  metadata.ShaderStageFragment,
		Source: fragSource,
		Bindings: []metadata.ShaderBinding{
			{Type: metadata.ShaderBindingTypeUniform, Binding: 0, Fields: constants},
		},
		Name: "triangle-frag",
	})
	if err != nil {
		panic(err)
	}

	material, err := manager.Materials.Create(metadata.MaterialConfig{
		VertShader: vert,
		FragShader: frag,
		Name:       "triangle",
	})
	if err != nil {
		panic(err)
	}

	vbuf, err := manager.Buffers.Create(metadata.BufferConfig{
		Data: floatBytes(0, 0.5, -0.5, -0.5, 0.5, -0.5),
		Name: "triangle-verts",
	})
	if err != nil {
		panic(err)
	}
	geometry, err := manager.Geometries.Create(metadata.GeometryConfig{
		VertexBuffers: []metadata.VertexBufferLayout{{
			Buffer: vbuf,
			Attributes: []metadata.VertexAttribute{
				{Location: 0, Components: 2, Type: metadata.VertexAttributeTypeF32},
			},
		}},
		Name: "triangle",
	})
	if err != nil {
		panic(err)
	}

	layout, err := std140.Calculate(constants)
	if err != nil {
		panic(err)
	}
	uniform, err := manager.UniformData.Create(metadata.UniformDataConfig{
		Layout: layout,
		Name:   "triangle-constants",
	})
	if err != nil {
		panic(err)
	}
	if err := manager.UniformData.WriteField(uniform, "tint", floatBytes(1, 0.5, 0, 1)); err != nil {
		panic(err)
	}

	r := manager.Renderer
	if err := r.BeginFrame(); err != nil {
		panic(err)
	}
	if err := r.BeginPass(metadata.RenderTargetBackbuffer); err != nil {
		panic(err)
	}
	if err := r.Clear(metadata.ClearColorDepth, metadata.DefaultClearValues()); err != nil {
		panic(err)
	}
	bindings := []metadata.DrawBinding{metadata.UniformBinding(0, uniform)}
	if err := r.Draw(material, geometry, bindings); err != nil {
		panic(err)
	}
	if err := r.EndPass(); err != nil {
		panic(err)
	}
	if err := r.EndFrame(); err != nil {
		panic(err)
	}

	core.LogInfo("rendered one frame")
}
