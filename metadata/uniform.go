package metadata

import (
	"github.com/spaghettifunk/vetro/std140"
)

// UniformDataUsageHint hints how often the data changes: once ever, once
// per frame, or once per draw. It selects the backing buffer's usage.
type UniformDataUsageHint int

const (
	UniformDataUsageHintDefault UniformDataUsageHint = iota
	UniformDataUsageHintConstant
	UniformDataUsageHintFrame
	UniformDataUsageHintDraw
)

// UniformDataConfig is the flat creation parameter struct for a uniform
// data block. Either Layout or Size must be given; with a Layout the size
// is the layout's computed std140 size and fields can be written by name.
type UniformDataConfig struct {
	UsageHint UniformDataUsageHint // default: FRAME
	Size      uint64
	Layout    *std140.Layout
	Name      string // optional debug label
}

// WithDefaults returns a copy with every unset optional field resolved to
// its documented default.
func (c UniformDataConfig) WithDefaults() UniformDataConfig {
	if c.UsageHint == UniformDataUsageHintDefault {
		c.UsageHint = UniformDataUsageHintFrame
	}
	if c.Size == 0 && c.Layout != nil {
		c.Size = uint64(c.Layout.Size)
	}
	return c
}

// UniformData shadows one uniform block: a CPU-side byte buffer, a dirty
// flag, and a shared reference to a region of a backing uniform Buffer.
// Writes mark the data dirty; draw-time binding flushes dirty bytes to the
// backend buffer and clears the flag, coalescing repeated writes within a
// frame into a single upload.
type UniformData struct {
	Name        string
	Usage       UniformDataUsageHint
	Layout      *std140.Layout
	CPUBuffer   []byte
	Dirty       bool
	Buffer      Handle
	BufferRange Range
}
