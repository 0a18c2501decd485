package metadata

type BufferTarget int

const (
	BufferTargetDefault BufferTarget = iota
	BufferTargetArray
	BufferTargetIndex
	BufferTargetUniform
)

type BufferUsageHint int

const (
	BufferUsageHintDefault BufferUsageHint = iota
	BufferUsageHintStatic
	BufferUsageHintDynamic
	BufferUsageHintStream
)

// BufferConfig is the flat creation parameter struct for a graphics buffer.
// Size is taken from Data when Data is given; an explicit Size with nil
// Data allocates uninitialized storage.
type BufferConfig struct {
	Target BufferTarget    // default: ARRAY
	Usage  BufferUsageHint // default: STATIC
	Data   []byte
	Size   uint64
	Name   string // optional debug label
}

// WithDefaults returns a copy with every unset optional field resolved to
// its documented default.
func (c BufferConfig) WithDefaults() BufferConfig {
	if c.Target == BufferTargetDefault {
		c.Target = BufferTargetArray
	}
	if c.Usage == BufferUsageHintDefault {
		c.Usage = BufferUsageHintStatic
	}
	if c.Size == 0 {
		c.Size = uint64(len(c.Data))
	}
	return c
}

type Buffer struct {
	Name       string
	Target     BufferTarget
	Usage      BufferUsageHint
	Size       uint64
	InternalID uint32
}
