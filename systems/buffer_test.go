package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/vetro/backend"
	"github.com/spaghettifunk/vetro/metadata"
)

func newBufferSystem(t *testing.T) (*BufferSystem, *backend.Recorder) {
	t.Helper()
	rec := backend.NewRecorder()
	system, err := NewBufferSystem(16, rec)
	require.NoError(t, err)
	return system, rec
}

func TestBufferCreateFromData(t *testing.T) {
	system, rec := newBufferSystem(t)

	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	h, err := system.Create(metadata.BufferConfig{Data: data, Name: "verts"})
	require.NoError(t, err)

	buffer, ok := system.Get(h)
	require.True(t, ok)
	assert.Equal(t, uint64(8), buffer.Size)
	assert.Equal(t, metadata.BufferTargetArray, buffer.Target)
	assert.Equal(t, data, rec.BufferContents[buffer.InternalID])
}

func TestBufferCreateUninitialized(t *testing.T) {
	system, rec := newBufferSystem(t)

	h, err := system.Create(metadata.BufferConfig{Size: 64})
	require.NoError(t, err)
	buffer, _ := system.Get(h)
	assert.Len(t, rec.BufferContents[buffer.InternalID], 64)
}

func TestBufferCreateInvalid(t *testing.T) {
	system, _ := newBufferSystem(t)

	_, err := system.Create(metadata.BufferConfig{Target: metadata.BufferTarget(99), Size: 4})
	assert.Error(t, err)

	_, err = system.Create(metadata.BufferConfig{Usage: metadata.BufferUsageHint(99), Size: 4})
	assert.Error(t, err)

	_, err = system.Create(metadata.BufferConfig{Size: 2, Data: []byte{1, 2, 3, 4}})
	assert.Error(t, err)
}

func TestBufferCreateBackendFailure(t *testing.T) {
	system, rec := newBufferSystem(t)
	rec.FailBufferCreate = true

	h, err := system.Create(metadata.BufferConfig{Size: 16})
	assert.Error(t, err)
	assert.True(t, h.IsNil())
}

func TestBufferUpdate(t *testing.T) {
	system, rec := newBufferSystem(t)

	h, err := system.Create(metadata.BufferConfig{Size: 16, Usage: metadata.BufferUsageHintDynamic})
	require.NoError(t, err)
	buffer, _ := system.Get(h)

	require.NoError(t, system.Update(h, 4, []byte{9, 9, 9, 9}))
	want := make([]byte, 16)
	copy(want[4:], []byte{9, 9, 9, 9})
	assert.Equal(t, want, rec.BufferContents[buffer.InternalID])
}

func TestBufferUpdateClampsPastEnd(t *testing.T) {
	system, rec := newBufferSystem(t)

	h, err := system.Create(metadata.BufferConfig{Size: 16})
	require.NoError(t, err)
	buffer, _ := system.Get(h)

	// 12 bytes at offset 8 only fit 8; the tail is dropped.
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	require.NoError(t, system.Update(h, 8, payload))

	want := make([]byte, 16)
	copy(want[8:], payload[:8])
	assert.Equal(t, want, rec.BufferContents[buffer.InternalID])
}

func TestBufferUpdatePastEndWritesNothing(t *testing.T) {
	system, rec := newBufferSystem(t)

	h, err := system.Create(metadata.BufferConfig{Size: 16})
	require.NoError(t, err)

	before := len(rec.CallsOf("BufferUpdate"))
	require.NoError(t, system.Update(h, 16, []byte{1}))
	require.NoError(t, system.Update(h, 100, []byte{1}))
	assert.Equal(t, before, len(rec.CallsOf("BufferUpdate")))
}

func TestBufferOrphan(t *testing.T) {
	system, rec := newBufferSystem(t)

	h, err := system.Create(metadata.BufferConfig{Data: []byte{1, 2, 3, 4}})
	require.NoError(t, err)
	buffer, _ := system.Get(h)

	require.NoError(t, system.Update(h, 0, nil))
	assert.Len(t, rec.CallsOf("BufferOrphan"), 1)
	assert.Equal(t, make([]byte, 4), rec.BufferContents[buffer.InternalID])
}

func TestBufferUpdateInvalidHandle(t *testing.T) {
	system, _ := newBufferSystem(t)
	assert.Error(t, system.Update(metadata.NilHandle, 0, []byte{1}))
}

func TestBufferDestroy(t *testing.T) {
	system, rec := newBufferSystem(t)

	h, err := system.Create(metadata.BufferConfig{Size: 8})
	require.NoError(t, err)

	assert.True(t, system.Destroy(h))
	assert.False(t, system.Destroy(h))
	_, ok := system.Get(h)
	assert.False(t, ok)
	assert.Len(t, rec.CallsOf("BufferDestroy"), 1)
}
