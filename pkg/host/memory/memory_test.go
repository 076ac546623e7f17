package memory

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/blacktop/fa/pkg/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.bin")
	require.NoError(t, os.WriteFile(path, []byte{0xde, 0xad, 0xbe, 0xef}, 0o644))

	h, err := Open(path, 0x10000)
	require.NoError(t, err)
	assert.Equal(t, "blob.bin", h.Name())

	segs, err := h.Segments()
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, uint64(0x10000), segs[0].Start)
	assert.Equal(t, uint64(0x10004), segs[0].End)
	assert.True(t, segs[0].Exec)

	_, err = Open(filepath.Join(t.TempDir(), "missing"), 0)
	assert.Error(t, err)
}

func TestSegmentsSorted(t *testing.T) {
	h := New("test").
		AddSegment(host.Segment{Name: "b", Start: 0x2000, Data: []byte{1}}).
		AddSegment(host.Segment{Name: "a", Start: 0x1000, Data: []byte{2}})
	segs, err := h.Segments()
	require.NoError(t, err)
	assert.Equal(t, "a", segs[0].Name)
	assert.Equal(t, "b", segs[1].Name)

	segs[0].Name = "changed"
	again, _ := h.Segments()
	assert.Equal(t, "a", again[0].Name)
}

func TestLocate(t *testing.T) {
	h := New("test").AddSymbol("_main", 0x1000)
	addr, err := h.Locate("_main")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1000), addr)

	_, err = h.Locate("_nope")
	assert.ErrorIs(t, err, host.ErrSymbolNotFound)
}

func TestMakeCode(t *testing.T) {
	h := New("test").AddSegment(host.Segment{Name: "__TEXT", Start: 0x1000, Data: []byte{0x90, 0xcc}})
	require.NoError(t, h.MakeCode(0x1000))
	assert.True(t, h.IsCode(0x1000))
	assert.ErrorIs(t, h.MakeCode(0x5000), host.ErrNotCode)

	h.Decoder = func(data []byte, addr uint64) error {
		if data[0] != 0x90 {
			return errors.New("bad opcode")
		}
		return nil
	}
	assert.ErrorIs(t, h.MakeCode(0x1001), host.ErrNotCode)
	assert.False(t, h.IsCode(0x1001))
}

func TestMakeCodeZeroFill(t *testing.T) {
	// __bss maps past its data
	h := New("test").AddSegment(host.Segment{Name: "__bss", Start: 0x2000, End: 0x3000, Data: []byte{0x90}})
	h.Decoder = func(data []byte, addr uint64) error { return nil }

	require.NoError(t, h.MakeCode(0x2000))
	assert.ErrorIs(t, h.MakeCode(0x2001), host.ErrNotCode)
	assert.ErrorIs(t, h.MakeCode(0x2fff), host.ErrNotCode)
	assert.False(t, h.IsCode(0x2fff))
}
