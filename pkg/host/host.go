// Package host defines the binary-analysis capabilities that signature
// commands consume: segment enumeration, symbol lookup and code marking.
//
// The interpreter core never talks to a Host directly. It only threads a Host
// (and the Segments it produced) through to commands, which may fail with
// ErrUnsupported when a capability is missing on the current backend.
package host

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned when a host does not implement a capability.
	ErrUnsupported = errors.New("operation not supported by host")
	// ErrSymbolNotFound is returned by Locate when no symbol has the given name.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrNotCode is returned by MakeCode when the bytes at an address do not decode.
	ErrNotCode = errors.New("address does not decode as an instruction")
)

// Host is implemented by every binary-analysis backend.
type Host interface {
	// Name identifies the loaded input (file name, blob name).
	Name() string
	// Segments returns the memory segments of the loaded input in address order.
	Segments() (Segments, error)
	// Locate resolves a symbol name to its address.
	Locate(name string) (uint64, error)
	// MakeCode marks the given address as the start of an instruction.
	MakeCode(addr uint64) error
}

// Segment describes one contiguous memory region of the loaded input.
type Segment struct {
	Name  string
	Start uint64
	End   uint64
	Exec  bool
	Data  []byte
}

// Size returns the size of the segment in memory.
func (s Segment) Size() uint64 {
	return s.End - s.Start
}

// Contains returns true if addr lies inside the segment.
func (s Segment) Contains(addr uint64) bool {
	return addr >= s.Start && addr < s.End
}

func (s Segment) String() string {
	return fmt.Sprintf("%s [%#x-%#x]", s.Name, s.Start, s.End)
}

// Segments is an ordered collection of segments.
type Segments []Segment

// ByName returns the first segment with the given name.
func (ss Segments) ByName(name string) (Segment, bool) {
	for _, s := range ss {
		if s.Name == name {
			return s, true
		}
	}
	return Segment{}, false
}

// ForAddr returns the segment containing addr.
func (ss Segments) ForAddr(addr uint64) (Segment, bool) {
	for _, s := range ss {
		if s.Contains(addr) {
			return s, true
		}
	}
	return Segment{}, false
}

// ReadAt reads len(buf) bytes at the virtual address addr.
func (ss Segments) ReadAt(buf []byte, addr uint64) error {
	seg, ok := ss.ForAddr(addr)
	if !ok {
		return fmt.Errorf("address %#x is not mapped", addr)
	}
	off := addr - seg.Start
	if off+uint64(len(buf)) > uint64(len(seg.Data)) {
		return fmt.Errorf("read of %d bytes at %#x exceeds segment %s", len(buf), addr, seg.Name)
	}
	copy(buf, seg.Data[off:])
	return nil
}
