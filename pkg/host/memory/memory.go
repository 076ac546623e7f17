// Package memory implements an in-memory host.Host over raw byte blobs.
//
// It backs `fa --raw` (a flat binary loaded at a base address) and is the
// fixture used by the interpreter and command tests.
package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/apex/log"
	"github.com/blacktop/fa/pkg/host"
)

// Host is a host.Host whose segments and symbols are provided up front.
type Host struct {
	name     string
	segments host.Segments
	symbols  map[string]uint64
	code     map[uint64]bool
	// Decoder validates MakeCode requests. A nil Decoder accepts any mapped address.
	Decoder func(data []byte, addr uint64) error
}

// New creates an empty in-memory host.
func New(name string) *Host {
	return &Host{
		name:    name,
		symbols: make(map[string]uint64),
		code:    make(map[uint64]bool),
	}
}

// Open loads a raw file as a single executable segment mapped at base.
func Open(path string, base uint64) (*Host, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw input: %w", err)
	}
	h := New(filepath.Base(path))
	h.AddSegment(host.Segment{
		Name:  "__raw",
		Start: base,
		End:   base + uint64(len(data)),
		Exec:  true,
		Data:  data,
	})
	log.WithFields(log.Fields{
		"file": path,
		"base": fmt.Sprintf("%#x", base),
		"size": len(data),
	}).Debug("Loaded raw input")
	return h, nil
}

// AddSegment maps a segment, keeping segments sorted by start address.
func (h *Host) AddSegment(seg host.Segment) *Host {
	if seg.End == 0 {
		seg.End = seg.Start + uint64(len(seg.Data))
	}
	h.segments = append(h.segments, seg)
	slices.SortStableFunc(h.segments, func(a, b host.Segment) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		}
		return 0
	})
	return h
}

// AddSymbol registers a symbol name for Locate.
func (h *Host) AddSymbol(name string, addr uint64) *Host {
	h.symbols[name] = addr
	return h
}

// IsCode reports whether MakeCode succeeded at addr.
func (h *Host) IsCode(addr uint64) bool {
	return h.code[addr]
}

func (h *Host) Name() string { return h.name }

func (h *Host) Segments() (host.Segments, error) {
	return slices.Clone(h.segments), nil
}

func (h *Host) Locate(name string) (uint64, error) {
	addr, ok := h.symbols[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", host.ErrSymbolNotFound, name)
	}
	return addr, nil
}

func (h *Host) MakeCode(addr uint64) error {
	seg, ok := h.segments.ForAddr(addr)
	if !ok {
		return fmt.Errorf("%w: %#x is not mapped", host.ErrNotCode, addr)
	}
	if h.Decoder != nil {
		off := addr - seg.Start
		if off >= uint64(len(seg.Data)) {
			return fmt.Errorf("%w: %#x has no backing data in %s", host.ErrNotCode, addr, seg.Name)
		}
		if err := h.Decoder(seg.Data[off:], addr); err != nil {
			return fmt.Errorf("%w: %v", host.ErrNotCode, err)
		}
	}
	h.code[addr] = true
	return nil
}
