// Package macho implements host.Host for Mach-O binaries.
package macho

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/blacktop/fa/pkg/host"
	"github.com/blacktop/go-macho"
	"github.com/blacktop/go-macho/types"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ianlancetaylor/demangle"
	"golang.org/x/arch/arm64/arm64asm"
	"golang.org/x/arch/x86/x86asm"
)

const vmProtExecute = 0x4

// DefaultCacheSize is the number of resolved symbols kept by Locate.
const DefaultCacheSize = 1024

// Host is a Mach-O backed host.Host.
type Host struct {
	path   string
	file   *macho.File
	decode func(data []byte) error
	cache  *lru.Cache[string, uint64]
	code   map[uint64]bool
}

// Open parses the Mach-O at path. cacheSize bounds the symbol lookup cache;
// a non-positive value selects DefaultCacheSize.
func Open(path string, cacheSize int) (*Host, error) {
	m, err := macho.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open MachO %s: %w", path, err)
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, uint64](cacheSize)
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("failed to create symbol cache: %w", err)
	}
	log.WithFields(log.Fields{
		"file": path,
		"cpu":  m.CPU.String(),
	}).Debug("Loaded MachO")
	return &Host{
		path:   path,
		file:   m,
		decode: Decoder(m.CPU),
		cache:  cache,
		code:   make(map[uint64]bool),
	}, nil
}

// Close releases the underlying file.
func (h *Host) Close() error {
	return h.file.Close()
}

func (h *Host) Name() string {
	return filepath.Base(h.path)
}

// Segments returns every segment with file backed data.
func (h *Host) Segments() (host.Segments, error) {
	var segs host.Segments
	for _, seg := range h.file.Segments() {
		if seg.Filesz == 0 {
			continue
		}
		data, err := seg.Data()
		if err != nil {
			return nil, fmt.Errorf("failed to read segment %s: %w", seg.Name, err)
		}
		segs = append(segs, host.Segment{
			Name:  seg.Name,
			Start: seg.Addr,
			End:   seg.Addr + seg.Memsz,
			Exec:  seg.Prot&vmProtExecute != 0,
			Data:  data,
		})
	}
	return segs, nil
}

// Locate looks name up in the symbol table. The Mach-O leading underscore
// is optional and demangled names match too.
func (h *Host) Locate(name string) (uint64, error) {
	if addr, ok := h.cache.Get(name); ok {
		return addr, nil
	}
	if h.file.Symtab == nil {
		return 0, fmt.Errorf("%w: %s (no symbol table)", host.ErrSymbolNotFound, name)
	}
	for _, sym := range h.file.Symtab.Syms {
		if sym.Value == 0 {
			continue
		}
		if sym.Name == name || strings.TrimPrefix(sym.Name, "_") == name || demangle.Filter(sym.Name) == name {
			h.cache.Add(name, sym.Value)
			return sym.Value, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", host.ErrSymbolNotFound, name)
}

// MakeCode checks that a valid instruction of the binary's architecture
// decodes at addr inside an executable segment.
func (h *Host) MakeCode(addr uint64) error {
	if h.decode == nil {
		return fmt.Errorf("%w: cannot decode %s instructions", host.ErrUnsupported, h.file.CPU)
	}
	seg := h.segmentForAddr(addr)
	if seg == nil {
		return fmt.Errorf("%w: %#x is not mapped", host.ErrNotCode, addr)
	}
	if seg.Prot&vmProtExecute == 0 {
		return fmt.Errorf("%w: %#x is in non executable segment %s", host.ErrNotCode, addr, seg.Name)
	}
	buf := make([]byte, 16)
	n, err := seg.ReadAt(buf, int64(addr-seg.Addr))
	if n == 0 {
		return fmt.Errorf("%w: failed to read %#x: %v", host.ErrNotCode, addr, err)
	}
	if err := h.decode(buf[:n]); err != nil {
		return fmt.Errorf("%w: %#x: %v", host.ErrNotCode, addr, err)
	}
	h.code[addr] = true
	return nil
}

func (h *Host) segmentForAddr(addr uint64) *macho.Segment {
	for _, seg := range h.file.Segments() {
		if addr >= seg.Addr && addr < seg.Addr+seg.Filesz {
			return seg
		}
	}
	return nil
}

// IsCode reports whether MakeCode succeeded at addr.
func (h *Host) IsCode(addr uint64) bool {
	return h.code[addr]
}

// Decoder returns an instruction decoder for cpu, or nil if the
// architecture is not supported.
func Decoder(cpu types.CPU) func(data []byte) error {
	switch cpu {
	case types.CPUArm64:
		return func(data []byte) error {
			_, err := arm64asm.Decode(data)
			return err
		}
	case types.CPUAmd64:
		return func(data []byte) error {
			_, err := x86asm.Decode(data, 64)
			return err
		}
	default:
		return nil
	}
}
