package host

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Pattern is a byte pattern. Positions with a false Mask entry match any byte.
type Pattern struct {
	Bytes []byte
	Mask  []bool
}

// ParsePattern parses a hex pattern such as "41 41 ?? 41" or "4141??41".
// Whitespace is ignored and "??" matches any byte.
func ParsePattern(s string) (Pattern, error) {
	s = strings.Join(strings.Fields(s), "")
	if len(s) == 0 {
		return Pattern{}, fmt.Errorf("empty pattern")
	}
	if len(s)%2 != 0 {
		return Pattern{}, fmt.Errorf("pattern %q has an odd number of hex digits", s)
	}
	p := Pattern{
		Bytes: make([]byte, len(s)/2),
		Mask:  make([]bool, len(s)/2),
	}
	for i := 0; i < len(s); i += 2 {
		pair := s[i : i+2]
		if pair == "??" {
			continue
		}
		b, err := hex.DecodeString(pair)
		if err != nil {
			return Pattern{}, fmt.Errorf("invalid hex byte %q in pattern: %w", pair, err)
		}
		p.Bytes[i/2] = b[0]
		p.Mask[i/2] = true
	}
	return p, nil
}

// Len returns the number of bytes the pattern spans.
func (p Pattern) Len() int {
	return len(p.Bytes)
}

func (p Pattern) matchAt(data []byte) bool {
	for i, b := range p.Bytes {
		if p.Mask[i] && data[i] != b {
			return false
		}
	}
	return true
}

// Search returns the virtual address of every match of p in segs, in
// segment order then address order.
func Search(segs Segments, p Pattern) []uint64 {
	var matches []uint64
	n := p.Len()
	if n == 0 {
		return nil
	}
	for _, seg := range segs {
		for off := 0; off+n <= len(seg.Data); off++ {
			if p.matchAt(seg.Data[off : off+n]) {
				matches = append(matches, seg.Start+uint64(off))
			}
		}
	}
	return matches
}
