package interp

import (
	"encoding/json"
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"
)

// Addresses is the ordered candidate address set threaded through a pipeline.
// It is not required to be sorted and may hold duplicates until Unique is
// applied.
type Addresses []uint64

// Clone returns a non-nil copy of a.
func (a Addresses) Clone() Addresses {
	c := make(Addresses, len(a))
	copy(c, a)
	return c
}

// Unique returns a copy of a without duplicates, keeping first-seen order.
func (a Addresses) Unique() Addresses {
	return Collect(YieldUnique(slices.Values(a)))
}

// Contains returns true if addr is in the set.
func (a Addresses) Contains(addr uint64) bool {
	return slices.Contains(a, addr)
}

func (a Addresses) String() string {
	parts := make([]string, len(a))
	for i, addr := range a {
		parts[i] = fmt.Sprintf("%#x", addr)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Hex returns the addresses as "0x" prefixed strings.
func (a Addresses) Hex() []string {
	out := make([]string, len(a))
	for i, addr := range a {
		out[i] = fmt.Sprintf("%#x", addr)
	}
	return out
}

// MarshalJSON encodes the set as hex strings; JSON numbers lose precision
// above 2^53.
func (a Addresses) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Hex())
}

// UnmarshalJSON accepts hex or decimal strings as well as plain numbers.
func (a *Addresses) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Addresses, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err != nil {
			s = string(r)
		}
		addr, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return fmt.Errorf("invalid address %s: %w", r, err)
		}
		out = append(out, addr)
	}
	*a = out
	return nil
}

// MarshalYAML encodes the set as hex strings.
func (a Addresses) MarshalYAML() (any, error) {
	return a.Hex(), nil
}

// YieldUnique lazily filters seq, suppressing any address already yielded.
// The returned sequence is finite when seq is and keeps first-seen order.
func YieldUnique(seq iter.Seq[uint64]) iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		seen := make(map[uint64]struct{})
		for addr := range seq {
			if _, dup := seen[addr]; dup {
				continue
			}
			seen[addr] = struct{}{}
			if !yield(addr) {
				return
			}
		}
	}
}

// Collect drains seq into a non-nil Addresses.
func Collect(seq iter.Seq[uint64]) Addresses {
	out := Addresses{}
	for addr := range seq {
		out = append(out, addr)
	}
	return out
}

// Union concatenates the sets and removes duplicates, keeping first-seen order.
func Union(sets ...Addresses) Addresses {
	return Collect(YieldUnique(func(yield func(uint64) bool) {
		for _, set := range sets {
			for _, addr := range set {
				if !yield(addr) {
					return
				}
			}
		}
	}))
}
