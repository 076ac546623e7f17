package commands

import (
	"fmt"

	"github.com/blacktop/fa/pkg/interp"
)

type addOffsetArgs struct {
	Offset int64
}

type addOffset struct{}

func (*addOffset) Name() string        { return "add-offset" }
func (*addOffset) Description() string { return "adds an offset to every search result" }

func (c *addOffset) Parse(args []string) (any, error) {
	positional, err := parseArgs(newFlagSet(c.Name()), args)
	if err != nil {
		return nil, err
	}
	if err := exactArgs(c.Name(), 1, positional); err != nil {
		return nil, err
	}
	off, err := parseInt(c.Name(), "offset", positional[0])
	if err != nil {
		return nil, err
	}
	return &addOffsetArgs{Offset: off}, nil
}

func (c *addOffset) Run(_ *interp.Context, args any, addrs interp.Addresses) (interp.Addresses, error) {
	off := uint64(args.(*addOffsetArgs).Offset)
	out := make(interp.Addresses, len(addrs))
	for i, addr := range addrs {
		out[i] = addr + off
	}
	return out, nil
}

type addOffsetRangeArgs struct {
	Start int64
	End   int64
	Step  int64
}

// offsets yields start, start+step, ... up to (excluding) end. A negative
// step counts down. The distance to end is compared as uint64 so the last
// step never overflows near the int64 limits.
func (a *addOffsetRangeArgs) offsets(yield func(int64) bool) {
	if a.Step > 0 {
		for i := a.Start; i < a.End; i += a.Step {
			if !yield(i) || uint64(a.End)-uint64(i) <= uint64(a.Step) {
				return
			}
		}
		return
	}
	for i := a.Start; i > a.End; i += a.Step {
		if !yield(i) || uint64(i)-uint64(a.End) <= uint64(-a.Step) {
			return
		}
	}
}

// addOffsetRange adds a range of offsets to every result, deduplicated.
type addOffsetRange struct{}

func (*addOffsetRange) Name() string { return "add-offset-range" }
func (*addOffsetRange) Description() string {
	return "adds a range of offsets (start, end, step) to the current search results"
}

func (c *addOffsetRange) Parse(args []string) (any, error) {
	positional, err := parseArgs(newFlagSet(c.Name()), args)
	if err != nil {
		return nil, err
	}
	if err := exactArgs(c.Name(), 3, positional); err != nil {
		return nil, err
	}
	a := &addOffsetRangeArgs{}
	for i, dst := range []*int64{&a.Start, &a.End, &a.Step} {
		if *dst, err = parseInt(c.Name(), []string{"start", "end", "step"}[i], positional[i]); err != nil {
			return nil, err
		}
	}
	if a.Step == 0 {
		return nil, fmt.Errorf("%s: step must not be zero", c.Name())
	}
	return a, nil
}

func (c *addOffsetRange) Run(_ *interp.Context, args any, addrs interp.Addresses) (interp.Addresses, error) {
	a := args.(*addOffsetRangeArgs)
	return interp.Collect(interp.YieldUnique(func(yield func(uint64) bool) {
		for _, addr := range addrs {
			for off := range a.offsets {
				if !yield(addr + uint64(off)) {
					return
				}
			}
		}
	})), nil
}
