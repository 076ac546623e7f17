package commands

import (
	"github.com/blacktop/fa/pkg/interp"
)

type singleArgs struct {
	Index int64
}

// single peeks one result by position. Negative indexes count from the end;
// an out of range index yields an empty set.
type single struct{}

func (*single) Name() string        { return "single" }
func (*single) Description() string { return "peek a single result from the resultset" }

func (c *single) Parse(args []string) (any, error) {
	positional, err := parseArgs(newFlagSet(c.Name()), args)
	if err != nil {
		return nil, err
	}
	if err := rangeArgs(c.Name(), 0, 1, positional); err != nil {
		return nil, err
	}
	a := &singleArgs{}
	if len(positional) == 1 {
		if a.Index, err = parseInt(c.Name(), "index", positional[0]); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (c *single) Run(_ *interp.Context, args any, addrs interp.Addresses) (interp.Addresses, error) {
	idx := args.(*singleArgs).Index
	n := int64(len(addrs))
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return interp.Addresses{}, nil
	}
	return interp.Addresses{addrs[idx]}, nil
}
