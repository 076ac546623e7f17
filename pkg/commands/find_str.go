package commands

import (
	"fmt"
	"strings"

	"github.com/blacktop/fa/pkg/host"
	"github.com/blacktop/fa/pkg/interp"
)

type findStrArgs struct {
	Pattern host.Pattern
}

// findStr is find-bytes over the encoding of a literal string.
type findStr struct{}

func (*findStr) Name() string        { return "find-str" }
func (*findStr) Description() string { return "expands the search results by the given string" }

func (c *findStr) Parse(args []string) (any, error) {
	fs := newFlagSet(c.Name())
	nullTerminated := fs.Bool("null-terminated", false, "match the trailing NUL byte too")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return nil, err
	}
	if len(positional) == 0 {
		return nil, fmt.Errorf("%s: missing string", c.Name())
	}
	data := []byte(strings.Join(positional, " "))
	if *nullTerminated {
		data = append(data, 0)
	}
	p := host.Pattern{Bytes: data, Mask: make([]bool, len(data))}
	for i := range p.Mask {
		p.Mask[i] = true
	}
	return &findStrArgs{Pattern: p}, nil
}

func (c *findStr) Run(ctx *interp.Context, args any, addrs interp.Addresses) (interp.Addresses, error) {
	return searchPattern(ctx, args.(*findStrArgs).Pattern, addrs)
}
