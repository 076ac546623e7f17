package commands

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/blacktop/fa/pkg/host"
	"github.com/blacktop/fa/pkg/interp"
)

type findBytesArgs struct {
	Pattern host.Pattern
}

// findBytes expands the current set with every match of a hex pattern.
type findBytes struct{}

func (*findBytes) Name() string { return "find-bytes" }
func (*findBytes) Description() string {
	return "expands the search results by the given hex pattern ('??' matches any byte)"
}

func (c *findBytes) Parse(args []string) (any, error) {
	positional, err := parseArgs(newFlagSet(c.Name()), args)
	if err != nil {
		return nil, err
	}
	if len(positional) == 0 {
		return nil, fmt.Errorf("%s: missing hex pattern", c.Name())
	}
	p, err := host.ParsePattern(strings.Join(positional, " "))
	if err != nil {
		return nil, err
	}
	return &findBytesArgs{Pattern: p}, nil
}

func (c *findBytes) Run(ctx *interp.Context, args any, addrs interp.Addresses) (interp.Addresses, error) {
	return searchPattern(ctx, args.(*findBytesArgs).Pattern, addrs)
}

func searchPattern(ctx *interp.Context, p host.Pattern, addrs interp.Addresses) (interp.Addresses, error) {
	segs, err := segments(ctx)
	if err != nil {
		return nil, err
	}
	matches := host.Search(segs, p)
	log.WithFields(log.Fields{
		"pattern": hex.EncodeToString(p.Bytes),
		"matches": len(matches),
	}).Debug("pattern search")
	return interp.Union(addrs, matches), nil
}
