package commands

import (
	"errors"

	"github.com/apex/log"
	"github.com/blacktop/fa/pkg/host"
	"github.com/blacktop/fa/pkg/interp"
)

type nameArgs struct {
	Name string
}

func parseName(cmd string, args []string) (any, error) {
	positional, err := parseArgs(newFlagSet(cmd), args)
	if err != nil {
		return nil, err
	}
	if err := exactArgs(cmd, 1, positional); err != nil {
		return nil, err
	}
	return &nameArgs{Name: positional[0]}, nil
}

// lookup resolves name through the host. A missing symbol is not an error.
func lookup(ctx *interp.Context, name string) (uint64, bool, error) {
	h, err := requireHost(ctx)
	if err != nil {
		return 0, false, err
	}
	addr, err := h.Locate(name)
	if err != nil {
		if errors.Is(err, host.ErrSymbolNotFound) {
			log.WithField("symbol", name).Debug("symbol not found in input")
			return 0, false, nil
		}
		return 0, false, err
	}
	return addr, true, nil
}

// locate replaces the set with the address of a named symbol.
type locate struct{}

func (*locate) Name() string        { return "locate" }
func (*locate) Description() string { return "goto symbol by name" }

func (c *locate) Parse(args []string) (any, error) {
	return parseName(c.Name(), args)
}

func (c *locate) Run(ctx *interp.Context, args any, _ interp.Addresses) (interp.Addresses, error) {
	addr, ok, err := lookup(ctx, args.(*nameArgs).Name)
	if err != nil || !ok {
		return interp.Addresses{}, err
	}
	return interp.Addresses{addr}, nil
}

// verifyName keeps the addresses equal to the address of a named symbol.
type verifyName struct{}

func (*verifyName) Name() string { return "verify-name" }
func (*verifyName) Description() string {
	return "verifies the given name appears in result set"
}

func (c *verifyName) Parse(args []string) (any, error) {
	return parseName(c.Name(), args)
}

func (c *verifyName) Run(ctx *interp.Context, args any, addrs interp.Addresses) (interp.Addresses, error) {
	ref, ok, err := lookup(ctx, args.(*nameArgs).Name)
	if err != nil || !ok {
		return interp.Addresses{}, err
	}
	return interp.Collect(interp.YieldUnique(func(yield func(uint64) bool) {
		for _, addr := range addrs {
			if addr == ref && !yield(addr) {
				return
			}
		}
	})), nil
}
