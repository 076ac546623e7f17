package commands

import (
	"github.com/apex/log"
	"github.com/blacktop/fa/pkg/interp"
)

func makeCode() interp.Command {
	return interp.NewCommandFunc(
		"make-code",
		"convert into a code block",
		noArgs("make-code"),
		func(ctx *interp.Context, _ any, addrs interp.Addresses) (interp.Addresses, error) {
			h, err := requireHost(ctx)
			if err != nil {
				return nil, err
			}
			for _, addr := range addrs {
				if err := h.MakeCode(addr); err != nil {
					log.WithError(err).Warnf("failed to make code at %#x", addr)
				}
			}
			return addrs, nil
		},
	)
}

func unique() interp.Command {
	return interp.NewCommandFunc(
		"unique",
		"remove duplicate results, keeping the first occurrence",
		noArgs("unique"),
		func(_ *interp.Context, _ any, addrs interp.Addresses) (interp.Addresses, error) {
			return addrs.Unique(), nil
		},
	)
}

func noArgs(cmd string) func([]string) (any, error) {
	return func(args []string) (any, error) {
		positional, err := parseArgs(newFlagSet(cmd), args)
		if err != nil {
			return nil, err
		}
		return nil, exactArgs(cmd, 0, positional)
	}
}
