package commands

import (
	"fmt"

	"github.com/apex/log"
	"github.com/blacktop/fa/internal/utils"
	"github.com/blacktop/fa/pkg/interp"
)

type printArgs struct {
	HexDump int
}

// printResults logs the current set and passes it through unchanged.
type printResults struct{}

func (*printResults) Name() string        { return "print" }
func (*printResults) Description() string { return "log the current search results" }

func (c *printResults) Parse(args []string) (any, error) {
	fs := newFlagSet(c.Name())
	a := &printArgs{}
	fs.IntVarP(&a.HexDump, "hexdump", "x", 0, "dump this many bytes at every address")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return nil, err
	}
	if err := exactArgs(c.Name(), 0, positional); err != nil {
		return nil, err
	}
	if a.HexDump < 0 {
		return nil, fmt.Errorf("%s: --hexdump must not be negative", c.Name())
	}
	return a, nil
}

func (c *printResults) Run(ctx *interp.Context, args any, addrs interp.Addresses) (interp.Addresses, error) {
	a := args.(*printArgs)
	log.WithField("count", len(addrs)).Info("results")
	for _, addr := range addrs {
		utils.Indent(log.Info, 2)(fmt.Sprintf("%#x", addr))
		if a.HexDump == 0 {
			continue
		}
		segs, err := segments(ctx)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, a.HexDump)
		if err := segs.ReadAt(buf, addr); err != nil {
			log.WithError(err).Warn("hexdump")
			continue
		}
		fmt.Print(utils.HexDump(buf, addr))
	}
	return addrs, nil
}
