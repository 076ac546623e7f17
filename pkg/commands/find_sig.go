package commands

import (
	"fmt"

	"github.com/blacktop/fa/pkg/interp"
)

type findSigArgs struct {
	Symbol string
	Path   string
}

// findSig replaces the current set with the result of other signatures,
// either every definition of a symbol or a single signature file.
type findSig struct{}

func (*findSig) Name() string { return "find-sig" }
func (*findSig) Description() string {
	return "evaluate the signatures of a symbol (or --path <file>) and use their result"
}

func (c *findSig) Parse(args []string) (any, error) {
	fs := newFlagSet(c.Name())
	a := &findSigArgs{}
	fs.StringVarP(&a.Path, "path", "p", "", "signature file, relative to the project folder")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return nil, err
	}
	switch {
	case a.Path != "" && len(positional) == 0:
	case a.Path == "" && len(positional) == 1:
		a.Symbol = positional[0]
	default:
		return nil, fmt.Errorf("%s: expected a symbol name or --path", c.Name())
	}
	return a, nil
}

func (c *findSig) Run(ctx *interp.Context, args any, _ interp.Addresses) (interp.Addresses, error) {
	a := args.(*findSigArgs)
	decremental := ctx.RunContext().Decremental
	if a.Path != "" {
		return ctx.FindByPath(a.Path, decremental)
	}
	return ctx.Find(a.Symbol, decremental)
}
