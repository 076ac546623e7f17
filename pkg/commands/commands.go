// Package commands contains the standard instructions of the signature
// language.
package commands

import (
	_ "embed"
	"fmt"

	"github.com/blacktop/fa/pkg/alias"
	"github.com/blacktop/fa/pkg/host"
	"github.com/blacktop/fa/pkg/interp"
)

//go:embed aliases
var defaultAliases []byte

// DefaultAliases returns the built-in global alias table.
func DefaultAliases() *alias.Table {
	t, err := alias.ParseBytes(defaultAliases, "builtin aliases")
	if err != nil {
		panic(err)
	}
	return t
}

// All returns a fresh instance of every standard command.
func All() []interp.Command {
	return []interp.Command{
		&findBytes{},
		&findStr{},
		&single{},
		&locate{},
		makeCode(),
		&verifyName{},
		&addOffsetRange{},
		&addOffset{},
		unique(),
		&printResults{},
		&findSig{},
	}
}

// Default returns a registry holding every standard command.
func Default() *interp.Registry {
	r := interp.NewRegistry()
	r.MustRegister(All()...)
	return r
}

func segments(ctx *interp.Context) (host.Segments, error) {
	segs, err := ctx.Segments()
	if err != nil {
		return nil, fmt.Errorf("failed to get segments: %w", err)
	}
	return segs, nil
}

func requireHost(ctx *interp.Context) (host.Host, error) {
	h := ctx.Host()
	if h == nil {
		return nil, fmt.Errorf("%w: no input loaded", host.ErrUnsupported)
	}
	return h, nil
}
