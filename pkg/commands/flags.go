package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/blacktop/fa/internal/utils"
	"github.com/spf13/pflag"
)

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseArgs parses the flags of args into fs and returns the positional
// tokens. Negative numbers are positionals, not shorthand flags.
func parseArgs(fs *pflag.FlagSet, args []string) ([]string, error) {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" || utils.IsInt(arg) {
			positional = append(positional, arg)
			continue
		}
		flags = append(flags, arg)
		if strings.Contains(arg, "=") {
			continue
		}
		if f := lookupFlag(fs, arg); f != nil && f.NoOptDefVal == "" && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	if err := fs.Parse(flags); err != nil {
		return nil, err
	}
	return positional, nil
}

func lookupFlag(fs *pflag.FlagSet, arg string) *pflag.Flag {
	if name, ok := strings.CutPrefix(arg, "--"); ok {
		return fs.Lookup(name)
	}
	if name := arg[1:]; len(name) == 1 {
		return fs.ShorthandLookup(name)
	}
	return nil
}

func exactArgs(cmd string, n int, positional []string) error {
	if len(positional) != n {
		return fmt.Errorf("%s: expected %d argument(s), got %d", cmd, n, len(positional))
	}
	return nil
}

func rangeArgs(cmd string, lo, hi int, positional []string) error {
	if len(positional) < lo || len(positional) > hi {
		return fmt.Errorf("%s: expected between %d and %d argument(s), got %d", cmd, lo, hi, len(positional))
	}
	return nil
}

func parseInt(cmd, what, s string) (int64, error) {
	v, err := utils.ParseInt(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", cmd, what, err)
	}
	return v, nil
}
