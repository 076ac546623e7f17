package interp

// Command is an address-transforming step of the instruction language.
//
// Commands are stateless: every invocation gets its parsed arguments, the
// current address set and a Context giving access to the host and back to
// the interpreter. Run must not modify addrs in place.
type Command interface {
	// Name returns the external name, words separated by '-' (e.g. "find-bytes").
	Name() string

	// Description is a one line help text.
	Description() string

	// Parse validates the argument tokens and returns the parsed arguments.
	Parse(args []string) (any, error)

	// Run executes the command against the current address set.
	Run(ctx *Context, args any, addrs Addresses) (Addresses, error)
}

// CommandFunc is an adapter to allow ordinary functions to be used as Commands.
//
// Example:
//
//	cmd := NewCommandFunc(
//	    "first",
//	    "keep the first address",
//	    nil,
//	    func(ctx *Context, _ any, addrs Addresses) (Addresses, error) {
//	        if len(addrs) == 0 {
//	            return Addresses{}, nil
//	        }
//	        return Addresses{addrs[0]}, nil
//	    },
//	)
type CommandFunc struct {
	name        string
	description string
	parseFunc   func([]string) (any, error)
	runFunc     func(*Context, any, Addresses) (Addresses, error)
}

func (c *CommandFunc) Name() string        { return c.name }
func (c *CommandFunc) Description() string { return c.description }
func (c *CommandFunc) Parse(args []string) (any, error) {
	if c.parseFunc == nil {
		return args, nil
	}
	return c.parseFunc(args)
}
func (c *CommandFunc) Run(ctx *Context, args any, addrs Addresses) (Addresses, error) {
	return c.runFunc(ctx, args, addrs)
}

// NewCommandFunc creates a Command from functions.
// If parse is nil, the raw argument tokens are passed to run.
func NewCommandFunc(
	name string,
	description string,
	parse func([]string) (any, error),
	run func(*Context, any, Addresses) (Addresses, error),
) Command {
	return &CommandFunc{
		name:        name,
		description: description,
		parseFunc:   parse,
		runFunc:     run,
	}
}

// Factory builds a Command when it is first dispatched.
type Factory func() (Command, error)
