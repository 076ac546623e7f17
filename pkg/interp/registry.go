package interp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Registry maps command names to command factories.
//
// Names are normalized ('-' becomes '_') before lookup so `find-bytes` and
// `find_bytes` resolve to the same command. The registry is filled at startup
// and only read while signatures run.
type Registry struct {
	factories map[string]Factory
	names     map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		names:     make(map[string]string),
	}
}

// NormalizeName converts an external command name to its lookup key.
func NormalizeName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// Register adds commands to the registry.
func (r *Registry) Register(cmds ...Command) error {
	for _, c := range cmds {
		c := c
		if err := r.RegisterFactory(c.Name(), func() (Command, error) { return c, nil }); err != nil {
			return err
		}
	}
	return nil
}

// MustRegister is like Register but panics on duplicate names.
func (r *Registry) MustRegister(cmds ...Command) {
	if err := r.Register(cmds...); err != nil {
		panic(err)
	}
}

// RegisterFactory adds a lazily built command under name.
func (r *Registry) RegisterFactory(name string, f Factory) error {
	key := NormalizeName(name)
	if key == "" {
		return fmt.Errorf("command name must not be empty")
	}
	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("command %s is already registered", name)
	}
	r.factories[key] = f
	r.names[key] = strings.ReplaceAll(name, "_", "-")
	return nil
}

// Names returns the external names of all registered commands, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.names))
	for _, n := range r.names {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup builds the command registered under name.
func (r *Registry) Lookup(name string) (Command, error) {
	f, ok := r.factories[NormalizeName(name)]
	if !ok {
		if suggestion := r.closest(name); suggestion != "" {
			return nil, fmt.Errorf("%w: %s (did you mean '%s'?)", ErrCommandNotFound, name, suggestion)
		}
		return nil, fmt.Errorf("%w: %s", ErrCommandNotFound, name)
	}
	cmd, err := f()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCommandLoadFailed, name, err)
	}
	if cmd == nil {
		return nil, fmt.Errorf("%w: %s: factory returned no command", ErrCommandLoadFailed, name)
	}
	return cmd, nil
}

// Dispatch parses args for the named command and runs it against addrs.
func (r *Registry) Dispatch(ctx *Context, name string, args []string, addrs Addresses) (Addresses, error) {
	cmd, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	parsed, err := cmd.Parse(args)
	if err != nil {
		return nil, &CommandError{Command: name, Err: fmt.Errorf("%w: %v", ErrInvalidArguments, err)}
	}
	out, err := cmd.Run(ctx, parsed, addrs)
	if err != nil {
		return nil, &CommandError{Command: name, Err: err}
	}
	if out == nil {
		out = Addresses{}
	}
	return out, nil
}

func (r *Registry) closest(name string) string {
	ranks := fuzzy.RankFindFold(NormalizeName(name), r.keys())
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return r.names[ranks[0].Target]
}

func (r *Registry) keys() []string {
	keys := make([]string, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	return keys
}

// Tokenize splits an instruction line into a command name and its
// arguments using shell quoting rules.
func Tokenize(line string) (string, []string, error) {
	words, err := shellquote.Split(line)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if len(words) == 0 {
		return "", nil, fmt.Errorf("%w: empty instruction", ErrInvalidArguments)
	}
	return words[0], words[1:], nil
}
