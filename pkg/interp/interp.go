// Package interp implements the signature evaluation engine.
//
// A signature is an ordered list of instruction lines. The interpreter threads
// a candidate address set through the lines, dispatching each one to a
// registered Command, and returns the final set. Signatures live in
// `<root>/<project>/*.sig` files and may reference each other through
// commands that call back into the interpreter (see Context).
package interp

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/blacktop/fa/pkg/alias"
	"github.com/blacktop/fa/pkg/host"
)

// DefaultProject is the project used when none is configured.
const DefaultProject = "generic"

// MaxDepth bounds how deeply signatures may evaluate other signatures.
const MaxDepth = 16

// Policy decides what happens when a dispatched command fails.
type Policy int

const (
	// PolicyRecover logs command failures and continues the run with an
	// empty address set for that step.
	PolicyRecover Policy = iota
	// PolicyStrict aborts the run on the first command failure.
	PolicyStrict
)

func (p Policy) String() string {
	if p == PolicyStrict {
		return "strict"
	}
	return "recover"
}

// Config holds the long lived collaborators of an Interpreter.
type Config struct {
	// Registry resolves command names. Required.
	Registry *Registry
	// Host is the binary-analysis backend handed to commands. May be nil for
	// pipelines that only use host-independent commands.
	Host host.Host
	// DefaultAliases is the global alias table used when a run does not name
	// a global alias file.
	DefaultAliases *alias.Table
}

// RunContext carries everything one evaluation needs. It is passed by value
// into every evaluation; nothing about a run is stored on the Interpreter.
type RunContext struct {
	// Root is the signatures root folder.
	Root string
	// Project is the sub folder of Root holding the active signatures.
	Project string
	// GlobalAliases is the path of the global alias file. Empty selects the
	// interpreter's default table.
	GlobalAliases string
	// AliasMode selects how alias keys are matched.
	AliasMode alias.Mode
	// Decremental keeps the last non-empty set when a step empties it.
	Decremental bool
	// Policy handles command failures.
	Policy Policy
	// TargetVersion, when set, skips signatures whose version range excludes it.
	TargetVersion string

	depth int
}

// ProjectDir returns the folder holding the active project's signatures.
func (rc RunContext) ProjectDir() string {
	project := rc.Project
	if project == "" {
		project = DefaultProject
	}
	return filepath.Join(rc.Root, project)
}

// Interpreter evaluates signatures. It is safe to reuse across runs; runs
// themselves are synchronous.
type Interpreter struct {
	registry       *Registry
	host           host.Host
	defaultAliases *alias.Table

	providers map[string][]SymbolProvider

	segOnce  sync.Once
	segments host.Segments
	segErr   error
}

// New creates an interpreter.
func New(conf *Config) (*Interpreter, error) {
	if conf == nil || conf.Registry == nil {
		return nil, fmt.Errorf("interp: a command registry is required")
	}
	defaults := conf.DefaultAliases
	if defaults == nil {
		defaults = alias.NewTable()
	}
	return &Interpreter{
		registry:       conf.Registry,
		host:           conf.Host,
		defaultAliases: defaults,
		providers:      make(map[string][]SymbolProvider),
	}, nil
}

// Registry returns the command registry.
func (i *Interpreter) Registry() *Registry {
	return i.registry
}

// Host returns the binary-analysis backend, or nil.
func (i *Interpreter) Host() host.Host {
	return i.host
}

// Segments returns the host segments, loading them on first use.
func (i *Interpreter) Segments() (host.Segments, error) {
	if i.host == nil {
		return nil, fmt.Errorf("%w: no input loaded", host.ErrUnsupported)
	}
	i.segOnce.Do(func() {
		i.segments, i.segErr = i.host.Segments()
	})
	return i.segments, i.segErr
}

// ReloadSegments drops the cached segments so the next access re-reads them.
func (i *Interpreter) ReloadSegments() {
	i.segOnce = sync.Once{}
	i.segments = nil
	i.segErr = nil
}

// Aliases returns the merged global and project alias table for rc.
func (i *Interpreter) Aliases(rc RunContext) (*alias.Table, error) {
	global := i.defaultAliases
	if rc.GlobalAliases != "" {
		t, err := alias.Load(rc.GlobalAliases)
		if err != nil {
			return nil, err
		}
		global = t
	}
	project, err := alias.LoadOptional(filepath.Join(rc.ProjectDir(), alias.FileName))
	if err != nil {
		return nil, err
	}
	return global.Merge(project), nil
}

// Context is handed to every command invocation.
type Context struct {
	run    RunContext
	interp *Interpreter
}

func (i *Interpreter) newContext(rc RunContext) *Context {
	return &Context{run: rc, interp: i}
}

// RunContext returns the settings of the run the command executes in.
func (c *Context) RunContext() RunContext {
	return c.run
}

// Host returns the binary-analysis backend, or nil when none is loaded.
func (c *Context) Host() host.Host {
	return c.interp.host
}

// Segments returns the memory segments of the loaded input.
func (c *Context) Segments() (host.Segments, error) {
	return c.interp.Segments()
}

func (c *Context) nested() (RunContext, error) {
	if c.run.depth+1 > MaxDepth {
		return RunContext{}, fmt.Errorf("%w (%d)", ErrRecursionLimit, MaxDepth)
	}
	rc := c.run
	rc.depth++
	return rc, nil
}

// Find evaluates every signature of symbol in the current project and
// returns the union of their results.
func (c *Context) Find(symbol string, decremental bool) (Addresses, error) {
	rc, err := c.nested()
	if err != nil {
		return nil, err
	}
	return c.interp.Find(rc, symbol, decremental)
}

// FindByPath evaluates the signature file at path.
func (c *Context) FindByPath(path string, decremental bool) (Addresses, error) {
	rc, err := c.nested()
	if err != nil {
		return nil, err
	}
	res, err := c.interp.FindByPath(rc, path, decremental)
	if err != nil {
		return nil, err
	}
	return res.Addresses, nil
}

// Symbols runs the symbol aggregation for the current project.
func (c *Context) Symbols() (*SymbolsResult, error) {
	rc, err := c.nested()
	if err != nil {
		return nil, err
	}
	return c.interp.Symbols(rc)
}
