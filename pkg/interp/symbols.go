package interp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/apex/log"
)

// SymbolProvider computes symbols programmatically instead of through
// persisted signatures.
type SymbolProvider interface {
	Name() string
	Symbols(ctx *Context) (map[string]Addresses, error)
}

type symbolProviderFunc struct {
	name string
	fn   func(*Context) (map[string]Addresses, error)
}

func (p *symbolProviderFunc) Name() string { return p.name }
func (p *symbolProviderFunc) Symbols(ctx *Context) (map[string]Addresses, error) {
	return p.fn(ctx)
}

// NewSymbolProviderFunc creates a SymbolProvider from a function.
func NewSymbolProviderFunc(name string, fn func(*Context) (map[string]Addresses, error)) SymbolProvider {
	return &symbolProviderFunc{name: name, fn: fn}
}

// RegisterProvider adds a provider for project. An empty project applies
// the provider to every project.
func (i *Interpreter) RegisterProvider(project string, p SymbolProvider) {
	i.providers[project] = append(i.providers[project], p)
}

func (i *Interpreter) providersFor(rc RunContext) []SymbolProvider {
	project := rc.Project
	if project == "" {
		project = DefaultProject
	}
	ps := append([]SymbolProvider(nil), i.providers[""]...)
	return append(ps, i.providers[project]...)
}

// SymbolTable maps symbol names to their merged address sets.
type SymbolTable map[string]Addresses

// Names returns the symbol names, sorted.
func (t SymbolTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolved returns the symbols that have exactly one address.
func (t SymbolTable) Resolved() map[string]uint64 {
	out := make(map[string]uint64)
	for name, addrs := range t {
		if len(addrs) == 1 {
			out[name] = addrs[0]
		}
	}
	return out
}

func (t SymbolTable) merge(name string, addrs Addresses) {
	t[name] = Union(t[name], addrs)
}

// SymbolsResult is the output of a symbol aggregation batch.
type SymbolsResult struct {
	Table SymbolTable
	// Warnings are non-fatal issues: ambiguous or unmatched symbols and
	// signatures or providers that failed.
	Warnings []error
}

// WarningText renders the warnings one per line.
func (r *SymbolsResult) WarningText() string {
	var sb strings.Builder
	for _, w := range r.Warnings {
		sb.WriteString("# ")
		sb.WriteString(w.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Symbols evaluates every signature of the active project (decrementally)
// and every registered provider, merging results by symbol name.
//
// A single symbol's failure never aborts the batch: it is reported in
// Warnings. Corrupt signature files are still fatal.
func (i *Interpreter) Symbols(rc RunContext) (*SymbolsResult, error) {
	res := &SymbolsResult{Table: make(SymbolTable)}

	for _, p := range i.providersFor(rc) {
		syms, err := p.Symbols(i.newContext(rc))
		if err != nil {
			if isFatal(err) {
				return nil, err
			}
			res.Warnings = append(res.Warnings, &SymbolError{Symbol: "*", Source: p.Name(), Err: err})
			continue
		}
		for name, addrs := range syms {
			res.Table.merge(name, addrs)
		}
	}

	sigs, err := i.Signatures(rc)
	if err != nil {
		return nil, err
	}

	attempted := make(map[string]bool)
	for _, sig := range sigs {
		ok, err := i.supports(rc, sig)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out, err := i.Evaluate(rc, sig, true)
		if err != nil {
			if isFatal(err) {
				return nil, fmt.Errorf("failed to evaluate %s: %w", sig.Path, err)
			}
			res.Warnings = append(res.Warnings, &SymbolError{Symbol: sig.Name, Source: sig.Path, Err: err})
			continue
		}
		attempted[sig.Name] = true
		if len(out.Addresses) > 0 {
			res.Table.merge(sig.Name, out.Addresses)
		}
	}

	for _, name := range sortedKeys(attempted) {
		if _, ok := res.Table[name]; !ok {
			res.Warnings = append(res.Warnings, &UnmatchedSymbolError{Symbol: name})
		}
	}
	for _, name := range res.Table.Names() {
		if addrs := res.Table[name]; len(addrs) != 1 {
			res.Warnings = append(res.Warnings, &AmbiguousSymbolError{Symbol: name, Addresses: addrs})
		}
	}

	log.WithFields(log.Fields{
		"signatures": len(sigs),
		"symbols":    len(res.Table),
		"resolved":   len(res.Table.Resolved()),
		"warnings":   len(res.Warnings),
	}).Info("Symbol STATS")

	return res, nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
