package interp

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/blacktop/fa/pkg/alias"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// emit replaces the set with its integer arguments.
func emit() Command {
	return NewCommandFunc("emit", "replace the set", func(args []string) (any, error) {
		out := Addresses{}
		for _, a := range args {
			v, err := strconv.ParseUint(a, 0, 64)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}, func(_ *Context, args any, _ Addresses) (Addresses, error) {
		return args.(Addresses), nil
	})
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	r.MustRegister(
		emit(),
		NewCommandFunc("clear", "empty the set", nil, func(*Context, any, Addresses) (Addresses, error) {
			return nil, nil
		}),
		NewCommandFunc("fail", "always fails", nil, func(*Context, any, Addresses) (Addresses, error) {
			return nil, errBoom
		}),
		NewCommandFunc("double", "append a copy of every address", nil, func(_ *Context, _ any, addrs Addresses) (Addresses, error) {
			return append(addrs, addrs...), nil
		}),
		NewCommandFunc("mutate", "writes into its input", nil, func(_ *Context, _ any, addrs Addresses) (Addresses, error) {
			for i := range addrs {
				addrs[i] = 0xdead
			}
			return addrs, nil
		}),
	)
	require.NoError(t, r.RegisterFactory("broken", func() (Command, error) {
		return nil, errors.New("missing backend")
	}))
	return r
}

func newTestInterp(t *testing.T, aliases *alias.Table) (*Interpreter, RunContext) {
	t.Helper()
	i, err := New(&Config{Registry: testRegistry(t), DefaultAliases: aliases})
	require.NoError(t, err)
	return i, RunContext{Root: t.TempDir()}
}

func TestNewRequiresRegistry(t *testing.T) {
	_, err := New(&Config{})
	assert.Error(t, err)
	_, err = New(nil)
	assert.Error(t, err)
}

func TestRunSkipsCommentsAndBlanks(t *testing.T) {
	i, rc := newTestInterp(t, nil)
	seed := Addresses{1, 2, 3}
	res, err := i.Run(rc, []string{"", "# comment", "   ", "\t# indented comment"}, seed)
	require.NoError(t, err)
	assert.Equal(t, seed, res.Addresses)
	assert.Empty(t, res.History)
}

func TestRunEmptyInstructions(t *testing.T) {
	i, rc := newTestInterp(t, nil)
	res, err := i.Run(rc, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, Addresses{}, res.Addresses)
	assert.NotNil(t, res.History)
}

func TestRunHistory(t *testing.T) {
	i, rc := newTestInterp(t, nil)
	res, err := i.Run(rc, []string{
		"emit 1 2",
		"# not counted",
		"double",
		"emit 7",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, Addresses{7}, res.Addresses)
	require.Len(t, res.History, 3)
	assert.Equal(t, Addresses{1, 2}, res.History[0])
	assert.Equal(t, Addresses{1, 2, 1, 2}, res.History[1])
	assert.Equal(t, Addresses{7}, res.History[2])
}

func TestRunDoesNotMutateInput(t *testing.T) {
	i, rc := newTestInterp(t, nil)
	seed := Addresses{1, 2}
	res, err := i.Run(rc, []string{"mutate"}, seed)
	require.NoError(t, err)
	assert.Equal(t, Addresses{1, 2}, seed)
	assert.Equal(t, Addresses{0xdead, 0xdead}, res.Addresses)
}

func TestStopIfEmpty(t *testing.T) {
	i, rc := newTestInterp(t, nil)

	res, err := i.Run(rc, []string{"clear", StopIfEmpty, "emit 5"}, Addresses{1})
	require.NoError(t, err)
	assert.Equal(t, Addresses{}, res.Addresses)
	assert.Len(t, res.History, 1)

	res, err = i.Run(rc, []string{StopIfEmpty, "emit 5"}, Addresses{1})
	require.NoError(t, err)
	assert.Equal(t, Addresses{5}, res.Addresses)
	assert.Len(t, res.History, 1, "stop-if-empty is not a checkpoint")
}

func TestDecremental(t *testing.T) {
	i, rc := newTestInterp(t, nil)
	instructions := []string{"emit 10 20", "clear", "emit 30"}

	rc.Decremental = true
	res, err := i.Run(rc, instructions, nil)
	require.NoError(t, err)
	assert.Equal(t, Addresses{10, 20}, res.Addresses)
	assert.Len(t, res.History, 1)

	rc.Decremental = false
	res, err = i.Run(rc, instructions, nil)
	require.NoError(t, err)
	assert.Equal(t, Addresses{30}, res.Addresses)
	assert.Len(t, res.History, 3)
}

func TestDecrementalEmptySeed(t *testing.T) {
	i, rc := newTestInterp(t, nil)
	rc.Decremental = true
	res, err := i.Run(rc, []string{"clear", "emit 1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, Addresses{1}, res.Addresses)
}

func TestRecoverPolicy(t *testing.T) {
	tests := []struct {
		name    string
		instr   string
		wantErr error
	}{
		{name: "execution failure", instr: "fail", wantErr: errBoom},
		{name: "unknown command", instr: "nope", wantErr: ErrCommandNotFound},
		{name: "load failure", instr: "broken", wantErr: ErrCommandLoadFailed},
		{name: "invalid arguments", instr: "emit x", wantErr: ErrInvalidArguments},
		{name: "bad quoting", instr: `emit "1`, wantErr: ErrInvalidArguments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, rc := newTestInterp(t, nil)

			res, err := i.Run(rc, []string{"emit 1", tt.instr, "emit 2"}, nil)
			require.NoError(t, err)
			assert.Equal(t, Addresses{2}, res.Addresses)
			require.Len(t, res.History, 3)
			assert.Equal(t, Addresses{}, res.History[1])

			rc.Decremental = true
			res, err = i.Run(rc, []string{"emit 1", tt.instr, "emit 2"}, nil)
			require.NoError(t, err)
			assert.Equal(t, Addresses{1}, res.Addresses)

			rc.Decremental = false
			rc.Policy = PolicyStrict
			res, err = i.Run(rc, []string{"emit 1", tt.instr, "emit 2"}, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, Addresses{1}, res.Addresses)
			assert.Len(t, res.History, 1)
		})
	}
}

func TestCommandErrorUnwraps(t *testing.T) {
	i, rc := newTestInterp(t, nil)
	rc.Policy = PolicyStrict
	_, err := i.Run(rc, []string{"fail"}, nil)
	var cerr *CommandError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "fail", cerr.Command)
	assert.ErrorIs(t, err, ErrCommandExecutionFailed)
	assert.ErrorIs(t, err, errBoom)
}

func TestCommandNotFoundSuggestion(t *testing.T) {
	r := testRegistry(t)
	_, err := r.Lookup("dubble")
	require.ErrorIs(t, err, ErrCommandNotFound)
	assert.NotContains(t, err.Error(), "did you mean")

	_, err = r.Lookup("doub")
	require.ErrorIs(t, err, ErrCommandNotFound)
	assert.Contains(t, err.Error(), "did you mean 'double'?")
}

func TestRegistryNames(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(
		NewCommandFunc("find_bytes", "", nil, nil),
		NewCommandFunc("add-offset", "", nil, nil),
	)
	assert.Equal(t, []string{"add-offset", "find-bytes"}, r.Names())

	_, err := r.Lookup("find-bytes")
	assert.NoError(t, err)
	_, err = r.Lookup("add_offset")
	assert.NoError(t, err)

	assert.Error(t, r.Register(NewCommandFunc("add_offset", "", nil, nil)))
}

func TestAliases(t *testing.T) {
	global, err := alias.ParseBytes([]byte("e = emit\n"), "global")
	require.NoError(t, err)
	i, rc := newTestInterp(t, global)

	res, err := i.Run(rc, []string{"e 1 2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, Addresses{1, 2}, res.Addresses)

	// project aliases extend and override the global ones
	require.NoError(t, os.MkdirAll(rc.ProjectDir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(rc.ProjectDir(), alias.FileName), []byte("e = emit 9\nms = emit 3\n"), 0o644))

	res, err = i.Run(rc, []string{"ms", "e"}, nil)
	require.NoError(t, err)
	assert.Equal(t, Addresses{9}, res.Addresses)
	assert.Equal(t, Addresses{3}, res.History[0])
}

func TestAliasParseErrorIsFatal(t *testing.T) {
	i, rc := newTestInterp(t, nil)
	require.NoError(t, os.MkdirAll(rc.ProjectDir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(rc.ProjectDir(), alias.FileName), []byte("broken\n"), 0o644))

	_, err := i.Run(rc, []string{"emit 1"}, nil)
	assert.ErrorIs(t, err, alias.ErrParse)
}

func TestGlobalAliasFile(t *testing.T) {
	i, rc := newTestInterp(t, nil)
	rc.GlobalAliases = filepath.Join(t.TempDir(), "aliases")
	require.NoError(t, os.WriteFile(rc.GlobalAliases, []byte("x = emit 4\n"), 0o644))

	res, err := i.Run(rc, []string{"x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, Addresses{4}, res.Addresses)

	rc.GlobalAliases = filepath.Join(t.TempDir(), "missing")
	_, err = i.Run(rc, []string{"x"}, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		line    string
		name    string
		args    []string
		wantErr bool
	}{
		{line: "single", name: "single", args: []string{}},
		{line: `find-str "hello world" --null-terminated`, name: "find-str", args: []string{"hello world", "--null-terminated"}},
		{line: `find-bytes 'de ad ?? ef'`, name: "find-bytes", args: []string{"de ad ?? ef"}},
		{line: `find-str "unterminated`, wantErr: true},
		{line: "   ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			name, args, err := Tokenize(tt.line)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArguments)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.args, args)
		})
	}
}
