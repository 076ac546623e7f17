package commands_test

import (
	"testing"

	"github.com/blacktop/fa/pkg/commands"
	"github.com/blacktop/fa/pkg/host"
	"github.com/blacktop/fa/pkg/host/memory"
	"github.com/blacktop/fa/pkg/interp"
	"github.com/blacktop/fa/pkg/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() *memory.Host {
	text := make([]byte, 0x40)
	copy(text, "hello\x00")
	data := []byte("hello there\x00")
	return memory.New("fixture").
		AddSegment(host.Segment{Name: "__TEXT", Start: 0x401000, Exec: true, Data: text}).
		AddSegment(host.Segment{Name: "__DATA", Start: 0x402000, Data: data}).
		AddSymbol("_main", 0x401000)
}

func newInterp(t *testing.T, h host.Host) (*interp.Interpreter, interp.RunContext) {
	t.Helper()
	i, err := interp.New(&interp.Config{
		Registry:       commands.Default(),
		Host:           h,
		DefaultAliases: commands.DefaultAliases(),
	})
	require.NoError(t, err)
	return i, interp.RunContext{Root: t.TempDir(), Policy: interp.PolicyStrict}
}

func run(t *testing.T, instructions []string, seed interp.Addresses) interp.Addresses {
	t.Helper()
	i, rc := newInterp(t, fixture())
	res, err := i.Run(rc, instructions, seed)
	require.NoError(t, err)
	return res.Addresses
}

func TestFindStrSingle(t *testing.T) {
	got := run(t, []string{`find-str "hello"`}, interp.Addresses{})
	assert.Equal(t, interp.Addresses{0x401000, 0x402000}, got)

	got = run(t, []string{`find-str "hello"`, "single 0"}, interp.Addresses{})
	assert.Equal(t, interp.Addresses{0x401000}, got)
}

func TestFindStrNullTerminated(t *testing.T) {
	got := run(t, []string{"find-str --null-terminated hello"}, nil)
	assert.Equal(t, interp.Addresses{0x401000}, got)
}

func TestFindBytes(t *testing.T) {
	tests := []struct {
		name  string
		instr string
		seed  interp.Addresses
		want  interp.Addresses
	}{
		{name: "exact", instr: "find-bytes 68656c6c6f20", want: interp.Addresses{0x402000}},
		{name: "wildcard", instr: "find-bytes '68 ?? 6c 6c 6f'", want: interp.Addresses{0x401000, 0x402000}},
		{name: "expands seed", instr: "find-bytes 68656c6c6f20", seed: interp.Addresses{0x10}, want: interp.Addresses{0x10, 0x402000}},
		{name: "seed match not duplicated", instr: "find-bytes 68656c6c6f20", seed: interp.Addresses{0x402000}, want: interp.Addresses{0x402000}},
		{name: "no match", instr: "find-bytes deadbeef", want: interp.Addresses{}},
		{name: "builtin alias", instr: "fb 68656c6c6f20", want: interp.Addresses{0x402000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, run(t, []string{tt.instr}, tt.seed))
		})
	}
}

func TestSingle(t *testing.T) {
	seed := interp.Addresses{1, 2, 3}
	tests := []struct {
		instr string
		want  interp.Addresses
	}{
		{"single", interp.Addresses{1}},
		{"single 1", interp.Addresses{2}},
		{"single -1", interp.Addresses{3}},
		{"single 3", interp.Addresses{}},
		{"single -4", interp.Addresses{}},
	}
	for _, tt := range tests {
		t.Run(tt.instr, func(t *testing.T) {
			assert.Equal(t, tt.want, run(t, []string{tt.instr}, seed))
		})
	}
}

func TestUnique(t *testing.T) {
	got := run(t, []string{"unique"}, interp.Addresses{5, 5, 7, 5})
	assert.Equal(t, interp.Addresses{5, 7}, got)
}

func TestAddOffsetRange(t *testing.T) {
	tests := []struct {
		name  string
		instr string
		seed  interp.Addresses
		want  interp.Addresses
	}{
		{name: "range", instr: "add-offset-range 0 8 4", seed: interp.Addresses{0x1000}, want: interp.Addresses{0x1000, 0x1004}},
		{name: "dedup", instr: "add-offset-range 0 8 4", seed: interp.Addresses{0x1000, 0x1004}, want: interp.Addresses{0x1000, 0x1004, 0x1008}},
		{name: "negative step", instr: "add-offset-range 0 -8 -4", seed: interp.Addresses{0x1000}, want: interp.Addresses{0x1000, 0xffc}},
		{name: "hex", instr: "add-offset-range 0x10 0x20 0x8", seed: interp.Addresses{0x1000}, want: interp.Addresses{0x1010, 0x1018}},
		{name: "empty range", instr: "add-offset-range 8 0 4", seed: interp.Addresses{0x1000}, want: interp.Addresses{}},
		{name: "alias", instr: "ar 0 8 4", seed: interp.Addresses{0x1000}, want: interp.Addresses{0x1000, 0x1004}},
		{name: "near max int64", instr: "add-offset-range 9223372036854775800 9223372036854775807 16", seed: interp.Addresses{0}, want: interp.Addresses{0x7ffffffffffffff8}},
		{name: "near min int64", instr: "add-offset-range -9223372036854775800 -9223372036854775808 -16", seed: interp.Addresses{0}, want: interp.Addresses{0x8000000000000008}},
		{name: "last step lands on end", instr: "add-offset-range 0 8 8", seed: interp.Addresses{0x1000}, want: interp.Addresses{0x1000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, run(t, []string{tt.instr}, tt.seed))
		})
	}
}

func TestInvalidArguments(t *testing.T) {
	for _, instr := range []string{
		"add-offset-range 0 8 0",
		"add-offset-range 0 8",
		"add-offset nope",
		"single 1 2",
		"locate",
		"find-bytes 4",
		"find-str",
		"make-code extra",
		"print --bogus",
		"find-sig",
	} {
		t.Run(instr, func(t *testing.T) {
			i, rc := newInterp(t, fixture())
			_, err := i.Run(rc, []string{instr}, interp.Addresses{0x1000})
			require.Error(t, err)
			assert.ErrorIs(t, err, interp.ErrInvalidArguments)
			assert.ErrorIs(t, err, interp.ErrCommandExecutionFailed)
		})
	}
}

func TestAddOffset(t *testing.T) {
	got := run(t, []string{"add-offset -4", "ao 0x10"}, interp.Addresses{0x1000, 0x2000})
	assert.Equal(t, interp.Addresses{0x100c, 0x200c}, got)
}

func TestLocateAndVerifyName(t *testing.T) {
	assert.Equal(t, interp.Addresses{0x401000}, run(t, []string{"locate _main"}, interp.Addresses{1}))
	assert.Equal(t, interp.Addresses{}, run(t, []string{"locate _missing"}, interp.Addresses{1}))

	got := run(t, []string{"verify-name _main"}, interp.Addresses{0x402000, 0x401000, 0x401000})
	assert.Equal(t, interp.Addresses{0x401000}, got)
	assert.Equal(t, interp.Addresses{}, run(t, []string{"vn _missing"}, interp.Addresses{0x401000}))
}

func TestLocateWithoutHost(t *testing.T) {
	i, rc := newInterp(t, nil)
	_, err := i.Run(rc, []string{"locate _main"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, host.ErrUnsupported)
}

func TestMakeCode(t *testing.T) {
	h := fixture()
	i, rc := newInterp(t, h)
	res, err := i.Run(rc, []string{"find-str hello", "make-code"}, nil)
	require.NoError(t, err)
	assert.Equal(t, interp.Addresses{0x401000, 0x402000}, res.Addresses)
	assert.True(t, h.IsCode(0x401000))
	assert.True(t, h.IsCode(0x402000))
}

func TestPrint(t *testing.T) {
	got := run(t, []string{"find-str hello", "print --hexdump 8"}, nil)
	assert.Equal(t, interp.Addresses{0x401000, 0x402000}, got)
}

func TestFindSig(t *testing.T) {
	i, rc := newInterp(t, fixture())
	_, err := signature.Save(rc.ProjectDir(), &signature.Signature{
		Name:         "greeting",
		Instructions: []string{"find-str hello", "single -1"},
	})
	require.NoError(t, err)

	res, err := i.Run(rc, []string{"find-sig greeting", "add-offset 1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, interp.Addresses{0x402001}, res.Addresses)

	res, err = i.Run(rc, []string{"find-sig --path greeting.sig"}, nil)
	require.NoError(t, err)
	assert.Equal(t, interp.Addresses{0x402000}, res.Addresses)
}

func TestFindSigCycle(t *testing.T) {
	i, rc := newInterp(t, fixture())
	rc.Policy = interp.PolicyRecover
	_, err := signature.Save(rc.ProjectDir(), &signature.Signature{
		Name:         "loop",
		Instructions: []string{"find-sig loop"},
	})
	require.NoError(t, err)

	_, err = i.Find(rc, "loop", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, interp.ErrRecursionLimit)
}

func TestDefaultAliases(t *testing.T) {
	aliases := commands.DefaultAliases()
	reg := commands.Default()
	for _, k := range aliases.Keys() {
		v, _ := aliases.Get(k)
		_, err := reg.Lookup(v)
		assert.NoError(t, err, "alias %s expands to an unknown command", k)
	}
}
