package alias

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table(t *testing.T, src string) *Table {
	t.Helper()
	tbl, err := Parse(strings.NewReader(src), "test")
	require.NoError(t, err)
	return tbl
}

func TestParse(t *testing.T) {
	tbl := table(t, `
# comment
ms = find-bytes
  fs=find-str --null-terminated
`)
	assert.Equal(t, []string{"ms", "fs"}, tbl.Keys())
	v, ok := tbl.Get("fs")
	assert.True(t, ok)
	assert.Equal(t, "find-str --null-terminated", v)
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse(strings.NewReader("ms = find-bytes\nbroken line\n"), "global")
	require.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "global:2")
}

func TestMergeProjectWins(t *testing.T) {
	global := table(t, "a = one\nb = two\n")
	project := table(t, "b = project-two\nc = three\n")

	merged := global.Merge(project)
	assert.Equal(t, []string{"a", "b", "c"}, merged.Keys())
	v, _ := merged.Get("b")
	assert.Equal(t, "project-two", v)

	// inputs are untouched
	v, _ = global.Get("b")
	assert.Equal(t, "two", v)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		table string
		mode  Mode
		line  string
		want  string
	}{
		{
			name:  "simple expansion",
			table: "ms = find-bytes",
			line:  "ms 41414141",
			want:  "find-bytes 41414141",
		},
		{
			name:  "no match passes through",
			table: "ms = find-bytes",
			line:  "single 0",
			want:  "single 0",
		},
		{
			name:  "only first occurrence is replaced",
			table: "ms = find-bytes",
			line:  "ms ms",
			want:  "find-bytes ms",
		},
		{
			name:  "later keys see the rewritten line",
			table: "x = y 1\ny = single",
			line:  "x",
			want:  "single 1",
		},
		{
			name:  "expansion is not re-applied by the same key",
			table: "s = s s",
			line:  "s 0",
			want:  "s s 0",
		},
		{
			name:  "prefix mode matches inside a word",
			table: "sin = single",
			line:  "single 0",
			want:  "singlegle 0",
		},
		{
			name:  "token mode requires a full token",
			table: "sin = single",
			mode:  MatchToken,
			line:  "single 0",
			want:  "single 0",
		},
		{
			name:  "token mode expands a bare token",
			table: "first = single 0",
			mode:  MatchToken,
			line:  "first",
			want:  "single 0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.line, table(t, tt.table), tt.mode))
		})
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, MatchPrefix, m)
	m, err = ParseMode("Token")
	require.NoError(t, err)
	assert.Equal(t, MatchToken, m)
	_, err = ParseMode("regex")
	assert.Error(t, err)

	var mode Mode
	require.NoError(t, mode.UnmarshalText([]byte("token")))
	assert.Equal(t, MatchToken, mode)
	text, err := MatchPrefix.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "prefix", string(text))
}

func TestLoadOptional(t *testing.T) {
	dir := t.TempDir()
	tbl, err := LoadOptional(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())

	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("oops\n"), 0o644))
	_, err = LoadOptional(path)
	assert.ErrorIs(t, err, ErrParse)
}
