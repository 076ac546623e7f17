package signature

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
# the allocator entry point
{
    name: kalloc
    // extra fields are ignored
    author: someone
    instructions: [
        "find-str \"kalloc: size\" --null-terminated"
        "single 0"
        "# trailing comment line"
    ]
}
`

func TestParse(t *testing.T) {
	sig, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, "kalloc", sig.Name)
	assert.Equal(t, []string{
		`find-str "kalloc: size" --null-terminated`,
		"single 0",
		"# trailing comment line",
	}, sig.Instructions)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"garbage", `{ name: foo, instructions: [`},
		{"missing name", `{ instructions: ["single 0"] }`},
		{"missing instructions", `{ name: foo }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	orig := &Signature{
		Name: "target",
		Instructions: []string{
			"find-bytes 41414141",
			"",
			"stop-if-empty",
			`find-str "a \"quoted\" string"`,
			"add-offset-range 0 8 4",
		},
	}
	data, err := Marshal(orig)
	require.NoError(t, err)

	got, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, orig.Name, got.Name)
	assert.Equal(t, orig.Instructions, got.Instructions)
}

func TestSaveDoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	sig := &Signature{Name: "target", Instructions: []string{"single 0"}}

	first, err := Save(dir, sig)
	require.NoError(t, err)
	second, err := Save(dir, sig)
	require.NoError(t, err)
	third, err := Save(dir, sig)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "target.sig"), first)
	assert.Equal(t, filepath.Join(dir, "target.1.sig"), second)
	assert.Equal(t, filepath.Join(dir, "target.2.sig"), third)

	loaded, err := Load(second)
	require.NoError(t, err)
	assert.Equal(t, second, loaded.Path)
	assert.Equal(t, sig.Instructions, loaded.Instructions)
}

func TestCloneIsDeep(t *testing.T) {
	sig := &Signature{Name: "a", Instructions: []string{"single 0"}, Version: &Version{Min: "1.0"}}
	c := sig.Clone()
	c.Instructions[0] = "single 1"
	c.Version.Min = "2.0"
	assert.Equal(t, "single 0", sig.Instructions[0])
	assert.Equal(t, "1.0", sig.Version.Min)
}

func TestSupports(t *testing.T) {
	sig := &Signature{Name: "a", Version: &Version{Min: "20.0.0", Max: "22.4.0"}}
	tests := []struct {
		target string
		want   bool
	}{
		{"", true},
		{"19.6.0", false},
		{"20.0.0", true},
		{"21.1", true},
		{"22.4.0", true},
		{"23.0.0", false},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got, err := sig.Supports(tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	unbounded := &Signature{Name: "b"}
	ok, err := unbounded.Supports("1.0")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = sig.Supports("not-a-version")
	assert.ErrorIs(t, err, ErrTargetVersion)
}

func TestValidateTarget(t *testing.T) {
	assert.NoError(t, ValidateTarget(""))
	assert.NoError(t, ValidateTarget("17.4.1"))
	assert.ErrorIs(t, ValidateTarget("seventeen"), ErrTargetVersion)
}

func TestIsSignatureFile(t *testing.T) {
	assert.True(t, IsSignatureFile("a/b/target.sig"))
	assert.True(t, IsSignatureFile("target.1.SIG"))
	assert.False(t, IsSignatureFile("alias"))
	assert.False(t, IsSignatureFile(filepath.Join(os.TempDir(), "x.json")))
}

func TestVersionValidate(t *testing.T) {
	assert.NoError(t, (&Version{}).Validate())
	assert.NoError(t, (&Version{Min: "17.0", Max: "18.2.1"}).Validate())
	assert.ErrorIs(t, (&Version{Max: "not-a-version"}).Validate(), ErrInvalid)
}
