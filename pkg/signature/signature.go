// Package signature reads and writes persisted signature files.
//
// A signature file is an Hjson document (comment tolerant JSON superset) with
// a required `name` and an ordered list of `instructions`. One signature lives
// in one file named `<name>.sig`; further definitions of the same symbol use
// `<name>.<n>.sig` so nothing is overwritten.
package signature

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hjson/hjson-go/v4"
)

// Ext is the file extension of persisted signatures.
const Ext = ".sig"

// ErrInvalid is returned when a signature document is malformed.
var ErrInvalid = errors.New("invalid signature")

// Parse decodes a signature document.
func Parse(data []byte) (*Signature, error) {
	var sig Signature
	if err := hjson.Unmarshal(data, &sig); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if sig.Name == "" {
		return nil, fmt.Errorf("%w: missing required field 'name'", ErrInvalid)
	}
	if sig.Instructions == nil {
		return nil, fmt.Errorf("%w: missing required field 'instructions'", ErrInvalid)
	}
	return &sig, nil
}

// Load reads and decodes the signature file at path.
func Load(path string) (*Signature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sig, err := Parse(data)
	if err != nil {
		return nil, err
	}
	sig.Path = path
	return sig, nil
}

// Marshal encodes a signature as an indented Hjson document.
func Marshal(sig *Signature) ([]byte, error) {
	opts := hjson.DefaultOptions()
	opts.IndentBy = "    "
	return hjson.MarshalWithOptions(sig, opts)
}

// Clone returns a deep copy of the signature.
func (s *Signature) Clone() *Signature {
	c := *s
	c.Instructions = slices.Clone(s.Instructions)
	if s.Version != nil {
		v := *s.Version
		c.Version = &v
	}
	return &c
}

// IsSignatureFile returns true if path has the signature extension.
func IsSignatureFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), Ext)
}

// NextPath returns the first free file name for a signature of the given
// symbol inside dir: `<name>.sig`, then `<name>.1.sig`, `<name>.2.sig`...
func NextPath(dir, name string) string {
	path := filepath.Join(dir, name+Ext)
	for i := 1; fileExists(path); i++ {
		path = filepath.Join(dir, fmt.Sprintf("%s.%d%s", name, i, Ext))
	}
	return path
}

// Save writes sig into dir without overwriting existing definitions and
// returns the path written.
func Save(dir string, sig *Signature) (string, error) {
	if sig.Name == "" {
		return "", fmt.Errorf("%w: missing required field 'name'", ErrInvalid)
	}
	data, err := Marshal(sig)
	if err != nil {
		return "", fmt.Errorf("failed to encode signature %s: %w", sig.Name, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create signature folder: %w", err)
	}
	path := NextPath(dir, sig.Name)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write signature file: %w", err)
	}
	return path, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
