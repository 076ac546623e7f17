// Package alias loads alias tables and expands alias prefixes in
// instruction lines.
//
// An alias file holds one `key = value` pair per line. Two tables take part
// in a run: the global table and an optional project table merged after it.
package alias

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apex/log"
)

// FileName is the name of the project-scoped alias file.
const FileName = "alias"

// ErrParse is returned when an alias file contains a malformed line.
var ErrParse = errors.New("malformed alias file")

// Table is an ordered alias table.
type Table struct {
	keys   []string
	values map[string]string
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{values: make(map[string]string)}
}

// Set adds an alias. Re-setting an existing key replaces its expansion but
// keeps its position.
func (t *Table) Set(key, value string) {
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] = value
}

// Get returns the expansion for key.
func (t *Table) Get(key string) (string, bool) {
	v, ok := t.values[key]
	return v, ok
}

// Keys returns the alias keys in table order.
func (t *Table) Keys() []string {
	return append([]string(nil), t.keys...)
}

// Len returns the number of aliases.
func (t *Table) Len() int {
	return len(t.keys)
}

// Merge returns a new table holding t's entries followed by other's; keys
// present in both take other's expansion.
func (t *Table) Merge(other *Table) *Table {
	merged := NewTable()
	for _, k := range t.keys {
		merged.Set(k, t.values[k])
	}
	if other != nil {
		for _, k := range other.keys {
			merged.Set(k, other.values[k])
		}
	}
	return merged
}

// Parse reads an alias table. name identifies the source in errors.
func Parse(r io.Reader, name string) (*Table, error) {
	t := NewTable()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %s:%d: missing '=' in %q", ErrParse, name, lineNo, line)
		}
		k = strings.TrimSpace(k)
		if len(k) == 0 {
			return nil, fmt.Errorf("%w: %s:%d: empty alias name", ErrParse, name, lineNo)
		}
		t.Set(k, strings.TrimSpace(v))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read alias file %s: %w", name, err)
	}
	return t, nil
}

// ParseBytes parses an in-memory alias table.
func ParseBytes(data []byte, name string) (*Table, error) {
	return Parse(bytes.NewReader(data), name)
}

// Load reads the alias file at path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Parse(f, path)
	if err != nil {
		log.WithField("file", path).Error("failed to parse alias file")
		return nil, err
	}
	return t, nil
}

// LoadOptional is like Load but returns an empty table if path does not exist.
func LoadOptional(path string) (*Table, error) {
	t, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewTable(), nil
	}
	return t, err
}
