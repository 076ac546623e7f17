package alias

import (
	"fmt"
	"strings"
)

// Mode selects how alias keys are matched against an instruction line.
type Mode int

const (
	// MatchPrefix rewrites any line that starts with the key text, even when
	// the key ends in the middle of a word. Existing signature files rely on it.
	MatchPrefix Mode = iota
	// MatchToken only rewrites a line whose first whitespace-delimited token
	// equals the key.
	MatchToken
)

func (m Mode) String() string {
	switch m {
	case MatchPrefix:
		return "prefix"
	case MatchToken:
		return "token"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so modes can be read
// straight from config files.
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// ParseMode converts a config value to a Mode. The empty string is MatchPrefix.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "prefix":
		return MatchPrefix, nil
	case "token":
		return MatchToken, nil
	default:
		return MatchPrefix, fmt.Errorf("unknown alias mode %q (expected 'prefix' or 'token')", s)
	}
}

// Resolve expands aliases in line. Keys are tried in table order, each at
// most once, against the line as rewritten so far.
func Resolve(line string, t *Table, mode Mode) string {
	if t == nil {
		return line
	}
	for _, k := range t.keys {
		if !matches(line, k, mode) {
			continue
		}
		line = strings.Replace(line, k, t.values[k], 1)
	}
	return line
}

func matches(line, key string, mode Mode) bool {
	if !strings.HasPrefix(line, key) {
		return false
	}
	if mode == MatchPrefix {
		return true
	}
	rest := line[len(key):]
	return len(rest) == 0 || rest[0] == ' ' || rest[0] == '\t'
}
