package utils

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/apex/log/handlers/cli"
	"github.com/blacktop/fa/internal/colors"
)

var normalPadding = cli.Default.Padding

var colorAddr = colors.Faint().SprintfFunc()

// Indent indents apex log line to supplied level
func Indent(f func(s string), level int) func(string) {
	return func(s string) {
		cli.Default.Padding = normalPadding * level
		f(s)
		cli.Default.Padding = normalPadding
	}
}

// Pad creates left padding for printf members
func Pad(length int) string {
	if length > 0 {
		return strings.Repeat(" ", length)
	}
	return " "
}

// ParseInt converts a decimal or 0x/0o/0b prefixed string to int64.
// A leading '-' or '+' sign is allowed.
func ParseInt(s string) (int64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 0 {
		return 0, fmt.Errorf("empty integer")
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		if u, uerr := strconv.ParseUint(s, 0, 64); uerr == nil {
			return int64(u), nil
		}
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return v, nil
}

// IsInt returns true if s parses with ParseInt.
func IsInt(s string) bool {
	_, err := ParseInt(s)
	return err == nil
}

// HexDump renders data as 16 byte rows prefixed with their virtual address.
func HexDump(data []byte, vaddr uint64) string {
	var sb strings.Builder
	for off := 0; off < len(data); off += 16 {
		end := min(off+16, len(data))
		row := data[off:end]
		sb.WriteString(colorAddr("%#016x", vaddr+uint64(off)))
		sb.WriteString("  ")
		enc := hex.EncodeToString(row)
		for i := 0; i < 16; i++ {
			if i < len(row) {
				sb.WriteString(enc[i*2 : i*2+2])
			} else {
				sb.WriteString("  ")
			}
			sb.WriteByte(' ')
			if i == 7 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(" |")
		for _, b := range row {
			if b < 32 || b > 126 {
				b = '.'
			}
			sb.WriteByte(b)
		}
		sb.WriteString("|\n")
	}
	return sb.String()
}
