package colors

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestInit(t *testing.T) {
	orig := color.NoColor
	t.Cleanup(func() { color.NoColor = orig })

	on, off := true, false
	tests := []struct {
		name  string
		start bool
		force *bool
		want  bool
	}{
		{"force on", true, &on, true},
		{"force off", false, &off, false},
		{"nil keeps enabled", false, nil, true},
		{"nil keeps disabled", true, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			color.NoColor = tt.start
			Init(tt.force)
			assert.Equal(t, tt.want, Enabled())
		})
	}
}

func TestPalette(t *testing.T) {
	orig := color.NoColor
	t.Cleanup(func() { color.NoColor = orig })

	palette := map[string]func() *color.Color{
		"bold":       Bold,
		"faint":      Faint,
		"red":        Red,
		"green":      Green,
		"yellow":     Yellow,
		"blue":       Blue,
		"cyan":       Cyan,
		"bold green": BoldGreen,
	}
	for name, fn := range palette {
		t.Run(name, func(t *testing.T) {
			color.NoColor = false
			assert.Contains(t, fn().Sprint("0x1000"), "\x1b[")
			color.NoColor = true
			assert.Equal(t, "0x1000", fn().Sprint("0x1000"))
		})
	}
}
