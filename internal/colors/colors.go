// Package colors holds the terminal palette used by the fa CLI.
//
// Colors follow fatih/color's TTY detection: they are off when stdout is
// piped or redirected unless forced on with Init.
package colors

import "github.com/fatih/color"

// Init overrides the auto-detected color setting. A nil forceColor keeps the
// detected value.
func Init(forceColor *bool) {
	if forceColor != nil {
		color.NoColor = !*forceColor
	}
}

// Enabled returns true if colors are currently enabled.
func Enabled() bool {
	return !color.NoColor
}

// Styles
func Bold() *color.Color  { return color.New(color.Bold) }
func Faint() *color.Color { return color.New(color.Faint) }

// Foreground
func Red() *color.Color    { return color.New(color.FgRed) }
func Green() *color.Color  { return color.New(color.FgGreen) }
func Yellow() *color.Color { return color.New(color.FgYellow) }
func Blue() *color.Color   { return color.New(color.FgBlue) }
func Cyan() *color.Color   { return color.New(color.FgCyan) }

// BoldGreen marks the active selection in listings.
func BoldGreen() *color.Color { return color.New(color.Bold, color.FgGreen) }
