package color

import (
	"fmt"
	"os"
	"strings"
)

// ANSI color codes
const (
	Reset   = "\033[0m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
	Bold    = "\033[1m"
)

// Color represents a colorizer that can be enabled or disabled
type Color struct {
	enabled bool
}

// New creates a new Color instance
func New(enabled bool) *Color {
	return &Color{enabled: enabled && shouldEnableColor()}
}

// shouldEnableColor determines if color should be enabled based on environment
func shouldEnableColor() bool {
	// Check NO_COLOR environment variable (https://no-color.org/)
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	// Check TERM environment variable
	term := os.Getenv("TERM")
	if term == "dumb" || term == "" {
		return false
	}

	return true
}

// Add colors a string to indicate additions (green)
func (c *Color) Add(text string) string {
	if !c.enabled {
		return text
	}
	return Green + text + Reset
}

// Change colors a string to indicate modifications (yellow)
func (c *Color) Change(text string) string {
	if !c.enabled {
		return text
	}
	return Yellow + text + Reset
}

// Destroy colors a string to indicate removals and failures (red)
func (c *Color) Destroy(text string) string {
	if !c.enabled {
		return text
	}
	return Red + text + Reset
}

// Bold makes text bold
func (c *Color) Bold(text string) string {
	if !c.enabled {
		return text
	}
	return Bold + text + Reset
}

// Cyan colors text cyan (for headers and labels)
func (c *Color) Cyan(text string) string {
	if !c.enabled {
		return text
	}
	return Cyan + text + Reset
}

// StatusSymbol returns the symbol used for a table outcome in the summary
func (c *Color) StatusSymbol(status string) string {
	switch status {
	case "create":
		return c.Add("+")
	case "modify":
		return c.Change("~")
	case "rename":
		return c.Destroy("-")
	default:
		return " "
	}
}

// FormatTableLine formats one table outcome line in the summary
func (c *Color) FormatTableLine(status, name string) string {
	return fmt.Sprintf("  %s %s", c.StatusSymbol(status), name)
}

// FormatTargetHeader formats the per-target summary header with counts
func (c *Color) FormatTargetHeader(target string, created, modified, renamed, identical int) string {
	parts := []string{
		c.Add(fmt.Sprintf("%d to create", created)),
		c.Change(fmt.Sprintf("%d to modify", modified)),
		c.Destroy(fmt.Sprintf("%d to rename", renamed)),
		fmt.Sprintf("%d identical", identical),
	}

	return fmt.Sprintf("%s: %s", c.Bold(target), strings.Join(parts, ", "))
}

// FormatFailure formats a failed target line with its reason
func (c *Color) FormatFailure(target, reason string) string {
	return fmt.Sprintf("%s: %s (%s)", c.Bold(target), c.Destroy("failed"), reason)
}
