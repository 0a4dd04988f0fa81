// Package format scrubs command output before it goes on the wire.
package format

import "strings"

// CleanOutput drops bytes a terminal emulator cannot display. Printable
// ASCII, newlines, carriage returns, and non-ASCII runes pass through.
// Tabs expand to four spaces. ANSI escapes are kept so styled responses
// survive; the remaining C0 controls and DEL are stripped.
func CleanOutput(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == 0x1b:
			b.WriteRune(r)
		case r == '\t':
			b.WriteString("    ")
		case r >= 0x20 && r != 0x7f:
			b.WriteRune(r)
		}
	}
	return b.String()
}
