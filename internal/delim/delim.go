// Package delim decodes delimiter arguments from the command line.
package delim

import "strings"

// Unescape decodes backslash escape sequences in a delimiter argument.
// Recognized escapes are \0 \a \b \v \f \n \r \t \e \E and \\. An
// unrecognized escape keeps its backslash, and a lone trailing
// backslash decodes to "/".
func Unescape(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '\\' {
			b.WriteRune(r)
			continue
		}
		i++
		if i == len(runes) {
			b.WriteRune('/')
			break
		}
		switch runes[i] {
		case '0':
			b.WriteByte(0x00)
		case 'a':
			b.WriteByte(0x07)
		case 'b':
			b.WriteByte(0x08)
		case 'v':
			b.WriteByte(0x0B)
		case 'f':
			b.WriteByte(0x0C)
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'e', 'E':
			b.WriteByte(0x1B)
		case '\\':
			b.WriteByte('\\')
		default:
			// Not an escape we know; keep it as written.
			b.WriteRune('\\')
			b.WriteRune(runes[i])
		}
	}
	return b.String()
}
