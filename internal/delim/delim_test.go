package delim

import "testing"

func TestUnescape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"null escape", `\0`, "\x00"},
		{"newline escape", `\n`, "\n"},
		{"raw newline", "\n", "\n"},
		{"escape with trailing space", "\\n ", "\n "},
		{"tab escape", `\t`, "\t"},
		{"carriage return", `\r`, "\r"},
		{"bell", `\a`, "\x07"},
		{"backspace", `\b`, "\x08"},
		{"vertical tab", `\v`, "\x0b"},
		{"form feed", `\f`, "\x0c"},
		{"escape lower", `\e`, "\x1b"},
		{"escape upper", `\E`, "\x1b"},
		{"literal backslash", `\\`, `\`},
		{"unknown escape kept", `\q`, `\q`},
		{"trailing backslash", `\`, "/"},
		{"mixed", `a\tb\nc`, "a\tb\nc"},
		{"plain", "abc", "abc"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Unescape(tt.in); got != tt.want {
				t.Errorf("Unescape(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
