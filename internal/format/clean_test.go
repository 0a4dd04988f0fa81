package format

import "testing"

func TestCleanOutput(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "hello world\r\n", "hello world\r\n"},
		{"newlines kept", "a\nb\nc", "a\nb\nc"},
		{"del stripped", "a\x7fb", "ab"},
		{"bell stripped", "ding\a", "ding"},
		{"null and controls stripped", "\x00a\x01b\x02", "ab"},
		{"ansi escape kept", "\x1b[32mgreen\x1b[0m", "\x1b[32mgreen\x1b[0m"},
		{"tab expands", "a\tb", "a    b"},
		{"non-ascii kept", "naïve résumé", "naïve résumé"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanOutput(tc.in); got != tc.want {
				t.Fatalf("CleanOutput(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
