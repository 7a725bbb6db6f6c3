package logger

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{name: "shorter than limit", in: "hello", maxLen: 10, want: "hello"},
		{name: "exactly at limit", in: "hello", maxLen: 5, want: "hello"},
		{name: "ascii truncation", in: "hello world", maxLen: 8, want: "hello..."},
		{name: "tiny limit", in: "hello", maxLen: 3, want: "..."},
		{name: "cyrillic truncation", in: strings.Repeat("д", 60), maxLen: 50, want: strings.Repeat("д", 47) + "..."},
		{name: "multibyte at the cut", in: "aé" + strings.Repeat("漢", 10), maxLen: 6, want: "aé漢..."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := truncateString(tc.in, tc.maxLen)
			if got != tc.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tc.in, tc.maxLen, got, tc.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncateString produced invalid UTF-8: %q", got)
			}
		})
	}
}
