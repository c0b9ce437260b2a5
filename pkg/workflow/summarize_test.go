package workflow

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exact limit", "hello", 5, "hello"},
		{"ascii cut", "hello world", 5, "hello"},
		{"multibyte cut mid-rune", "héllo", 2, "h"}, // é is 2 bytes starting at 1
		{"cjk cut mid-rune", "日本語", 4, "日"},         // each rune is 3 bytes
		{"cjk cut on boundary", "日本語", 6, "日本"},
		{"emoji cut mid-rune", "a🙂b", 3, "a"}, // 🙂 is 4 bytes
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.max)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got), "truncation must never emit invalid UTF-8")
			assert.LessOrEqual(t, len(got), tt.max)
		})
	}
}
