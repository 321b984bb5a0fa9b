package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCase(t *testing.T) {
	tests := []struct {
		input string
		name  string
		want  bool
	}{
		{"fix bug", "lower-case", true},
		{"Fix bug", "lower-case", false},
		{"FIX BUG", "upper-case", true},
		{"Fix bug", "sentence-case", true},
		{"fix bug", "sentence-case", false},
		{"FIX bug", "sentence-case", false},
		{"Fix Bug", "sentence-case", true},
		{"Fix Bug", "start-case", true},
		{"Fix bug", "start-case", false},
		{"FixBug", "pascal-case", true},
		{"fixBug", "pascal-case", false},
		{"fixBug", "camel-case", true},
		{"fix-bug", "kebab-case", true},
		{"fix_bug", "kebab-case", false},
		{"fix_bug", "snake-case", true},
		{"123 numbers first", "sentence-case", true},
		{"", "upper-case", true},
	}

	for _, tt := range tests {
		got, err := isCase(tt.input, tt.name)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "isCase(%q, %q)", tt.input, tt.name)
	}
}

func TestIsCase_Unknown(t *testing.T) {
	_, err := isCase("x", "wavy-case")
	assert.Error(t, err)
}

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"HTTP", "Server", "2", "go"}, words("HTTPServer2 go"))
	assert.Equal(t, []string{"fix", "Bug"}, words("fixBug"))
	assert.Equal(t, []string{"a", "b", "c"}, words("a-b_c"))
	assert.Empty(t, words("--"))
}
