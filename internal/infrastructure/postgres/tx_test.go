package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPatternEscapesWildcards(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"defi", "%defi%"},
		{"100%", `%100\%%`},
		{"snake_case", `%snake\_case%`},
		{`C:\tmp`, `%C:\\tmp%`},
		{`\%`, `%\\\%%`},
		{"", "%%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, containsPattern(tt.in), tt.in)
	}
}
