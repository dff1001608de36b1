package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"fix", "todo", "in", "parser_go"}, Tokenize("Fix: TODO in parser_go!"))
	assert.Empty(t, Tokenize("  ...  "))
	assert.Equal(t, []string{"hackéd", "the", "parser"}, Tokenize("Hackéd the parser"))
	assert.Equal(t, []string{"naïve", "überfix", "2"}, Tokenize("naïve Überfix #2"))
}

func TestHasDebtKeyword(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"TODO: clean this up", true},
		{"quick hack for release", true},
		{"FIXME(alice) overflow", true},
		{"mark with XXX", true},
		{"todo, fixme and hack all at once", true},
		{"refactor todolist component", false}, // substring only
		{"unhacked and fixmeup", false},
		{"to-do later", false},
		{"hackéd the parser", false},
		{"todoé list", false},
		{"xxxü", false},
		{"naïve hack", true},
		{"Ärger: FIXME", true},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, HasDebtKeyword(tt.message))
		})
	}
}

func TestTechDebtIndex(t *testing.T) {
	assert.Equal(t, 0.0, TechDebtIndex(0, 0))
	assert.Equal(t, 0.0, TechDebtIndex(0, 10))
	assert.Equal(t, 100.0, TechDebtIndex(4, 4))
	assert.Equal(t, 33.33, TechDebtIndex(1, 3))
	assert.Equal(t, 66.67, TechDebtIndex(2, 3))
}
