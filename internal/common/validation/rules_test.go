package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlankHelpers(t *testing.T) {
	assert.True(t, Blank(" \t\n"))
	assert.False(t, Blank(" x "))
	assert.Equal(t, 2, CountNonBlank([]string{"a", " ", "b", ""}))
	assert.True(t, AllNonBlank([]string{"a", "b"}))
	assert.False(t, AllNonBlank([]string{"a", "  "}))
	assert.True(t, AllNonBlank(nil))
}

func TestExactSequence(t *testing.T) {
	tests := []struct {
		name    string
		numbers []int
		n       int
		want    bool
	}{
		{"ordered", []int{1, 2, 3}, 3, true},
		{"shuffled", []int{3, 1, 2}, 3, true},
		{"duplicate", []int{1, 1, 3}, 3, false},
		{"out of range", []int{0, 1, 2}, 3, false},
		{"short", []int{1, 2}, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExactSequence(tt.numbers, tt.n))
		})
	}
}
