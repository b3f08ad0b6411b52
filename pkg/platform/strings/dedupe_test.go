package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupe(t *testing.T) {
	tests := []struct {
		name  string
		fn    func([]string) []string
		input []string
		want  []string
	}{
		{"nil stays nil", DedupeAndTrim, nil, nil},
		{"empty stays empty", DedupeAndTrim, []string{}, []string{}},
		{"blanks dropped", DedupeAndTrim, []string{" ", "", "\t"}, []string{}},
		{"first occurrence wins", DedupeAndTrim, []string{" lamp ", "desk", "lamp", "desk "}, []string{"lamp", "desk"}},
		{"case kept without folding", DedupeAndTrim, []string{"Lamp", "lamp"}, []string{"Lamp", "lamp"}},
		{"lower folds emails", DedupeAndTrimLower, []string{"Ana@Shop.io", " ana@shop.io", "bo@shop.io"}, []string{"ana@shop.io", "bo@shop.io"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.input))
		})
	}
}

func TestDedupe_DoesNotMutateInput(t *testing.T) {
	in := []string{" a ", "A"}
	_ = DedupeAndTrimLower(in)
	assert.Equal(t, []string{" a ", "A"}, in)
}
