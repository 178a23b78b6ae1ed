package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatShape(t *testing.T) {
	tests := []struct {
		shape []int
		want  string
	}{
		{[]int{25, 25}, "(25, 25)"},
		{[]int{649}, "(649,)"},
		{[]int{2, 3, 4}, "(2, 3, 4)"},
		{nil, "()"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatShape(tt.shape))
	}
}

func TestParseShape(t *testing.T) {
	tests := []struct {
		in   string
		want []int
	}{
		{"(25, 25)", []int{25, 25}},
		{"(25,25)", []int{25, 25}},
		{"(649,)", []int{649}},
		{"649", []int{649}},
		{" (2, 3, 4) ", []int{2, 3, 4}},
	}
	for _, tt := range tests {
		got, err := ParseShape(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseShapeInvalid(t *testing.T) {
	for _, in := range []string{"", "()", "(,)", "(a, b)", "(0, 5)", "(-1,)", "(25, 25"} {
		_, err := ParseShape(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestParseShapeRoundTrip(t *testing.T) {
	for _, shape := range [][]int{{25, 25}, {649}, {5, 7, 3}} {
		got, err := ParseShape(FormatShape(shape))
		require.NoError(t, err)
		assert.Equal(t, shape, got)
	}
}

func TestProduct(t *testing.T) {
	assert.Equal(t, 625, Product([]int{25, 25}))
	assert.Equal(t, 649, Product([]int{649}))
	assert.Equal(t, 1, Product(nil))
}
