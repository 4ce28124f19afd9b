package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToBool(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"Bool", true, true},
		{"FloatZero", float64(0), false},
		{"FloatOne", float64(1), true},
		{"StringYes", "yes", true},
		{"StringTrueUpper", "TRUE", true},
		{"StringOff", "off", false},
		{"Nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToBool(tt.in))
		})
	}
}

func TestToInt(t *testing.T) {
	assert.Equal(t, 3, ToInt(float64(3)))
	assert.Equal(t, 42, ToInt(" 42 "))
	assert.Equal(t, 0, ToInt("abc"))
	assert.Equal(t, 1, ToInt(true))
}
