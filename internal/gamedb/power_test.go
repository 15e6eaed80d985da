package gamedb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPower_ConsumptionRate(t *testing.T) {
	tests := []struct {
		name  string
		power Power
		clock float64
		want  float64
	}{
		{"full clock", Power{Power: 4, PowerExponent: 1.6}, 1.0, 4},
		{"linear exponent doubles", Power{Power: 100, PowerExponent: 1}, 2.0, 200},
		{"linear exponent halves", Power{Power: 100, PowerExponent: 1}, 0.5, 50},
		{"quadratic exponent", Power{Power: 4, PowerExponent: 2}, 2.0, 16},
		{"zero exponent ignores clock", Power{Power: 30, PowerExponent: 0}, 2.5, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.power.ConsumptionRate(tt.clock), 1e-9)
		})
	}
}

func TestPower_ProductionRate(t *testing.T) {
	tests := []struct {
		name  string
		power Power
		clock float64
		want  float64
	}{
		{"full clock", Power{Power: 75, PowerExponent: 1.3}, 1.0, 75},
		{"linear exponent doubles", Power{Power: 75, PowerExponent: 1}, 2.0, 150},
		{"inverse exponent", Power{Power: 100, PowerExponent: 2}, 4.0, 200},
		{"zero exponent ignores clock", Power{Power: 200, PowerExponent: 0}, 2.5, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.power.ProductionRate(tt.clock), 1e-9)
		})
	}
}

func TestPower_Overclockable(t *testing.T) {
	assert.True(t, Power{Power: 4, PowerExponent: 1.6}.Overclockable())
	assert.False(t, Power{Power: 30, PowerExponent: 0}.Overclockable())
}
