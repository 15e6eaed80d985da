package accounting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCopies(t *testing.T) {
	tests := []struct {
		name          string
		copies        float64
		clock         float64
		wantWhole     float64
		wantLastClock float64
	}{
		{
			// 3 machines at 200% plus one at 150%.
			name:   "fractional copies at high clock",
			copies: 3.75, clock: 2.0,
			wantWhole: 3, wantLastClock: 1.5,
		},
		{
			name:   "whole copies have no extra machine",
			copies: 4, clock: 1.0,
			wantWhole: 4, wantLastClock: 0,
		},
		{
			name:   "single partial machine",
			copies: 0.5, clock: 1.0,
			wantWhole: 0, wantLastClock: 0.5,
		},
		{
			name:   "zero copies",
			copies: 0, clock: 2.5,
			wantWhole: 0, wantLastClock: 0,
		},
		{
			name:   "fraction scales with clock",
			copies: 2.5, clock: 0.5,
			wantWhole: 2, wantLastClock: 0.25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			whole, lastClock := SplitCopies(tt.copies, tt.clock)
			assert.Equal(t, tt.wantWhole, whole)
			assert.InDelta(t, tt.wantLastClock, lastClock, 1e-9)
		})
	}
}

func TestClampClockSpeed(t *testing.T) {
	assert.Equal(t, MinClockSpeed, ClampClockSpeed(0))
	assert.Equal(t, MinClockSpeed, ClampClockSpeed(-1))
	assert.Equal(t, 1.0, ClampClockSpeed(1.0))
	assert.Equal(t, MaxClockSpeed, ClampClockSpeed(3.0))
}
