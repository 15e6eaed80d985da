package backdrive

import (
	"errors"
	"math"

	"github.com/roach88/tally/internal/gamedb"
)

// solution is a solved machine count and clock speed.
type solution struct {
	copies float64
	clock  float64
}

// solveConsumedPower finds the copies and clock speed that draw the
// requested power. A fractional machine follows the split model, one
// extra machine at a reduced clock, so the draw satisfies
//
//	rate = power * clock^exp * (whole + frac^exp)
//
// In VariableClock mode the clock is kept and the remainder re-raised
// by 1/exp; in UniformClock mode the count is rounded up at the max
// clock and the shared clock re-solved.
func solveConsumedPower(clock, rate float64, power gamedb.Power, policy BuildingPolicy) (solution, error) {
	if power.Power == 0 {
		return solution{}, errors.New("power consumption is zero")
	}
	if power.PowerExponent == 0 {
		// Clock speed has no effect, both modes reduce to whole
		// machines.
		return solution{copies: math.Ceil(rate / power.Power), clock: 1}, nil
	}
	if policy.Mode == UniformClock {
		overall := rate / (power.Power * math.Pow(policy.UniformMaxClock, power.PowerExponent))
		copies := math.Ceil(overall)
		newClock := math.Pow(rate/(power.Power*copies), 1/power.PowerExponent)
		return solution{copies: copies, clock: newClock}, nil
	}
	perClock := rate / (power.Power * math.Pow(clock, power.PowerExponent))
	whole, frac := math.Modf(perClock)
	return solution{copies: whole + math.Pow(frac, 1/power.PowerExponent), clock: clock}, nil
}

// solveItemRate finds the copies and clock speed producing or
// consuming the requested item rate. Item rates scale linearly with
// clock speed, so the overall multiplier rate/base splits directly
// into copies times clock.
func solveItemRate(clock, rate, baseRate float64, overclockable bool, policy BuildingPolicy) (solution, error) {
	if baseRate == 0 {
		return solution{}, errors.New("the base rate for this item is zero")
	}
	overall := rate / baseRate
	if !overclockable {
		return solution{copies: math.Ceil(overall), clock: 1}, nil
	}
	if policy.Mode == UniformClock {
		copies := math.Ceil(overall / policy.UniformMaxClock)
		return solution{copies: copies, clock: overall / copies}, nil
	}
	return solution{copies: overall / clock, clock: clock}, nil
}

// solveProducedPower is solveConsumedPower with the exponent inverted:
// production scales with clock^(1/exp) rather than clock^exp.
func solveProducedPower(clock, rate float64, power gamedb.Power, policy BuildingPolicy) (solution, error) {
	if power.Power == 0 {
		return solution{}, errors.New("power production is zero")
	}
	if power.PowerExponent == 0 {
		return solution{copies: math.Ceil(rate / power.Power), clock: 1}, nil
	}
	if policy.Mode == UniformClock {
		overall := rate / (power.Power * math.Pow(policy.UniformMaxClock, 1/power.PowerExponent))
		copies := math.Ceil(overall)
		newClock := math.Pow(rate/(power.Power*copies), power.PowerExponent)
		return solution{copies: copies, clock: newClock}, nil
	}
	perClock := rate / (power.Power * math.Pow(clock, 1/power.PowerExponent))
	whole, frac := math.Modf(perClock)
	return solution{copies: whole + math.Pow(frac, power.PowerExponent), clock: clock}, nil
}
