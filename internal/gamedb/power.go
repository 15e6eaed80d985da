package gamedb

import "math"

// Power describes how a building's power draw or output scales with
// clock speed.
type Power struct {
	// Power is the rate in MW at 100% clock speed.
	Power float64 `json:"power"`
	// PowerExponent controls overclock scaling. Zero means clock
	// speed has no effect on this building.
	PowerExponent float64 `json:"power_exponent"`
}

// ConsumptionRate returns the power drawn at the given clock speed.
func (p Power) ConsumptionRate(clock float64) float64 {
	return p.Power * math.Pow(clock, p.PowerExponent)
}

// ProductionRate returns the power produced at the given clock speed.
func (p Power) ProductionRate(clock float64) float64 {
	if p.PowerExponent == 0 {
		return p.Power
	}
	return p.Power * math.Pow(clock, 1/p.PowerExponent)
}

// Overclockable reports whether clock speed affects this building.
func (p Power) Overclockable() bool {
	return p.PowerExponent != 0
}
