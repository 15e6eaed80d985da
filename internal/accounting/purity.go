package accounting

import "fmt"

// Purity of a resource deposit, well pad, or geyser. Better purity
// extracts faster or produces more power.
type Purity string

// Purity levels, worst to best.
const (
	PurityImpure Purity = "impure"
	PurityNormal Purity = "normal"
	PurityPure   Purity = "pure"
)

// Purities returns all purity levels, worst to best.
func Purities() []Purity {
	return []Purity{PurityImpure, PurityNormal, PurityPure}
}

// ParsePurity converts a purity identifier. Empty input returns
// normal purity.
func ParsePurity(s string) (Purity, error) {
	switch Purity(s) {
	case PurityImpure, PurityNormal, PurityPure:
		return Purity(s), nil
	case "":
		return PurityNormal, nil
	default:
		return "", fmt.Errorf("unknown purity %q", s)
	}
}

// Multiplier returns the rate multiplier for this purity. The zero
// value behaves as normal purity.
func (p Purity) Multiplier() float64 {
	switch p {
	case PurityImpure:
		return 0.5
	case PurityPure:
		return 2.0
	default:
		return 1.0
	}
}

// Name returns the display name, e.g. "Impure".
func (p Purity) Name() string {
	switch p {
	case PurityImpure:
		return "Impure"
	case PurityPure:
		return "Pure"
	default:
		return "Normal"
	}
}

// Next returns the next better purity, saturating at pure.
func (p Purity) Next() Purity {
	switch p {
	case PurityImpure:
		return PurityNormal
	case PurityNormal, "":
		return PurityPure
	default:
		return PurityPure
	}
}

// Previous returns the next worse purity, saturating at impure.
func (p Purity) Previous() Purity {
	switch p {
	case PurityPure:
		return PurityNormal
	case PurityNormal, "":
		return PurityImpure
	default:
		return PurityImpure
	}
}

// normalize maps the zero value to normal purity so serialized
// settings always carry an explicit level.
func (p Purity) normalize() Purity {
	if p == "" {
		return PurityNormal
	}
	return p
}
