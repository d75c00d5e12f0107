// Package weighmath implements the pure unit-normalisation and
// net-weight arithmetic of the weighing engine (spec §4.1). No I/O.
package weighmath

import (
	"fmt"
	"math"
)

const (
	Kg  = "kg"
	Lbs = "lbs"

	// MaxWeightKg bounds any single bruto/tare reading.
	MaxWeightKg = 100_000
)

// Normalize converts a raw reading to kilograms, rounding
// pound-to-kilogram conversions to the nearest integer.
func Normalize(weight int, unit string) (int, error) {
	switch unit {
	case Kg:
		return weight, nil
	case Lbs:
		return int(math.Round(float64(weight) * 0.453592)), nil
	default:
		return 0, fmt.Errorf("unsupported unit %q", unit)
	}
}

// Validate enforces 0 < weight <= ceiling after normalisation.
func Validate(weightKg int) error {
	if weightKg <= 0 {
		return fmt.Errorf("weight must be positive, got %d", weightKg)
	}
	if weightKg > MaxWeightKg {
		return fmt.Errorf("weight %d kg exceeds ceiling of %d kg", weightKg, MaxWeightKg)
	}
	return nil
}

// TruckTara computes truck_tara = max(0, B_out - T_c).
func TruckTara(brutoOut, containerTara int) int {
	v := brutoOut - containerTara
	if v < 0 {
		return 0
	}
	return v
}

// NetWeight computes neto = max(0, B_in - B_out).
func NetWeight(brutoIn, brutoOut int) int {
	v := brutoIn - brutoOut
	if v < 0 {
		return 0
	}
	return v
}
