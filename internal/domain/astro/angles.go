// Package astro holds the time-system arithmetic and coordinate transforms
// used to turn equatorial positions into ecliptic longitudes.
//
// Every function is pure: angles go in and out in degrees, instants are
// converted to UTC before any arithmetic.
package astro

import "math"

const (
	// J2000 is the Julian Day of the J2000.0 epoch (2000-01-01 12:00 TT).
	J2000 = 2451545.0

	// DaysPerCentury is the length of a Julian century in days.
	DaysPerCentury = 36525.0

	fullCircle = 360.0
)

// Normalize wraps an angle in degrees into [0, 360).
func Normalize(deg float64) float64 {
	r := math.Mod(deg, fullCircle)
	if r < 0 {
		r += fullCircle
	}
	// -tiny + 360 rounds to 360 in float64.
	if r >= fullCircle {
		r = 0
	}
	return r
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Centuries returns Julian centuries elapsed since J2000.0.
func Centuries(jd float64) float64 {
	return (jd - J2000) / DaysPerCentury
}
