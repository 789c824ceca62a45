package astro

import (
	"math"
	"time"
)

const (
	secondsPerDay = 86400.0

	// GMST polynomial, degrees.
	gmstAtJ2000   = 280.46061837
	gmstDailyRate = 360.98564736628
	gmstT2        = 0.000387933
	gmstT3Divisor = 38710000.0

	// Mean obliquity of the ecliptic, degrees.
	obliquityAtJ2000 = 23.4392911
	obliquityRate    = 0.0130042
)

// JulianDay returns the Julian Day of t using the standard algorithm on
// the proleptic Gregorian calendar. t is converted to UTC first; the day
// number increments at noon UTC.
func JulianDay(t time.Time) float64 {
	t = t.UTC()
	year, month, day := t.Date()
	y, m := year, int(month)
	if m <= 2 {
		y--
		m += 12
	}

	a := math.Floor(float64(y) / 100)
	b := 2 - a + math.Floor(a/4)

	sinceMidnight := t.Sub(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
	dayFraction := sinceMidnight.Seconds() / secondsPerDay

	return math.Floor(365.25*float64(y+4716)) +
		math.Floor(30.6001*float64(m+1)) +
		float64(day) + dayFraction + b - 1524.5
}

// GMST returns Greenwich Mean Sidereal Time in degrees, normalized to [0, 360).
func GMST(jd float64) float64 {
	d := jd - J2000
	t := d / DaysPerCentury
	gmst := gmstAtJ2000 + gmstDailyRate*d + gmstT2*t*t - t*t*t/gmstT3Divisor
	return Normalize(gmst)
}

// LocalSiderealTime returns GMST shifted by an east-positive geographic
// longitude, in degrees.
func LocalSiderealTime(jd, longitude float64) float64 {
	return Normalize(GMST(jd) + longitude)
}

// MeanObliquity returns the mean obliquity of the ecliptic in degrees.
func MeanObliquity(jd float64) float64 {
	return obliquityAtJ2000 - obliquityRate*Centuries(jd)
}
