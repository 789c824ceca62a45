package astro

// Lahiri ayanamsa polynomial coefficients (degrees, T in Julian centuries).
const (
	ayanamsaC0        = 24.04225
	ayanamsaC1        = 1.396971278
	ayanamsaC2        = 0.0003086
	ayanamsaT3Divisor = 49931.0
	ayanamsaT4Divisor = 15300.0
	ayanamsaT5Divisor = 2000000.0
)

// Ayanamsa returns the Lahiri precession correction in degrees for jd,
// from a closed-form fifth-degree polynomial in centuries since J2000.0.
func Ayanamsa(jd float64) float64 {
	t := Centuries(jd)
	t2 := t * t
	t3 := t2 * t
	t4 := t3 * t
	t5 := t4 * t
	return ayanamsaC0 +
		ayanamsaC1*t -
		ayanamsaC2*t2 +
		t3/ayanamsaT3Divisor -
		t4/ayanamsaT4Divisor -
		t5/ayanamsaT5Divisor
}
