package astro

import "math"

// FixedObliquity is the obliquity used for body positions. Centennial
// drift is not modelled for bodies; the ascendant uses MeanObliquity.
const FixedObliquity = 23.44

// poleTolerance is how close to ±90° a declination may get before its
// tangent is treated as undefined.
const poleTolerance = 1e-12

// EclipticLongitude converts right ascension and declination (degrees) to
// tropical ecliptic longitude in [0, 360) for obliquity eps.
func EclipticLongitude(ra, dec, eps float64) (float64, error) {
	if !finite(ra) || !finite(dec) || !finite(eps) {
		return 0, &TransformError{RA: ra, DEC: dec, Kind: ErrNonFiniteInput}
	}
	if IsPole(dec) {
		return 0, &TransformError{RA: ra, DEC: dec, Kind: ErrSingularInput}
	}
	return eclipticFromAngles(ra, dec, eps), nil
}

// eclipticFromAngles evaluates atan2(sin a·cos ε + tan b·sin ε, cos a) in
// degrees. The ascendant reuses it with a = LST and b = latitude.
func eclipticFromAngles(a, b, eps float64) float64 {
	ar, br, er := Radians(a), Radians(b), Radians(eps)
	y := math.Sin(ar)*math.Cos(er) + math.Tan(br)*math.Sin(er)
	x := math.Cos(ar)
	return Normalize(Degrees(math.Atan2(y, x)))
}

// HorizonLongitude is the same spherical transform applied to local
// sidereal time and observer latitude. Callers must reject |lat| = 90.
func HorizonLongitude(lst, latitude, eps float64) float64 {
	return eclipticFromAngles(lst, latitude, eps)
}

// IsPole reports whether lat sits on (or beyond) a pole within tolerance.
func IsPole(lat float64) bool {
	return math.Abs(math.Abs(lat)-90) < poleTolerance || math.Abs(lat) > 90
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
