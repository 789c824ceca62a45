// Package sidereal maps tropical ecliptic longitudes onto the sidereal
// zodiac and derives sign, nakshatra and pada.
package sidereal

import (
	"math"

	"github.com/okian/vedichart/internal/domain/astro"
)

const (
	signSpan      = 30.0
	nakshatraSpan = 360.0 / NakshatraCount // 13°20'
	padaSpan      = nakshatraSpan / 4      // 3°20'
	padaCount     = 4
)

// Position is a longitude resolved onto the sidereal zodiac.
type Position struct {
	Tropical  float64
	Sidereal  float64
	Sign      Sign
	Nakshatra Nakshatra
	Pada      int
}

// Longitude converts a tropical longitude to sidereal by removing the ayanamsa.
func Longitude(tropical, ayanamsa float64) float64 {
	return astro.Normalize(tropical - ayanamsa)
}

// Map resolves a tropical longitude for the given ayanamsa.
func Map(tropical, ayanamsa float64) Position {
	p := FromSidereal(Longitude(tropical, ayanamsa))
	p.Tropical = astro.Normalize(tropical)
	return p
}

// FromSidereal resolves a sidereal longitude. Tropical is left at zero.
func FromSidereal(longitude float64) Position {
	l := astro.Normalize(longitude)
	return Position{
		Sidereal:  l,
		Sign:      SignOf(l),
		Nakshatra: NakshatraOf(l),
		Pada:      PadaOf(l),
	}
}

// SignOf returns floor(l/30) mod 12.
func SignOf(longitude float64) Sign {
	l := astro.Normalize(longitude)
	return Sign(int(math.Floor(l/signSpan)) % SignCount)
}

// NakshatraOf returns floor(l/(360/27)) mod 27.
func NakshatraOf(longitude float64) Nakshatra {
	l := astro.Normalize(longitude)
	return Nakshatra(int(math.Floor(l/nakshatraSpan)) % NakshatraCount)
}

// PadaOf returns the quarter (1..4) of the nakshatra containing l.
func PadaOf(longitude float64) int {
	l := astro.Normalize(longitude)
	pada := int(math.Floor(math.Mod(l, nakshatraSpan)/padaSpan)) + 1
	return min(max(pada, 1), padaCount)
}

// Tropical recovers the tropical longitude from a sidereal one.
func Tropical(sidereal, ayanamsa float64) float64 {
	return astro.Normalize(sidereal + ayanamsa)
}
