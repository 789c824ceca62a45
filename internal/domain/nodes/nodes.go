// Package nodes computes the mean lunar nodes, Rahu (ascending) and Ketu
// (descending).
package nodes

import (
	"time"

	"github.com/okian/vedichart/internal/domain/astro"
	"github.com/okian/vedichart/internal/domain/sidereal"
)

// Node names as they appear in a chart.
const (
	Rahu = "Rahu"
	Ketu = "Ketu"
)

// Mean node polynomial, degrees.
const (
	nodeAtJ2000 = 125.04452
	nodeRate    = 1934.136261
	nodeT2      = 0.0020708
	nodeT3Div   = 450000.0
)

// Node is one lunar node resolved onto the sidereal zodiac.
type Node struct {
	Name string
	sidereal.Position
}

// Pair holds both nodes. Ketu is always Rahu + 180 in both frames.
type Pair struct {
	Rahu Node
	Ketu Node
}

// MeanLongitude returns the tropical mean ascending node in [0, 360).
func MeanLongitude(jd float64) float64 {
	t := astro.Centuries(jd)
	return astro.Normalize(nodeAtJ2000 - nodeRate*t + nodeT2*t*t + t*t*t/nodeT3Div)
}

// Calculate returns the node pair for a birth instant. Location plays no part.
func Calculate(t time.Time) Pair {
	return ForJulianDay(astro.JulianDay(t))
}

// ForJulianDay returns the node pair for a Julian Day, using the ayanamsa
// of the same day.
func ForJulianDay(jd float64) Pair {
	rahu := sidereal.Map(MeanLongitude(jd), astro.Ayanamsa(jd))

	ketu := sidereal.FromSidereal(astro.Normalize(rahu.Sidereal + 180))
	ketu.Tropical = astro.Normalize(rahu.Tropical + 180)

	return Pair{
		Rahu: Node{Name: Rahu, Position: rahu},
		Ketu: Node{Name: Ketu, Position: ketu},
	}
}
