// Package chart assembles a sidereal chart from per-body ephemerides, the
// ascendant and the lunar nodes.
package chart

import (
	"encoding/json"

	"github.com/okian/vedichart/internal/domain/ascendant"
	"github.com/okian/vedichart/internal/domain/sidereal"
)

// ConstellationKind says what a planet's constellation tag refers to.
type ConstellationKind int

const (
	// ConstellationUnknown marks a body whose name could not be resolved.
	ConstellationUnknown ConstellationKind = iota
	// ConstellationSign tags a body with the sidereal sign it occupies.
	ConstellationSign
	// ConstellationNode tags a lunar node, which has no physical position.
	ConstellationNode
)

// Constellation is the constellation tag of a chart entry.
type Constellation struct {
	Kind ConstellationKind
	Sign sidereal.Sign
}

func (c Constellation) String() string {
	switch c.Kind {
	case ConstellationSign:
		return c.Sign.String()
	case ConstellationNode:
		return "Node"
	default:
		return "Unknown"
	}
}

// MarshalText renders the tag as stored in chart documents.
func (c Constellation) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// BodyPosition is a body's equatorial position and its tropical ecliptic
// longitude. Ecliptic latitude is not derived and stays zero.
type BodyPosition struct {
	Name              string
	RA                float64
	DEC               float64
	TropicalLongitude float64
	EclipticLatitude  float64
}

// Planet is one chart entry: a tracked body or a lunar node.
type Planet struct {
	Name              string             `json:"name"`
	RA                float64            `json:"RA"`
	DEC               float64            `json:"DEC"`
	TropicalLongitude float64            `json:"tropicalLongitude"`
	SiderealLongitude float64            `json:"siderealLongitude"`
	Zodiac            sidereal.Sign      `json:"zodiac"`
	Nakshatra         sidereal.Nakshatra `json:"nakshatra"`
	Pada              int                `json:"pada"`
	Constellation     Constellation      `json:"constellation"`
}

// Stage names the pipeline step a body failed in.
type Stage string

const (
	StageParse     Stage = "parse"
	StageTransform Stage = "transform"
	StageMissing   Stage = "missing"
	StageDuplicate Stage = "duplicate"
)

// Diagnostic records a body that is absent from the chart and why.
type Diagnostic struct {
	Body  string
	Stage Stage
	Err   error
}

// MarshalJSON renders the error as text.
func (d Diagnostic) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.document())
}

func (d Diagnostic) document() map[string]any {
	msg := ""
	if d.Err != nil {
		msg = d.Err.Error()
	}
	return map[string]any{"body": d.Body, "stage": string(d.Stage), "error": msg}
}

// Chart is the result of one assembly. It is never mutated after Assemble
// returns.
type Chart struct {
	Planets   []Planet
	Ascendant ascendant.Result
	// SunZodiac is the Sun's sidereal sign. When the Sun is missing it is
	// the tropical sign of the birth date and SunZodiacWestern is set.
	SunZodiac        sidereal.Sign
	SunZodiacWestern bool
	// MoonNakshatra is out of range ("Unknown") when the Moon is missing.
	MoonNakshatra sidereal.Nakshatra
	JulianDay     float64
	Ayanamsa      float64
	Diagnostics   []Diagnostic
}

// Planet returns the entry with the given name.
func (c Chart) Planet(name string) (Planet, bool) {
	key := canonical(name)
	for _, p := range c.Planets {
		if canonical(p.Name) == key {
			return p, true
		}
	}
	return Planet{}, false
}

// Document renders the chart as a plain key-value document. Keys are a
// stable storage contract.
func (c Chart) Document() map[string]any {
	planets := make([]any, 0, len(c.Planets))
	for _, p := range c.Planets {
		planets = append(planets, map[string]any{
			"name":              p.Name,
			"RA":                p.RA,
			"DEC":               p.DEC,
			"tropicalLongitude": p.TropicalLongitude,
			"siderealLongitude": p.SiderealLongitude,
			"zodiac":            p.Zodiac.String(),
			"nakshatra":         p.Nakshatra.String(),
			"pada":              p.Pada,
			"constellation":     p.Constellation.String(),
		})
	}
	diags := make([]any, 0, len(c.Diagnostics))
	for _, d := range c.Diagnostics {
		diags = append(diags, d.document())
	}

	return map[string]any{
		"planets":          planets,
		"lagna":            c.Ascendant.Sign.String(),
		"lagnaLongitude":   c.Ascendant.Sidereal,
		"sunZodiac":        c.SunZodiac.String(),
		"sunZodiacWestern": c.SunZodiacWestern,
		"moonNakshatra":    c.MoonNakshatra.String(),
		"julianDay":        c.JulianDay,
		"ayanamsa":         c.Ayanamsa,
		"diagnostics":      diags,
	}
}

// MarshalJSON encodes the chart document.
func (c Chart) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Document())
}

// Summary is the condensed per-body view kept alongside a stored chart.
type Summary struct {
	Name      string             `json:"name"`
	Zodiac    sidereal.Sign      `json:"zodiac"`
	Nakshatra sidereal.Nakshatra `json:"nakshatra"`
	Pada      int                `json:"pada"`
}

// Summaries returns one Summary per chart entry, in chart order.
func (c Chart) Summaries() []Summary {
	out := make([]Summary, len(c.Planets))
	for i, p := range c.Planets {
		out[i] = Summary{Name: p.Name, Zodiac: p.Zodiac, Nakshatra: p.Nakshatra, Pada: p.Pada}
	}
	return out
}
