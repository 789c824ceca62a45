package chart

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/okian/vedichart/internal/domain/ascendant"
	"github.com/okian/vedichart/internal/domain/astro"
	"github.com/okian/vedichart/internal/domain/ephemeris"
	"github.com/okian/vedichart/internal/domain/model"
	"github.com/okian/vedichart/internal/domain/nodes"
	"github.com/okian/vedichart/internal/domain/sidereal"
)

// Body names used for the chart summaries.
const (
	Sun  = "Sun"
	Moon = "Moon"
)

// unknownNakshatra renders as "Unknown".
const unknownNakshatra sidereal.Nakshatra = -1

// DefaultTrackedBodies returns the bodies a chart contains by default, in
// output order.
func DefaultTrackedBodies() []string {
	return []string{Sun, Moon, "Mercury", "Venus", "Mars", "Jupiter", "Saturn"}
}

// DefaultRequiredBodies returns the bodies whose absence aborts assembly
// by default.
func DefaultRequiredBodies() []string {
	return []string{Moon}
}

// Assembler turns a chart request into a Chart. It holds no per-request
// state and is safe for concurrent use.
type Assembler struct {
	tracked   []string
	required  []string
	obliquity float64
}

// NewAssembler creates an Assembler with the default body lists and the
// fixed obliquity.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		tracked:   DefaultTrackedBodies(),
		required:  DefaultRequiredBodies(),
		obliquity: astro.FixedObliquity,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// TrackedBodies returns a copy of the tracked body list.
func (a *Assembler) TrackedBodies() []string { return slices.Clone(a.tracked) }

// RequiredBodies returns a copy of the required body list.
func (a *Assembler) RequiredBodies() []string { return slices.Clone(a.required) }

// located is a body that made it through parse and transform.
type located struct {
	position BodyPosition
	sidereal sidereal.Position
	resolved bool
}

// Assemble computes the chart for req. Body-level failures are reported in
// Chart.Diagnostics; the ascendant failing or a required body missing
// returns an *AssemblyError and no chart.
func (a *Assembler) Assemble(ctx context.Context, req model.Request) (Chart, error) {
	if err := ctx.Err(); err != nil {
		return Chart{}, err
	}

	jd := astro.JulianDay(req.BirthTime)
	ayanamsa := astro.Ayanamsa(jd)

	asc, err := ascendant.Calculate(req.BirthTime, req.Location)
	if err != nil {
		return Chart{}, &AssemblyError{Kind: ErrAscendant, Err: err}
	}

	var (
		bodies   []located
		diags    []Diagnostic
		seen     = map[string]bool{}
		failures = map[string]error{}
	)
	for i, in := range req.Ephemeris {
		if err := ctx.Err(); err != nil {
			return Chart{}, err
		}

		block, err := ephemeris.Resolve(in)
		if err != nil {
			label := inputLabel(in, i, err)
			diags = append(diags, Diagnostic{Body: label, Stage: StageParse, Err: err})
			failures[canonical(label)] = err
			continue
		}

		key := canonical(block.Name)
		if block.NameResolved {
			if seen[key] {
				diags = append(diags, Diagnostic{Body: block.Name, Stage: StageDuplicate, Err: ErrDuplicateBody})
				continue
			}
			seen[key] = true
		}

		lon, err := astro.EclipticLongitude(block.RA, block.DEC, a.obliquity)
		if err != nil {
			diags = append(diags, Diagnostic{Body: block.Name, Stage: StageTransform, Err: err})
			failures[key] = err
			continue
		}

		bodies = append(bodies, located{
			position: BodyPosition{Name: block.Name, RA: block.RA, DEC: block.DEC, TropicalLongitude: lon},
			sidereal: sidereal.Map(lon, ayanamsa),
			resolved: block.NameResolved,
		})
	}

	for _, name := range a.tracked {
		key := canonical(name)
		if seen[key] || failures[key] != nil {
			continue
		}
		diags = append(diags, Diagnostic{Body: name, Stage: StageMissing, Err: ErrNotProvided})
	}

	planets := a.order(bodies)

	for _, name := range a.required {
		if !containsBody(planets, name) {
			cause := failures[canonical(name)]
			if cause == nil {
				cause = ErrNotProvided
			}
			return Chart{}, &AssemblyError{Body: name, Kind: ErrMissingBody, Err: cause}
		}
	}

	pair := nodes.ForJulianDay(jd)
	planets = append(planets, nodePlanet(pair.Rahu), nodePlanet(pair.Ketu))

	c := Chart{
		Planets:       planets,
		Ascendant:     asc,
		MoonNakshatra: unknownNakshatra,
		JulianDay:     jd,
		Ayanamsa:      ayanamsa,
		Diagnostics:   diags,
	}
	if sun, ok := c.Planet(Sun); ok {
		c.SunZodiac = sun.Zodiac
	} else {
		c.SunZodiac = WesternSunSign(req.BirthTime)
		c.SunZodiacWestern = true
	}
	if moon, ok := c.Planet(Moon); ok {
		c.MoonNakshatra = moon.Nakshatra
	}
	return c, nil
}

// order puts tracked bodies first in tracked order, then any other bodies
// in input order.
func (a *Assembler) order(bodies []located) []Planet {
	rank := make(map[string]int, len(a.tracked))
	for i, name := range a.tracked {
		rank[canonical(name)] = i
	}

	sorted := slices.Clone(bodies)
	slices.SortStableFunc(sorted, func(x, y located) int {
		return bodyRank(rank, x) - bodyRank(rank, y)
	})

	planets := make([]Planet, len(sorted))
	for i, b := range sorted {
		planets[i] = bodyPlanet(b)
	}
	return planets
}

func bodyRank(rank map[string]int, b located) int {
	if !b.resolved {
		return len(rank)
	}
	if r, ok := rank[canonical(b.position.Name)]; ok {
		return r
	}
	return len(rank)
}

func bodyPlanet(b located) Planet {
	tag := Constellation{Kind: ConstellationUnknown}
	if b.resolved {
		tag = Constellation{Kind: ConstellationSign, Sign: b.sidereal.Sign}
	}
	return Planet{
		Name:              b.position.Name,
		RA:                b.position.RA,
		DEC:               b.position.DEC,
		TropicalLongitude: b.position.TropicalLongitude,
		SiderealLongitude: b.sidereal.Sidereal,
		Zodiac:            b.sidereal.Sign,
		Nakshatra:         b.sidereal.Nakshatra,
		Pada:              b.sidereal.Pada,
		Constellation:     tag,
	}
}

func nodePlanet(n nodes.Node) Planet {
	return Planet{
		Name:              n.Name,
		TropicalLongitude: n.Tropical,
		SiderealLongitude: n.Sidereal,
		Zodiac:            n.Sign,
		Nakshatra:         n.Nakshatra,
		Pada:              n.Pada,
		Constellation:     Constellation{Kind: ConstellationNode},
	}
}

func containsBody(planets []Planet, name string) bool {
	key := canonical(name)
	return slices.ContainsFunc(planets, func(p Planet) bool {
		return p.Constellation.Kind != ConstellationUnknown && canonical(p.Name) == key
	})
}

// inputLabel names a failed input for diagnostics.
func inputLabel(in ephemeris.Input, i int, err error) string {
	if in.Key != "" {
		return in.Key
	}
	var pe *ephemeris.ParseError
	if errors.As(err, &pe) && pe.Body != "" {
		return pe.Body
	}
	return fmt.Sprintf("input #%d", i+1)
}

func canonical(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
