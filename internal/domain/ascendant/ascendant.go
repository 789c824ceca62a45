// Package ascendant derives the sidereal ascendant (lagna) for a birth
// instant and observer location.
package ascendant

import (
	"errors"
	"time"

	"github.com/okian/vedichart/internal/domain/astro"
	"github.com/okian/vedichart/internal/domain/model"
	"github.com/okian/vedichart/internal/domain/sidereal"
)

// ErrSingularLatitude is returned for an observer at a geographic pole,
// where tan(latitude) is undefined.
var ErrSingularLatitude = errors.New("ascendant undefined at latitude ±90")

// Result is the ascendant for one instant and location. Only the sign is
// derived; nakshatra and pada are not meaningful for the ascendant.
type Result struct {
	Tropical float64       `json:"tropicalLongitude"`
	Sidereal float64       `json:"siderealLongitude"`
	Sign     sidereal.Sign `json:"zodiac"`
}

// Calculate returns the ascendant using mean sidereal time and the mean
// obliquity of the date. The result is uncorrected for nutation.
func Calculate(t time.Time, loc model.Location) (Result, error) {
	if astro.IsPole(loc.Latitude) {
		return Result{}, ErrSingularLatitude
	}

	jd := astro.JulianDay(t)
	lst := astro.LocalSiderealTime(jd, loc.Longitude)
	eps := astro.MeanObliquity(jd)

	tropical := astro.HorizonLongitude(lst, loc.Latitude, eps)
	sid := sidereal.Longitude(tropical, astro.Ayanamsa(jd))

	return Result{
		Tropical: tropical,
		Sidereal: sid,
		Sign:     sidereal.SignOf(sid),
	}, nil
}
