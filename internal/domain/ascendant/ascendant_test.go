package ascendant_test

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/vedichart/internal/domain/ascendant"
	"github.com/okian/vedichart/internal/domain/astro"
	"github.com/okian/vedichart/internal/domain/model"
	"github.com/okian/vedichart/internal/domain/sidereal"
)

var j2000 = time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC)

func TestCalculate(t *testing.T) {
	Convey("Given the J2000 epoch at latitude 0 and longitude 0", t, func() {
		loc := model.Location{}
		first, err := ascendant.Calculate(j2000, loc)
		So(err, ShouldBeNil)

		Convey("Then repeated calls give the same sign", func() {
			for range 5 {
				again, err := ascendant.Calculate(j2000, loc)
				So(err, ShouldBeNil)
				So(again, ShouldResemble, first)
			}
		})

		Convey("Then the tropical ascendant at the equator follows LST", func() {
			// With latitude 0 the formula reduces to atan2(sin LST cos ε, cos LST).
			lst := astro.Radians(astro.GMST(astro.J2000))
			eps := astro.Radians(astro.MeanObliquity(astro.J2000))
			want := astro.Normalize(astro.Degrees(math.Atan2(math.Sin(lst)*math.Cos(eps), math.Cos(lst))))
			So(first.Tropical, ShouldAlmostEqual, want, 1e-9)
		})

		Convey("Then the sidereal value removes the ayanamsa of the date", func() {
			So(first.Sidereal, ShouldAlmostEqual, astro.Normalize(first.Tropical-astro.Ayanamsa(astro.J2000)), 1e-9)
			So(first.Sign, ShouldEqual, sidereal.SignOf(first.Sidereal))
		})
	})

	Convey("Given the same instant expressed in another time zone", t, func() {
		ist := j2000.In(time.FixedZone("IST", 5*3600+1800))
		loc := model.Location{Latitude: 28.6139, Longitude: 77.209}
		a, errA := ascendant.Calculate(j2000, loc)
		b, errB := ascendant.Calculate(ist, loc)

		Convey("Then the ascendant is identical", func() {
			So(errA, ShouldBeNil)
			So(errB, ShouldBeNil)
			So(b, ShouldResemble, a)
		})
	})

	Convey("Given a sweep of instants and locations", t, func() {
		Convey("Then every result stays in range", func() {
			for h := 0; h < 48; h++ {
				ts := j2000.Add(time.Duration(h) * 37 * time.Minute)
				for _, lat := range []float64{-66.5, -33.9, 0, 19.07, 51.5, 66.5} {
					r, err := ascendant.Calculate(ts, model.Location{Latitude: lat, Longitude: float64(h*7) - 160})
					So(err, ShouldBeNil)
					So(r.Tropical, ShouldBeGreaterThanOrEqualTo, 0.0)
					So(r.Tropical, ShouldBeLessThan, 360.0)
					So(r.Sidereal, ShouldBeGreaterThanOrEqualTo, 0.0)
					So(r.Sidereal, ShouldBeLessThan, 360.0)
					So(int(r.Sign), ShouldBeBetweenOrEqual, 0, 11)
				}
			}
		})

		Convey("Then the ascendant moves through all twelve signs in a day", func() {
			seen := map[sidereal.Sign]bool{}
			for m := 0; m < 24*60; m += 10 {
				r, err := ascendant.Calculate(j2000.Add(time.Duration(m)*time.Minute), model.Location{Latitude: 12.97, Longitude: 77.59})
				So(err, ShouldBeNil)
				seen[r.Sign] = true
			}
			So(seen, ShouldHaveLength, sidereal.SignCount)
		})
	})

	Convey("Given an observer at a pole", t, func() {
		for _, lat := range []float64{90, -90} {
			_, err := ascendant.Calculate(j2000, model.Location{Latitude: lat})

			Convey(fmt.Sprintf("Then SingularLatitude is returned for %g", lat), func() {
				So(errors.Is(err, ascendant.ErrSingularLatitude), ShouldBeTrue)
			})
		}
	})
}
