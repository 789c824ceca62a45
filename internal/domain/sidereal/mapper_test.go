package sidereal_test

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/vedichart/internal/domain/sidereal"
)

func TestFromSidereal(t *testing.T) {
	Convey("Given a sidereal longitude of 15°", t, func() {
		p := sidereal.FromSidereal(15.0)

		Convey("Then it falls in Aries, Bharani", func() {
			So(p.Sign, ShouldEqual, sidereal.Aries)
			So(p.Sign.String(), ShouldEqual, "Aries")
			So(p.Nakshatra.Index(), ShouldEqual, 1)
			So(p.Nakshatra.String(), ShouldEqual, "Bharani")
		})

		Convey("Then the pada follows the quarter formula", func() {
			// pada = floor((L mod 13°20') / 3°20') + 1.
			// 15 - 13°20' = 1°40', half a quarter into Bharani, so pada 1.
			So(p.Pada, ShouldEqual, 1)
		})
	})

	Convey("Given longitudes across a nakshatra", t, func() {
		span := 360.0 / 27

		Convey("Then each quarter maps to its pada", func() {
			So(sidereal.PadaOf(span+0.1), ShouldEqual, 1)
			So(sidereal.PadaOf(17.0), ShouldEqual, 2)
			So(sidereal.PadaOf(span+span/2+0.1), ShouldEqual, 3)
			So(sidereal.PadaOf(2*span-0.01), ShouldEqual, 4)
		})
	})

	Convey("Given the end of the zodiac", t, func() {
		p := sidereal.FromSidereal(359.999999)

		Convey("Then it resolves to Pisces, Revati, pada 4", func() {
			So(p.Sign, ShouldEqual, sidereal.Pisces)
			So(p.Nakshatra.String(), ShouldEqual, "Revati")
			So(p.Pada, ShouldEqual, 4)
		})
	})
}

func TestMapInvariants(t *testing.T) {
	Convey("Given longitudes swept around the circle", t, func() {
		Convey("Then outputs stay inside their ranges", func() {
			for l := -720.0; l < 720; l += 0.37 {
				p := sidereal.FromSidereal(l)
				So(p.Sidereal, ShouldBeGreaterThanOrEqualTo, 0.0)
				So(p.Sidereal, ShouldBeLessThan, 360.0)
				So(int(p.Sign), ShouldBeBetweenOrEqual, 0, 11)
				So(p.Nakshatra.Index(), ShouldBeBetweenOrEqual, 0, 26)
				So(p.Pada, ShouldBeBetweenOrEqual, 1, 4)
				So(int(p.Sign), ShouldEqual, int(math.Floor(p.Sidereal/30))%12)
			}
		})

		Convey("Then a full turn does not change sign, nakshatra or pada", func() {
			for l := 0.05; l < 360; l += 1.3 {
				a := sidereal.FromSidereal(l)
				b := sidereal.FromSidereal(l + 360)
				So(b.Sign, ShouldEqual, a.Sign)
				So(b.Nakshatra, ShouldEqual, a.Nakshatra)
				So(b.Pada, ShouldEqual, a.Pada)
			}
		})
	})

	Convey("Given a tropical longitude and an ayanamsa", t, func() {
		Convey("Then adding the ayanamsa back recovers the tropical longitude", func() {
			for _, ayanamsa := range []float64{0, 23.85, 24.04225, 25.6} {
				for trop := 0.0; trop < 360; trop += 4.7 {
					p := sidereal.Map(trop, ayanamsa)
					back := sidereal.Tropical(p.Sidereal, ayanamsa)
					gap := math.Abs(back - trop)
					So(math.Min(gap, 360-gap), ShouldBeLessThan, 1e-9)
					So(p.Tropical, ShouldEqual, trop)
				}
			}
		})

		Convey("Then a tropical longitude below the ayanamsa wraps into Pisces", func() {
			p := sidereal.Map(10, 24)
			So(p.Sidereal, ShouldAlmostEqual, 346.0, 1e-9)
			So(p.Sign, ShouldEqual, sidereal.Pisces)
		})
	})
}

func TestTables(t *testing.T) {
	Convey("Given the sign table", t, func() {
		s, ok := sidereal.ParseSign("Scorpio")
		So(ok, ShouldBeTrue)
		So(s, ShouldEqual, sidereal.Scorpio)
		_, ok = sidereal.ParseSign("Ophiuchus")
		So(ok, ShouldBeFalse)
		So(sidereal.Sign(12).String(), ShouldEqual, "Unknown")
		So(sidereal.Nakshatra(-1).String(), ShouldEqual, "Unknown")

		text, err := sidereal.Leo.MarshalText()
		So(err, ShouldBeNil)
		So(string(text), ShouldEqual, "Leo")
	})
}
