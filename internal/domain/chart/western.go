package chart

import (
	"time"

	"github.com/okian/vedichart/internal/domain/sidereal"
)

// westernCusps holds the first day of each tropical sign, starting with
// Capricorn's share of January.
var westernCusps = [...]struct {
	month time.Month
	day   int
	sign  sidereal.Sign
}{
	{time.January, 20, sidereal.Aquarius},
	{time.February, 19, sidereal.Pisces},
	{time.March, 21, sidereal.Aries},
	{time.April, 20, sidereal.Taurus},
	{time.May, 21, sidereal.Gemini},
	{time.June, 21, sidereal.Cancer},
	{time.July, 23, sidereal.Leo},
	{time.August, 23, sidereal.Virgo},
	{time.September, 23, sidereal.Libra},
	{time.October, 23, sidereal.Scorpio},
	{time.November, 22, sidereal.Sagittarius},
	{time.December, 22, sidereal.Capricorn},
}

// WesternSunSign returns the tropical sun sign for the calendar date of t
// in t's own location.
func WesternSunSign(t time.Time) sidereal.Sign {
	_, month, day := t.Date()
	sign := sidereal.Capricorn
	for _, c := range westernCusps {
		if month > c.month || (month == c.month && day >= c.day) {
			sign = c.sign
		}
	}
	return sign
}
