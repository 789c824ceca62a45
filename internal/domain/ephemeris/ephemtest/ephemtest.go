// Package ephemtest renders Horizons-style ephemeris text for tests.
package ephemtest

import (
	"fmt"
	"math"
	"strings"
)

const header = `*******************************************************************************
Ephemeris / API_USER Sat Jan  1 12:00:00 2000 Pasadena, USA      / Horizons
*******************************************************************************
Target body name: %s (%d)                          {source: DE441}
Center body name: Earth (399)                     {source: DE441}
Center-site name: (user defined site below)
*******************************************************************************
Start time      : A.D. 2000-Jan-01 12:00:00.0000 UT
Stop  time      : A.D. 2000-Jan-01 12:01:00.0000 UT
Step-size       : 1 minutes
*******************************************************************************
 Date_________JDUT   R.A._________(ICRF)_________DEC  APmag   S-brt
*******************************************************************************
$$SOE
%s
$$EOE
*******************************************************************************
`

// Row formats one data row with sexagesimal RA/DEC and the given flags.
func Row(jd, raDeg, decDeg float64, flags string) string {
	h, m, s := sexagesimal(raDeg / 15)
	h %= 24
	sign := "+"
	if decDeg < 0 {
		sign = "-"
	}
	dd, dm, ds := sexagesimal(math.Abs(decDeg))
	return fmt.Sprintf("%.9f %-2s %02d %02d %05.2f %s%02d %02d %05.2f  -26.733 -10.566",
		jd, flags, h, m, s, sign, dd, dm, ds)
}

// Block renders a complete ephemeris for one body.
func Block(name string, id int, jd, raDeg, decDeg float64) string {
	return fmt.Sprintf(header, name, id, Row(jd, raDeg, decDeg, "*m"))
}

// Combined concatenates blocks the way a multi-target export does.
func Combined(blocks ...string) string {
	return strings.Join(blocks, "\n")
}

func sexagesimal(v float64) (int, int, float64) {
	whole := math.Floor(v)
	minutes := (v - whole) * 60
	m := math.Floor(minutes)
	s := (minutes - m) * 60
	// Seconds print with two decimals; carry what would round to 60.00
	// into minutes, and a full 60 minutes into the whole part.
	if s >= 59.995 {
		s = 0
		m++
	}
	if m >= 60 {
		m = 0
		whole++
	}
	return int(whole), int(m), s
}
