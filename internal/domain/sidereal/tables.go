package sidereal

// Sign is one of the twelve zodiac signs; index 0 is Aries.
type Sign int

// The twelve signs in zodiacal order.
const (
	Aries Sign = iota
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

// SignCount is the number of zodiac signs.
const SignCount = 12

var signNames = [SignCount]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

func (s Sign) String() string {
	if s < 0 || int(s) >= SignCount {
		return "Unknown"
	}
	return signNames[s]
}

// MarshalText renders the sign name.
func (s Sign) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Nakshatra is one of the 27 lunar mansions; index 0 is Ashwini.
type Nakshatra int

// NakshatraCount is the number of lunar mansions.
const NakshatraCount = 27

var nakshatraNames = [NakshatraCount]string{
	"Ashwini", "Bharani", "Krittika", "Rohini", "Mrigashira", "Ardra",
	"Punarvasu", "Pushya", "Ashlesha", "Magha", "Purva Phalguni",
	"Uttara Phalguni", "Hasta", "Chitra", "Swati", "Vishakha", "Anuradha",
	"Jyeshtha", "Mula", "Purva Ashadha", "Uttara Ashadha", "Shravana",
	"Dhanishta", "Shatabhisha", "Purva Bhadrapada", "Uttara Bhadrapada",
	"Revati",
}

func (n Nakshatra) String() string {
	if n < 0 || int(n) >= NakshatraCount {
		return "Unknown"
	}
	return nakshatraNames[n]
}

// MarshalText renders the nakshatra name.
func (n Nakshatra) MarshalText() ([]byte, error) { return []byte(n.String()), nil }

// Index returns the zero-based table index.
func (n Nakshatra) Index() int { return int(n) }

// ParseSign looks a sign up by its English name.
func ParseSign(name string) (Sign, bool) {
	for i, n := range signNames {
		if n == name {
			return Sign(i), true
		}
	}
	return 0, false
}
