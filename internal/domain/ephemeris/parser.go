// Package ephemeris reads fixed-format observer ephemerides (JPL Horizons
// style) into equatorial positions.
package ephemeris

import (
	"bufio"
	"math"
	"strconv"
	"strings"
)

// Markers delimiting the data rows of a Horizons ephemeris.
const (
	StartMarker = "$$SOE"
	EndMarker   = "$$EOE"

	targetHeader = "Target body name:"

	// UnknownBody is the name reported when no header names the target.
	UnknownBody = "Unknown"

	minFields    = 8
	hoursToDeg   = 15.0
	maxFlagWidth = 2
)

// Block is one body's position as read from an ephemeris.
type Block struct {
	// Name is the target body name, or UnknownBody.
	Name string
	// NameResolved is false when Name is the UnknownBody fallback.
	NameResolved bool
	JulianDate   float64
	// RA and DEC are in decimal degrees.
	RA  float64
	DEC float64
}

// Parse extracts the first data row of a raw ephemeris block.
//
// Row layout after flag removal: JD, RA h m s, DEC d m s, then at least
// one further quantity.
func Parse(raw string) (Block, error) {
	name, resolved := bodyName(raw)
	label := ""
	if resolved {
		label = name
	}

	rows, err := dataRows(raw)
	if err != nil {
		return Block{}, &ParseError{Body: label, Kind: err}
	}

	fields := stripFlags(strings.Fields(rows[0]))
	if len(fields) < minFields {
		return Block{}, &ParseError{
			Body:  label,
			Kind:  ErrInsufficientFields,
			Field: strconv.Itoa(len(fields)) + " of " + strconv.Itoa(minFields),
		}
	}

	nums := make([]float64, 7)
	for i := range nums {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Block{}, &ParseError{Body: label, Kind: ErrNumericFormat, Field: fields[i], Err: err}
		}
		nums[i] = v
	}

	ra := (nums[1] + nums[2]/60 + nums[3]/3600) * hoursToDeg
	dec := math.Abs(nums[4]) + nums[5]/60 + nums[6]/3600
	// The sign lives on the degrees token, so "-00" must count as negative.
	if strings.HasPrefix(fields[4], "-") {
		dec = -dec
	}

	return Block{
		Name:         name,
		NameResolved: resolved,
		JulianDate:   nums[0],
		RA:           ra,
		DEC:          dec,
	}, nil
}

// dataRows returns the non-empty lines between the markers.
func dataRows(raw string) ([]string, error) {
	start := strings.Index(raw, StartMarker)
	if start < 0 {
		return nil, ErrMissingMarkers
	}
	body := raw[start+len(StartMarker):]
	end := strings.Index(body, EndMarker)
	if end < 0 {
		return nil, ErrMissingMarkers
	}

	var rows []string
	sc := bufio.NewScanner(strings.NewReader(body[:end]))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			rows = append(rows, line)
		}
	}
	if len(rows) == 0 {
		return nil, ErrEmptyData
	}
	return rows, nil
}

// bodyName reads "Target body name: <Name> (id) {source}" headers.
func bodyName(raw string) (string, bool) {
	idx := strings.Index(raw, targetHeader)
	if idx < 0 {
		return UnknownBody, false
	}
	rest := raw[idx+len(targetHeader):]
	if nl := strings.IndexAny(rest, "\r\n"); nl >= 0 {
		rest = rest[:nl]
	}
	if cut := strings.IndexAny(rest, "({"); cut >= 0 {
		rest = rest[:cut]
	}
	name := strings.TrimSpace(rest)
	if name == "" {
		return UnknownBody, false
	}
	return name, true
}

// stripFlags drops the solar-presence and lunar-presence markers Horizons
// prints between the date and the coordinates ("*", "C", "m", "*m", "Ne").
func stripFlags(fields []string) []string {
	out := fields[:0:0]
	for _, f := range fields {
		if isFlag(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func isFlag(tok string) bool {
	if tok == "" || len(tok) > maxFlagWidth {
		return false
	}
	for _, r := range tok {
		if r != '*' && (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}
