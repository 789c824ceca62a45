// Package model contains domain models passed between layers.
package model

import (
	"encoding/binary"
	"encoding/hex"
	"math"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/vedichart/internal/domain/ephemeris"
)

// Location is an observer position in degrees, north and east positive.
type Location struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Request asks for one chart: a birth instant, where it happened and the
// ephemeris text or records for each body at that instant.
type Request struct {
	ID        string            // unique id assigned on submission
	UserID    string            // owner; charts are stored per user
	BirthTime time.Time         // converted to UTC before any arithmetic
	Location  Location          // observer
	Ephemeris []ephemeris.Input // one entry per body, provider order
}

// Validate checks the fields every chart computation depends on.
func (r Request) Validate() error {
	if r.UserID == "" {
		return ErrMissingUser
	}
	if r.BirthTime.IsZero() {
		return ErrMissingBirthTime
	}
	lat, lon := r.Location.Latitude, r.Location.Longitude
	if math.IsNaN(lat) || math.IsNaN(lon) || math.Abs(lat) > 90 || math.Abs(lon) > 180 {
		return ErrInvalidLocation
	}
	if len(r.Ephemeris) == 0 {
		return ErrNoEphemeris
	}
	return nil
}

// Fingerprint identifies the inputs of a request. Two requests with the
// same user, instant, location and ephemeris produce the same chart.
// ID is not part of the fingerprint.
func (r Request) Fingerprint() string {
	d := xxhash.New()
	var buf [8]byte

	writeString := func(s string) {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
		_, _ = d.Write(buf[:])
		_, _ = d.WriteString(s)
	}
	writeFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = d.Write(buf[:])
	}

	writeString(r.UserID)
	binary.LittleEndian.PutUint64(buf[:], uint64(r.BirthTime.UTC().UnixNano()))
	_, _ = d.Write(buf[:])
	writeFloat(r.Location.Latitude)
	writeFloat(r.Location.Longitude)

	for _, in := range r.Ephemeris {
		writeString(in.Key)
		if in.Record != nil {
			writeString(in.Record.Name)
			writeFloat(in.Record.JulianDate)
			writeFloat(in.Record.RA)
			writeFloat(in.Record.DEC)
			continue
		}
		writeString(in.Text)
	}

	binary.BigEndian.PutUint64(buf[:], d.Sum64())
	return hex.EncodeToString(buf[:])
}
