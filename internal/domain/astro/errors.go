package astro

import (
	"errors"
	"fmt"
)

// Sentinel kinds for transform errors.
var (
	ErrSingularInput  = errors.New("declination at a celestial pole")
	ErrNonFiniteInput = errors.New("non-finite coordinate")
)

// TransformError reports an equatorial position the ecliptic transform
// cannot handle. It matches its Kind with errors.Is.
type TransformError struct {
	RA   float64
	DEC  float64
	Kind error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform ra=%g dec=%g: %v", e.RA, e.DEC, e.Kind)
}

func (e *TransformError) Unwrap() error { return e.Kind }
