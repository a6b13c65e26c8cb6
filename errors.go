package geolingo

import (
	"github.com/cockroachdb/errors"
	"github.com/geolingo/geolingo/wkbcodec"
)

// Errors reported by the spatial layer. Concrete errors carry details and
// are marked with one of these, so test them with errors.Is.
var (
	// ErrInvalidLiteral is returned for empty or unparseable textual geometry.
	ErrInvalidLiteral = errors.New("invalid geometry literal")
	// ErrMalformedGeometry is returned when a binary payload cannot be decoded.
	ErrMalformedGeometry = wkbcodec.ErrMalformedGeometry
	// ErrTypeMismatch is returned when a value cannot be used as a geometry.
	ErrTypeMismatch = errors.New("geometry type mismatch")
	// ErrDimensionMismatch is returned when a value disagrees with the
	// dimension declared by its column.
	ErrDimensionMismatch = errors.New("geometry dimension mismatch")
	// ErrCatalogRegistrationFailure is returned when the database rejects a
	// spatial catalog call during DDL.
	ErrCatalogRegistrationFailure = errors.New("spatial catalog registration failure")
)

func invalidLiteral(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidLiteral)
}

func typeMismatch(value interface{}) error {
	return errors.Mark(errors.Newf("cannot use %T as a geometry", value), ErrTypeMismatch)
}

func unsupported(d dialect, op spatialOp) error {
	return errors.Newf("%s is not supported by the %s dialect", op, d)
}
