// Package wkbcodec reads and writes the little-endian well-known binary
// geometry encoding, including the PostGIS extensions for SRID and Z/M
// ordinates.
package wkbcodec

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
)

// ErrMalformedGeometry marks every decoding failure of this package.
var ErrMalformedGeometry = errors.New("malformed geometry")

// Kind is the geometry type tag stored after the byte order marker.
type Kind uint32

const (
	Point Kind = iota + 1
	LineString
	Polygon
	MultiPoint
	MultiLineString
	MultiPolygon
	GeometryCollection
)

var kindNames = [...]string{
	Point:              "POINT",
	LineString:         "LINESTRING",
	Polygon:            "POLYGON",
	MultiPoint:         "MULTIPOINT",
	MultiLineString:    "MULTILINESTRING",
	MultiPolygon:       "MULTIPOLYGON",
	GeometryCollection: "GEOMETRYCOLLECTION",
}

func (k Kind) String() string {
	if k >= Point && k <= GeometryCollection {
		return kindNames[k]
	}
	return "UNKNOWN"
}

const (
	ewkbZ    = 0x80000000
	ewkbM    = 0x40000000
	ewkbSRID = 0x20000000

	byteOrderXDR = 0
	byteOrderNDR = 1
)

// Header is the part of a WKB payload that precedes the coordinates.
type Header struct {
	ByteOrder binary.ByteOrder
	Kind      Kind
	Layout    geom.Layout
	// SRID is -1 when the payload carries none.
	SRID int
}

// Dimension returns 3 when the payload has an elevation ordinate, 2 otherwise.
func (h Header) Dimension() int {
	if h.Layout.ZIndex() != -1 {
		return 3
	}
	return 2
}

func malformed(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrMalformedGeometry)
}

// Peek parses only the header of b.
func Peek(b []byte) (Header, error) {
	if len(b) < 5 {
		return Header{}, malformed("wkb: %d bytes is too short for a header", len(b))
	}
	var h Header
	switch b[0] {
	case byteOrderXDR:
		h.ByteOrder = binary.BigEndian
	case byteOrderNDR:
		h.ByteOrder = binary.LittleEndian
	default:
		return Header{}, malformed("wkb: invalid byte order marker 0x%02x", b[0])
	}

	tag := h.ByteOrder.Uint32(b[1:5])
	hasZ := tag&ewkbZ != 0
	hasM := tag&ewkbM != 0
	hasSRID := tag&ewkbSRID != 0
	code := tag &^ (ewkbZ | ewkbM | ewkbSRID)

	// ISO WKB encodes Z and M as thousands.
	switch code / 1000 {
	case 0:
	case 1:
		hasZ = true
	case 2:
		hasM = true
	case 3:
		hasZ, hasM = true, true
	default:
		return Header{}, malformed("wkb: unknown geometry type %d", code)
	}
	h.Kind = Kind(code % 1000)
	if h.Kind < Point || h.Kind > GeometryCollection {
		return Header{}, malformed("wkb: unknown geometry type %d", code)
	}

	switch {
	case hasZ && hasM:
		h.Layout = geom.XYZM
	case hasZ:
		h.Layout = geom.XYZ
	case hasM:
		h.Layout = geom.XYM
	default:
		h.Layout = geom.XY
	}

	h.SRID = -1
	if hasSRID {
		if len(b) < 9 {
			return Header{}, malformed("wkb: %d bytes is too short for an SRID", len(b))
		}
		h.SRID = int(int32(h.ByteOrder.Uint32(b[5:9])))
	}
	return h, nil
}

// Decode parses a complete WKB or EWKB payload.
func Decode(b []byte) (geom.T, error) {
	if _, err := Peek(b); err != nil {
		return nil, err
	}
	r := bytes.NewReader(b)
	g, err := ewkb.Read(r)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "wkb: decode"), ErrMalformedGeometry)
	}
	if r.Len() != 0 {
		return nil, malformed("wkb: %d trailing bytes after geometry", r.Len())
	}
	return g, nil
}

// Encode writes g in little-endian byte order. The SRID and Z/M flags are
// only set when needed, so a 2D geometry without SRID is plain WKB.
func Encode(g geom.T) ([]byte, error) {
	if g == nil {
		return nil, errors.New("wkb: cannot encode a nil geometry")
	}
	b, err := ewkb.Marshal(g, binary.LittleEndian)
	if err != nil {
		return nil, errors.Wrap(err, "wkb: encode")
	}
	return b, nil
}

// DecodeHex decodes hex text, as printed by PostGIS, into a geometry.
func DecodeHex(s string) (geom.T, error) {
	b, err := HexBytes(s)
	if err != nil {
		return nil, err
	}
	return Decode(b)
}

// EncodeHex encodes g and returns the uppercase hex form.
func EncodeHex(g geom.T) (string, error) {
	b, err := Encode(g)
	if err != nil {
		return "", err
	}
	return Hex(b), nil
}

// Hex returns the uppercase hex encoding of a payload.
func Hex(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

// HexBytes decodes hex text of either case.
func HexBytes(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "wkb: invalid hex"), ErrMalformedGeometry)
	}
	return b, nil
}

// LooksLikeHex reports whether a stored value is hex text rather than raw
// WKB. Raw payloads start with a 0x00 or 0x01 byte order marker, hex text
// with the character '0'.
func LooksLikeHex(b []byte) bool {
	return len(b) > 0 && b[0] == '0'
}
