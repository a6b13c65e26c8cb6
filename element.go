package geolingo

import (
	"database/sql/driver"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/geolingo/geolingo/wkbcodec"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// UnknownSRID is the SRID of a geometry without a spatial reference.
const UnknownSRID = -1

const sridPrefix = "SRID="

// Representation tells how an Element holds its geometry.
type Representation int

const (
	// Textual elements hold well-known text and an SRID. They are built by
	// application code before the value reaches the database.
	Textual Representation = iota + 1
	// Binary elements hold a WKB payload read back from the database.
	Binary
)

func (r Representation) String() string {
	switch r {
	case Textual:
		return "textual"
	case Binary:
		return "binary"
	default:
		return "null"
	}
}

// Element is an immutable geometry value in either representation. It is
// also a GeometryExpression: its spatial properties are evaluated by the
// database, never locally. The zero Element is the NULL geometry.
//
// Two elements must be compared through Equals, which asks the database;
// their String forms differ between representations.
type Element struct {
	geometryExpression
	representation Representation
	srid           int
	text           string
	payload        []byte
}

func newElement(e Element) Element {
	e.geometryExpression = geometryExpression{expression{builder: e.literalSQL}}
	return e
}

// FromText creates a textual element. The text is the bare well-known text;
// use ParseText for input that may carry an SRID= prefix.
func FromText(text string, srid int) (Element, error) {
	if strings.TrimSpace(text) == "" {
		return Element{}, invalidLiteral("geometry: empty well-known text")
	}
	if strings.HasPrefix(strings.ToUpper(text), sridPrefix) {
		return Element{}, invalidLiteral("geometry: %q already carries an SRID", text)
	}
	return newElement(Element{representation: Textual, srid: srid, text: text}), nil
}

// ParseText creates a textual element from extended well-known text such as
// "SRID=4326;POINT(1 2)". Text without a prefix gets defaultSRID.
func ParseText(s string, defaultSRID int) (Element, error) {
	srid := defaultSRID
	if strings.HasPrefix(strings.ToUpper(s), sridPrefix) {
		end := strings.IndexByte(s, ';')
		if end == -1 {
			return Element{}, invalidLiteral("geometry: missing ; after SRID in %q", s)
		}
		n, err := strconv.ParseInt(s[len(sridPrefix):end], 10, 32)
		if err != nil {
			return Element{}, errors.Mark(errors.Wrapf(err, "geometry: invalid SRID in %q", s), ErrInvalidLiteral)
		}
		srid = int(n)
		s = s[end+1:]
	}
	return FromText(s, srid)
}

// FromBinary wraps a WKB payload. The payload is copied and not validated.
func FromBinary(b []byte) Element {
	payload := make([]byte, len(b))
	copy(payload, b)
	return newElement(Element{representation: Binary, srid: UnknownSRID, payload: payload})
}

// FromHex wraps a WKB payload given as hex text.
func FromHex(s string) (Element, error) {
	b, err := wkbcodec.HexBytes(s)
	if err != nil {
		return Element{}, err
	}
	return FromBinary(b), nil
}

// String renders a textual element as "SRID=<srid>;<wkt>" and a binary one
// as the uppercase hex of its payload.
func (e Element) String() string {
	switch e.representation {
	case Textual:
		return sridPrefix + strconv.Itoa(e.srid) + ";" + e.text
	case Binary:
		return wkbcodec.Hex(e.payload)
	default:
		return ""
	}
}

func (e Element) Representation() Representation {
	return e.representation
}

// IsZero reports whether e is the NULL geometry.
func (e Element) IsZero() bool {
	return e.representation == 0
}

// SRID returns the SRID given to a textual element, or the one embedded in
// an EWKB payload. It is UnknownSRID otherwise.
func (e Element) SRID() int {
	switch e.representation {
	case Textual:
		return e.srid
	case Binary:
		if h, err := wkbcodec.Peek(e.payload); err == nil {
			return h.SRID
		}
	}
	return UnknownSRID
}

// Text returns the well-known text of a textual element without the SRID.
func (e Element) Text() string {
	return e.text
}

// Bytes returns a copy of the payload of a binary element.
func (e Element) Bytes() []byte {
	if e.payload == nil {
		return nil
	}
	b := make([]byte, len(e.payload))
	copy(b, e.payload)
	return b
}

// Geometry decodes the element into its structure. Binary payloads are
// decoded locally and fail with ErrMalformedGeometry.
func (e Element) Geometry() (geom.T, error) {
	switch e.representation {
	case Textual:
		g, err := wkt.Unmarshal(e.text)
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "geometry: cannot parse %q", e.text), ErrInvalidLiteral)
		}
		return g, nil
	case Binary:
		return wkbcodec.Decode(e.payload)
	default:
		return nil, errors.New("geometry: null element")
	}
}

// Dimension is 3 when the geometry has an elevation ordinate, 2 otherwise.
func (e Element) Dimension() (int, error) {
	if e.representation == Binary {
		h, err := wkbcodec.Peek(e.payload)
		if err != nil {
			return 0, err
		}
		return h.Dimension(), nil
	}
	g, err := e.Geometry()
	if err != nil {
		return 0, err
	}
	if g.Layout().ZIndex() != -1 {
		return 3, nil
	}
	return 2, nil
}

// GeoJSON encodes the geometry as a GeoJSON geometry object.
func (e Element) GeoJSON() ([]byte, error) {
	g, err := e.Geometry()
	if err != nil {
		return nil, err
	}
	return geojson.Marshal(g)
}

// Value implements driver.Valuer. Textual elements travel as extended
// well-known text, binary ones as hex, both of which PostGIS accepts as
// geometry input.
func (e Element) Value() (driver.Value, error) {
	if e.IsZero() {
		return nil, nil
	}
	return e.String(), nil
}

// Scan implements sql.Scanner. Whatever the database returns is kept as a
// binary element.
func (e *Element) Scan(src interface{}) error {
	element, err := elementFromStored(src)
	if err != nil {
		return err
	}
	*e = element
	return nil
}

func elementFromStored(raw interface{}) (Element, error) {
	switch raw := raw.(type) {
	case nil:
		return Element{}, nil
	case []byte:
		if wkbcodec.LooksLikeHex(raw) {
			return FromHex(string(raw))
		}
		return FromBinary(raw), nil
	case string:
		return FromHex(raw)
	case Element:
		if raw.representation == Binary || raw.IsZero() {
			return raw, nil
		}
	}
	return Element{}, typeMismatch(raw)
}

func (e Element) literalSQL(scope scope) (string, error) {
	d := scope.dialect()
	switch e.representation {
	case Textual:
		return GeomFromText(e.text, e.srid).GetSQL(scope)
	case Binary:
		name, err := d.functionName(opGeomFromWKB)
		if err != nil {
			return "", err
		}
		return name + "(" + d.spatial().hexLiteral(wkbcodec.Hex(e.payload)) + ")", nil
	default:
		return "NULL", nil
	}
}
