package geolingo

import (
	"database/sql/driver"
	"strings"

	"github.com/cockroachdb/errors"
)

var geometryNames = map[string]bool{
	"GEOMETRY":           true,
	"POINT":              true,
	"LINESTRING":         true,
	"POLYGON":            true,
	"MULTIPOINT":         true,
	"MULTILINESTRING":    true,
	"MULTIPOLYGON":       true,
	"GEOMETRYCOLLECTION": true,
}

// GeometryType describes the values a geometry column holds. It is fixed
// when the column is declared.
type GeometryType struct {
	dimension    int
	srid         int
	name         string
	spatialIndex bool
}

// GeometryTypeOption customizes a GeometryType.
type GeometryTypeOption func(t *GeometryType)

// WithSRID sets the SRID registered for the column and given to literals
// that do not carry one. The default is UnknownSRID.
func WithSRID(srid int) GeometryTypeOption {
	return func(t *GeometryType) {
		t.srid = srid
	}
}

// WithGeometryName restricts the column to one geometry type, e.g.
// "LINESTRING". The default is "GEOMETRY".
func WithGeometryName(name string) GeometryTypeOption {
	return func(t *GeometryType) {
		t.name = strings.ToUpper(name)
	}
}

// WithoutSpatialIndex skips the spatial index when the column is created.
func WithoutSpatialIndex() GeometryTypeOption {
	return func(t *GeometryType) {
		t.spatialIndex = false
	}
}

// NewGeometryType creates the type of a geometry column with the given
// dimension, which must be 2 or 3.
func NewGeometryType(dimension int, opts ...GeometryTypeOption) (GeometryType, error) {
	t := GeometryType{
		dimension:    dimension,
		srid:         UnknownSRID,
		name:         "GEOMETRY",
		spatialIndex: true,
	}
	for _, opt := range opts {
		opt(&t)
	}
	if dimension != 2 && dimension != 3 {
		return GeometryType{}, errors.Newf("geometry: dimension must be 2 or 3, got %d", dimension)
	}
	if !geometryNames[t.name] {
		return GeometryType{}, errors.Newf("geometry: unknown geometry type %q", t.name)
	}
	return t, nil
}

// MustGeometryType is like NewGeometryType but panics on error. It is meant
// for package-level table declarations.
func MustGeometryType(dimension int, opts ...GeometryTypeOption) GeometryType {
	t, err := NewGeometryType(dimension, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t GeometryType) Dimension() int {
	return t.dimension
}

func (t GeometryType) SRID() int {
	return t.srid
}

func (t GeometryType) Name() string {
	return t.name
}

func (t GeometryType) SpatialIndex() bool {
	return t.spatialIndex
}

// Bind normalizes a value assigned to the column into an Element. Strings
// are extended well-known text, []byte is WKB. The dimension is checked
// here so that a bad value never reaches the database.
func (t GeometryType) Bind(value interface{}) (Element, error) {
	var element Element
	switch value := value.(type) {
	case string:
		var err error
		if element, err = ParseText(value, t.srid); err != nil {
			return Element{}, err
		}
	case Element:
		element = value
	case *Element:
		if value == nil {
			return Element{}, typeMismatch(value)
		}
		element = *value
	case []byte:
		element = FromBinary(value)
	default:
		return Element{}, typeMismatch(value)
	}
	if element.IsZero() {
		return element, nil
	}

	dimension, err := element.Dimension()
	if err != nil {
		return Element{}, err
	}
	if dimension != t.dimension {
		return Element{}, errors.Mark(
			errors.Newf("geometry: %d-dimensional value for a %d-dimensional column", dimension, t.dimension),
			ErrDimensionMismatch,
		)
	}
	return element, nil
}

// BindParam binds the value and returns the form sent to the database.
func (t GeometryType) BindParam(value interface{}) (driver.Value, error) {
	element, err := t.Bind(value)
	if err != nil {
		return nil, err
	}
	return element.Value()
}

// ResultProcessor wraps a value read from the column as a binary element.
func (t GeometryType) ResultProcessor(raw interface{}) (Element, error) {
	return elementFromStored(raw)
}

// ColumnDefinition declares one column of a table.
type ColumnDefinition struct {
	Name string
	// SQLType is the column type used in CREATE TABLE. Geometry columns
	// leave it empty.
	SQLType    string
	PrimaryKey bool
	Geometry   *GeometryType
}

// Column declares an ordinary column.
func Column(name string, sqlType string) ColumnDefinition {
	return ColumnDefinition{Name: name, SQLType: sqlType}
}

// PrimaryKeyColumn declares the primary key column.
func PrimaryKeyColumn(name string, sqlType string) ColumnDefinition {
	return ColumnDefinition{Name: name, SQLType: sqlType, PrimaryKey: true}
}

// GeometryColumn declares a geometry column.
func GeometryColumn(name string, geometryType GeometryType) ColumnDefinition {
	return ColumnDefinition{Name: name, Geometry: &geometryType}
}

func (c ColumnDefinition) IsGeometry() bool {
	return c.Geometry != nil
}
