package geolingo

import "fmt"

// GeometryExpression is the interface of an SQL expression with geometry
// value. Every method builds a new expression; nothing is computed until the
// database evaluates it.
type GeometryExpression interface {
	Expression

	// WKT is the well-known text of the geometry.
	WKT() StringExpression
	// AsBinary is the well-known binary of the geometry.
	AsBinary() Expression
	Area() NumberExpression
	Length() NumberExpression
	Centroid() GeometryExpression
	Boundary() GeometryExpression
	// Buffer is the geometry grown by distance, approximating each quarter
	// circle with the given number of segments. The segment count is
	// omitted for databases that do not take one.
	Buffer(distance float64, segments int) GeometryExpression
	Distance(other interface{}) NumberExpression

	Intersects(other interface{}) BooleanExpression
	Contains(other interface{}) BooleanExpression
	Within(other interface{}) BooleanExpression
}

type geometryExpression struct {
	expression
}

func (e geometryExpression) WKT() StringExpression {
	return spatialFunction(opAsText, e)
}

func (e geometryExpression) AsBinary() Expression {
	return spatialFunction(opAsBinary, e)
}

func (e geometryExpression) Area() NumberExpression {
	return spatialFunction(opArea, e)
}

func (e geometryExpression) Length() NumberExpression {
	return spatialFunction(opLength, e)
}

func (e geometryExpression) Centroid() GeometryExpression {
	return geometryExpression{spatialFunction(opCentroid, e)}
}

func (e geometryExpression) Boundary() GeometryExpression {
	return geometryExpression{spatialFunction(opBoundary, e)}
}

func (e geometryExpression) Buffer(distance float64, segments int) GeometryExpression {
	return geometryExpression{expression{builder: func(scope scope) (string, error) {
		d := scope.dialect()
		args := []interface{}{e, distance}
		if d.spatial().bufferSegments {
			args = append(args, segments)
		}
		return spatialFunction(opBuffer, args...).GetSQL(scope)
	}}}
}

func (e geometryExpression) Distance(other interface{}) NumberExpression {
	return e.relation(opDistance, other)
}

func (e geometryExpression) Intersects(other interface{}) BooleanExpression {
	return e.relation(opIntersects, other)
}

func (e geometryExpression) Contains(other interface{}) BooleanExpression {
	return e.relation(opContains, other)
}

func (e geometryExpression) Within(other interface{}) BooleanExpression {
	return e.relation(opWithin, other)
}

// Equals compares geometries with the spatial equality predicate, so a
// textual literal and the binary value it was stored as compare equal.
func (e geometryExpression) Equals(other interface{}) BooleanExpression {
	return e.relation(opEquals, other)
}

func (e geometryExpression) NotEquals(other interface{}) BooleanExpression {
	return e.relation(opEquals, other).Not()
}

// In is the disjunction of spatial equality against each value.
func (e geometryExpression) In(values ...interface{}) BooleanExpression {
	values = expandSliceValues(values)
	conditions := make([]BooleanExpression, len(values))
	for i, value := range values {
		conditions[i] = e.Equals(value)
	}
	return Or(conditions...)
}

func (e geometryExpression) relation(op spatialOp, other interface{}) expression {
	return expression{builder: func(scope scope) (string, error) {
		operand, err := toGeometryOperand(other)
		if err != nil {
			return "", err
		}
		return spatialFunction(op, e, operand).GetSQL(scope)
	}}
}

// toGeometryOperand resolves the right-hand side of a spatial comparison
// into a geometry expression. Strings are EWKT literals with an unknown SRID
// unless they carry a prefix.
func toGeometryOperand(value interface{}) (GeometryExpression, error) {
	switch value := value.(type) {
	case *Element:
		if value == nil {
			return nil, typeMismatch(value)
		}
		return *value, nil
	case GeometryExpression:
		return value, nil
	case string:
		element, err := ParseText(value, UnknownSRID)
		if err != nil {
			return nil, err
		}
		return element, nil
	case []byte:
		return FromBinary(value), nil
	default:
		return nil, typeMismatch(value)
	}
}

// GeomFromText creates a geometry from well-known text and an SRID.
func GeomFromText(text interface{}, srid int) GeometryExpression {
	return geometryExpression{expression{builder: func(scope scope) (string, error) {
		name, err := scope.dialect().functionName(opGeomFromText)
		if err != nil {
			return "", err
		}
		textSql, _, err := getSQL(scope, text)
		if err != nil {
			return "", err
		}
		if sridSql := scope.dialect().sridArgument(srid); sridSql != "" {
			return name + "(" + textSql + ", " + sridSql + ")", nil
		}
		return name + "(" + textSql + ")", nil
	}}}
}

// GeomFromTextf formats the well-known text with fmt.Sprintf.
func GeomFromTextf(srid int, format string, a ...interface{}) GeometryExpression {
	return GeomFromText(fmt.Sprintf(format, a...), srid)
}
