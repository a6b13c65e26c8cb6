package geolingo

import (
	"errors"
	"testing"
)

func TestFunction(t *testing.T) {
	a1 := expression{sql: "a1"}
	a2 := expression{sql: "a2"}
	ee := expression{builder: func(scope scope) (string, error) {
		return "", errors.New("error")
	}}

	assertValue(t, Function("func"), "func()")
	assertValue(t, Function("func", a1), "func(a1)")
	assertValue(t, Function("func", a1, a2), "func(a1, a2)")
	assertError(t, Function("func", a1, ee))

	assertValue(t, Count(a1), "COUNT(a1)")
	assertValue(t, Sum(a1), "SUM(a1)")
}

func TestSpatialFunction(t *testing.T) {
	f := spatialFunction(opAddGeometryColumn, "roads", "road_geom", UnknownSRID, "LINESTRING", 2)
	assertDialectValue(t, dialectPostGIS, f, "AddGeometryColumn('roads', 'road_geom', -1, 'LINESTRING', 2)")
	assertDialectError(t, dialectMySQL, f, nil)

	assertDialectValue(t, dialectSpatiaLite, spatialFunction(opDropGeometryColumn, "roads", "road_geom"),
		"DiscardGeometryColumn('roads', 'road_geom')")
	assertError(t, spatialFunction(opArea, expression{builder: func(scope scope) (string, error) {
		return "", errors.New("error")
	}}))
}
