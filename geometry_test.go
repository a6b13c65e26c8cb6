package geolingo

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

var (
	testRoads = NewTable("roads",
		PrimaryKeyColumn("road_id", "INTEGER"),
		Column("road_name", "VARCHAR(40)"),
		GeometryColumn("road_geom", MustGeometryType(2, WithGeometryName("LINESTRING"))),
	)
	testRoadID   = NewNumberField(testRoads, "road_id")
	testRoadName = NewStringField(testRoads, "road_name")
	testRoadGeom = NewGeometryField(testRoads, "road_geom")
)

func assertDialectError(t *testing.T, d dialect, value interface{}, target error) {
	t.Helper()
	generatedSql, _, err := getSQL(dialectScope(d), value)
	if assert.Error(t, err, generatedSql) && target != nil {
		assert.True(t, errors.Is(err, target), "%v", err)
	}
}

func TestGeometry(t *testing.T) {
	assertValue(t, GeomFromText("POINT(1 2)", 4326), "ST_GeomFromText('POINT(1 2)', 4326)")
	assertValue(t, GeomFromTextf(UnknownSRID, "POINT(%d %d)", 1, 2), "ST_GeomFromText('POINT(1 2)', -1)")
	assertDialectValue(t, dialectMySQL, GeomFromText("POINT(1 2)", UnknownSRID), "ST_GeomFromText('POINT(1 2)')")
	assertDialectValue(t, dialectMySQL, GeomFromText("POINT(1 2)", 4326), "ST_GeomFromText('POINT(1 2)', 4326)")

	e := geometryExpression{expression{sql: "<>"}}
	assertValue(t, e.WKT(), "ST_AsText(<>)")
	assertValue(t, e.AsBinary(), "ST_AsBinary(<>)")
	assertValue(t, e.Area(), "ST_Area(<>)")
	assertValue(t, e.Length(), "ST_Length(<>)")
	assertValue(t, e.Centroid(), "ST_Centroid(<>)")
	assertValue(t, e.Boundary(), "ST_Boundary(<>)")
	assertValue(t, e.Buffer(10, 8), "ST_Buffer(<>, 10, 8)")
	assertValue(t, e.Distance(e), "ST_Distance(<>, <>)")
	assertValue(t, e.Intersects(e), "ST_Intersects(<>, <>)")
	assertValue(t, e.Contains(e), "ST_Contains(<>, <>)")
	assertValue(t, e.Within(e), "ST_Within(<>, <>)")
	assertValue(t, e.Equals(e), "ST_Equals(<>, <>)")
	assertValue(t, e.NotEquals(e), "NOT ST_Equals(<>, <>)")
	assertValue(t, e.Buffer(2.5, 8).Centroid().WKT(), "ST_AsText(ST_Centroid(ST_Buffer(<>, 2.5, 8)))")
	assertValue(t, e.IsNull(), "<> IS NULL")
}

func TestGeometryField(t *testing.T) {
	assertValue(t, testRoadGeom, `"roads"."road_geom"`)
	assertValue(t, testRoadGeom.Length(), `ST_Length("roads"."road_geom")`)
	assertDialectValue(t, dialectMySQL, testRoadGeom.Area(), "ST_Area(`roads`.`road_geom`)")

	assert.Equal(t, "road_geom", testRoadGeom.GetName())
	assert.Equal(t, "roads", testRoadGeom.GetTable().GetName())
	assert.Equal(t, "LINESTRING", testRoadGeom.GetType().Name())

	assert.Panics(t, func() { NewGeometryField(testRoads, "road_name") })
	assert.Panics(t, func() { NewGeometryField(testRoads, "missing") })
}

func TestGeometryOperands(t *testing.T) {
	assertValue(t, testRoadGeom.Intersects("LINESTRING(1 1,2 2)"),
		`ST_Intersects("roads"."road_geom", ST_GeomFromText('LINESTRING(1 1,2 2)', -1))`)
	assertValue(t, testRoadGeom.Equals("SRID=4326;POINT(1 2)"),
		`ST_Equals("roads"."road_geom", ST_GeomFromText('POINT(1 2)', 4326))`)
	assertValue(t, testRoadGeom.Equals(GeomFromText("POINT(1 2)", 3857)),
		`ST_Equals("roads"."road_geom", ST_GeomFromText('POINT(1 2)', 3857))`)
	assertValue(t, testRoadGeom.Equals([]byte{0x01, 0x01, 0x00, 0x00, 0x00}),
		`ST_Equals("roads"."road_geom", ST_GeomFromEWKB(decode('0101000000', 'hex')))`)
	assertValue(t, testRoadGeom.Within(testRoadGeom.Buffer(1, 4)),
		`ST_Within("roads"."road_geom", ST_Buffer("roads"."road_geom", 1, 4))`)

	element, err := FromText("POINT(1 2)", UnknownSRID)
	assert.NoError(t, err)
	assertValue(t, testRoadGeom.Contains(element),
		`ST_Contains("roads"."road_geom", ST_GeomFromText('POINT(1 2)', -1))`)
	assertValue(t, testRoadGeom.Contains(&element),
		`ST_Contains("roads"."road_geom", ST_GeomFromText('POINT(1 2)', -1))`)

	assertDialectError(t, dialectUnknown, testRoadGeom.Intersects(42), ErrTypeMismatch)
	assertDialectError(t, dialectUnknown, testRoadGeom.Equals((*Element)(nil)), ErrTypeMismatch)
	assertDialectError(t, dialectUnknown, testRoadGeom.Equals(""), ErrInvalidLiteral)
	assertDialectError(t, dialectUnknown, testRoadGeom.Equals("SRID=x;POINT(1 2)"), ErrInvalidLiteral)
}

func TestGeometryIn(t *testing.T) {
	assertValue(t, testRoadGeom.In(), "FALSE")
	assertValue(t, testRoadGeom.In("POINT(1 2)"),
		`ST_Equals("roads"."road_geom", ST_GeomFromText('POINT(1 2)', -1))`)
	assertValue(t, testRoadGeom.In([]string{"POINT(1 2)", "POINT(3 4)"}),
		`ST_Equals("roads"."road_geom", ST_GeomFromText('POINT(1 2)', -1)) OR `+
			`ST_Equals("roads"."road_geom", ST_GeomFromText('POINT(3 4)', -1))`)
}

func TestGeometryDialects(t *testing.T) {
	assertDialectValue(t, dialectPostGIS, testRoadGeom.Buffer(10, 8), `ST_Buffer("roads"."road_geom", 10, 8)`)
	assertDialectValue(t, dialectSpatiaLite, testRoadGeom.Buffer(10, 8), `ST_Buffer("roads"."road_geom", 10)`)
	assertDialectValue(t, dialectMySQL, testRoadGeom.Buffer(10, 8), "ST_Buffer(`roads`.`road_geom`, 10)")

	assertDialectValue(t, dialectSpatiaLite, testRoadGeom.Equals([]byte{0x01, 0x01, 0x00, 0x00, 0x00}),
		`ST_Equals("roads"."road_geom", ST_GeomFromWKB(X'0101000000'))`)
	assertDialectValue(t, dialectMySQL, testRoadGeom.Intersects("POINT(1 2)"),
		"ST_Intersects(`roads`.`road_geom`, ST_GeomFromText('POINT(1 2)'))")

	assertDialectError(t, dialectMySQL, testRoadGeom.Boundary(), nil)
	assertDialectError(t, dialectMSSQL, testRoadGeom.Area(), nil)
	assertDialectError(t, dialectMSSQL, GeomFromText("POINT(1 2)", 4326), nil)
}
