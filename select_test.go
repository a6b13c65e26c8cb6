package geolingo

import (
	"context"
	"database/sql/driver"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testLakes = NewTable("lakes",
		PrimaryKeyColumn("lake_id", "INTEGER"),
		Column("lake_name", "VARCHAR(40)"),
		GeometryColumn("lake_geom", MustGeometryType(2, WithGeometryName("POLYGON"))),
	)
	testLakeGeom = NewGeometryField(testLakes, "lake_geom")
)

type testRoad struct {
	ID   int64
	Name string
	Geom Element
}

var roadColumns = []string{"road_id", "road_name", "road_geom"}

func TestSelect(t *testing.T) {
	mock, db := newMockDatabase(t, "postgres")
	assertValue(t, db.Select(1), "(SELECT 1)")

	_, _ = db.Select(testRoadID).From(testRoads).Where(testRoadID.GreaterThan(1)).Where(testRoadName.NotEquals("x")).
		OrderBy(testRoadID.Desc()).Limit(10).Offset(20).FetchFirst()
	assertLastSql(t, mock, `SELECT "road_id" FROM "roads" WHERE "road_id" > 1 AND "road_name" <> 'x' ORDER BY "road_id" DESC LIMIT 10 OFFSET 20`)

	_, _ = db.Select(testRoadName).From(testRoads).Where(testRoadID.In(
		db.Select(testRoadID).From(testRoads).Where(testRoadGeom.Length().GreaterThan(1000)),
	)).FetchFirst()
	assertLastSql(t, mock, `SELECT "road_name" FROM "roads" WHERE "road_id" IN (SELECT "road_id" FROM "roads" WHERE ST_Length("road_geom") > 1000)`)

	_, _ = db.Select(testRoadName, testLakeGeom.Area()).From(testRoads, testLakes).
		Where(testRoadGeom.Intersects(testLakeGeom)).FetchFirst()
	assertLastSql(t, mock, `SELECT "roads"."road_name", ST_Area("lakes"."lake_geom") FROM "roads", "lakes" WHERE ST_Intersects("roads"."road_geom", "lakes"."lake_geom")`)

	_, _ = db.Select(testRoadID).From(testRoads).Where(Or()).FetchFirst()
	assertLastSql(t, mock, `SELECT "road_id" FROM "roads" WHERE FALSE`)

	_, _ = db.Select(testRoadID).From(testRoads).Where(And()).Limit(1).FetchFirst()
	assertLastSql(t, mock, `SELECT "road_id" FROM "roads" LIMIT 1`)
}

func TestSelectFrom(t *testing.T) {
	mock, db := newMockDatabase(t, "postgres")
	_, _ = db.SelectFrom(testRoads).FetchFirst()
	assertLastSql(t, mock, `SELECT "road_id", "road_name", "road_geom" FROM "roads"`)
	_, _ = db.SelectFrom(testRoads).WithContext(context.Background()).Where(testRoadID.Equals(2)).FetchFirst()
	assertLastSql(t, mock, `SELECT "road_id", "road_name", "road_geom" FROM "roads" WHERE "road_id" = 2`)

	mock, db = newMockDatabase(t, "sqlite3_spatialite")
	_, _ = db.SelectFrom(testRoads).Where(testRoadName.Equals("Jeff Rd")).FetchFirst()
	assertLastSql(t, mock, `SELECT "road_id", "road_name", ST_AsBinary("road_geom") FROM "roads" WHERE "road_name" = 'Jeff Rd'`)

	mock, db = newMockDatabase(t, "mysql")
	_, _ = db.Select(testRoadGeom.Centroid()).From(testRoads).FetchFirst()
	assertLastSql(t, mock, "SELECT ST_AsBinary(ST_Centroid(`road_geom`)) FROM `roads`")
}

func TestSelectIntersects(t *testing.T) {
	mock, db := newMockDatabase(t, "postgres")
	ctx := context.Background()

	graemeAve, err := FromHex("01020000000200000000000000201F07410000000078D00E4100000000F82507410000000090A10F41")
	require.NoError(t, err)

	mock.Respond([]string{"road_name"}, []driver.Value{"Graeme Ave"})
	var names []string
	err = db.Select(testRoadName).From(testRoads).Where(testRoadGeom.Intersects(graemeAve)).WithContext(ctx).FetchAll(&names)
	require.NoError(t, err)
	assert.Equal(t, []string{"Graeme Ave"}, names)
	assertLastSql(t, mock, `SELECT "road_name" FROM "roads" WHERE ST_Intersects("road_geom", `+
		`ST_GeomFromEWKB(decode('01020000000200000000000000201F07410000000078D00E4100000000F82507410000000090A10F41', 'hex')))`)
}

func TestFetchRows(t *testing.T) {
	mock, db := newMockDatabase(t, "postgres")

	mock.Respond(roadColumns, []driver.Value{int64(6), "Dave Cres", []byte(daveCresHex)})
	var road testRoad
	ok, err := db.SelectFrom(testRoads).Where(testRoadID.Equals(6)).FetchFirst(&road)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(6), road.ID)
	assert.Equal(t, "Dave Cres", road.Name)
	assert.Equal(t, Binary, road.Geom.Representation())
	assert.Equal(t, daveCresHex, road.Geom.String())

	mock.Respond(roadColumns,
		[]driver.Value{int64(1), "Jeff Rd", []byte(daveCresHex)},
		[]driver.Value{int64(2), "Geordie Rd", nil},
	)
	var roads []testRoad
	require.NoError(t, db.SelectFrom(testRoads).FetchAll(&roads))
	require.Len(t, roads, 2)
	assert.Equal(t, "Jeff Rd", roads[0].Name)
	assert.True(t, roads[1].Geom.IsZero())

	ok, err = db.SelectFrom(testRoads).FetchFirst(&road)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Error(t, db.SelectFrom(testRoads).FetchAll(roads))
	var notSlice int
	assert.Error(t, db.SelectFrom(testRoads).FetchAll(&notSlice))
}

func TestCount(t *testing.T) {
	mock, db := newMockDatabase(t, "postgres")
	mock.Respond([]string{"count"}, []driver.Value{int64(6)})
	count, err := db.Select(testRoadID).From(testRoads).Where(testRoadGeom.IsNotNull()).OrderBy(testRoadID).Limit(3).Count()
	require.NoError(t, err)
	assert.Equal(t, 6, count)
	assertLastSql(t, mock, `SELECT COUNT(1) FROM "roads" WHERE "road_geom" IS NOT NULL`)
}

func TestSelectErrors(t *testing.T) {
	mock, db := newMockDatabase(t, "mssql")
	_, err := db.Select(testRoadGeom.Area()).From(testRoads).FetchFirst()
	assert.Error(t, err)

	_, err = db.Select(testRoadID).From(testRoads).Where(testRoadGeom.Equals(42)).FetchCursor()
	assert.Error(t, err)
	assert.Empty(t, mock.Statements())
}
