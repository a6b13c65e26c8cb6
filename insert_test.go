package geolingo

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsert(t *testing.T) {
	mock, db := newMockDatabase(t, "postgres")
	ctx := context.Background()

	daveCres, err := FromText(daveCresWKT, UnknownSRID)
	require.NoError(t, err)

	_, err = db.InsertInto(testRoads).Fields(testRoadID, testRoadName, testRoadGeom).
		Values(1, "Jeff Rd", "SRID=-1;LINESTRING(191232 243118,191108 243242)").
		Values(6, "Dave Cres", daveCres).
		Values(7, "Unmapped", nil).
		WithContext(ctx).
		Execute()
	require.NoError(t, err)
	assertLastSql(t, mock, `INSERT INTO "roads" ("road_id", "road_name", "road_geom") VALUES `+
		`(1, 'Jeff Rd', ST_GeomFromText('LINESTRING(191232 243118,191108 243242)', -1)), `+
		`(6, 'Dave Cres', ST_GeomFromText('`+daveCresWKT+`', -1)), `+
		`(7, 'Unmapped', NULL)`)

	persisted, err := FromHex(daveCresHex)
	require.NoError(t, err)
	_, err = db.InsertInto(testRoads).Fields(testRoadID, testRoadGeom).Values(8, &persisted).Execute()
	require.NoError(t, err)
	assertLastSql(t, mock, `INSERT INTO "roads" ("road_id", "road_geom") VALUES (8, ST_GeomFromEWKB(decode('`+daveCresHex+`', 'hex')))`)

	_, err = db.InsertInto(testRoads).Fields(testRoadID, testRoadGeom).Values(9, testRoadGeom.Buffer(1, 8)).Execute()
	require.NoError(t, err)
	assertLastSql(t, mock, `INSERT INTO "roads" ("road_id", "road_geom") VALUES (9, ST_Buffer("road_geom", 1, 8))`)

	_, err = db.InsertInto(testRoads).Fields(testRoadID, testRoadGeom).Values(10, (*Element)(nil)).Execute()
	require.NoError(t, err)
	assertLastSql(t, mock, `INSERT INTO "roads" ("road_id", "road_geom") VALUES (10, NULL)`)
}

func TestInsertDialects(t *testing.T) {
	mock, db := newMockDatabase(t, "mysql")
	_, err := db.InsertInto(testRoads).Fields(testRoadID, testRoadGeom).Values(1, "POINT(1 2)").Execute()
	require.NoError(t, err)
	assertLastSql(t, mock, "INSERT INTO `roads` (`road_id`, `road_geom`) VALUES (1, ST_GeomFromText('POINT(1 2)'))")

	mock, db = newMockDatabase(t, "sqlite3_spatialite")
	_, err = db.InsertInto(testRoads).Fields(testRoadID, testRoadGeom).Values(1, []byte{0x01, 0x01, 0x00, 0x00, 0x00, 0, 0, 0, 0, 0, 0, 0xf0, 0x3f, 0, 0, 0, 0, 0, 0, 0, 0x40}).Execute()
	require.NoError(t, err)
	assertLastSql(t, mock, `INSERT INTO "roads" ("road_id", "road_geom") VALUES (1, ST_GeomFromWKB(X'0101000000000000000000F03F0000000000000040'))`)
}

func TestInsertErrors(t *testing.T) {
	mock, db := newMockDatabase(t, "postgres")

	_, err := db.InsertInto(testRoads).Fields(testRoadID, testRoadGeom).
		Values(1, "LINESTRING(1 2,3 4)").
		Values(2, "LINESTRING Z (1 2 3,4 5 6)").
		Execute()
	assert.True(t, errors.Is(err, ErrDimensionMismatch), "%v", err)

	_, err = db.InsertInto(testRoads).Fields(testRoadID, testRoadGeom).Values(1, 42).Execute()
	assert.True(t, errors.Is(err, ErrTypeMismatch), "%v", err)

	_, err = db.InsertInto(testRoads).Fields(testRoadID, testRoadGeom).Values(1, "").Execute()
	assert.True(t, errors.Is(err, ErrInvalidLiteral), "%v", err)

	_, err = db.InsertInto(testRoads).Fields(testRoadID, testRoadName).Values(1).Execute()
	assert.Error(t, err)

	_, err = db.InsertInto(testRoads).Fields(testRoadID).GetSQL()
	assert.Error(t, err)

	assert.Empty(t, mock.Statements())
}
