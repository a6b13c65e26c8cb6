package fixture

import (
	"context"
	"database/sql/driver"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/geolingo/geolingo"
	"github.com/geolingo/geolingo/internal/mockdb"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	graemeAveHex = "01020000000200000000000000201F07410000000078D00E4100000000F82507410000000090A10F41"
	myLakeHex    = "010300000001000000050000000000000000000000000000000000000000000000000010400000000000000000000000000000104000000000000010400000000000000000000000000000104000000000000000000000000000000000"
)

var rowColumns = []string{"id", "name", "geom"}

func newDatabase(t *testing.T) (*mockdb.Mock, geolingo.Database) {
	t.Helper()
	mock, sqlDB := mockdb.New()
	t.Cleanup(func() { _ = sqlDB.Close() })
	return mock, geolingo.Use("postgres", sqlDB)
}

func TestSchema(t *testing.T) {
	mock, db := newDatabase(t)
	ctx := context.Background()

	schema := NewSchema()
	require.NoError(t, schema.CreateAll(ctx, db))
	assert.Equal(t, []string{
		`CREATE TABLE "roads" ("road_id" INTEGER PRIMARY KEY, "road_name" VARCHAR(40))`,
		`SELECT AddGeometryColumn('roads', 'road_geom', -1, 'LINESTRING', 2)`,
		`CREATE INDEX "idx_roads_road_geom" ON "roads" USING GIST ("road_geom")`,
		`CREATE TABLE "lakes" ("lake_id" INTEGER PRIMARY KEY, "lake_name" VARCHAR(40))`,
		`SELECT AddGeometryColumn('lakes', 'lake_geom', -1, 'POLYGON', 2)`,
		`CREATE INDEX "idx_lakes_lake_geom" ON "lakes" USING GIST ("lake_geom")`,
	}, mock.Statements())
	assert.Equal(t, geolingo.Created, schema.RoadsDDL.State())
	assert.Equal(t, geolingo.Created, schema.LakesDDL.State())

	mock.ResetStatements()
	require.NoError(t, schema.DropAll(ctx, db))
	assert.Equal(t, []string{
		`SELECT DropGeometryColumn('lakes', 'lake_geom')`,
		`DROP TABLE IF EXISTS "lakes"`,
		`SELECT DropGeometryColumn('roads', 'road_geom')`,
		`DROP TABLE IF EXISTS "roads"`,
	}, mock.Statements())
	assert.Empty(t, mock.Catalog())
}

func TestSeed(t *testing.T) {
	mock, db := newDatabase(t)
	require.NoError(t, Seed(context.Background(), db))
	assert.Equal(t, []string{
		`INSERT INTO "roads" ("road_id", "road_name", "road_geom") VALUES ` +
			`(1, 'Jeff Rd', ST_GeomFromText('LINESTRING(191232 243118,191108 243242)', -1)), ` +
			`(2, 'Geordie Rd', ST_GeomFromText('LINESTRING(189141 244158,189265 244817)', -1)), ` +
			`(3, 'Paul St', ST_GeomFromText('LINESTRING(192783 228138,192612 229814)', -1)), ` +
			`(4, 'Graeme Ave', ST_GeomFromText('LINESTRING(189412 252431,189631 259122)', -1)), ` +
			`(5, 'Phil Tce', ST_GeomFromText('LINESTRING(190131 224148,190871 228134)', -1)), ` +
			`(6, 'Dave Cres', ST_GeomFromText('LINESTRING(198231 263418,198213 268322)', -1))`,
		`INSERT INTO "lakes" ("lake_id", "lake_name", "lake_geom") VALUES ` +
			`(1, 'My Lake', ST_GeomFromText('POLYGON((0 0,4 0,4 4,0 4,0 0))', -1))`,
	}, mock.Statements())
}

// scriptChecks queues the rows a PostGIS database returns for Checks, in
// the order the checks query them.
func scriptChecks(mock *mockdb.Mock, area float64) {
	graemeAve := func() {
		mock.Respond(rowColumns, []driver.Value{int64(4), "Graeme Ave", []byte(graemeAveHex)})
	}
	myLake := func() {
		mock.Respond(rowColumns, []driver.Value{int64(MyLakeID), MyLakeName, []byte(myLakeHex)})
	}
	scalar := func(value driver.Value) {
		mock.Respond([]string{"value"}, []driver.Value{value})
	}

	// textual element
	scalar(DaveCresWKT)
	// persistent element
	mock.Respond(rowColumns, []driver.Value{int64(DaveCresID), DaveCresName, []byte(DaveCresHex)})
	// equality
	graemeAve()
	graemeAve()
	graemeAve()
	// intersects
	graemeAve()
	mock.Respond([]string{"road_name"}, []driver.Value{"Graeme Ave"})
	scalar(GraemeAveWKT)
	// length
	graemeAve()
	scalar(GraemeAveLength)
	// area
	myLake()
	scalar(area)
	// centroid
	graemeAve()
	scalar([]byte(GraemeAveCentroidHex))
	myLake()
	scalar([]byte(MyLakeCentroidHex))
	// boundary
	graemeAve()
	scalar([]byte(GraemeAveBoundaryHex))
	// buffer
	graemeAve()
	scalar([]byte(GraemeAveBufferHex))
}

func TestChecks(t *testing.T) {
	mock, db := newDatabase(t)
	scriptChecks(mock, MyLakeArea)

	outcomes := Run(context.Background(), db)
	require.Len(t, outcomes, len(Checks))
	for _, outcome := range outcomes {
		assert.NoError(t, outcome.Err, outcome.Name)
	}

	statements := mock.Statements()
	assert.Contains(t, statements, `SELECT ST_AsText(ST_GeomFromText('LINESTRING(198231 263418,198213 268322)', -1))`)
	assert.Contains(t, statements, `SELECT "road_id", "road_name", "road_geom" FROM "roads" WHERE "road_name" = 'Dave Cres'`)
	assert.Contains(t, statements, `SELECT "road_id", "road_name", "road_geom" FROM "roads" WHERE `+
		`ST_Equals("road_geom", ST_GeomFromText('LINESTRING(189412 252431,189631 259122)', -1))`)
	assert.Contains(t, statements, `SELECT "road_id", "road_name", "road_geom" FROM "roads" WHERE `+
		`ST_Equals("road_geom", ST_GeomFromEWKB(decode('`+graemeAveHex+`', 'hex')))`)
	assert.Contains(t, statements, `SELECT "road_name" FROM "roads" WHERE `+
		`ST_Intersects("road_geom", ST_GeomFromEWKB(decode('`+graemeAveHex+`', 'hex')))`)
	assert.Contains(t, statements, `SELECT ST_Area(ST_GeomFromEWKB(decode('`+myLakeHex+`', 'hex')))`)
	assert.Contains(t, statements, `SELECT ST_Buffer(ST_GeomFromEWKB(decode('`+graemeAveHex+`', 'hex')), 10, 8)`)
}

func TestChecksMismatch(t *testing.T) {
	mock, db := newDatabase(t)
	scriptChecks(mock, 15)

	failed := map[string]error{}
	for _, outcome := range Run(context.Background(), db) {
		if outcome.Err != nil {
			failed[outcome.Name] = outcome.Err
		}
	}
	require.Len(t, failed, 1)
	assert.True(t, errors.Is(failed["area"], ErrCheckFailed))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(file, []byte("GEOLINGO_DSN=from-file\nGEOLINGO_DEBUG=true\n"), 0o600))

	t.Setenv("GEOLINGO_DRIVER", "sqlite3_spatialite")
	t.Setenv("GEOLINGO_DSN", "")
	t.Setenv("GEOLINGO_DEBUG", "")
	require.NoError(t, os.Unsetenv("GEOLINGO_DSN"))
	require.NoError(t, os.Unsetenv("GEOLINGO_DEBUG"))

	config, err := LoadConfig(file, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, Config{Driver: "sqlite3_spatialite", DSN: "from-file", Debug: true}, config)

	t.Setenv("GEOLINGO_DRIVER", "oracle")
	_, err = LoadConfig(file)
	assert.Error(t, err)

	t.Setenv("GEOLINGO_DRIVER", "")
	t.Setenv("GEOLINGO_DEBUG", "sometimes")
	_, err = LoadConfig(file)
	assert.Error(t, err)
}

// TestLive runs the fixture against a real PostGIS database named by
// GEOLINGO_TEST_DSN.
func TestLive(t *testing.T) {
	dsn := os.Getenv("GEOLINGO_TEST_DSN")
	if dsn == "" {
		t.Skip("GEOLINGO_TEST_DSN is not set")
	}
	ctx := context.Background()
	db, err := Config{Driver: "postgres", DSN: dsn}.Open()
	require.NoError(t, err)
	defer db.GetDB().Close()

	schema := NewSchema()
	require.NoError(t, schema.DropAll(ctx, db))
	require.NoError(t, schema.CreateAll(ctx, db))
	defer func() {
		assert.NoError(t, schema.DropAll(ctx, db))
	}()

	require.NoError(t, Seed(ctx, db))
	for _, outcome := range Run(ctx, db) {
		assert.NoError(t, outcome.Err, outcome.Name)
	}
}
