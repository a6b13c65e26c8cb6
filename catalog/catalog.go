// Package catalog reads back the geometry columns a database has registered,
// so that a schema created with geolingo can be checked against what the
// database actually holds.
package catalog

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/geolingo/geolingo"
)

// GeometryColumn is one row of the spatial catalog.
type GeometryColumn struct {
	Table     string
	Column    string
	Dimension int
	SRID      int
	Type      string
}

func (c GeometryColumn) String() string {
	return c.Table + "." + c.Column + " " + c.Type + "(" + strconv.Itoa(c.Dimension) + "D, SRID " + strconv.Itoa(c.SRID) + ")"
}

type catalogFetcher interface {
	GetGeometryColumns(ctx context.Context) ([]GeometryColumn, error)
}

type fetcher struct {
	db    geolingo.Database
	query string
}

func (f fetcher) GetGeometryColumns(ctx context.Context) (result []GeometryColumn, err error) {
	cursor, err := f.db.QueryContext(ctx, f.query)
	if err != nil {
		return
	}
	defer cursor.Close()
	for cursor.Next() {
		var column GeometryColumn
		if err = cursor.Scan(&column); err != nil {
			return
		}
		column.Type = normalizeType(column.Type)
		result = append(result, column)
	}
	err = cursor.Err()
	return
}

func newPostgresCatalogFetcher(db geolingo.Database) catalogFetcher {
	return fetcher{db: db, query: "SELECT f_table_name, f_geometry_column, coord_dimension, srid, type" +
		" FROM geometry_columns WHERE f_table_schema = current_schema()"}
}

func newSpatiaLiteCatalogFetcher(db geolingo.Database) catalogFetcher {
	return fetcher{db: db, query: "SELECT f_table_name, f_geometry_column, coord_dimension, srid, geometry_type" +
		" FROM geometry_columns"}
}

func newMySQLCatalogFetcher(db geolingo.Database) catalogFetcher {
	return fetcher{db: db, query: "SELECT TABLE_NAME, COLUMN_NAME, 2, COALESCE(SRS_ID, -1), GEOMETRY_TYPE_NAME" +
		" FROM information_schema.ST_GEOMETRY_COLUMNS WHERE TABLE_SCHEMA = DATABASE()"}
}

var spatiaLiteTypeNames = map[int]string{
	0: "GEOMETRY",
	1: "POINT",
	2: "LINESTRING",
	3: "POLYGON",
	4: "MULTIPOINT",
	5: "MULTILINESTRING",
	6: "MULTIPOLYGON",
	7: "GEOMETRYCOLLECTION",
}

// normalizeType turns SpatiaLite's numeric geometry type codes into names.
// The thousands encode the Z and M ordinates, which the dimension column
// already reports.
func normalizeType(t string) string {
	if code, err := strconv.Atoi(t); err == nil {
		if name, ok := spatiaLiteTypeNames[code%1000]; ok {
			return name
		}
	}
	return strings.ToUpper(t)
}

// Inspect returns the registered geometry columns ordered by table and
// column. The driver name selects the catalog query, as it selects the
// dialect in geolingo.Open.
func Inspect(ctx context.Context, db geolingo.Database, driverName string) ([]GeometryColumn, error) {
	var f catalogFetcher
	switch driverName {
	case "postgres", "pgx":
		f = newPostgresCatalogFetcher(db)
	case "sqlite3", "sqlite3_spatialite", "spatialite":
		f = newSpatiaLiteCatalogFetcher(db)
	case "mysql":
		f = newMySQLCatalogFetcher(db)
	default:
		return nil, errors.Newf("catalog: no spatial catalog for driver %s", driverName)
	}
	columns, err := f.GetGeometryColumns(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "catalog: read geometry columns")
	}
	sort.Slice(columns, func(i, j int) bool {
		if columns[i].Table != columns[j].Table {
			return columns[i].Table < columns[j].Table
		}
		return columns[i].Column < columns[j].Column
	})
	return columns, nil
}

// Verify compares the geometry columns declared by tables with the catalog
// rows and returns one message per difference: a missing registration, a
// duplicate one, or one whose SRID, type or dimension disagrees. PostGIS
// stores the unknown SRID as 0, so 0 and -1 match. Catalog rows of other
// tables are ignored.
func Verify(tables []geolingo.Table, columns []GeometryColumn) []string {
	var problems []string
	byName := make(map[string][]GeometryColumn)
	for _, column := range columns {
		key := column.Table + "." + column.Column
		byName[key] = append(byName[key], column)
	}
	for _, table := range tables {
		for _, declared := range table.GetColumns() {
			if !declared.IsGeometry() {
				continue
			}
			key := table.GetName() + "." + declared.Name
			rows := byName[key]
			switch {
			case len(rows) == 0:
				problems = append(problems, key+": not registered")
				continue
			case len(rows) > 1:
				problems = append(problems, key+": registered "+strconv.Itoa(len(rows))+" times")
			}
			row := rows[0]
			geometryType := declared.Geometry
			if row.SRID != geometryType.SRID() && !(row.SRID <= 0 && geometryType.SRID() <= 0) {
				problems = append(problems, key+": SRID "+strconv.Itoa(row.SRID)+", declared "+strconv.Itoa(geometryType.SRID()))
			}
			if row.Type != geometryType.Name() {
				problems = append(problems, key+": type "+row.Type+", declared "+geometryType.Name())
			}
			if row.Dimension != geometryType.Dimension() {
				problems = append(problems, key+": dimension "+strconv.Itoa(row.Dimension)+", declared "+strconv.Itoa(geometryType.Dimension()))
			}
		}
	}
	return problems
}
