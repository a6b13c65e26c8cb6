package geolingo

import "strconv"

type dialect int

const (
	dialectUnknown dialect = iota
	dialectMySQL
	dialectSpatiaLite
	dialectPostGIS
	dialectMSSQL

	dialectCount
)

var dialectNames = [dialectCount]string{"unknown", "mysql", "spatialite", "postgis", "mssql"}

func (d dialect) String() string {
	return dialectNames[d]
}

type dialectArray [dialectCount]string

func getDialectFromDriverName(driverName string) dialect {
	switch driverName {
	case "mysql":
		return dialectMySQL
	case "sqlite3", "sqlite3_spatialite", "spatialite":
		return dialectSpatiaLite
	case "postgres", "pgx":
		return dialectPostGIS
	case "sqlserver", "mssql":
		return dialectMSSQL
	default:
		return dialectUnknown
	}
}

type spatialOp int

const (
	opAsText spatialOp = iota
	opAsBinary
	opArea
	opLength
	opCentroid
	opBoundary
	opBuffer
	opIntersects
	opContains
	opWithin
	opDistance
	opEquals
	opGeomFromText
	opGeomFromWKB
	opAddGeometryColumn
	opDropGeometryColumn

	spatialOpCount
)

var spatialOpNames = [spatialOpCount]string{
	"as text", "as binary", "area", "length", "centroid", "boundary", "buffer",
	"intersects", "contains", "within", "distance", "equals",
	"geometry from text", "geometry from binary",
	"add geometry column", "drop geometry column",
}

func (op spatialOp) String() string {
	return spatialOpNames[op]
}

// spatialFunctions maps each operation to a SQL function name. An empty
// name means the dialect has no such function.
type spatialFunctions [spatialOpCount]string

type spatialDialect struct {
	functions spatialFunctions
	// bufferSegments is set when the buffer function accepts a segment count.
	bufferSegments bool
	// omitUnknownSRID drops the SRID argument of geometry-from-text when it
	// is -1, for databases that reject negative SRIDs.
	omitUnknownSRID bool
	// readAsBinary wraps geometry values in the select list with the
	// as-binary function because the stored format is not WKB.
	readAsBinary bool
	// inlineColumns declares geometry columns in CREATE TABLE because the
	// database has no spatial catalog.
	inlineColumns bool
	// gistIndex creates a GiST index for each indexed geometry column.
	gistIndex bool
	// catalogLookup selects the registered geometry column names of the
	// table whose quoted name is appended.
	catalogLookup string
	hexLiteral    func(hex string) string
}

const (
	postgisCatalogLookup = "SELECT f_geometry_column FROM geometry_columns" +
		" WHERE f_table_schema = current_schema() AND f_table_name = "
	spatialiteCatalogLookup = "SELECT f_geometry_column FROM geometry_columns WHERE f_table_name = "
)

var postgisFunctions = spatialFunctions{
	opAsText:             "ST_AsText",
	opAsBinary:           "ST_AsBinary",
	opArea:               "ST_Area",
	opLength:             "ST_Length",
	opCentroid:           "ST_Centroid",
	opBoundary:           "ST_Boundary",
	opBuffer:             "ST_Buffer",
	opIntersects:         "ST_Intersects",
	opContains:           "ST_Contains",
	opWithin:             "ST_Within",
	opDistance:           "ST_Distance",
	opEquals:             "ST_Equals",
	opGeomFromText:       "ST_GeomFromText",
	opGeomFromWKB:        "ST_GeomFromEWKB",
	opAddGeometryColumn:  "AddGeometryColumn",
	opDropGeometryColumn: "DropGeometryColumn",
}

func postgisHexLiteral(hex string) string {
	return "decode('" + hex + "', 'hex')"
}

func blobHexLiteral(hex string) string {
	return "X'" + hex + "'"
}

// spatialDialects is read-only after package initialization. The unknown
// dialect renders PostGIS SQL.
var spatialDialects = [dialectCount]spatialDialect{
	dialectUnknown: {
		functions:      postgisFunctions,
		bufferSegments: true,
		gistIndex:      true,
		catalogLookup:  postgisCatalogLookup,
		hexLiteral:     postgisHexLiteral,
	},
	dialectPostGIS: {
		functions:      postgisFunctions,
		bufferSegments: true,
		gistIndex:      true,
		catalogLookup:  postgisCatalogLookup,
		hexLiteral:     postgisHexLiteral,
	},
	dialectSpatiaLite: {
		functions: spatialFunctions{
			opAsText:             "ST_AsText",
			opAsBinary:           "ST_AsBinary",
			opArea:               "ST_Area",
			opLength:             "ST_Length",
			opCentroid:           "ST_Centroid",
			opBoundary:           "ST_Boundary",
			opBuffer:             "ST_Buffer",
			opIntersects:         "ST_Intersects",
			opContains:           "ST_Contains",
			opWithin:             "ST_Within",
			opDistance:           "ST_Distance",
			opEquals:             "ST_Equals",
			opGeomFromText:       "ST_GeomFromText",
			opGeomFromWKB:        "ST_GeomFromWKB",
			opAddGeometryColumn:  "AddGeometryColumn",
			opDropGeometryColumn: "DiscardGeometryColumn",
		},
		readAsBinary:  true,
		catalogLookup: spatialiteCatalogLookup,
		hexLiteral:    blobHexLiteral,
	},
	dialectMySQL: {
		functions: spatialFunctions{
			opAsText:       "ST_AsText",
			opAsBinary:     "ST_AsBinary",
			opArea:         "ST_Area",
			opLength:       "ST_Length",
			opCentroid:     "ST_Centroid",
			opBuffer:       "ST_Buffer",
			opIntersects:   "ST_Intersects",
			opContains:     "ST_Contains",
			opWithin:       "ST_Within",
			opDistance:     "ST_Distance",
			opEquals:       "ST_Equals",
			opGeomFromText: "ST_GeomFromText",
			opGeomFromWKB:  "ST_GeomFromWKB",
		},
		omitUnknownSRID: true,
		readAsBinary:    true,
		inlineColumns:   true,
		hexLiteral:      blobHexLiteral,
	},
	dialectMSSQL: {
		hexLiteral: func(hex string) string { return "0x" + hex },
	},
}

func (d dialect) spatial() *spatialDialect {
	return &spatialDialects[d]
}

func (d dialect) functionName(op spatialOp) (string, error) {
	if name := spatialDialects[d].functions[op]; name != "" {
		return name, nil
	}
	return "", unsupported(d, op)
}

func (d dialect) sridArgument(srid int) string {
	if srid < 0 && spatialDialects[d].omitUnknownSRID {
		return ""
	}
	return strconv.Itoa(srid)
}
