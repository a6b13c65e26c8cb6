// Package fixture holds the roads and lakes tables used to exercise the
// spatial layer end to end, their rows, and the values a spatial database
// is expected to compute for them.
package fixture

import (
	"context"

	"github.com/geolingo/geolingo"
)

var (
	Roads = geolingo.NewTable("roads",
		geolingo.PrimaryKeyColumn("road_id", "INTEGER"),
		geolingo.Column("road_name", "VARCHAR(40)"),
		geolingo.GeometryColumn("road_geom", geolingo.MustGeometryType(2, geolingo.WithGeometryName("LINESTRING"))),
	)
	RoadID   = geolingo.NewNumberField(Roads, "road_id")
	RoadName = geolingo.NewStringField(Roads, "road_name")
	RoadGeom = geolingo.NewGeometryField(Roads, "road_geom")

	Lakes = geolingo.NewTable("lakes",
		geolingo.PrimaryKeyColumn("lake_id", "INTEGER"),
		geolingo.Column("lake_name", "VARCHAR(40)"),
		geolingo.GeometryColumn("lake_geom", geolingo.MustGeometryType(2, geolingo.WithGeometryName("POLYGON"))),
	)
	LakeID   = geolingo.NewNumberField(Lakes, "lake_id")
	LakeName = geolingo.NewStringField(Lakes, "lake_name")
	LakeGeom = geolingo.NewGeometryField(Lakes, "lake_geom")
)

// Road is a row of Roads, in column order.
type Road struct {
	ID   int64
	Name string
	Geom geolingo.Element
}

// Lake is a row of Lakes, in column order.
type Lake struct {
	ID   int64
	Name string
	Geom geolingo.Element
}

// RoadRows are inserted as extended well-known text strings, the last one
// as a textual element.
var RoadRows = []struct {
	ID   int64
	Name string
	Geom string
}{
	{1, "Jeff Rd", "SRID=-1;LINESTRING(191232 243118,191108 243242)"},
	{2, "Geordie Rd", "SRID=-1;LINESTRING(189141 244158,189265 244817)"},
	{3, "Paul St", "SRID=-1;LINESTRING(192783 228138,192612 229814)"},
	{4, "Graeme Ave", "SRID=-1;LINESTRING(189412 252431,189631 259122)"},
	{5, "Phil Tce", "SRID=-1;LINESTRING(190131 224148,190871 228134)"},
}

const (
	DaveCresID   = 6
	DaveCresName = "Dave Cres"
	DaveCresWKT  = "LINESTRING(198231 263418,198213 268322)"

	MyLakeID   = 1
	MyLakeName = "My Lake"
	MyLakeWKT  = "POLYGON((0 0,4 0,4 4,0 4,0 0))"
)

// DaveCres is the road inserted as an explicit textual element.
func DaveCres() geolingo.Element {
	element, err := geolingo.FromText(DaveCresWKT, geolingo.UnknownSRID)
	if err != nil {
		panic(err)
	}
	return element
}

// Schema declares both tables with the geometry DDL extension enabled.
type Schema struct {
	*geolingo.Schema
	RoadsDDL *geolingo.GeometryDDL
	LakesDDL *geolingo.GeometryDDL
}

func NewSchema() Schema {
	schema := geolingo.NewSchema(Roads, Lakes)
	return Schema{
		Schema:   schema,
		RoadsDDL: geolingo.EnableGeometryDDL(schema, Roads),
		LakesDDL: geolingo.EnableGeometryDDL(schema, Lakes),
	}
}

// Seed inserts the six roads and the lake.
func Seed(ctx context.Context, db geolingo.Database) error {
	insert := db.InsertInto(Roads).Fields(RoadID, RoadName, RoadGeom)
	for _, row := range RoadRows {
		insert = insert.Values(row.ID, row.Name, row.Geom)
	}
	insert = insert.Values(DaveCresID, DaveCresName, DaveCres())
	if _, err := insert.WithContext(ctx).Execute(); err != nil {
		return err
	}

	_, err := db.InsertInto(Lakes).
		Fields(LakeID, LakeName, LakeGeom).
		Values(MyLakeID, MyLakeName, "SRID=-1;"+MyLakeWKT).
		WithContext(ctx).
		Execute()
	return err
}
