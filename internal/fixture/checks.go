package fixture

import (
	"context"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/geolingo/geolingo"
)

// Values PostGIS computes for the fixture.
const (
	DaveCresHex     = "01020000000200000000000000B832084100000000E813104100000000283208410000000088601041"
	GraemeAveWKT    = "LINESTRING(189412 252431,189631 259122)"
	GraemeAveLength = 6694.5830340656803
	MyLakeArea      = 16.0

	GraemeAveCentroidHex = "0101000000000000008C2207410000000004390F41"
	MyLakeCentroidHex    = "010100000000000000000000400000000000000040"
	GraemeAveBoundaryHex = "010400000002000000010100000000000000201F07410000000078D00E41010100000000000000F82507410000000090A10F41"
	GraemeAveBufferHex   = "01030000000100000023000000F90FF60AA8250741746AF69D92A10F41D2A2F816AA250741699A662AA2A10F4183227521AF2507416F712004B1A10F411BD6D3F8B62507412ACC0A99BEA10F41E55CF04FC125074148FE8763CAA10F41B49910C1CD250741B95398EFD3A10F41867BCDD1DB25074122414FDFDAA10F41EE2DC7F7EA25074193686FEEDEA10F41746AF69DFA25074107F009F5DFA10F41699A662A0A2607412E5D07E9DDA10F416F712004192607417DDD8ADED8A10F412ACC0A9926260741E5292C07D1A10F4148FE8763322607411BA30FB0C6A10F41B95398EF3B2607414C66EF3EBAA10F4122414FDF422607417A84322EACA10F4193686FEE4626074112D238089DA10F4107F009F5472607418C9509628DA10F4107F009F56F1F07418C95096275D00E412E5D07E96D1F0741976599D565D00E417DDD8ADE681F0741918EDFFB56D00E41E5292C07611F0741D633F56649D00E411BA30FB0561F0741B801789C3DD00E414C66EF3E4A1F074147AC671034D00E417A84322E3C1F0741DEBEB0202DD00E4112D238082D1F07416D97901129D00E418C9509621D1F0741F90FF60A28D00E41976599D50D1F0741D2A2F8162AD00E41918EDFFBFE1E0741832275212FD00E41D633F566F11E07411BD6D3F836D00E41B801789CE51E0741E55CF04F41D00E4147AC6710DC1E0741B49910C14DD00E41DEBEB020D51E0741867BCDD15BD00E416D979011D11E0741EE2DC7F76AD00E41F90FF60AD01E0741746AF69D7AD00E41F90FF60AA8250741746AF69D92A10F41"
)

// ErrCheckFailed marks a check whose result differs from the expected value.
var ErrCheckFailed = errors.New("fixture check failed")

// Check is one expectation about the seeded fixture.
type Check struct {
	Name string
	Run  func(ctx context.Context, db geolingo.Database) error
}

// Outcome is the result of one check.
type Outcome struct {
	Name string
	Err  error
}

func mismatch(got interface{}, want interface{}) error {
	return errors.Mark(errors.Newf("got %v, want %v", got, want), ErrCheckFailed)
}

func roadByName(ctx context.Context, db geolingo.Database, name string) (road Road, err error) {
	ok, err := db.SelectFrom(Roads).Where(RoadName.Equals(name)).WithContext(ctx).FetchFirst(&road)
	if err == nil && !ok {
		err = errors.Newf("road %q not found", name)
	}
	return
}

func lakeByName(ctx context.Context, db geolingo.Database, name string) (lake Lake, err error) {
	ok, err := db.SelectFrom(Lakes).Where(LakeName.Equals(name)).WithContext(ctx).FetchFirst(&lake)
	if err == nil && !ok {
		err = errors.Newf("lake %q not found", name)
	}
	return
}

func expectString(ctx context.Context, db geolingo.Database, expr geolingo.Expression, want string) error {
	var got string
	if err := db.Scalar(ctx, expr, &got); err != nil {
		return err
	}
	if got != want {
		return mismatch(got, want)
	}
	return nil
}

func expectFloat(ctx context.Context, db geolingo.Database, expr geolingo.Expression, want float64) error {
	var got float64
	if err := db.Scalar(ctx, expr, &got); err != nil {
		return err
	}
	if math.Abs(got-want) > 1e-9*math.Max(1, math.Abs(want)) {
		return mismatch(got, want)
	}
	return nil
}

func expectGeometry(ctx context.Context, db geolingo.Database, expr geolingo.GeometryExpression, wantHex string) error {
	var got geolingo.Element
	if err := db.Scalar(ctx, expr, &got); err != nil {
		return err
	}
	if got.String() != wantHex {
		return mismatch(got, wantHex)
	}
	return nil
}

// Checks are the expectations of the original roads and lakes suite.
var Checks = []Check{
	{"textual element", func(ctx context.Context, db geolingo.Database) error {
		if got, want := DaveCres().String(), "SRID=-1;"+DaveCresWKT; got != want {
			return mismatch(got, want)
		}
		return expectString(ctx, db, DaveCres().WKT(), DaveCresWKT)
	}},
	{"persistent element", func(ctx context.Context, db geolingo.Database) error {
		road, err := roadByName(ctx, db, DaveCresName)
		if err != nil {
			return err
		}
		if road.Geom.String() != DaveCresHex {
			return mismatch(road.Geom, DaveCresHex)
		}
		return nil
	}},
	{"equality", func(ctx context.Context, db geolingo.Database) error {
		r1, err := roadByName(ctx, db, "Graeme Ave")
		if err != nil {
			return err
		}
		var r2, r3 Road
		if _, err := db.SelectFrom(Roads).Where(RoadGeom.Equals(GraemeAveWKT)).WithContext(ctx).FetchFirst(&r2); err != nil {
			return err
		}
		if _, err := db.SelectFrom(Roads).Where(RoadGeom.Equals(r1.Geom)).WithContext(ctx).FetchFirst(&r3); err != nil {
			return err
		}
		if r1.ID != r2.ID || r2.ID != r3.ID {
			return mismatch([]int64{r1.ID, r2.ID, r3.ID}, r1.ID)
		}
		return nil
	}},
	{"intersects", func(ctx context.Context, db geolingo.Database) error {
		r1, err := roadByName(ctx, db, "Graeme Ave")
		if err != nil {
			return err
		}
		var names []string
		if err := db.Select(RoadName).From(Roads).Where(RoadGeom.Intersects(r1.Geom)).WithContext(ctx).FetchAll(&names); err != nil {
			return err
		}
		if len(names) != 1 || names[0] != "Graeme Ave" {
			return mismatch(names, []string{"Graeme Ave"})
		}
		return expectString(ctx, db, r1.Geom.WKT(), GraemeAveWKT)
	}},
	{"length", func(ctx context.Context, db geolingo.Database) error {
		r, err := roadByName(ctx, db, "Graeme Ave")
		if err != nil {
			return err
		}
		return expectFloat(ctx, db, r.Geom.Length(), GraemeAveLength)
	}},
	{"area", func(ctx context.Context, db geolingo.Database) error {
		l, err := lakeByName(ctx, db, MyLakeName)
		if err != nil {
			return err
		}
		return expectFloat(ctx, db, l.Geom.Area(), MyLakeArea)
	}},
	{"centroid", func(ctx context.Context, db geolingo.Database) error {
		r, err := roadByName(ctx, db, "Graeme Ave")
		if err != nil {
			return err
		}
		if err := expectGeometry(ctx, db, r.Geom.Centroid(), GraemeAveCentroidHex); err != nil {
			return err
		}
		l, err := lakeByName(ctx, db, MyLakeName)
		if err != nil {
			return err
		}
		return expectGeometry(ctx, db, l.Geom.Centroid(), MyLakeCentroidHex)
	}},
	{"boundary", func(ctx context.Context, db geolingo.Database) error {
		r, err := roadByName(ctx, db, "Graeme Ave")
		if err != nil {
			return err
		}
		return expectGeometry(ctx, db, r.Geom.Boundary(), GraemeAveBoundaryHex)
	}},
	{"buffer", func(ctx context.Context, db geolingo.Database) error {
		r, err := roadByName(ctx, db, "Graeme Ave")
		if err != nil {
			return err
		}
		return expectGeometry(ctx, db, r.Geom.Buffer(10, 8), GraemeAveBufferHex)
	}},
}

// Run runs every check against a seeded database.
func Run(ctx context.Context, db geolingo.Database) []Outcome {
	outcomes := make([]Outcome, 0, len(Checks))
	for _, check := range Checks {
		outcomes = append(outcomes, Outcome{Name: check.Name, Err: check.Run(ctx, db)})
	}
	return outcomes
}
