package geolingo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrder(t *testing.T) {
	s := dialectScope(dialectUnknown)
	e := expression{sql: "x"}
	for expectedSql, order := range map[string]OrderBy{
		"x":                                   orderBy{by: e},
		"x DESC":                              orderBy{by: e, desc: true},
		`ST_Length("roads"."road_geom") DESC`: testRoadGeom.Length().Desc(),
	} {
		generatedSql, err := order.GetSQL(s)
		if assert.NoError(t, err) {
			assert.Equal(t, expectedSql, generatedSql)
		}
	}

	_, err := orderBy{by: expression{builder: func(scope scope) (string, error) {
		return "", errors.New("error")
	}}}.GetSQL(s)
	assert.Error(t, err)
}
