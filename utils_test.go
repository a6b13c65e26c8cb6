package geolingo

import (
	"testing"

	"github.com/geolingo/geolingo/internal/mockdb"
	"github.com/stretchr/testify/assert"
)

func newMockDatabase(t *testing.T, driverName string) (*mockdb.Mock, Database) {
	t.Helper()
	mock, sqlDB := mockdb.New()
	t.Cleanup(func() { _ = sqlDB.Close() })
	return mock, Use(driverName, sqlDB)
}

func dialectScope(d dialect) scope {
	return scope{Database: &database{dialect: d}}
}

func assertValue(t *testing.T, value interface{}, expectedSql string) {
	t.Helper()
	assertDialectValue(t, dialectUnknown, value, expectedSql)
}

func assertDialectValue(t *testing.T, d dialect, value interface{}, expectedSql string) {
	t.Helper()
	generatedSql, _, err := getSQL(dialectScope(d), value)
	if assert.NoError(t, err) {
		assert.Equal(t, expectedSql, generatedSql)
	}
}

func assertError(t *testing.T, value interface{}) {
	t.Helper()
	if generatedSql, _, err := getSQL(scope{}, value); err == nil {
		t.Errorf("value [%v] generated [%s] expected error", value, generatedSql)
	}
}

func assertLastSql(t *testing.T, mock *mockdb.Mock, expectedSql string) {
	t.Helper()
	assert.Equal(t, expectedSql, mock.LastStatement())
}
