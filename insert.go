package geolingo

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"
)

type insertStatus struct {
	scope  scope
	ctx    context.Context
	fields []Field
	rows   [][]interface{}
}

type InsertWithTable interface {
	Fields(fields ...Field) InsertWithValues
}

// InsertWithValues is an INSERT statement. Each call of Values adds one row.
type InsertWithValues interface {
	Values(values ...interface{}) InsertWithValues
	WithContext(ctx context.Context) InsertWithValues
	GetSQL() (string, error)
	Execute() (result sql.Result, err error)
}

func (d *database) InsertInto(table Table) InsertWithTable {
	return insertStatus{scope: scope{Database: d, Tables: []Table{table}}}
}

func (s insertStatus) Fields(fields ...Field) InsertWithValues {
	s.fields = fields
	return s
}

func (s insertStatus) Values(values ...interface{}) InsertWithValues {
	s.rows = append([][]interface{}{}, s.rows...)
	s.rows = append(s.rows, values)
	return s
}

func (s insertStatus) WithContext(ctx context.Context) InsertWithValues {
	s.ctx = ctx
	return s
}

// bindValue passes values of geometry fields through the column type so
// that a literal of the wrong dimension is rejected here.
func bindValue(field Field, value interface{}) (interface{}, error) {
	g, ok := field.(GeometryField)
	if !ok || value == nil {
		return value, nil
	}
	switch value := value.(type) {
	case *Element:
		if value == nil {
			return nil, nil
		}
		return g.GetType().Bind(*value)
	case string, Element, []byte:
		return g.GetType().Bind(value)
	case GeometryExpression:
		return value, nil
	default:
		return nil, typeMismatch(value)
	}
}

func (s insertStatus) GetSQL() (string, error) {
	if len(s.rows) == 0 {
		return "", errors.New("insert: no values")
	}

	tableSql := s.scope.Tables[0].GetSQL(s.scope)
	fieldsSql, err := commaFields(s.scope, s.fields)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO " + tableSql + " (" + fieldsSql + ") VALUES ")
	for i, row := range s.rows {
		if len(row) != len(s.fields) {
			return "", errors.Newf("insert: row %d has %d values for %d fields", i, len(row), len(s.fields))
		}
		bound := make([]interface{}, len(row))
		for j, value := range row {
			if bound[j], err = bindValue(s.fields[j], value); err != nil {
				return "", errors.Wrapf(err, "insert: row %d", i)
			}
		}
		valuesSql, err := commaValues(s.scope, bound)
		if err != nil {
			return "", err
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(" + valuesSql + ")")
	}
	return sb.String(), nil
}

func (s insertStatus) Execute() (result sql.Result, err error) {
	sqlString, err := s.GetSQL()
	if err != nil {
		return nil, err
	}
	return s.scope.Database.ExecuteContext(s.ctx, sqlString)
}
