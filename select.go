package geolingo

import (
	"context"
	"reflect"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

type toSelectFinal interface {
	GetSQL() (string, error)
}

// Select is the interface of a runnable SELECT statement.
type Select interface {
	GetSQL() (string, error)
	FetchFirst(out ...interface{}) (bool, error)
	FetchAll(out interface{}) error
	FetchCursor() (Cursor, error)
	Count() (int, error)
}

type SelectWithFields interface {
	Select
	WithContext(ctx context.Context) SelectWithFields
	From(tables ...Table) SelectWithTables
}

type SelectWithTables interface {
	Select
	WithContext(ctx context.Context) SelectWithTables
	Where(conditions ...BooleanExpression) SelectWithWhere
	OrderBy(orderBys ...OrderBy) SelectWithOrder
	Limit(limit int) SelectWithLimit
}

type SelectWithWhere interface {
	Select
	WithContext(ctx context.Context) SelectWithWhere
	Where(conditions ...BooleanExpression) SelectWithWhere
	OrderBy(orderBys ...OrderBy) SelectWithOrder
	Limit(limit int) SelectWithLimit
}

type SelectWithOrder interface {
	Select
	WithContext(ctx context.Context) SelectWithOrder
	Limit(limit int) SelectWithLimit
}

type SelectWithLimit interface {
	Select
	WithContext(ctx context.Context) SelectWithLimit
	Offset(offset int) Select
}

type selectStatus struct {
	scope    scope
	ctx      context.Context
	fields   []Field
	where    BooleanExpression
	orderBys []OrderBy
	limit    *int
	offset   *int
}

func getFields(fields []interface{}) (result []Field) {
	for _, field := range fields {
		fieldCopy := readGeometry(field)
		fieldExpression := expression{builder: func(scope scope) (string, error) {
			sql, _, err := getSQL(scope, fieldCopy)
			if err != nil {
				return "", err
			}
			return sql, nil
		}}
		result = append(result, fieldExpression)
	}
	return
}

func (d *database) Select(fields ...interface{}) SelectWithFields {
	return selectStatus{scope: scope{Database: d}, fields: getFields(fields)}
}

// SelectFrom selects every column of the tables in declared order.
func (d *database) SelectFrom(tables ...Table) SelectWithTables {
	s := selectStatus{scope: scope{Database: d}}
	var fields []interface{}
	for _, table := range tables {
		s.scope.Tables = append(s.scope.Tables, table)
		for _, field := range table.GetFields() {
			fields = append(fields, field)
		}
	}
	s.fields = getFields(fields)
	return selectTables{s}
}

func (s selectStatus) withContext(ctx context.Context) selectStatus {
	s.ctx = ctx
	return s
}

func (s selectStatus) WithContext(ctx context.Context) SelectWithFields {
	return s.withContext(ctx)
}

func (s selectStatus) From(tables ...Table) SelectWithTables {
	s.scope.Tables = append([]Table{}, tables...)
	return selectTables{s}
}

func (s selectStatus) Where(conditions ...BooleanExpression) SelectWithWhere {
	if s.where != nil {
		conditions = append([]BooleanExpression{s.where}, conditions...)
	}
	s.where = And(conditions...)
	return selectWhere{s}
}

func (s selectStatus) OrderBy(orderBys ...OrderBy) SelectWithOrder {
	s.orderBys = append([]OrderBy{}, orderBys...)
	return selectOrder{s}
}

func (s selectStatus) Limit(limit int) SelectWithLimit {
	s.limit = &limit
	return selectLimit{s}
}

func (s selectStatus) Offset(offset int) Select {
	s.offset = &offset
	return s
}

type selectTables struct{ selectStatus }

func (s selectTables) WithContext(ctx context.Context) SelectWithTables {
	return selectTables{s.withContext(ctx)}
}

type selectWhere struct{ selectStatus }

func (s selectWhere) WithContext(ctx context.Context) SelectWithWhere {
	return selectWhere{s.withContext(ctx)}
}

type selectOrder struct{ selectStatus }

func (s selectOrder) WithContext(ctx context.Context) SelectWithOrder {
	return selectOrder{s.withContext(ctx)}
}

type selectLimit struct{ selectStatus }

func (s selectLimit) WithContext(ctx context.Context) SelectWithLimit {
	return selectLimit{s.withContext(ctx)}
}

func (s selectStatus) Count() (count int, err error) {
	s.fields = []Field{staticExpression("COUNT(1)", 0)}
	s.orderBys = nil
	s.limit = nil
	s.offset = nil
	_, err = s.FetchFirst(&count)
	return
}

func (s selectStatus) GetSQL() (string, error) {
	var sb strings.Builder
	sb.WriteString("SELECT ")

	fieldsSql, err := commaFields(s.scope, s.fields)
	if err != nil {
		return "", err
	}
	sb.WriteString(fieldsSql)

	if len(s.scope.Tables) > 0 {
		values := make([]interface{}, 0, len(s.scope.Tables))
		for _, table := range s.scope.Tables {
			values = append(values, table)
		}
		fromSql, err := commaValues(s.scope, values)
		if err != nil {
			return "", err
		}
		sb.WriteString(" FROM ")
		sb.WriteString(fromSql)
	}

	if err := appendWhere(&sb, s.scope, s.where); err != nil {
		return "", err
	}

	if len(s.orderBys) > 0 {
		orderBySql, err := commaOrderBys(s.scope, s.orderBys)
		if err != nil {
			return "", err
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(orderBySql)
	}

	if s.limit != nil {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(*s.limit))
	}

	if s.offset != nil {
		sb.WriteString(" OFFSET ")
		sb.WriteString(strconv.Itoa(*s.offset))
	}

	return sb.String(), nil
}

func appendWhere(sb *strings.Builder, scope scope, where BooleanExpression) error {
	if where == nil {
		return nil
	}
	if e, ok := where.(expression); ok {
		if e.isTrue {
			return nil
		} else if e.isFalse {
			sb.WriteString(" WHERE FALSE")
			return nil
		}
	}

	whereSql, err := where.GetSQL(scope)
	if err != nil {
		return err
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(whereSql)
	return nil
}

func (s selectStatus) FetchCursor() (Cursor, error) {
	sqlString, err := s.GetSQL()
	if err != nil {
		return nil, err
	}
	return s.scope.Database.QueryContext(s.ctx, sqlString)
}

func (s selectStatus) FetchFirst(dest ...interface{}) (ok bool, err error) {
	cursor, err := s.FetchCursor()
	if err != nil {
		return
	}
	defer cursor.Close()

	for cursor.Next() {
		err = cursor.Scan(dest...)
		if err != nil {
			return
		}
		ok = true
		break
	}
	if err == nil {
		err = cursor.Err()
	}
	return
}

func (s selectStatus) FetchAll(dest interface{}) error {
	if reflect.ValueOf(dest).Kind() != reflect.Ptr {
		return errors.New("dest should be a pointer")
	}
	val := reflect.Indirect(reflect.ValueOf(dest))
	if val.Kind() != reflect.Slice {
		return errors.New("dest should be pointed to a slice")
	}
	cursor, err := s.FetchCursor()
	if err != nil {
		return err
	}
	defer cursor.Close()

	for cursor.Next() {
		elem := reflect.New(val.Type().Elem())
		row := elem.Interface()
		err = cursor.Scan(row)
		if err != nil {
			return err
		}
		val.Set(reflect.Append(val, reflect.Indirect(elem)))
	}
	return cursor.Err()
}
