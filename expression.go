package geolingo

import (
	"reflect"
	"strconv"

	"github.com/cockroachdb/errors"
)

type priority uint8

// Expression is the interface of an SQL expression.
type Expression interface {
	// get the SQL string
	GetSQL(scope scope) (string, error)
	getOperatorPriority() priority

	// <> operator
	NotEquals(other interface{}) BooleanExpression
	// == operator
	Equals(other interface{}) BooleanExpression
	// < operator
	LessThan(other interface{}) BooleanExpression
	// <= operator
	LessThanOrEquals(other interface{}) BooleanExpression
	// > operator
	GreaterThan(other interface{}) BooleanExpression
	// >= operator
	GreaterThanOrEquals(other interface{}) BooleanExpression

	IsNull() BooleanExpression
	IsNotNull() BooleanExpression
	In(values ...interface{}) BooleanExpression
	Desc() OrderBy

	As(alias string) Alias
}

// Alias is the interface of a column alias.
type Alias interface {
	GetSQL(scope scope) (string, error)
}

// BooleanExpression is the interface of an SQL expression with boolean value.
type BooleanExpression interface {
	Expression
	And(other interface{}) BooleanExpression
	Or(other interface{}) BooleanExpression
	Not() BooleanExpression
}

// NumberExpression is the interface of an SQL expression with number value.
type NumberExpression interface {
	Expression
	Sum() NumberExpression
	Max() UnknownExpression
}

// StringExpression is the interface of an SQL expression with string value.
type StringExpression interface {
	Expression
	Like(other interface{}) BooleanExpression
	Max() UnknownExpression
}

// UnknownExpression is the interface of an SQL expression with unknown value.
type UnknownExpression interface {
	Expression
	And(other interface{}) BooleanExpression
	Or(other interface{}) BooleanExpression
	Not() BooleanExpression
	Like(other interface{}) BooleanExpression
}

type expression struct {
	sql      string
	builder  func(scope scope) (string, error)
	priority priority
	isTrue   bool
	isFalse  bool
}

type scope struct {
	Database *database
	Tables   []Table
}

func (s scope) dialect() dialect {
	if s.Database == nil {
		return dialectUnknown
	}
	return s.Database.dialect
}

func staticExpression(sql string, priority priority) expression {
	return expression{
		sql:      sql,
		priority: priority,
	}
}

func trueExpression() expression {
	return expression{
		sql:    "TRUE",
		isTrue: true,
	}
}

func falseExpression() expression {
	return expression{
		sql:     "FALSE",
		isFalse: true,
	}
}

// Raw create a raw SQL statement
func Raw(sql string) UnknownExpression {
	return expression{
		sql:      sql,
		priority: 99,
	}
}

// And creates an expression with AND operator.
func And(expressions ...BooleanExpression) (result BooleanExpression) {
	if len(expressions) == 0 {
		result = trueExpression()
		return
	}
	for _, condition := range expressions {
		if result == nil {
			result = condition
		} else {
			result = result.And(condition)
		}
	}
	return
}

// Or creates an expression with OR operator.
func Or(expressions ...BooleanExpression) (result BooleanExpression) {
	if len(expressions) == 0 {
		result = falseExpression()
		return
	}
	for _, condition := range expressions {
		if result == nil {
			result = condition
		} else {
			result = result.Or(condition)
		}
	}
	return
}

func (e expression) As(name string) Alias {
	return expression{builder: func(scope scope) (string, error) {
		expressionSql, err := e.GetSQL(scope)
		if err != nil {
			return "", err
		}
		return expressionSql + " AS " + quoteIdentifier(name)[scope.dialect()], nil
	}}
}

// GetSQL renders the expression. An expression without SQL or builder is
// the NULL value.
func (e expression) GetSQL(scope scope) (string, error) {
	if e.sql != "" {
		return e.sql, nil
	}
	if e.builder == nil {
		return "NULL", nil
	}
	return e.builder(scope)
}

func quoteIdentifier(identifier string) (result dialectArray) {
	for dialect := dialect(0); dialect < dialectCount; dialect++ {
		switch dialect {
		case dialectMySQL:
			result[dialect] = "`" + identifier + "`"
		case dialectMSSQL:
			result[dialect] = "[" + identifier + "]"
		default:
			result[dialect] = "\"" + identifier + "\""
		}
	}
	return
}

func quoteString(s string) string {
	bytes := []byte(s)
	buf := make([]byte, len(s)*2+2)
	buf[0] = '\''
	n := 1

	for _, b := range bytes {
		if b == '\'' {
			buf[n] = '\''
			n++
		}
		buf[n] = b
		n++
	}
	buf[n] = '\''
	n++
	return string(buf[:n])
}

func getSQL(scope scope, value interface{}) (sql string, priority priority, err error) {
	if value == nil {
		sql = "NULL"
		return
	}
	switch value := value.(type) {
	case int:
		sql = strconv.Itoa(value)
	case string:
		sql = quoteString(value)
	case *Element:
		if value == nil {
			sql = "NULL"
			return
		}
		sql, priority, err = getSQL(scope, *value)
	case Expression:
		sql, err = value.GetSQL(scope)
		priority = value.getOperatorPriority()
	case toSelectFinal:
		sql, err = value.GetSQL()
		if err != nil {
			return
		}
		sql = "(" + sql + ")"
	case Table:
		sql = value.GetSQL(scope)
	default:
		v := reflect.ValueOf(value)
		sql, priority, err = getSQLFromReflectValue(scope, v)
	}
	return
}

func getSQLFromReflectValue(scope scope, v reflect.Value) (sql string, priority priority, err error) {
	if v.Kind() == reflect.Ptr {
		// dereference pointers
		for {
			if v.IsNil() {
				sql = "NULL"
				return
			}
			v = v.Elem()
			if v.Kind() != reflect.Ptr {
				break
			}
		}
		sql, priority, err = getSQL(scope, v.Interface())
		return
	}

	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			sql = "TRUE"
		} else {
			sql = "FALSE"
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		sql = strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		sql = strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		sql = strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case reflect.String:
		sql = quoteString(v.String())
	case reflect.Array, reflect.Slice:
		length := v.Len()
		values := make([]interface{}, length)
		for i := 0; i < length; i++ {
			values[i] = v.Index(i).Interface()
		}
		sql, err = commaValues(scope, values)
		if err == nil {
			sql = "(" + sql + ")"
		}
	default:
		if vs, ok := v.Interface().(interface{ String() string }); ok {
			sql = quoteString(vs.String())
		} else {
			err = errors.Newf("invalid type %s", v.Kind().String())
		}
	}
	return
}

/*
Operator priorities, lower binds tighter:
6 *, /
7 -, +
11 = (comparison), <>, >=, >, <=, <, IS, LIKE, IN
12 BETWEEN
13 NOT
14 AND
16 OR
*/
func (e expression) NotEquals(other interface{}) BooleanExpression {
	return e.binaryOperation("<>", other, 11)
}

func (e expression) Equals(other interface{}) BooleanExpression {
	return e.binaryOperation("=", other, 11)
}

func (e expression) LessThan(other interface{}) BooleanExpression {
	return e.binaryOperation("<", other, 11)
}

func (e expression) LessThanOrEquals(other interface{}) BooleanExpression {
	return e.binaryOperation("<=", other, 11)
}

func (e expression) GreaterThan(other interface{}) BooleanExpression {
	return e.binaryOperation(">", other, 11)
}

func (e expression) GreaterThanOrEquals(other interface{}) BooleanExpression {
	return e.binaryOperation(">=", other, 11)
}

func toBooleanExpression(value interface{}) BooleanExpression {
	e, ok := value.(expression)
	switch {
	case !ok:
		return nil
	case e.isTrue:
		return trueExpression()
	case e.isFalse:
		return falseExpression()
	default:
		return nil
	}
}

func (e expression) And(other interface{}) BooleanExpression {
	switch {
	case e.isFalse:
		return e
	case e.isTrue:
		if exp := toBooleanExpression(other); exp != nil {
			return exp
		}
		if exp, ok := other.(BooleanExpression); ok {
			return exp
		}
	}
	return e.binaryOperation("AND", other, 14)
}

func (e expression) Or(other interface{}) BooleanExpression {
	switch {
	case e.isTrue:
		return e
	case e.isFalse:
		if exp := toBooleanExpression(other); exp != nil {
			return exp
		}
		if exp, ok := other.(BooleanExpression); ok {
			return exp
		}
	}
	return e.binaryOperation("OR", other, 16)
}

func (e expression) Sum() NumberExpression {
	return function("SUM", e)
}

func (e expression) Max() UnknownExpression {
	return function("MAX", e)
}

func (e expression) Like(other interface{}) BooleanExpression {
	return e.binaryOperation("LIKE", other, 11)
}

func (e expression) binaryOperation(operator string, value interface{}, priority priority) expression {
	return expression{builder: func(scope scope) (string, error) {
		leftSql, err := e.GetSQL(scope)
		if err != nil {
			return "", err
		}
		leftPriority := e.priority
		rightSql, rightPriority, err := getSQL(scope, value)
		if err != nil {
			return "", err
		}
		if leftPriority > priority {
			leftSql = "(" + leftSql + ")"
		}
		if rightPriority >= priority {
			rightSql = "(" + rightSql + ")"
		}
		return leftSql + " " + operator + " " + rightSql, nil
	}, priority: priority}
}

func (e expression) prefixSuffixExpression(prefix string, suffix string, priority priority) expression {
	if e.sql != "" {
		sql := e.sql
		if e.priority > priority {
			sql = "(" + sql + ")"
		}
		return expression{
			sql:      prefix + sql + suffix,
			priority: priority,
		}
	}
	return expression{builder: func(scope scope) (string, error) {
		exprSql, err := e.GetSQL(scope)
		if err != nil {
			return "", err
		}
		if e.priority > priority {
			exprSql = "(" + exprSql + ")"
		}
		return prefix + exprSql + suffix, nil
	}, priority: priority}
}

func (e expression) IsNull() BooleanExpression {
	return e.prefixSuffixExpression("", " IS NULL", 11)
}

func (e expression) Not() BooleanExpression {
	if e.isTrue {
		return falseExpression()
	}
	if e.isFalse {
		return trueExpression()
	}
	return e.prefixSuffixExpression("NOT ", "", 13)
}

func (e expression) IsNotNull() BooleanExpression {
	return e.prefixSuffixExpression("", " IS NOT NULL", 11)
}

func expandSliceValue(value reflect.Value) (result []interface{}) {
	result = make([]interface{}, 0, 16)
	kind := value.Kind()
	switch kind {
	case reflect.Array, reflect.Slice:
		if value.Type().Elem().Kind() == reflect.Uint8 {
			// a []byte is one value
			result = append(result, value.Interface())
			break
		}
		length := value.Len()
		for i := 0; i < length; i++ {
			result = append(result, expandSliceValue(value.Index(i))...)
		}
	case reflect.Interface, reflect.Ptr:
		result = append(result, expandSliceValue(value.Elem())...)
	default:
		result = append(result, value.Interface())
	}
	return
}

func expandSliceValues(values []interface{}) (result []interface{}) {
	result = make([]interface{}, 0, 16)
	for _, v := range values {
		value := reflect.ValueOf(v)
		result = append(result, expandSliceValue(value)...)
	}
	return
}

func (e expression) In(values ...interface{}) BooleanExpression {
	values = expandSliceValues(values)
	if len(values) == 0 {
		return falseExpression()
	}
	if len(values) == 1 {
		if selectStatus, ok := values[0].(toSelectFinal); ok {
			return expression{builder: func(scope scope) (string, error) {
				exprSql, err := e.GetSQL(scope)
				if err != nil {
					return "", err
				}
				selectSql, err := selectStatus.GetSQL()
				if err != nil {
					return "", err
				}
				return exprSql + " IN (" + selectSql + ")", nil
			}, priority: 11}
		}
		return e.Equals(values[0])
	}
	return expression{builder: func(scope scope) (string, error) {
		exprSql, err := e.GetSQL(scope)
		if err != nil {
			return "", err
		}
		valuesSql, err := commaValues(scope, values)
		if err != nil {
			return "", err
		}
		return exprSql + " IN (" + valuesSql + ")", nil
	}, priority: 11}
}

func (e expression) getOperatorPriority() priority {
	return e.priority
}

func (e expression) Desc() OrderBy {
	return orderBy{by: e, desc: true}
}
