package geolingo

import "fmt"

type Field interface {
	Expression
}

type NumberField interface {
	NumberExpression
}

type BooleanField interface {
	BooleanExpression
}

type StringField interface {
	StringExpression
}

// GeometryField is the interface of a geometry column. Values assigned to it
// go through its GeometryType.
type GeometryField interface {
	GeometryExpression
	GetTable() Table
	GetName() string
	GetType() GeometryType
}

func newFieldExpression(tableName string, fieldName string) expression {
	tableNameSqlArray := quoteIdentifier(tableName)
	fieldNameSqlArray := quoteIdentifier(fieldName)

	var fullFieldNameSqlArray dialectArray
	for dialect := dialect(0); dialect < dialectCount; dialect++ {
		fullFieldNameSqlArray[dialect] = tableNameSqlArray[dialect] + "." + fieldNameSqlArray[dialect]
	}

	return expression{
		builder: func(scope scope) (string, error) {
			dialect := scope.dialect()
			if len(scope.Tables) != 1 || scope.Tables[0].GetName() != tableName {
				return fullFieldNameSqlArray[dialect], nil
			}
			return fieldNameSqlArray[dialect], nil
		},
	}
}

func NewNumberField(table Table, fieldName string) NumberField {
	return newFieldExpression(table.GetName(), fieldName)
}

func NewBooleanField(table Table, fieldName string) BooleanField {
	return newFieldExpression(table.GetName(), fieldName)
}

func NewStringField(table Table, fieldName string) StringField {
	return newFieldExpression(table.GetName(), fieldName)
}

type geometryField struct {
	geometryExpression
	table        Table
	name         string
	geometryType GeometryType
}

func newGeometryField(table Table, fieldName string, geometryType GeometryType) geometryField {
	return geometryField{
		geometryExpression: geometryExpression{newFieldExpression(table.GetName(), fieldName)},
		table:              table,
		name:               fieldName,
		geometryType:       geometryType,
	}
}

// NewGeometryField returns the field of a geometry column declared on table.
// It panics when the column is missing or is not a geometry column.
func NewGeometryField(table Table, fieldName string) GeometryField {
	column, ok := table.GetColumn(fieldName)
	if !ok || !column.IsGeometry() {
		panic(fmt.Sprintf("geolingo: %s.%s is not a geometry column", table.GetName(), fieldName))
	}
	return newGeometryField(table, fieldName, *column.Geometry)
}

func (f geometryField) GetTable() Table {
	return f.table
}

func (f geometryField) GetName() string {
	return f.name
}

func (f geometryField) GetType() GeometryType {
	return f.geometryType
}

// readGeometry wraps a geometry in the select list so that the database
// returns WKB where its storage format differs.
func readGeometry(field interface{}) interface{} {
	g, ok := field.(GeometryExpression)
	if !ok {
		return field
	}
	return expression{builder: func(scope scope) (string, error) {
		if scope.dialect().spatial().readAsBinary {
			return g.AsBinary().GetSQL(scope)
		}
		return g.GetSQL(scope)
	}}
}
