package geolingo

import "fmt"

// Table is the interface of a table declared with its columns.
type Table interface {
	GetName() string
	GetSQL(scope scope) string
	GetFields() []Field
	GetColumns() []ColumnDefinition
	GetColumn(name string) (ColumnDefinition, bool)
}

type table struct {
	name    string
	sql     dialectArray
	columns []ColumnDefinition
	fields  []Field
}

// NewTable declares a table. The columns keep their declared order, which
// is the order used by CREATE TABLE and by SelectFrom.
func NewTable(name string, columns ...ColumnDefinition) Table {
	t := &table{
		name:    name,
		sql:     quoteIdentifier(name),
		columns: append([]ColumnDefinition{}, columns...),
	}
	seen := make(map[string]bool, len(columns))
	for _, column := range columns {
		if seen[column.Name] {
			panic(fmt.Sprintf("geolingo: duplicate column %s.%s", name, column.Name))
		}
		seen[column.Name] = true
		if column.IsGeometry() {
			t.fields = append(t.fields, newGeometryField(t, column.Name, *column.Geometry))
		} else {
			t.fields = append(t.fields, newFieldExpression(name, column.Name))
		}
	}
	return t
}

func (t *table) GetName() string {
	return t.name
}

func (t *table) GetSQL(scope scope) string {
	return t.sql[scope.dialect()]
}

func (t *table) GetFields() []Field {
	return t.fields
}

func (t *table) GetColumns() []ColumnDefinition {
	return t.columns
}

func (t *table) GetColumn(name string) (ColumnDefinition, bool) {
	for _, column := range t.columns {
		if column.Name == name {
			return column, true
		}
	}
	return ColumnDefinition{}, false
}
