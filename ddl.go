package geolingo

import (
	"context"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// DDLEvent is a point in the lifecycle of a table at which callbacks run.
type DDLEvent int

const (
	BeforeCreate DDLEvent = iota
	AfterCreate
	BeforeDrop
	AfterDrop

	ddlEventCount
)

var ddlEventNames = [ddlEventCount]string{"before create", "after create", "before drop", "after drop"}

func (e DDLEvent) String() string {
	return ddlEventNames[e]
}

// DDLTarget is the table an event is about. BeforeCreate callbacks may take
// columns out of Columns; CREATE TABLE declares the ones left.
type DDLTarget struct {
	Table   Table
	Columns []ColumnDefinition
	scope   scope
}

// DDLCallback runs at a DDLEvent. An error stops the CREATE or DROP
// sequence of the table and is returned to the caller.
type DDLCallback func(ctx context.Context, db Database, target *DDLTarget) error

// Schema is a set of tables created and dropped together, with the
// callbacks listening to their DDL events.
type Schema struct {
	tables    []Table
	callbacks map[string]*[ddlEventCount][]DDLCallback
}

func NewSchema(tables ...Table) *Schema {
	s := &Schema{callbacks: make(map[string]*[ddlEventCount][]DDLCallback)}
	for _, table := range tables {
		s.AddTable(table)
	}
	return s
}

// AddTable adds a table. Tables are created in the order they are added and
// dropped in reverse.
func (s *Schema) AddTable(table Table) {
	for _, t := range s.tables {
		if t.GetName() == table.GetName() {
			return
		}
	}
	s.tables = append(s.tables, table)
}

func (s *Schema) Tables() []Table {
	return s.tables
}

// Listen appends a callback for an event of table. Callbacks of one event
// run in the order they were added.
func (s *Schema) Listen(table Table, event DDLEvent, callback DDLCallback) {
	s.AddTable(table)
	callbacks, ok := s.callbacks[table.GetName()]
	if !ok {
		callbacks = new([ddlEventCount][]DDLCallback)
		s.callbacks[table.GetName()] = callbacks
	}
	callbacks[event] = append(callbacks[event], callback)
}

func (s *Schema) fire(ctx context.Context, db Database, event DDLEvent, target *DDLTarget) error {
	callbacks, ok := s.callbacks[target.Table.GetName()]
	if !ok {
		return nil
	}
	for _, callback := range callbacks[event] {
		if err := callback(ctx, db, target); err != nil {
			return err
		}
	}
	return nil
}

func newDDLTarget(db Database, table Table) *DDLTarget {
	target := &DDLTarget{
		Table:   table,
		Columns: append([]ColumnDefinition{}, table.GetColumns()...),
	}
	if d, ok := db.(*database); ok {
		target.scope = scope{Database: d, Tables: []Table{table}}
	}
	return target
}

// CreateAll creates every table of the schema and stops at the first error.
func (s *Schema) CreateAll(ctx context.Context, db Database) error {
	for _, table := range s.tables {
		if err := s.Create(ctx, db, table); err != nil {
			return err
		}
	}
	return nil
}

// DropAll drops every table of the schema in reverse order.
func (s *Schema) DropAll(ctx context.Context, db Database) error {
	for i := len(s.tables) - 1; i >= 0; i-- {
		if err := s.Drop(ctx, db, s.tables[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) Create(ctx context.Context, db Database, table Table) error {
	target := newDDLTarget(db, table)
	if err := s.fire(ctx, db, BeforeCreate, target); err != nil {
		return err
	}
	createSql, err := createTableSQL(target)
	if err != nil {
		return err
	}
	if _, err := db.ExecuteContext(ctx, createSql); err != nil {
		return errors.Wrapf(err, "create table %s", table.GetName())
	}
	return s.fire(ctx, db, AfterCreate, target)
}

func (s *Schema) Drop(ctx context.Context, db Database, table Table) error {
	target := newDDLTarget(db, table)
	if err := s.fire(ctx, db, BeforeDrop, target); err != nil {
		return err
	}
	if _, err := db.ExecuteContext(ctx, "DROP TABLE IF EXISTS "+table.GetSQL(target.scope)); err != nil {
		return errors.Wrapf(err, "drop table %s", table.GetName())
	}
	return s.fire(ctx, db, AfterDrop, target)
}

func createTableSQL(target *DDLTarget) (string, error) {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	sb.WriteString(target.Table.GetSQL(target.scope))
	sb.WriteString(" (")
	for i, column := range target.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		columnSql, err := columnDefinitionSQL(target.scope, column)
		if err != nil {
			return "", err
		}
		sb.WriteString(columnSql)
	}
	sb.WriteString(")")
	return sb.String(), nil
}

func columnDefinitionSQL(scope scope, column ColumnDefinition) (string, error) {
	sql := quoteIdentifier(column.Name)[scope.dialect()] + " "
	if column.IsGeometry() {
		if !scope.dialect().spatial().inlineColumns {
			return "", errors.Newf("geometry column %s cannot be declared inline for the %s dialect", column.Name, scope.dialect())
		}
		sql += column.Geometry.Name()
		if column.Geometry.SRID() >= 0 {
			sql += " SRID " + strconv.Itoa(column.Geometry.SRID())
		}
	} else {
		sql += column.SQLType
	}
	if column.PrimaryKey {
		sql += " PRIMARY KEY"
	}
	return sql, nil
}

// GeometryDDLState tells which part of a table's DDL has been applied.
type GeometryDDLState int

const (
	Uncreated GeometryDDLState = iota
	Created
	// PartiallyCreated means the table exists but registering or indexing
	// one of its geometry columns failed.
	PartiallyCreated
)

func (s GeometryDDLState) String() string {
	switch s {
	case Created:
		return "created"
	case PartiallyCreated:
		return "partially created"
	default:
		return "uncreated"
	}
}

// GeometryDDL creates the geometry columns of one table through the spatial
// catalog instead of CREATE TABLE, and removes them from the catalog before
// the table is dropped.
type GeometryDDL struct {
	table      Table
	columns    []ColumnDefinition
	created     bool
	registered  []string
	indexFailed bool
}

// EnableGeometryDDL registers the geometry DDL callbacks of table on the
// schema. Call it once per table at setup, before CreateAll.
func EnableGeometryDDL(schema *Schema, table Table) *GeometryDDL {
	g := &GeometryDDL{table: table}
	for _, column := range table.GetColumns() {
		if column.IsGeometry() {
			g.columns = append(g.columns, column)
		}
	}
	schema.Listen(table, BeforeCreate, g.beforeCreate)
	schema.Listen(table, AfterCreate, g.afterCreate)
	schema.Listen(table, BeforeDrop, g.beforeDrop)
	schema.Listen(table, AfterDrop, g.afterDrop)
	return g
}

func (g *GeometryDDL) State() GeometryDDLState {
	switch {
	case !g.created:
		return Uncreated
	case len(g.registered) == len(g.columns) && !g.indexFailed:
		return Created
	default:
		return PartiallyCreated
	}
}

// Registered returns the geometry columns currently in the spatial catalog.
func (g *GeometryDDL) Registered() []string {
	return append([]string{}, g.registered...)
}

func (g *GeometryDDL) isRegistered(name string) bool {
	for _, registered := range g.registered {
		if registered == name {
			return true
		}
	}
	return false
}

func (g *GeometryDDL) beforeCreate(ctx context.Context, db Database, target *DDLTarget) error {
	spatial := target.scope.dialect().spatial()
	if spatial.inlineColumns {
		return nil
	}
	if _, err := target.scope.dialect().functionName(opAddGeometryColumn); err != nil {
		return err
	}
	columns := target.Columns[:0:0]
	for _, column := range target.Columns {
		if !column.IsGeometry() {
			columns = append(columns, column)
		}
	}
	target.Columns = columns
	return nil
}

func (g *GeometryDDL) afterCreate(ctx context.Context, db Database, target *DDLTarget) error {
	g.created = true
	spatial := target.scope.dialect().spatial()
	for _, column := range g.columns {
		if g.isRegistered(column.Name) {
			continue
		}
		if !spatial.inlineColumns {
			geometryType := column.Geometry
			call := spatialFunction(opAddGeometryColumn,
				g.table.GetName(), column.Name, geometryType.SRID(), geometryType.Name(), geometryType.Dimension())
			if err := g.catalogCall(ctx, db, target, call, column.Name); err != nil {
				return err
			}
		}
		g.registered = append(g.registered, column.Name)

		if spatial.gistIndex && column.Geometry.SpatialIndex() {
			if err := g.createIndex(ctx, db, target, column.Name); err != nil {
				g.indexFailed = true
				return err
			}
		}
	}
	return nil
}

func (g *GeometryDDL) createIndex(ctx context.Context, db Database, target *DDLTarget, column string) error {
	d := target.scope.dialect()
	indexSql := "CREATE INDEX " + quoteIdentifier("idx_" + g.table.GetName() + "_" + column)[d] +
		" ON " + g.table.GetSQL(target.scope) +
		" USING GIST (" + quoteIdentifier(column)[d] + ")"
	if _, err := db.ExecuteContext(ctx, indexSql); err != nil {
		return errors.Mark(
			errors.Wrapf(err, "spatial index on %s.%s", g.table.GetName(), column),
			ErrCatalogRegistrationFailure,
		)
	}
	return nil
}

func (g *GeometryDDL) beforeDrop(ctx context.Context, db Database, target *DDLTarget) error {
	if target.scope.dialect().spatial().inlineColumns {
		g.registered = nil
		return nil
	}
	if len(g.registered) < len(g.columns) {
		if err := g.loadRegistered(ctx, db, target); err != nil {
			return err
		}
	}
	for len(g.registered) > 0 {
		column := g.registered[len(g.registered)-1]
		call := spatialFunction(opDropGeometryColumn, g.table.GetName(), column)
		if err := g.catalogCall(ctx, db, target, call, column); err != nil {
			return err
		}
		g.registered = g.registered[:len(g.registered)-1]
	}
	return nil
}

// loadRegistered adds the declared geometry columns the spatial catalog
// still lists for the table, such as the ones registered by another process,
// keeping declaration order.
func (g *GeometryDDL) loadRegistered(ctx context.Context, db Database, target *DDLTarget) error {
	lookup := target.scope.dialect().spatial().catalogLookup
	if lookup == "" {
		return nil
	}
	cursor, err := db.QueryContext(ctx, lookup+quoteString(g.table.GetName()))
	if err != nil {
		return errors.Mark(
			errors.Wrapf(err, "spatial catalog lookup for %s", g.table.GetName()),
			ErrCatalogRegistrationFailure,
		)
	}
	defer cursor.Close()

	listed := make(map[string]bool)
	for cursor.Next() {
		var column string
		if err := cursor.Scan(&column); err != nil {
			return err
		}
		listed[column] = true
	}
	if err := cursor.Err(); err != nil {
		return err
	}

	var registered []string
	for _, column := range g.columns {
		if listed[column.Name] || g.isRegistered(column.Name) {
			registered = append(registered, column.Name)
		}
	}
	g.registered = registered
	return nil
}

func (g *GeometryDDL) afterDrop(ctx context.Context, db Database, target *DDLTarget) error {
	g.created = false
	g.indexFailed = false
	return nil
}

func (g *GeometryDDL) catalogCall(ctx context.Context, db Database, target *DDLTarget, call Expression, column string) error {
	callSql, err := call.GetSQL(target.scope)
	if err != nil {
		return err
	}
	if _, err := db.ExecuteContext(ctx, "SELECT "+callSql); err != nil {
		return errors.Mark(
			errors.Wrapf(err, "spatial catalog call for %s.%s", g.table.GetName(), column),
			ErrCatalogRegistrationFailure,
		)
	}
	return nil
}
