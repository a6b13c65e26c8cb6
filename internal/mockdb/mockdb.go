// Package mockdb is an in-process database/sql driver for tests. It records
// every statement, answers queries from scripted results and keeps a spatial
// catalog fed by the AddGeometryColumn and DropGeometryColumn calls it sees.
// Like the catalog tables of SpatiaLite and PostGIS 1.x, the catalog keeps
// its rows when a table is dropped.
package mockdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// Result is one scripted query result.
type Result struct {
	Columns []string
	Rows    [][]driver.Value
}

// CatalogRow is one registered geometry column.
type CatalogRow struct {
	Table     string
	Column    string
	SRID      int
	Type      string
	Dimension int
}

type failure struct {
	substring string
	err       error
}

type Mock struct {
	mu         sync.Mutex
	statements []string
	results    []Result
	failures   []failure
	tables     map[string]bool
	catalog    []CatalogRow
}

// New returns a mock and a *sql.DB connected to it.
func New() (*Mock, *sql.DB) {
	m := &Mock{tables: make(map[string]bool)}
	return m, sql.OpenDB(connector{m})
}

// Respond queues a result for the next query that does not read the
// catalog. Queries with nothing queued return no rows.
func (m *Mock) Respond(columns []string, rows ...[]driver.Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, Result{Columns: columns, Rows: rows})
}

// FailOn makes every statement containing substring fail with err.
func (m *Mock) FailOn(substring string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, failure{substring: substring, err: err})
}

// ClearFailures removes the failures added by FailOn.
func (m *Mock) ClearFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = nil
}

// Statements returns the statements received so far, caller comments
// included.
func (m *Mock) Statements() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.statements...)
}

func (m *Mock) LastStatement() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.statements) == 0 {
		return ""
	}
	return m.statements[len(m.statements)-1]
}

// ResetStatements forgets the recorded statements. Tables and catalog stay.
func (m *Mock) ResetStatements() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statements = nil
}

func (m *Mock) Catalog() []CatalogRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CatalogRow{}, m.catalog...)
}

func (m *Mock) HasTable(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tables[name]
}

var (
	callerComment      = regexp.MustCompile(`^/\* .*? \*/ `)
	createTablePattern = regexp.MustCompile(`^CREATE TABLE ["` + "`" + `]?(\w+)`)
	dropTablePattern   = regexp.MustCompile(`^DROP TABLE IF EXISTS ["` + "`" + `]?(\w+)`)
	addColumnPattern   = regexp.MustCompile(`^SELECT AddGeometryColumn\('(\w+)', '(\w+)', (-?\d+), '(\w+)', (\d+)\)$`)
	dropColumnPattern  = regexp.MustCompile(`^SELECT (?:DropGeometryColumn|DiscardGeometryColumn)\('(\w+)', '(\w+)'\)$`)
	columnNamesPattern = regexp.MustCompile(`^SELECT f_geometry_column FROM geometry_columns WHERE .*f_table_name = '(\w+)'$`)
)

func (m *Mock) record(query string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statements = append(m.statements, query)
	for _, f := range m.failures {
		if strings.Contains(query, f.substring) {
			return "", f.err
		}
	}
	return callerComment.ReplaceAllString(query, ""), nil
}

func (m *Mock) exec(query string) (driver.Result, error) {
	query, err := m.record(query)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if match := createTablePattern.FindStringSubmatch(query); match != nil {
		if m.tables[match[1]] {
			return nil, errors.Newf("relation %q already exists", match[1])
		}
		m.tables[match[1]] = true
	} else if match := dropTablePattern.FindStringSubmatch(query); match != nil {
		delete(m.tables, match[1])
	} else if match := addColumnPattern.FindStringSubmatch(query); match != nil {
		return m.addGeometryColumn(match[1:])
	} else if match := dropColumnPattern.FindStringSubmatch(query); match != nil {
		return m.dropGeometryColumn(match[1], match[2])
	}
	return driver.ResultNoRows, nil
}

func (m *Mock) findColumn(table string, column string) int {
	for i, row := range m.catalog {
		if row.Table == table && row.Column == column {
			return i
		}
	}
	return -1
}

func (m *Mock) addGeometryColumn(args []string) (driver.Result, error) {
	table, column := args[0], args[1]
	if !m.tables[table] {
		return nil, errors.Newf("relation %q does not exist", table)
	}
	if m.findColumn(table, column) != -1 {
		return nil, errors.Newf("column %q of relation %q already exists", column, table)
	}
	srid, _ := strconv.Atoi(args[2])
	dimension, _ := strconv.Atoi(args[4])
	m.catalog = append(m.catalog, CatalogRow{
		Table:     table,
		Column:    column,
		SRID:      srid,
		Type:      args[3],
		Dimension: dimension,
	})
	return driver.RowsAffected(1), nil
}

func (m *Mock) dropGeometryColumn(table string, column string) (driver.Result, error) {
	i := m.findColumn(table, column)
	if i == -1 {
		return nil, errors.Newf("column %q of relation %q is not a geometry column", column, table)
	}
	m.catalog = append(m.catalog[:i], m.catalog[i+1:]...)
	return driver.RowsAffected(1), nil
}

func (m *Mock) query(query string) (driver.Rows, error) {
	query, err := m.record(query)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if match := columnNamesPattern.FindStringSubmatch(query); match != nil {
		result := Result{Columns: []string{"f_geometry_column"}}
		for _, row := range m.catalog {
			if row.Table == match[1] {
				result.Rows = append(result.Rows, []driver.Value{row.Column})
			}
		}
		return &rows{result: result}, nil
	}
	if strings.Contains(strings.ToLower(query), "geometry_columns") {
		result := Result{Columns: []string{"f_table_name", "f_geometry_column", "coord_dimension", "srid", "type"}}
		for _, row := range m.catalog {
			result.Rows = append(result.Rows, []driver.Value{
				row.Table, row.Column, int64(row.Dimension), int64(row.SRID), row.Type,
			})
		}
		return &rows{result: result}, nil
	}
	if len(m.results) == 0 {
		return &rows{}, nil
	}
	result := m.results[0]
	m.results = m.results[1:]
	return &rows{result: result}, nil
}

type connector struct {
	mock *Mock
}

func (c connector) Connect(ctx context.Context) (driver.Conn, error) {
	return conn{mock: c.mock}, nil
}

func (c connector) Driver() driver.Driver {
	return mockDriver{mock: c.mock}
}

type mockDriver struct {
	mock *Mock
}

func (d mockDriver) Open(name string) (driver.Conn, error) {
	return conn{mock: d.mock}, nil
}

type conn struct {
	mock *Mock
}

func (c conn) Prepare(query string) (driver.Stmt, error) {
	return stmt{mock: c.mock, query: query}, nil
}

func (c conn) Close() error {
	return nil
}

func (c conn) Begin() (driver.Tx, error) {
	return nil, errors.New("tx not implemented in mock")
}

func (c conn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	return c.mock.exec(query)
}

func (c conn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	return c.mock.query(query)
}

type stmt struct {
	mock  *Mock
	query string
}

func (s stmt) Close() error {
	return nil
}

func (s stmt) NumInput() int {
	return -1
}

func (s stmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.mock.exec(s.query)
}

func (s stmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.mock.query(s.query)
}

type rows struct {
	result   Result
	position int
}

func (r *rows) Columns() []string {
	return r.result.Columns
}

func (r *rows) Close() error {
	return nil
}

func (r *rows) Next(dest []driver.Value) error {
	if r.position >= len(r.result.Rows) {
		return io.EOF
	}
	copy(dest, r.result.Rows[r.position])
	r.position++
	return nil
}
