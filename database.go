package geolingo

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// LoggerFunc is the function type of a SQL logger. It is called after each
// statement with the time it took.
type LoggerFunc = func(sql string, duration time.Duration, retry bool)

// Database is the interface of a database with underlying sql.DB object.
type Database interface {
	// Get the underlying sql.DB object of the database
	GetDB() *sql.DB
	// Log every statement with the default logger
	SetDebugMode(debugMode bool)
	SetLogger(logger LoggerFunc)
	// Prepend the caller's file and line to every statement
	EnableCallerInfo(enableCallerInfo bool)
	SetInterceptor(interceptor InterceptorFunc)
	// Retry a failed query when the policy returns true
	SetRetryPolicy(retryPolicy func(err error) bool)

	Query(sql string) (Cursor, error)
	QueryContext(ctx context.Context, sql string) (Cursor, error)
	Execute(sql string) (sql.Result, error)
	ExecuteContext(ctx context.Context, sql string) (sql.Result, error)

	// Scalar evaluates one expression and scans the single value into dest.
	// It returns sql.ErrNoRows when the database returns no row.
	Scalar(ctx context.Context, expr Expression, dest interface{}) error
	// GetSQL renders an expression the way this database would receive it.
	GetSQL(expr Expression) (string, error)

	Select(fields ...interface{}) SelectWithFields
	SelectFrom(tables ...Table) SelectWithTables
	InsertInto(table Table) InsertWithTable
}

type database struct {
	db               *sql.DB
	logger           LoggerFunc
	dialect          dialect
	retryPolicy      func(error) bool
	enableCallerInfo bool
	interceptor      InterceptorFunc
}

func (d *database) SetDebugMode(debugMode bool) {
	if debugMode {
		d.logger = defaultLogger
	} else {
		d.logger = nil
	}
}

func (d *database) SetLogger(logger LoggerFunc) {
	d.logger = logger
}

func (d *database) EnableCallerInfo(enableCallerInfo bool) {
	d.enableCallerInfo = enableCallerInfo
}

func (d *database) SetInterceptor(interceptor InterceptorFunc) {
	d.interceptor = interceptor
}

func (d *database) SetRetryPolicy(retryPolicy func(err error) bool) {
	d.retryPolicy = retryPolicy
}

// Open a database, similar to sql.Open. The driver name selects the SQL
// dialect.
func Open(driverName string, dataSourceName string) (db Database, err error) {
	var sqlDB *sql.DB
	if dataSourceName != "" {
		sqlDB, err = sql.Open(driverName, dataSourceName)
		if err != nil {
			return nil, errors.Wrapf(err, "open %s database", driverName)
		}
	}
	return Use(driverName, sqlDB), nil
}

// Use an existing *sql.DB handle. The driver name selects the SQL dialect.
func Use(driverName string, sqlDB *sql.DB) Database {
	return &database{
		dialect: getDialectFromDriverName(driverName),
		db:      sqlDB,
	}
}

func (d *database) GetDB() *sql.DB {
	return d.db
}

func (d *database) scope() scope {
	return scope{Database: d}
}

func (d *database) GetSQL(expr Expression) (string, error) {
	return expr.GetSQL(d.scope())
}

func (d *database) Query(sql string) (Cursor, error) {
	return d.QueryContext(context.Background(), sql)
}

func (d *database) QueryContext(ctx context.Context, sqlString string) (Cursor, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	isRetry := false
	for {
		sqlStringWithCallerInfo := getCallerInfo(d, isRetry) + sqlString
		rows, err := d.queryContextOnce(ctx, sqlStringWithCallerInfo, isRetry)
		if err != nil {
			isRetry = d.retryPolicy != nil && d.retryPolicy(err)
			if isRetry {
				continue
			}
			return nil, err
		}
		return cursor{rows: rows}, nil
	}
}

func (d *database) queryContextOnce(ctx context.Context, sqlStringWithCallerInfo string, retry bool) (*sql.Rows, error) {
	startTime := time.Now()
	defer func() {
		if d.logger != nil {
			d.logger(sqlStringWithCallerInfo, time.Since(startTime), retry)
		}
	}()

	var rows *sql.Rows
	invoker := func(ctx context.Context, sql string) (err error) {
		rows, err = d.db.QueryContext(ctx, sql)
		return
	}

	var err error
	if d.interceptor == nil {
		err = invoker(ctx, sqlStringWithCallerInfo)
	} else {
		err = d.interceptor(ctx, sqlStringWithCallerInfo, invoker)
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *database) Execute(sql string) (sql.Result, error) {
	return d.ExecuteContext(context.Background(), sql)
}

func (d *database) ExecuteContext(ctx context.Context, sqlString string) (sql.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	sqlStringWithCallerInfo := getCallerInfo(d, false) + sqlString
	startTime := time.Now()
	defer func() {
		if d.logger != nil {
			d.logger(sqlStringWithCallerInfo, time.Since(startTime), false)
		}
	}()

	var result sql.Result
	invoker := func(ctx context.Context, sql string) (err error) {
		result, err = d.db.ExecContext(ctx, sql)
		return
	}
	var err error
	if d.interceptor == nil {
		err = invoker(ctx, sqlStringWithCallerInfo)
	} else {
		err = d.interceptor(ctx, sqlStringWithCallerInfo, invoker)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (d *database) Scalar(ctx context.Context, expr Expression, dest interface{}) error {
	ok, err := d.Select(expr).WithContext(ctx).FetchFirst(dest)
	if err != nil {
		return err
	}
	if !ok {
		return sql.ErrNoRows
	}
	return nil
}

var printer = message.NewPrinter(language.English)

func defaultLogger(sql string, duration time.Duration, retry bool) {
	suffix := ""
	if retry {
		suffix = " (retry)"
	}
	_, _ = printer.Fprintf(os.Stderr, "[%9d µs] %s%s\n", duration.Microseconds(), sql, suffix)
}
