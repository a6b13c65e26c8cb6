package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/geolingo/geolingo/catalog"
	"github.com/geolingo/geolingo/internal/fixture"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	sql.Register("sqlite3_spatialite", &sqlite3.SQLiteDriver{
		Extensions: []string{"mod_spatialite"},
	})
}

var printer = message.NewPrinter(language.English)

func run(ctx context.Context, config fixture.Config) (failed int, err error) {
	db, err := config.Open()
	if err != nil {
		return 0, err
	}
	defer db.GetDB().Close()

	schema := fixture.NewSchema()
	if err := schema.DropAll(ctx, db); err != nil {
		return 0, err
	}
	if err := schema.CreateAll(ctx, db); err != nil {
		return 0, err
	}
	defer func() {
		if dropErr := schema.DropAll(ctx, db); dropErr != nil && err == nil {
			err = dropErr
		}
	}()

	columns, err := catalog.Inspect(ctx, db, config.Driver)
	if err != nil {
		return 0, err
	}
	for _, column := range columns {
		_, _ = printer.Printf("catalog  %s\n", column)
	}
	for _, problem := range catalog.Verify(schema.Tables(), columns) {
		failed++
		_, _ = printer.Printf("catalog  FAIL %s\n", problem)
	}

	if err := fixture.Seed(ctx, db); err != nil {
		return failed, err
	}
	outcomes := fixture.Run(ctx, db)
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
			_, _ = printer.Printf("%-20s FAIL %v\n", outcome.Name, outcome.Err)
		} else {
			_, _ = printer.Printf("%-20s ok\n", outcome.Name)
		}
	}
	_, _ = printer.Printf("%d checks, %d failed\n", len(outcomes), failed)
	return failed, nil
}

func main() {
	config, err := fixture.LoadConfig()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	failed, err := run(context.Background(), config)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(1)
	}
}
