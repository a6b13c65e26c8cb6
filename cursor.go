package geolingo

import (
	"database/sql"
	"reflect"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
)

// Cursor is the interface of a row cursor.
type Cursor interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
	Close() error
}

type cursor struct {
	rows *sql.Rows
}

func (c cursor) Next() bool {
	return c.rows.Next()
}

var timeType = reflect.TypeOf(time.Time{})

func isScanner(val reflect.Value) bool {
	_, ok := val.Addr().Interface().(sql.Scanner)
	return ok
}

// preparePointers flattens dest into one scan target per column. Structs
// are walked field by field unless they scan themselves, like Element.
func preparePointers(val reflect.Value, scans *[]interface{}) error {
	kind := val.Kind()
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		*scans = append(*scans, val.Addr().Interface())
	case reflect.Struct:
		if val.Type() == timeType || isScanner(val) {
			*scans = append(*scans, val.Addr().Interface())
			return nil
		}
		for j := 0; j < val.NumField(); j++ {
			field := val.Field(j)
			if field.Kind() == reflect.Interface || !field.CanSet() {
				continue
			}
			if err := preparePointers(field, scans); err != nil {
				return err
			}
		}
	case reflect.Ptr:
		toType := val.Type().Elem()
		switch toType.Kind() {
		case reflect.Bool,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64,
			reflect.String:
			*scans = append(*scans, val.Addr().Interface())
		default:
			if toType == timeType || reflect.PointerTo(toType).Implements(scannerType) {
				*scans = append(*scans, val.Addr().Interface())
				return nil
			}
			to := reflect.New(toType).Elem()
			val.Set(to.Addr())
			if err := preparePointers(to, scans); err != nil {
				return err
			}
		}
	case reflect.Slice:
		if val.Type().Elem().Kind() == reflect.Uint8 {
			*scans = append(*scans, val.Addr().Interface())
		} else {
			return errors.Newf("unknown type []%s", val.Type().Elem().Kind().String())
		}
	default:
		return errors.Newf("unknown type %s", kind.String())
	}
	return nil
}

var scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()

func parseBool(s []byte) (bool, error) {
	if len(s) == 1 {
		switch s[0] {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
	}
	return strconv.ParseBool(string(s))
}

func (c cursor) Scan(dest ...interface{}) error {
	var scans []interface{}
	for i, item := range dest {
		if reflect.ValueOf(item).Kind() != reflect.Ptr {
			return errors.Newf("argument %d is not pointer", i)
		}

		val := reflect.Indirect(reflect.ValueOf(item))

		err := preparePointers(val, &scans)
		if err != nil {
			return err
		}
	}

	// Booleans come back as bool, 0/1, t/f or true/false depending on the driver.
	pbs := make(map[int]*bool)
	for i, scan := range scans {
		if pb, ok := scan.(*bool); ok {
			var v interface{}
			scans[i] = &v
			pbs[i] = pb
		}
	}

	if err := c.rows.Scan(scans...); err != nil {
		return err
	}

	for i, pb := range pbs {
		var err error
		switch v := (*scans[i].(*interface{})).(type) {
		case nil:
			err = errors.Newf("field %d is null", i)
		case bool:
			*pb = v
		case int64:
			*pb = v != 0
		case []byte:
			*pb, err = parseBool(v)
		case string:
			*pb, err = parseBool([]byte(v))
		default:
			err = errors.Newf("field %d: cannot scan %T into bool", i, v)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c cursor) Err() error {
	return c.rows.Err()
}

func (c cursor) Close() error {
	return c.rows.Close()
}
