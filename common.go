package geolingo

import (
	"fmt"
	"runtime"
	"strings"
)

func commaFields(scope scope, fields []Field) (string, error) {
	var sb strings.Builder
	for i, item := range fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		itemSql, err := item.GetSQL(scope)
		if err != nil {
			return "", err
		}
		sb.WriteString(itemSql)
	}
	return sb.String(), nil
}

func commaValues(scope scope, values []interface{}) (string, error) {
	var sb strings.Builder
	for i, item := range values {
		if i > 0 {
			sb.WriteString(", ")
		}
		itemSql, _, err := getSQL(scope, item)
		if err != nil {
			return "", err
		}
		sb.WriteString(itemSql)
	}
	return sb.String(), nil
}

func commaOrderBys(scope scope, orderBys []OrderBy) (string, error) {
	var sb strings.Builder
	for i, item := range orderBys {
		if i > 0 {
			sb.WriteString(", ")
		}
		itemSql, err := item.GetSQL(scope)
		if err != nil {
			return "", err
		}
		sb.WriteString(itemSql)
	}
	return sb.String(), nil
}

func getCallerInfo(db *database, retry bool) string {
	if !db.enableCallerInfo {
		return ""
	}
	extraInfo := ""
	if retry {
		extraInfo += " (retry)"
	}
	for i := 0; true; i++ {
		_, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		if file == "" || strings.Contains(file, "/geolingo@") {
			continue
		}
		segs := strings.Split(file, "/")
		name := segs[len(segs)-1]
		switch name {
		case "common.go", "database.go", "select.go", "insert.go", "ddl.go", "cursor.go":
			continue
		default:
			return fmt.Sprintf("/* %s:%d%s */ ", name, line, extraInfo)
		}
	}
	return ""
}
