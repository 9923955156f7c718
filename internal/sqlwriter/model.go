package sqlwriter

import (
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
)

// RowsFromModels converts structs tagged with `db:"column"` into rows and the
// ordered column list taken from the struct field order. Untagged fields,
// unexported fields, and fields tagged "-" are skipped.
func RowsFromModels[T any](models []T) ([]Row, []string, error) {
	var zero T
	columns, err := modelColumns(reflect.TypeOf(zero))
	if err != nil {
		return nil, nil, err
	}

	rows := make([]Row, 0, len(models))
	for i := range models {
		value := reflect.ValueOf(models[i])
		for value.Kind() == reflect.Pointer {
			if value.IsNil() {
				return nil, nil, errors.Newf("sqlwriter: model %d is nil", i)
			}
			value = value.Elem()
		}

		row := make(Row, len(columns))
		typ := value.Type()
		for f := 0; f < typ.NumField(); f++ {
			col, ok := columnName(typ.Field(f))
			if !ok {
				continue
			}
			row[col] = value.Field(f).Interface()
		}
		rows = append(rows, row)
	}

	return rows, columns, nil
}

func modelColumns(typ reflect.Type) ([]string, error) {
	if typ == nil {
		return nil, errors.New("sqlwriter: model type is required")
	}
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, errors.Newf("sqlwriter: model must be struct, got %s", typ.Kind())
	}

	cols := make([]string, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		if col, ok := columnName(typ.Field(i)); ok {
			cols = append(cols, col)
		}
	}
	if len(cols) == 0 {
		return nil, errors.Newf("sqlwriter: model %s has no db columns", typ.Name())
	}
	return cols, nil
}

func columnName(field reflect.StructField) (string, bool) {
	if field.PkgPath != "" {
		return "", false
	}
	tag := strings.TrimSpace(field.Tag.Get("db"))
	if tag == "" || tag == "-" {
		return "", false
	}
	col := strings.TrimSpace(strings.Split(tag, ",")[0])
	if col == "" || col == "-" {
		return "", false
	}
	return col, true
}
