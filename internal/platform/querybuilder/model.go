package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

type modelField struct {
	index  int
	column string
}

// fieldsByType caches the db-tagged exported fields of each struct type.
var fieldsByType sync.Map

func modelFields(typ reflect.Type) []modelField {
	if cached, ok := fieldsByType.Load(typ); ok {
		return cached.([]modelField)
	}

	fields := make([]modelField, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		col, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		col = strings.TrimSpace(col)
		if col == "" || col == "-" {
			continue
		}
		fields = append(fields, modelField{index: i, column: col})
	}

	actual, _ := fieldsByType.LoadOrStore(typ, fields)
	return actual.([]modelField)
}

func structValue(model any) (reflect.Value, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return reflect.Value{}, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("model must be struct, got %s", value.Kind())
	}
	return value, nil
}

// ModelColumns lists the db columns of a struct in field order.
func ModelColumns(model any) ([]string, error) {
	value, err := structValue(model)
	if err != nil {
		return nil, err
	}
	fields := modelFields(value.Type())
	if len(fields) == 0 {
		return nil, fmt.Errorf("model has no db columns")
	}
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.column
	}
	return cols, nil
}

// InsertModel builds a single-row insert from the db tags of model.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	return insertRows(table, []any{model}, suffix)
}

// InsertModels builds one multi-row insert. Every row shares the columns of
// the first.
func InsertModels[T any](table string, models []T, suffix string) (string, []any, error) {
	rows := make([]any, len(models))
	for i := range models {
		rows[i] = models[i]
	}
	return insertRows(table, rows, suffix)
}

func insertRows(table string, models []any, suffix string) (string, []any, error) {
	if len(models) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	cols, err := ModelColumns(models[0])
	if err != nil {
		return "", nil, err
	}
	builder := InsertInto(table).Columns(cols...).Suffix(suffix)
	for _, model := range models {
		value, err := structValue(model)
		if err != nil {
			return "", nil, err
		}
		fields := modelFields(value.Type())
		vals := make([]any, len(fields))
		for i, f := range fields {
			vals[i] = value.Field(f.index).Interface()
		}
		builder.Values(vals...)
	}
	return builder.ToSQL()
}
