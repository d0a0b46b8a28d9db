package binder

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"time"
)

// Path binds `path:"name"` fields using extractor, e.g. chi.URLParam.
func Path(extractor func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindTagged(v, "path", ErrInvalidPath, func(name string) ([]string, bool) {
			val := extractor(r, name)
			return []string{val}, val != ""
		})
	}
}

// Query binds `query:"name"` fields from the URL query string.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		q := r.URL.Query()
		return bindTagged(v, "query", ErrInvalidQuery, func(name string) ([]string, bool) {
			vals, ok := q[name]
			return vals, ok && len(vals) > 0
		})
	}
}

func bindTagged(v any, tag string, sentinel error, lookup func(name string) ([]string, bool)) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrInvalidTarget
	}
	rv = rv.Elem()
	rt := rv.Type()

	for i := range rv.NumField() {
		field := rt.Field(i)
		name := field.Tag.Get(tag)
		if name == "" || name == "-" || !field.IsExported() {
			continue
		}
		vals, ok := lookup(name)
		if !ok {
			continue
		}
		if err := setValue(rv.Field(i), vals); err != nil {
			return fmt.Errorf("%w: %s: %v", sentinel, name, err)
		}
	}
	return nil
}

var timeType = reflect.TypeOf(time.Time{})

func setValue(field reflect.Value, vals []string) error {
	if field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String {
		out := reflect.MakeSlice(field.Type(), len(vals), len(vals))
		for i, s := range vals {
			out.Index(i).SetString(s)
		}
		field.Set(out)
		return nil
	}

	raw := vals[0]
	if field.Type() == timeType {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(t))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}
