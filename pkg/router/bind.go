package router

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// Bind copies the captures and query of m into the struct target points to.
// Fields tagged `param:"name"` take the wildcard capture of that name;
// fields tagged `query:"name"` take the first query value of that name.
// A []string field receives a capture split on "/".
func (m *Match) Bind(target any) error {
	return bind(m.Params, m.Query, target)
}

// Bind copies the captures and query of v into target. See Match.Bind.
func (v *View) Bind(target any) error {
	return bind(v.Params, v.Query, target)
}

func bind(params map[string]string, rawQuery string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.New("router: bind target must be a non-nil pointer to a struct")
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("router: bind target must point to a struct, not %s", rv.Kind())
	}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return fmt.Errorf("router: bind query: %w", err)
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		var (
			name, value string
			ok          bool
		)
		if name = field.Tag.Get("param"); name != "" {
			value, ok = params[name]
		} else if name = field.Tag.Get("query"); name != "" {
			ok = query.Has(name)
			value = query.Get(name)
		}
		if !ok {
			continue
		}
		if err := setField(rv.Field(i), value); err != nil {
			return fmt.Errorf("router: bind %q: %w", name, err)
		}
	}
	return nil
}

func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer %q", value)
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer %q", value)
		}
		field.SetUint(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice of %s", field.Type().Elem().Kind())
		}
		var parts []string
		if value != "" {
			parts = strings.Split(value, "/")
		}
		field.Set(reflect.ValueOf(parts))
	default:
		return fmt.Errorf("unsupported field type %s", field.Kind())
	}
	return nil
}
