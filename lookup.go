// Copyright (c) 2014 Alex Kalyvitis
// Portions Copyright (c) 2009 Michael Hoisie

package mustachec

import (
	"reflect"
	"strconv"
)

// lookupForeign resolves a single (non-dotted) name against an
// arbitrary Go value attached to a Scope, operating on one foreign
// value at a time: Scope.Resolve already walks the dotted name and the
// parent chain, this just answers "does name exist on this one Go
// value, and what is it".
func lookupForeign(name string, value interface{}) (interface{}, bool) {
	if value == nil {
		return nil, false
	}
	reflectValue := reflect.ValueOf(value)
	switch reflectValue.Kind() {
	case reflect.Map:
		return lookupMap(name, reflectValue)
	case reflect.Struct:
		return lookupStruct(name, reflectValue)
	case reflect.Array, reflect.Slice:
		return lookupIndex(name, reflectValue)
	case reflect.Ptr, reflect.Interface:
		if !reflectValue.IsNil() {
			return lookupForeign(name, reflectValue.Elem().Interface())
		}
	}
	return nil, false
}

func lookupMap(name string, reflectValue reflect.Value) (interface{}, bool) {
	item := reflectValue.MapIndex(reflect.ValueOf(name))
	if item.IsValid() {
		return item.Interface(), true
	}
	return nil, false
}

func lookupStruct(name string, reflectValue reflect.Value) (interface{}, bool) {
	field := reflectValue.FieldByName(name)
	if field.IsValid() && field.CanInterface() {
		return field.Interface(), true
	}
	method := reflectValue.MethodByName(name)
	if method.IsValid() && method.Type().NumIn() == 0 {
		out := method.Call(nil)
		if len(out) > 0 {
			return out[0].Interface(), true
		}
	}

	typ := reflectValue.Type()
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if f.PkgPath != "" {
			continue
		}
		tag := f.Tag.Get("mustache")
		if tag == name {
			field := reflectValue.Field(i)
			if field.IsValid() && field.CanInterface() {
				return field.Interface(), true
			}
		}
	}
	return nil, false
}

func lookupIndex(name string, reflectValue reflect.Value) (interface{}, bool) {
	idx, err := strconv.Atoi(name)
	if err != nil {
		return nil, false
	}
	if idx < 0 || idx >= reflectValue.Len() {
		return nil, false
	}
	field := reflectValue.Index(idx)
	if field.IsValid() && field.CanInterface() {
		return field.Interface(), true
	}
	return nil, false
}

// truth reports whether v is a "truthy" value for section evaluation
// (spec §4.3/§4.4/§4.5). Falsy values are: nil, an empty string, a
// numeric zero, false, an empty array/slice/map, and a nil pointer or
// interface (or one pointing at a falsy value). Everything else,
// structs included, is truthy.
func truth(v interface{}) bool {
	if v == nil {
		return false
	}
	if sc, ok := v.(*Scope); ok {
		return sc != nil
	}
	r := reflect.ValueOf(v)
out:
	switch r.Kind() {
	case reflect.Array, reflect.Slice, reflect.Map:
		return r.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return r.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return r.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return r.Float() != 0
	case reflect.String:
		return r.String() != ""
	case reflect.Bool:
		return r.Bool()
	case reflect.Ptr, reflect.Interface:
		if r.IsNil() {
			return false
		}
		r = r.Elem()
		goto out
	case reflect.Invalid:
		return false
	default:
		return true
	}
}
