package ecs

import (
	"reflect"
	"sync"
)

// TypeKey identifies a component type. It indexes a node's ObjectRegistry
// and is the channel key lifecycle listeners subscribe to.
type TypeKey string

// Named lets a component type pick its own key instead of its Go type path.
// TypeName must work on the zero value.
type Named interface {
	TypeName() string
}

var (
	namedType = reflect.TypeOf((*Named)(nil)).Elem()
	keyCache  sync.Map // reflect.Type -> TypeKey
)

// KeyOf resolves a type token or an instance to the key of its type.
//
// scope may be a reflect.Type, a TypeKey (returned as is) or any value.
// Pointers resolve to their element type, so Health{}, &Health{} and
// reflect.TypeOf(Health{}) all produce the same key.
func KeyOf(scope any) TypeKey {
	switch s := scope.(type) {
	case nil:
		return ""
	case TypeKey:
		return s
	case reflect.Type:
		return keyOfType(s)
	default:
		return keyOfType(reflect.TypeOf(scope))
	}
}

// KeyFor is KeyOf for a type parameter.
func KeyFor[T any]() TypeKey {
	return keyOfType(reflect.TypeOf((*T)(nil)).Elem())
}

func keyOfType(t reflect.Type) TypeKey {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if k, ok := keyCache.Load(t); ok {
		return k.(TypeKey)
	}
	k := resolveKey(t)
	keyCache.Store(t, k)
	return k
}

func resolveKey(t reflect.Type) TypeKey {
	if t.Kind() != reflect.Interface {
		switch {
		case t.Implements(namedType):
			return TypeKey(reflect.Zero(t).Interface().(Named).TypeName())
		case reflect.PointerTo(t).Implements(namedType):
			return TypeKey(reflect.New(t).Interface().(Named).TypeName())
		}
	}
	if t.Name() == "" {
		return TypeKey(t.String())
	}
	if t.PkgPath() == "" {
		return TypeKey(t.Name())
	}
	return TypeKey(t.PkgPath() + "." + t.Name())
}
