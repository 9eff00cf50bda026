package store

import "reflect"

// StrictEqual reports whether two state values are the same value.
//
// Values of different dynamic types are never equal. Maps, channels and
// pointers are equal when they refer to the same object; slices when they
// share the same backing array start and length. Functions are never equal.
// Other comparable values use ==; values that cannot be compared (structs
// holding slices, for example) are never equal.
func StrictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Map, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	case reflect.Func:
		return false
	}

	if !ta.Comparable() {
		return false
	}
	return comparableEqual(a, b)
}

// comparableEqual guards == against structs or arrays whose interface fields
// hold incomparable values at run time.
func comparableEqual(a, b any) (equal bool) {
	defer func() {
		if recover() != nil {
			equal = false
		}
	}()
	return a == b
}
