package util

import (
	"errors"
	"reflect"
	"strings"
	"sync"
)

func IsReallyNil(value interface{}) bool {
	if value == nil {
		return true
	}
	switch reflectValue := reflect.ValueOf(value); reflectValue.Kind() {
	case reflect.Chan, reflect.Func, reflect.Map, reflect.Ptr,
		reflect.UnsafePointer, reflect.Interface, reflect.Slice:
		return reflectValue.IsNil()
	default:
		return false
	}
}

func PanicIfNotNil(value interface{}) {
	if !IsReallyNil(value) {
		panic(value)
	}
}

func Assert(condition bool, msg ...string) bool {
	if !condition {
		if len(msg) == 0 {
			panic(errors.New("assertion error"))
		}
		panic(errors.New(strings.Join(msg, " ")))
	}
	return true
}

// LockUnlock is meant for `defer util.LockUnlock(&mu)()`.
func LockUnlock(l sync.Locker) func() {
	l.Lock()
	return l.Unlock
}
