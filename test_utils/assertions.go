package test_utils

import (
	"fmt"
	"strings"
)

const (
	assertionFailureError = "assertion failure: "
)

func AssertEquals[T comparable](l T, r T) {
	if l != r {
		panic(assertionFailureError + fmt.Sprintf("%v and %v are not equal", l, r))
	}
}

func AssertTrue(val bool) {
	if !val {
		panic(assertionFailureError + "value isn't true")
	}
}

func AssertFalse(val bool) {
	if val {
		panic(assertionFailureError + "value isn't false")
	}
}

func AssertNil(val any) {
	if val != nil {
		panic(assertionFailureError + fmt.Sprintf("value %v isn't nil", val))
	}
}

func AssertNonNil(val any) {
	if val == nil {
		panic(assertionFailureError + "value is nil")
	}
}

func AssertError(err error) {
	if err == nil {
		panic(assertionFailureError + "expected an error, got nil")
	}
}

func AssertNoError(err error) {
	if err != nil {
		panic(assertionFailureError + fmt.Sprintf("unexpected error %v", err))
	}
}

func AssertPanic(cb func()) {
	defer func() {
		if recovered := recover(); recovered == nil {
			panic(assertionFailureError + "no panic value is recovered")
		}
	}()
	cb()
}

func isAssertionFailurePanic(recovered any) bool {
	if panicString, ok := recovered.(string); ok {
		return strings.HasPrefix(panicString, assertionFailureError)
	}
	return false
}
