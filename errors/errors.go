package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

const stackDepth = 32

type stack []uintptr

func (s *stack) Format() string {
	frames := runtime.CallersFrames(*s)
	var b strings.Builder
	for {
		frame, more := frames.Next()
		b.WriteRune('\n')
		b.WriteString(frame.Function)
		b.WriteRune('\n')
		b.WriteRune('\t')
		b.WriteString(frame.File)
		b.WriteRune(':')
		b.WriteString(strconv.Itoa(frame.Line))
		if !more {
			break
		}
	}
	return b.String()
}

// TrackableError carries the stack captured where the error was created,
// which is usually several frames away from where it surfaces.
type TrackableError struct {
	err        error
	stacktrace *stack
}

func (e *TrackableError) Error() string {
	return fmt.Sprintf("original error: %s\nstacktrace:\n%s", e.err.Error(), e.stacktrace.Format())
}

func (e *TrackableError) Unwrap() error {
	return e.err
}

func (e *TrackableError) Stacktrace() string {
	return e.stacktrace.Format()
}

func Error(msg string) *TrackableError {
	return newTrackableErr(errors.New(msg), stacktrace(1))
}

func Errorf(format string, fields ...any) *TrackableError {
	return newTrackableErr(fmt.Errorf(format, fields...), stacktrace(1))
}

func WrapWithStackTrace(err error) *TrackableError {
	return newTrackableErr(err, stacktrace(1))
}

func newTrackableErr(err error, st *stack) *TrackableError {
	return &TrackableError{
		err:        err,
		stacktrace: st,
	}
}

func stacktrace(frameSkips int) *stack {
	pcs := make([]uintptr, stackDepth)
	// skip 2 extra frames for runtime.Callers and stacktrace itself
	n := runtime.Callers(frameSkips+2, pcs[:])
	var st stack = pcs[:n]
	return &st
}
