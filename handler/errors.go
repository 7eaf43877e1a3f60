package handler

import "fmt"

// BuildError reports a descriptor that cannot be turned into a checker.
// It is only ever returned while building, never while checking values.
type BuildError struct {
	Descriptor string
	Msg        string
}

func (e *BuildError) Error() string {
	if e.Descriptor == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Msg, e.Descriptor)
}

func newError(descriptor string, format string, args ...any) *BuildError {
	return &BuildError{
		Descriptor: descriptor,
		Msg:        fmt.Sprintf(format, args...),
	}
}
