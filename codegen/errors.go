package codegen

import (
	"errors"
	"fmt"
)

// ValidationError is returned by a compiled checker at the first failing
// check.
type ValidationError struct {
	Path     string
	Expected string
	Got      string
	// Msg replaces the expected/got pair when set.
	Msg   string
	Value any
}

func (e *ValidationError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("invalid %s: %s", e.Path, e.Msg)
	}
	return fmt.Sprintf("invalid %s: expected %s, got %s", e.Path, e.Expected, e.Got)
}

// errSpeculative signals a failure on a nil path. Union branches catch it
// and try the next variant; it never escapes a checker whose entry path is
// non-nil.
var errSpeculative = errors.New("speculative check failed")
