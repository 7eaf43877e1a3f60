package parser

import (
	"fmt"
	"regexp"
)

// QualifiedName is a name optionally prefixed with the module it is
// declared in.
type QualifiedName struct {
	Module string
	Name   string
}

func (q QualifiedName) String() string {
	if q.Module == "" {
		return q.Name
	}
	return q.Module + "." + q.Name
}

// Match an optional module prefix followed by a plain name. Only the last
// dot separates the two.
var qualifiedNameRegexp = regexp.MustCompile(`^(?:([A-Za-z_][A-Za-z0-9_.]*)\.)?([A-Za-z_][A-Za-z0-9_]*)$`)

// ParseQualifiedName splits a dotted name into its module and name.
//
// Examples:
//
//	"Point" => {"" Point}
//	"geometry.Point" => {geometry Point}
//	"shapes.geometry.Point" => {shapes.geometry Point}
func ParseQualifiedName(s string) (QualifiedName, error) {
	match := qualifiedNameRegexp.FindStringSubmatch(s)
	if match == nil {
		return QualifiedName{}, fmt.Errorf("invalid name %q", s)
	}
	return QualifiedName{Module: match[1], Name: match[2]}, nil
}
