package codegen

import (
	"reflect"
	"sync"

	"github.com/typolang/typo/values"
)

// CapabilityCache memoizes capability probes per runtime type. It is shared
// by every checker compiled against it and is safe for concurrent use;
// concurrent misses on the same key may probe twice but always store the
// same result.
type CapabilityCache struct {
	m sync.Map
}

type capabilityKey struct {
	c *values.Capability
	t reflect.Type
}

// DefaultCache is used by programs that do not set their own.
var DefaultCache = &CapabilityCache{}

// Has reports whether values of type t provide capability c.
func (c *CapabilityCache) Has(capability *values.Capability, t reflect.Type) bool {
	key := capabilityKey{c: capability, t: t}
	if ok, found := c.m.Load(key); found {
		return ok.(bool)
	}
	ok := capability.Probe(t)
	c.m.Store(key, ok)
	return ok
}

// Len returns the number of memoized probes.
func (c *CapabilityCache) Len() int {
	n := 0
	c.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
