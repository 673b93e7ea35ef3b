package reader

import "math/bits"

// Set is a set of codec Types. The zero value is empty.
// Set is a value type; copies are independent.
type Set uint32

// NewSet creates a Set holding types.
func NewSet(types ...Type) Set {
	var s Set
	for _, t := range types {
		s.Add(t)
	}
	return s
}

// Add inserts t. Invalid types are ignored.
func (s *Set) Add(t Type) {
	if t.Valid() {
		*s |= 1 << t
	}
}

// Require inserts t together with every codec it depends on.
func (s *Set) Require(t Type) {
	for _, dep := range Dependencies(t) {
		s.Add(dep)
	}
}

// Has reports whether t is in the set.
func (s Set) Has(t Type) bool {
	return t.Valid() && s&(1<<t) != 0
}

// Union returns the union of s and other.
func (s Set) Union(other Set) Set {
	return s | other
}

// Len returns the number of types in the set.
func (s Set) Len() int {
	return bits.OnesCount32(uint32(s))
}

// Types returns the members in enumeration order.
func (s Set) Types() []Type {
	out := make([]Type, 0, s.Len())
	for t := Type(0); t < numTypes; t++ {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// Closed reports whether every member's dependencies are also members.
func (s Set) Closed() bool {
	for _, t := range s.Types() {
		for _, dep := range Dependencies(t) {
			if !s.Has(dep) {
				return false
			}
		}
	}
	return true
}

func (s Set) String() string {
	out := "{"
	for i, t := range s.Types() {
		if i > 0 {
			out += " "
		}
		out += t.String()
	}
	return out + "}"
}
