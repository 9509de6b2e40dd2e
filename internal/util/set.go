package util

import (
	"fmt"
	"sort"
	"strings"
)

// KeySet is a map[E comparable]bool with set operations added. The zero value
// is a nil map and can be read from but not added to; use NewKeySet or
// KeySetOf to get a usable one.
type KeySet[E comparable] map[E]bool

func NewKeySet[E comparable](of ...map[E]bool) KeySet[E] {
	s := KeySet[E]{}
	for _, m := range of {
		for k := range m {
			s.Add(k)
		}
	}
	return s
}

func KeySetOf[E comparable](sl []E) KeySet[E] {
	s := NewKeySet[E]()

	for i := range sl {
		s.Add(sl[i])
	}

	return s
}

// Copy returns a duplicate of s that shares no storage with it.
func (s KeySet[E]) Copy() KeySet[E] {
	newS := NewKeySet[E]()

	for k := range s {
		newS[k] = true
	}

	return newS
}

// Union returns a new KeySet that is the union of s and o.
func (s KeySet[E]) Union(o KeySet[E]) KeySet[E] {
	newSet := NewKeySet[E]()
	newSet.AddAll(s)
	newSet.AddAll(o)

	return newSet
}

// Difference returns a new KeySet that contains the elements that are in s but
// not in o.
func (s KeySet[E]) Difference(o KeySet[E]) KeySet[E] {
	newSet := NewKeySet[E]()

	for k := range s {
		if !o.Has(k) {
			newSet.Add(k)
		}
	}

	return newSet
}

func (s KeySet[E]) DisjointWith(o KeySet[E]) bool {
	for k := range s {
		if o.Has(k) {
			return false
		}
	}
	return true
}

func (s KeySet[E]) Empty() bool {
	return s.Len() == 0
}

func (s KeySet[E]) Has(value E) bool {
	_, has := s[value]
	return has
}

func (s KeySet[E]) Add(value E) {
	s[value] = true
}

func (s KeySet[E]) Remove(value E) {
	delete(s, value)
}

func (s KeySet[E]) Len() int {
	return len(s)
}

// AddAll adds every element of s2 to s and returns whether s grew as a result.
func (s KeySet[E]) AddAll(s2 KeySet[E]) bool {
	grew := false
	for element := range s2 {
		if !s.Has(element) {
			s.Add(element)
			grew = true
		}
	}
	return grew
}

// Equal returns whether two sets have the same items. Anything other than a
// KeySet[E] or a non-nil *KeySet[E] is never equal.
func (s KeySet[E]) Equal(o any) bool {
	other, ok := o.(KeySet[E])
	if !ok {
		otherPtr, ok := o.(*KeySet[E])
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if s.Len() != other.Len() {
		return false
	}

	for k := range s {
		if !other.Has(k) {
			return false
		}
	}

	return true
}

// Elements returns the elements of s as a slice. No particular order is
// guaranteed nor should it be relied on; use Sorted for a stable order.
func (s KeySet[E]) Elements() []E {
	if s == nil {
		return nil
	}

	sl := make([]E, 0, len(s))

	for item := range s {
		sl = append(sl, item)
	}

	return sl
}

// Sorted returns the elements of s ordered by less.
func (s KeySet[E]) Sorted(less func(a, b E) bool) []E {
	sl := s.Elements()
	sort.Slice(sl, func(i, j int) bool {
		return less(sl[i], sl[j])
	})
	return sl
}

// String shows the contents of the set. Items are alphabetized by their %v
// representation.
func (s KeySet[E]) String() string {
	convs := []string{}

	for k := range s {
		convs = append(convs, fmt.Sprintf("%v", k))
	}

	sort.Strings(convs)

	return "{" + strings.Join(convs, ", ") + "}"
}
