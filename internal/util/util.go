package util

import (
	"sort"
)

// OrderedKeys returns the keys of m, ordered a particular way. The order is
// guaranteed to be the same on every run.
//
// As of this writing, the order is alphabetical, but this function does not
// guarantee this will always be the case.
func OrderedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))

	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// CommonPrefixLen returns the number of leading elements that sl1 and sl2 have
// in common.
func CommonPrefixLen[E comparable](sl1, sl2 []E) int {
	n := 0
	for n < len(sl1) && n < len(sl2) && sl1[n] == sl2[n] {
		n++
	}
	return n
}

// HasPrefix returns whether sl starts with every element of prefix, in order.
func HasPrefix[E comparable](sl, prefix []E) bool {
	if len(prefix) > len(sl) {
		return false
	}
	return CommonPrefixLen(sl, prefix) == len(prefix)
}

// Concat returns a new slice holding the elements of every given slice in
// order. The result never aliases any of the arguments.
func Concat[E any](sls ...[]E) []E {
	total := 0
	for i := range sls {
		total += len(sls[i])
	}

	out := make([]E, 0, total)
	for i := range sls {
		out = append(out, sls[i]...)
	}
	return out
}

// IndexesOf returns every index in sl at which v occurs, in ascending order.
func IndexesOf[E comparable](sl []E, v E) []int {
	var idxs []int
	for i := range sl {
		if sl[i] == v {
			idxs = append(idxs, i)
		}
	}
	return idxs
}
