// Package util holds small generic helpers shared across simone's core
// packages: ordered map iteration and text-list rendering for error messages.
package util

import (
	"sort"
	"strings"
)

// OrderedKeys returns the keys of m sorted in ascending order. Used anywhere
// map iteration needs to be deterministic, e.g. rendering an Automaton's
// states or walking its alphabet in a stable order.
func OrderedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MakeTextList gives a nice list of things based on their display name.
func MakeTextList(items []string) string {
	if len(items) < 1 {
		return ""
	}

	output := ""

	if len(items) == 1 {
		output += items[0]
	} else if len(items) == 2 {
		output += items[0] + " and " + items[1]
	} else {
		// if its more than two, use an oxford comma
		items[len(items)-1] = "and " + items[len(items)-1]
		output += strings.Join(items, ", ")
	}

	return output
}
