// Package intutils provides utilities for working with ints
package intutils

// Min calculates and returns the minimum integer in a list. Min panics
// if called without arguments.
func Min(ints ...int) int {
	min := ints[0]
	for _, val := range ints[1:] {
		if val < min {
			min = val
		}
	}
	return min
}

// Max calculates and returns the maximum int in a list. Max panics if
// called without arguments.
func Max(ints ...int) int {
	max := ints[0]
	for _, val := range ints[1:] {
		if val > max {
			max = val
		}
	}
	return max
}
