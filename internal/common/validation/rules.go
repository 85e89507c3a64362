package validation

import "strings"

// Blank reports whether s is empty after trimming whitespace.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// CountNonBlank counts the items that are not Blank.
func CountNonBlank(items []string) int {
	n := 0
	for _, item := range items {
		if !Blank(item) {
			n++
		}
	}
	return n
}

// AllNonBlank reports whether every item is non-blank.
func AllNonBlank(items []string) bool {
	return CountNonBlank(items) == len(items)
}

// ExactSequence reports whether numbers is a permutation of 1..n.
func ExactSequence(numbers []int, n int) bool {
	if len(numbers) != n {
		return false
	}
	seen := make(map[int]bool, n)
	for _, v := range numbers {
		if v < 1 || v > n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
