// Package matrix expands the declared axis set into the cross product of
// concrete environments, and filters that product with --only-env selectors.
// Expansion is deterministic: the first declared axis varies slowest, so the
// environment order is the lexicographic product of declaration order.
package matrix
