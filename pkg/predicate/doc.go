/*
Package predicate implements the comparison-expression compiler of
§4.8: it turns a tree of logical/comparison/function/arithmetic nodes
into a single closure that evaluates against a pair of chunk+row
positions, one from each side of a scan or join. Comparators are
chosen once, at compile time, by a physical-type double switch rather
than a nested runtime type-switch chain.
*/
package predicate
