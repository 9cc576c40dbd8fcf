// Package internal holds iterator helpers shared by the other packages.
package internal

import (
	"iter"
)

// IterSeqFilter yields only the values of seq accepted by keep.
func IterSeqFilter[T any](seq iter.Seq[T], keep func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for val := range seq {
			if keep(val) && !yield(val) {
				return
			}
		}
	}
}

// IterSeqCount returns the number of values in seq.
func IterSeqCount[T any](seq iter.Seq[T]) (count int) {
	for range seq {
		count++
	}
	return
}
