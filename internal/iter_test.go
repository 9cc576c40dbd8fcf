package internal

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIterSeqFilter(t *testing.T) {
	assert := assert.New(t)

	even := IterSeqFilter(slices.Values([]int{1, 2, 3, 4, 5, 6}), func(v int) bool { return v%2 == 0 })
	assert.Equal([]int{2, 4, 6}, slices.Collect(even))
	assert.Equal(3, IterSeqCount(even))
	assert.Equal(0, IterSeqCount(slices.Values([]int{})))

	var first []int
	for v := range even {
		first = append(first, v)
		if v == 4 {
			break
		}
	}
	assert.Equal([]int{2, 4}, first)
}
