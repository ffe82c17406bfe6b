package track

import (
	"math/rand/v2"
	"sort"
)

// Frontier is the open set of a segment search. Every Push either shuffles the
// whole queue (with probability randomness) or stably re-sorts it with less,
// so the search alternates between best-first and random exploration.
type Frontier[T any] struct {
	items      []T
	less       func(a, b T) bool
	rng        *rand.Rand
	randomness float64
}

// NewFrontier returns an empty frontier ordered by less.
func NewFrontier[T any](rng *rand.Rand, randomness float64, less func(a, b T) bool) *Frontier[T] {
	return &Frontier[T]{
		items:      make([]T, 0, 64),
		less:       less,
		rng:        rng,
		randomness: randomness,
	}
}

// Push adds item and reorders the queue.
func (f *Frontier[T]) Push(item T) {
	f.items = append(f.items, item)
	if f.rng.Float64() < f.randomness {
		f.rng.Shuffle(len(f.items), func(i, j int) {
			f.items[i], f.items[j] = f.items[j], f.items[i]
		})
		return
	}
	sort.SliceStable(f.items, func(i, j int) bool {
		return f.less(f.items[i], f.items[j])
	})
}

// Pop removes and returns the head of the queue.
func (f *Frontier[T]) Pop() (T, bool) {
	var zero T
	if len(f.items) == 0 {
		return zero, false
	}
	head := f.items[0]
	f.items[0] = zero
	f.items = f.items[1:]
	return head, true
}

// Len returns the number of queued items.
func (f *Frontier[T]) Len() int {
	return len(f.items)
}
