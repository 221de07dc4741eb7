// Package paging supports the two list presentations used for session
// history: a page table that replaces its rows and a load-more list that
// grows for as long as the view is open.
package paging

// DefaultSize is the number of sessions fetched per page
const DefaultSize = 10

// Page addresses one fixed-size page; Number is zero based
type Page struct {
	Number int
	Size   int
}

// NewPage clamps number and size to usable values
func NewPage(number, size int) Page {
	if number < 0 {
		number = 0
	}
	if size <= 0 {
		size = DefaultSize
	}
	return Page{Number: number, Size: size}
}

// Skip is the number of items before the page
func (p Page) Skip() int {
	return p.Number * p.Size
}

// TotalPages is the number of pages needed for count items
func (p Page) TotalPages(count int) int {
	if count <= 0 || p.Size <= 0 {
		return 0
	}
	return (count + p.Size - 1) / p.Size
}

// HasPrev reports whether a previous page exists
func (p Page) HasPrev() bool {
	return p.Number > 0
}

// HasNext reports whether a page follows this one
func (p Page) HasNext(count int) bool {
	return p.Number+1 < p.TotalPages(count)
}

// Accumulator merges pages into one list, keeping the first occurrence of
// every key
type Accumulator[T any, K comparable] struct {
	key   func(T) K
	seen  map[K]struct{}
	items []T
}

// NewAccumulator creates an empty accumulator keyed by key
func NewAccumulator[T any, K comparable](key func(T) K) *Accumulator[T, K] {
	return &Accumulator[T, K]{
		key:  key,
		seen: make(map[K]struct{}),
	}
}

// Skip marks keys as seen without adding items, for items that were shown
// by an earlier request
func (a *Accumulator[T, K]) Skip(keys ...K) {
	for _, k := range keys {
		a.seen[k] = struct{}{}
	}
}

// Merge appends the items not seen before and returns how many were added
func (a *Accumulator[T, K]) Merge(items []T) int {
	added := 0
	for _, item := range items {
		k := a.key(item)
		if _, ok := a.seen[k]; ok {
			continue
		}
		a.seen[k] = struct{}{}
		a.items = append(a.items, item)
		added++
	}
	return added
}

// Items returns the accumulated items in first-seen order
func (a *Accumulator[T, K]) Items() []T {
	return a.items
}

// Len is the number of distinct items accumulated
func (a *Accumulator[T, K]) Len() int {
	return len(a.items)
}

// HasMore reports whether the server holds items not yet accumulated
func (a *Accumulator[T, K]) HasMore(total int) bool {
	return len(a.items) < total
}
