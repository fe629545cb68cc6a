package remarks

import "fmt"

// Pager walks a fixed list one item at a time. The index always stays in
// [0, len-1]; stepping past either end does nothing.
type Pager[T any] struct {
	items []T
	index int
}

func NewPager[T any](items []T) *Pager[T] {
	return &Pager[T]{items: append([]T(nil), items...)}
}

func (p *Pager[T]) Len() int {
	return len(p.items)
}

func (p *Pager[T]) Index() int {
	return p.index
}

// Current returns the item under the cursor, or false for an empty list.
func (p *Pager[T]) Current() (T, bool) {
	var zero T
	if len(p.items) == 0 {
		return zero, false
	}
	return p.items[p.index], true
}

// Prev moves back one item and reports whether the cursor moved.
func (p *Pager[T]) Prev() bool {
	if p.index == 0 {
		return false
	}
	p.index--
	return true
}

// Next moves forward one item and reports whether the cursor moved.
func (p *Pager[T]) Next() bool {
	if p.index >= len(p.items)-1 {
		return false
	}
	p.index++
	return true
}

func (p *Pager[T]) HasPrev() bool {
	return p.index > 0
}

func (p *Pager[T]) HasNext() bool {
	return p.index < len(p.items)-1
}

// Position is the 1-based "i of n" label.
func (p *Pager[T]) Position() string {
	if len(p.items) == 0 {
		return "0 of 0"
	}
	return fmt.Sprintf("%d of %d", p.index+1, len(p.items))
}
