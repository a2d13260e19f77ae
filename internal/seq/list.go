// Package seq provides an ordered, duplicate-tolerant container.
package seq

import (
	"errors"
	"fmt"
	"iter"
)

var ErrOutOfRange = errors.New("seq: index out of range")

// List is an ordered sequence backed by a slice. The zero value is an empty list.
type List[T any] struct {
	items []T
}

func New[T any]() *List[T] { return &List[T]{} }

// From copies items into a new list.
func From[T any](items []T) *List[T] {
	l := &List[T]{}
	if len(items) > 0 {
		l.items = make([]T, len(items))
		copy(l.items, items)
	}
	return l
}

func (l *List[T]) Append(item T) { l.items = append(l.items, item) }

func (l *List[T]) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

func (l *List[T]) Get(i int) (T, error) {
	if i < 0 || i >= l.Len() {
		var zero T
		return zero, fmt.Errorf("%w: %d (size %d)", ErrOutOfRange, i, l.Len())
	}
	return l.items[i], nil
}

func (l *List[T]) Set(i int, item T) error {
	if i < 0 || i >= l.Len() {
		return fmt.Errorf("%w: %d (size %d)", ErrOutOfRange, i, l.Len())
	}
	l.items[i] = item
	return nil
}

// RemoveFirstFunc removes the first element for which match holds.
// A nil match or an empty list is a no-op.
func (l *List[T]) RemoveFirstFunc(match func(T) bool) bool {
	if match == nil || l.Len() == 0 {
		return false
	}
	for i, it := range l.items {
		if match(it) {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveFirst removes the first element equal to item.
func RemoveFirst[T comparable](l *List[T], item T) bool {
	return l.RemoveFirstFunc(func(v T) bool { return v == item })
}

// Filter returns a new list holding, in order, the elements for which keep holds.
func (l *List[T]) Filter(keep func(T) bool) *List[T] {
	out := &List[T]{}
	for _, it := range l.All() {
		if keep(it) {
			out.items = append(out.items, it)
		}
	}
	return out
}

// Clone returns a list with independent storage; elements are copied by value.
func (l *List[T]) Clone() *List[T] {
	if l == nil {
		return New[T]()
	}
	return From(l.items)
}

// All yields index/element pairs from the start on every call.
func (l *List[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		if l == nil {
			return
		}
		for i, it := range l.items {
			if !yield(i, it) {
				return
			}
		}
	}
}

// Values yields the elements in order.
func (l *List[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, it := range l.All() {
			if !yield(it) {
				return
			}
		}
	}
}

// Slice returns a copy of the elements as a plain slice.
func (l *List[T]) Slice() []T {
	out := make([]T, l.Len())
	if l != nil {
		copy(out, l.items)
	}
	return out
}
