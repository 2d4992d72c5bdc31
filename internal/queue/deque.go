// Package queue provides the double-ended queue used by pipeline steps.
package queue

import (
	"github.com/emirpasic/gods/lists/doublylinkedlist"
)

// Deque is a typed double-ended queue backed by a doubly linked list.
// The zero value is not usable; call New.
type Deque[T any] struct {
	list *doublylinkedlist.List
}

// New returns an empty deque, optionally seeded with items in order.
func New[T any](items ...T) *Deque[T] {
	d := &Deque[T]{list: doublylinkedlist.New()}
	for _, item := range items {
		d.list.Append(item)
	}
	return d
}

// PushBack appends item at the tail.
func (d *Deque[T]) PushBack(item T) {
	d.list.Append(item)
}

// PushFront inserts item at the head.
func (d *Deque[T]) PushFront(item T) {
	d.list.Prepend(item)
}

// PopFront removes and returns the head item.
func (d *Deque[T]) PopFront() (T, bool) {
	return d.take(0)
}

// PopBack removes and returns the tail item.
func (d *Deque[T]) PopBack() (T, bool) {
	return d.take(d.list.Size() - 1)
}

// Front returns the head item without removing it.
func (d *Deque[T]) Front() (T, bool) {
	return d.at(0)
}

// Back returns the tail item without removing it.
func (d *Deque[T]) Back() (T, bool) {
	return d.at(d.list.Size() - 1)
}

// Len returns the number of items.
func (d *Deque[T]) Len() int {
	return d.list.Size()
}

// Empty reports whether the deque holds no items.
func (d *Deque[T]) Empty() bool {
	return d.list.Empty()
}

// Values returns the items head to tail as a new slice.
func (d *Deque[T]) Values() []T {
	raw := d.list.Values()
	out := make([]T, len(raw))
	for i, v := range raw {
		out[i] = v.(T)
	}
	return out
}

// Clear removes every item.
func (d *Deque[T]) Clear() {
	d.list.Clear()
}

func (d *Deque[T]) at(index int) (T, bool) {
	var zero T
	if index < 0 {
		return zero, false
	}
	v, ok := d.list.Get(index)
	if !ok {
		return zero, false
	}
	return v.(T), true
}

func (d *Deque[T]) take(index int) (T, bool) {
	item, ok := d.at(index)
	if ok {
		d.list.Remove(index)
	}
	return item, ok
}
