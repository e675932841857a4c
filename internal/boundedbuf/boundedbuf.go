//  Copyright 2024 Google LLC
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

// Package boundedbuf implements a small fixed capacity FIFO used to decouple
// log producers from log consumers. Pushes either wait for a bounded amount of
// time or not at all, pops either block or return immediately. Items that
// don't fit are dropped, the buffer never grows.
package boundedbuf

import (
	"time"
)

// Buffer is a fixed capacity FIFO safe for concurrent use by any number of
// producers and consumers.
type Buffer[T any] struct {
	// items holds the queued items, its capacity is the buffer capacity.
	items chan T
}

// New allocates a Buffer holding at most capacity items. A capacity smaller
// than 1 is treated as 1.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer[T]{items: make(chan T, capacity)}
}

// PushWithHaste enqueues item if there's room for it. It never waits, if the
// buffer is full the item is dropped and false is returned.
func (b *Buffer[T]) PushWithHaste(item T) bool {
	select {
	case b.items <- item:
		return true
	default:
		return false
	}
}

// PushWithTimedWait enqueues item, waiting up to timeout for room to become
// available. If the buffer stays full past the deadline the item is dropped
// and false is returned.
func (b *Buffer[T]) PushWithTimedWait(item T, timeout time.Duration) bool {
	if b.PushWithHaste(item) {
		return true
	}

	if timeout <= 0 {
		return false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case b.items <- item:
		return true
	case <-timer.C:
		return false
	}
}

// PopWithWait blocks until an item is available and returns it.
func (b *Buffer[T]) PopWithWait() T {
	return <-b.items
}

// PopWithHaste returns the oldest item if any, otherwise it returns
// immediately with false.
func (b *Buffer[T]) PopWithHaste() (T, bool) {
	select {
	case item := <-b.items:
		return item, true
	default:
		var zero T
		return zero, false
	}
}

// Len returns the number of items currently queued.
func (b *Buffer[T]) Len() int {
	return len(b.items)
}

// Cap returns the buffer capacity.
func (b *Buffer[T]) Cap() int {
	return cap(b.items)
}
