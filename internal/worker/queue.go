// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package worker

import (
	"context"
	"errors"
	"sync"
)

// ErrQueueClosed is returned by Take once the queue has been closed.
var ErrQueueClosed = errors.New("prompt queue closed")

// Queue is an unbounded FIFO of prompts with a single consumer.
//
// Put never blocks. Take blocks until a prompt is available, the context is
// cancelled, or the queue is closed.
type Queue struct {
	mu     sync.Mutex
	items  []string
	closed bool

	ready chan struct{} // 1-buffered wakeup for the consumer
	done  chan struct{} // closed by Close
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Put appends prompt to the tail. Put on a closed queue drops the prompt.
func (q *Queue) Put(prompt string) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, prompt)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Take removes and returns the head of the queue.
func (q *Queue) Take(ctx context.Context) (string, error) {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return "", ErrQueueClosed
		}
		if len(q.items) > 0 {
			p := q.items[0]
			q.items[0] = ""
			q.items = q.items[1:]
			q.mu.Unlock()
			return p, nil
		}
		q.mu.Unlock()

		select {
		case <-q.ready:
		case <-q.done:
			return "", ErrQueueClosed
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// Close discards pending prompts and wakes a blocked Take.
// Safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.items = nil
	close(q.done)
}

// Len returns the number of pending prompts.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
