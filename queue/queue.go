// Copyright (c) 2024, The leafmac Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

// Package queue holds the leaf's outbound transmit queue: a bounded FIFO
// with head-remove discipline. Unlike the dispatcher's event queues
// upstream, which order by timestamp through a container/heap, a leaf's
// transmit order is strictly arrival order, so this is a plain ring buffer.
// The queue is touched only by the single event-loop worker; nothing here
// is safe for concurrent access, matching the rest of the duty-cycle core.
package queue

import "github.com/leafmac/leafmac/logger"

// KindTag distinguishes why a frame was queued, carried through so the
// state machine or upper layer can tell beacons-with-payload apart from
// plain data on delivery/drop notifications.
type KindTag uint8

const (
	KindData KindTag = iota
	KindBeacon
)

// Entry owns one outbound frame. Frame is a transferred-ownership handle:
// once popped from the queue it is the caller's to release.
type Entry struct {
	SenderID int
	Kind     KindTag
	Frame    []byte
}

// TransmitQueue is a bounded FIFO of capacity Cap. enqueue past capacity
// drops the new frame and reports failure; nothing already queued is ever
// evicted to make room.
type TransmitQueue struct {
	buf   []Entry
	head  int
	count int
	cap   int
}

// New creates a TransmitQueue with the given capacity.
func New(capacity int) *TransmitQueue {
	logger.AssertTrue(capacity > 0)
	return &TransmitQueue{
		buf: make([]Entry, capacity),
		cap: capacity,
	}
}

// Len returns the current number of queued entries.
func (q *TransmitQueue) Len() int {
	return q.count
}

// Cap returns the queue's fixed capacity.
func (q *TransmitQueue) Cap() int {
	return q.cap
}

// Empty reports whether the queue currently holds no entries.
func (q *TransmitQueue) Empty() bool {
	return q.count == 0
}

// Full reports whether the queue is at capacity.
func (q *TransmitQueue) Full() bool {
	return q.count == q.cap
}

// Enqueue appends entry at the tail. Returns false without modifying the
// queue if it is already at capacity.
func (q *TransmitQueue) Enqueue(entry Entry) bool {
	if q.Full() {
		return false
	}
	tail := (q.head + q.count) % q.cap
	q.buf[tail] = entry
	q.count++
	return true
}

// Head returns the oldest entry without removing it. Only valid when
// Len() > 0.
func (q *TransmitQueue) Head() Entry {
	logger.AssertTrue(q.count > 0)
	return q.buf[q.head]
}

// PopHead releases the oldest entry and advances the head. The caller is
// responsible for returning Frame to its allocator; PopHead is the only
// way an entry leaves the queue during normal operation.
func (q *TransmitQueue) PopHead() Entry {
	logger.AssertTrue(q.count > 0)
	e := q.buf[q.head]
	q.buf[q.head] = Entry{} // drop the reference so the buffer can be GC'd
	q.head = (q.head + 1) % q.cap
	q.count--
	return e
}
