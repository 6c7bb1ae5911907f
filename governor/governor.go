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

// Package governor computes the leaf's next sleep duration: exponential
// back-off across unproductive beacon cycles, reset to the minimum the
// moment a cycle does something useful. The duty-cycle timer lives outside
// this package; the governor only owns the shift that derives the interval
// from it.
package governor

import (
	"sync"

	"github.com/leafmac/leafmac/logger"
)

// Governor computes INTERVAL_MIN<<shift, clamped at INTERVAL_MAX. Reads and
// mutations are guarded by a mutex standing in for "disable interrupts", so
// a read from a goroutine other than the event-loop worker (which calls
// Reset()/Backoff()/Current()) never tears; tests and diagnostics read
// Shift() that way.
type Governor struct {
	mu    sync.Mutex
	shift uint8

	min uint32
	max uint32
}

// New creates a Governor whose interval ranges over [min, max]. max must be
// reachable as min<<k for some k, matching the build-time configuration
// constraint; New panics otherwise since this is a configuration error, not
// a runtime one.
func New(min, max uint32) *Governor {
	logger.AssertTrue(min > 0 && max >= min)
	k := uint32(0)
	for v := min; v < max; v <<= 1 {
		k++
		if v > max>>1 {
			// next doubling would overshoot; max is not reachable exactly.
			logger.Panicf("governor: max %d is not reachable as min %d << k", max, min)
		}
	}
	return &Governor{min: min, max: max}
}

// Reset sets shift back to zero, so Current() returns min.
func (g *Governor) Reset() {
	g.mu.Lock()
	g.shift = 0
	g.mu.Unlock()
}

// Backoff advances shift by one step, unless doing so would overflow or the
// current interval has already reached max.
func (g *Governor) Backoff() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.shift >= 31 {
		return
	}
	cur := g.min << g.shift
	if cur >= g.max {
		return
	}
	next := g.min << (g.shift + 1)
	if next < cur {
		// overflowed past uint32 range.
		return
	}
	g.shift++
}

// Current returns the interval for the present shift, clamped at max.
func (g *Governor) Current() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	cur := g.min << g.shift
	if cur > g.max || cur < g.min {
		return g.max
	}
	return cur
}

// Shift returns the raw backoff shift, mainly for tests asserting
// monotonicity and reset behavior.
func (g *Governor) Shift() uint8 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.shift
}
