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

// Package csma implements the two opaque retry layers the duty-cycle core
// consumes but does not reason about: a CSMA layer consulted on channel
// contention (TX_MEDIUM_BUSY) and a link-retry layer consulted on missing
// acks (TX_NOACK). Both report success/failure through an edge-triggered
// pair of methods so the core never inspects attempt counters directly.
package csma

// Layer is the shape both the CSMA and retry helpers present to the core.
// SendSucceeded resets internal attempt state. SendFailed records a failed
// attempt and reports whether the caller should retry (true) or give up
// and treat the frame as dropped (false).
type Layer interface {
	SendSucceeded()
	SendFailed() (retry bool)
}

// CSMALayer models carrier-sense backoff attempts: a fixed number of
// channel-access retries before giving up on this transmission.
type CSMALayer struct {
	maxAttempts int
	attempts    int
}

// NewCSMALayer creates a CSMALayer that allows up to maxAttempts channel
// accesses (including the first) before reporting exhaustion.
func NewCSMALayer(maxAttempts int) *CSMALayer {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &CSMALayer{maxAttempts: maxAttempts}
}

func (c *CSMALayer) SendSucceeded() {
	c.attempts = 0
}

func (c *CSMALayer) SendFailed() bool {
	c.attempts++
	return c.attempts < c.maxAttempts
}

var _ Layer = (*CSMALayer)(nil)

// RetryLayer models per-link acknowledged-delivery retries, consulted only
// once CSMA has confirmed the frame reached the air.
type RetryLayer struct {
	maxRetries int
	retries    int
}

// NewRetryLayer creates a RetryLayer that allows up to maxRetries
// retransmissions (not counting the original attempt) before reporting
// exhaustion.
func NewRetryLayer(maxRetries int) *RetryLayer {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RetryLayer{maxRetries: maxRetries}
}

func (r *RetryLayer) SendSucceeded() {
	r.retries = 0
}

func (r *RetryLayer) SendFailed() bool {
	if r.retries >= r.maxRetries {
		return false
	}
	r.retries++
	return true
}

var _ Layer = (*RetryLayer)(nil)
