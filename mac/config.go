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

package mac

import "time"

// Config holds the build-time knobs §6 calls out: the governor's interval
// range, the listen-window duration, queue/mailbox capacities, and the
// opaque retry helpers' attempt budgets.
type Config struct {
	// IntervalMinUs/IntervalMaxUs bound the sleep-interval governor.
	// IntervalMaxUs must equal IntervalMinUs<<k for some k <= 31.
	IntervalMinUs uint32
	IntervalMaxUs uint32

	// WakeupInterval is how long the radio stays in LISTEN before the
	// timer would naturally return it to SLEEP, absent further activity.
	WakeupInterval time.Duration

	// QueueCapacity is the transmit queue's bound (Q in the spec; default 128).
	QueueCapacity int
	// MailboxDepth bounds the event-loop mailbox.
	MailboxDepth int

	// CSMAMaxAttempts/RetryMaxRetries size the two opaque retry layers.
	CSMAMaxAttempts int
	RetryMaxRetries int

	// MaxLinkRetransmitReposts bounds how many times a LINK_RETRANSMIT
	// message may repost itself while waiting for the radio to free up,
	// guarding against mailbox saturation from a stuck retry.
	MaxLinkRetransmitReposts int
}

// DefaultConfig returns reasonable leaf-node defaults: a 0.5s..64s backoff
// range (500ms<<7 == 64s), a 50ms post-beacon listen window, and a 128-deep
// transmit queue.
func DefaultConfig() Config {
	return Config{
		IntervalMinUs:            500_000,
		IntervalMaxUs:            64_000_000,
		WakeupInterval:           50 * time.Millisecond,
		QueueCapacity:            128,
		MailboxDepth:             64,
		CSMAMaxAttempts:          4,
		RetryMaxRetries:          3,
		MaxLinkRetransmitReposts: 5,
	}
}
