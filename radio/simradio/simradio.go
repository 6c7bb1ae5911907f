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

// Package simradio is an in-memory radio.Driver, standing in for silicon
// when the core runs under test or inside the leafsimd simulate harness.
// Outcomes (clean success, medium-busy, no-ack, pending-data-after-beacon)
// are drawn from a configurable ideal channel model: fixed per-category
// probabilities and a fixed transmission duration, no propagation or
// interference modeling. Each transmission's outcome is posted back to the
// registered EventHandler from its own goroutine, and Inject/DeliverRx post
// from the caller's goroutine, so events from different sources are not
// ordered relative to one another.
package simradio

import (
	"sync"
	"time"

	"github.com/leafmac/leafmac/logger"
	"github.com/leafmac/leafmac/macerr"
	"github.com/leafmac/leafmac/prng"
	"github.com/leafmac/leafmac/radio"
)

// Params configures the odds simradio uses to decide the outcome of a
// transmission attempt. They sum to at most 1; whatever probability mass
// remains is a clean TX_COMPLETE.
type Params struct {
	// TxDuration is how long after Send/Resend/SendBeacon the completion
	// event is posted.
	TxDuration time.Duration
	// MediumBusyProb is the chance a Send/Resend observes channel contention.
	MediumBusyProb float64
	// NoAckProb is the chance a Send/Resend reaches the air but draws no ack.
	NoAckProb float64
	// PendingDataProb is the chance a SendBeacon's ack indicates the parent
	// holds buffered data for this leaf (TX_COMPLETE_PENDING).
	PendingDataProb float64
	// RxAfterBeaconProb is the chance that, after a beacon or data frame
	// completes cleanly, the model also synthesizes an unsolicited
	// RX_COMPLETE shortly after (simulating a parent response frame).
	RxAfterBeaconProb float64
}

// DefaultParams favors a clean channel, matching a lightly loaded network.
func DefaultParams() Params {
	return Params{
		TxDuration:        2 * time.Millisecond,
		MediumBusyProb:    0.02,
		NoAckProb:         0.03,
		PendingDataProb:   0.0,
		RxAfterBeaconProb: 0.0,
	}
}

// Radio is a radio.Driver backed by simulated, timer-delayed outcomes.
type Radio struct {
	params Params

	mu           sync.Mutex
	handler      radio.EventHandler
	state        radio.PowerState
	shortAddr    bool
	lastFrame    []byte
	wasBeacon    bool
	shuttingDown bool
}

var _ radio.Driver = (*Radio)(nil)

// New creates a simulated radio using params for its outcome odds.
func New(params Params) *Radio {
	return &Radio{params: params, state: radio.StateSleep}
}

func (r *Radio) Init(handler radio.EventHandler) macerr.Status {
	if handler == nil {
		return macerr.StatusInvalidArgs
	}
	r.mu.Lock()
	r.handler = handler
	r.state = radio.StateSleep
	r.mu.Unlock()
	return macerr.StatusOK
}

func (r *Radio) SetPowerState(state radio.PowerState) macerr.Status {
	r.mu.Lock()
	r.state = state
	r.mu.Unlock()
	return macerr.StatusOK
}

func (r *Radio) SetShortAddressMode(enabled bool) macerr.Status {
	r.mu.Lock()
	r.shortAddr = enabled
	r.mu.Unlock()
	return macerr.StatusOK
}

func (r *Radio) SetOption(opt radio.Option, value int32) macerr.Status {
	return macerr.StatusOK
}

func (r *Radio) GetOption(opt radio.Option) (int32, macerr.Status) {
	if opt == radio.OptionShortAddressMode {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.shortAddr {
			return 1, macerr.StatusOK
		}
		return 0, macerr.StatusOK
	}
	return 0, macerr.StatusOK
}

// ISR is a no-op for simradio: outcomes are posted directly by the
// transmission goroutines below rather than drained from a pending queue.
func (r *Radio) ISR() {}

func (r *Radio) Send(frame []byte, release bool) macerr.Status {
	return r.transmit(frame, false)
}

func (r *Radio) Resend(frame []byte) macerr.Status {
	return r.transmit(frame, false)
}

func (r *Radio) SendBeacon() macerr.Status {
	return r.transmit(nil, true)
}

func (r *Radio) transmit(frame []byte, beacon bool) macerr.Status {
	r.mu.Lock()
	if r.state == radio.StateRx {
		r.mu.Unlock()
		return macerr.StatusInvalidState
	}
	r.state = radio.StateIdle
	r.lastFrame = frame
	r.wasBeacon = beacon
	r.mu.Unlock()

	go r.completeAfter(r.params.TxDuration, frame, beacon)
	return macerr.StatusOK
}

func (r *Radio) completeAfter(d time.Duration, frame []byte, beacon bool) {
	if d > 0 {
		time.Sleep(d)
	}

	roll := prng.UnitFloat()
	switch {
	case roll < r.params.MediumBusyProb:
		r.post(radio.Event{Kind: radio.EventTxMediumBusy})
		return
	case roll < r.params.MediumBusyProb+r.params.NoAckProb:
		r.post(radio.Event{Kind: radio.EventTxNoAck})
		return
	}

	if beacon && prng.UnitFloat() < r.params.PendingDataProb {
		r.post(radio.Event{Kind: radio.EventTxCompletePending})
	} else {
		r.post(radio.Event{Kind: radio.EventTxComplete})
	}

	if prng.UnitFloat() < r.params.RxAfterBeaconProb {
		r.post(radio.Event{Kind: radio.EventRxComplete, Frame: frame})
	}
}

// Inject posts evt to the registered handler directly, bypassing the
// probabilistic outcome model entirely. The REPL and scenario scripts use
// this to drive a leaf through an exact, repeatable sequence of radio
// events (for example replaying one of the documented end-to-end traces)
// rather than waiting on randomized timing.
func (r *Radio) Inject(evt radio.Event) {
	r.post(evt)
}

// DeliverRx lets a test or scenario script inject an unsolicited reception,
// as if a parent had sent a frame down to this leaf unprompted.
func (r *Radio) DeliverRx(frame []byte, pending bool) {
	if pending {
		r.post(radio.Event{Kind: radio.EventRxPending})
	}
	r.post(radio.Event{Kind: radio.EventRxComplete, Frame: frame})
}

func (r *Radio) post(evt radio.Event) {
	r.mu.Lock()
	h := r.handler
	r.mu.Unlock()
	if h == nil {
		logger.Warnf("simradio: dropping event %v, no handler registered", evt.Kind)
		return
	}
	h(evt)
}
