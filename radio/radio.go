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

// Package radio defines the trait the duty-cycling core consumes to drive an
// IEEE 802.15.4-class radio driver. The core never talks to silicon or a
// radio simulator directly; it holds a Driver and an EventKind vocabulary
// that any concrete driver (simradio, or a real SPI/transceiver binding)
// must honor.
package radio

import "github.com/leafmac/leafmac/macerr"

// PowerState is the radio power mode the core can request.
type PowerState uint8

const (
	StateSleep PowerState = iota
	StateIdle
	StateRx
)

func (s PowerState) String() string {
	switch s {
	case StateSleep:
		return "SLEEP"
	case StateIdle:
		return "IDLE"
	case StateRx:
		return "RX"
	default:
		return "INVALID"
	}
}

// EventKind enumerates the completions a Driver reports through its event
// callback. ISR and RxPending are the only kinds expected from true
// interrupt context; the rest may be posted from the driver's soft-IRQ
// context once a transmission or reception concludes.
type EventKind uint8

const (
	EventISR EventKind = iota
	EventRxPending
	EventRxComplete
	EventTxComplete
	EventTxCompletePending
	EventTxMediumBusy
	EventTxNoAck
)

func (k EventKind) String() string {
	switch k {
	case EventISR:
		return "ISR"
	case EventRxPending:
		return "RX_PENDING"
	case EventRxComplete:
		return "RX_COMPLETE"
	case EventTxComplete:
		return "TX_COMPLETE"
	case EventTxCompletePending:
		return "TX_COMPLETE_PENDING"
	case EventTxMediumBusy:
		return "TX_MEDIUM_BUSY"
	case EventTxNoAck:
		return "TX_NOACK"
	default:
		return "INVALID"
	}
}

// Event is what a Driver hands back through the callback registered at Init.
// Frame is only populated for EventRxComplete.
type Event struct {
	Kind  EventKind
	Frame []byte
}

// EventHandler receives driver events. The core's implementation does no
// more than post a mailbox message; it must not block. It does not set
// irq_pending: the worker sets that flag while it runs Driver.ISR for a
// dispatched ISR message and clears it as soon as ISR returns.
type EventHandler func(Event)

// Option identifies a pass-through driver setting reachable via the
// upward NET_SET/NET_GET messages.
type Option int

const (
	// OptionShortAddressMode forces 2-byte short source addressing, set
	// automatically when duty cycling is enabled.
	OptionShortAddressMode Option = iota
	// OptionChannel and anything beyond are opaque to the core; it merely
	// forwards SET/GET calls the driver doesn't reserve for itself.
	OptionChannel
)

// Driver is the opaque handle the state machine drives. Every method
// returns synchronously; outcomes of Send/Resend/SendBeacon arrive later
// through the EventHandler registered at Init.
type Driver interface {
	// Init installs the event callback and brings the radio to a known
	// power-off state. Returns a negative Status if the driver cannot be
	// brought up (e.g. missing hardware, thread-creation failure).
	Init(handler EventHandler) macerr.Status

	SetPowerState(state PowerState) macerr.Status
	SetShortAddressMode(enabled bool) macerr.Status

	// SetOption/GetOption pass through configuration not owned by the
	// duty-cycle core itself.
	SetOption(opt Option, value int32) macerr.Status
	GetOption(opt Option) (int32, macerr.Status)

	// ISR runs the driver's interrupt-bottom-half body. Called by the core
	// in response to a RADIO_ISR mailbox message, never from true
	// interrupt context.
	ISR()

	// Send transmits frame. release indicates the caller is done with the
	// buffer once Send returns (the core always passes false: it keeps the
	// queue entry alive until TX_COMPLETE).
	Send(frame []byte, release bool) macerr.Status
	// Resend re-transmits a frame already handed to Send, for the retry
	// helper's benefit.
	Resend(frame []byte) macerr.Status
	SendBeacon() macerr.Status
}
