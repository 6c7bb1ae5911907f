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

import (
	"github.com/leafmac/leafmac/energy"
	"github.com/leafmac/leafmac/macerr"
	"github.com/leafmac/leafmac/radio"
)

// msgKind enumerates the mailbox message kinds. This splits the spec's
// single "DUTY_EVENT" name into two internal kinds (msgTimerFired,
// msgDutyEvent) because the transition table's "timer" and "EVENT" rows
// are not distinguishable by state alone (both can observe e.g. state
// SLEEP) -- see DESIGN.md.
type msgKind uint8

const (
	msgRadioEvent msgKind = iota
	msgTimerFired
	msgDutyEvent
	msgCheckQueue
	msgRemoveQueue
	msgLinkRetransmit
	msgNetSend
	msgNetSet
	msgNetGet
	msgEnergySnapshot
)

type message struct {
	kind msgKind

	// msgRadioEvent
	radioEvt radio.Event

	// msgTimerFired: generation filters stale fires after cancel+rearm.
	timerGen uint64

	// msgLinkRetransmit
	repostCount int

	// msgNetSend
	frame []byte

	// msgNetSet / msgNetGet
	opt Option
	val int32

	reply       chan setReply
	replyGet    chan getReply
	energyReply chan energy.Snapshot
}

type setReply struct {
	status macerr.Status
}

type getReply struct {
	val    int32
	status macerr.Status
}
