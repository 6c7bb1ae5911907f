// Copyright (c) 2022-2024, The leafmac Authors.
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

// Package energy accounts for how long a single leaf's radio spends in
// each power state, and converts that into an estimated energy cost. It
// replaces the network-wide, per-node analyser the consumption model was
// originally built for: there is exactly one radio here, so the map of
// node IDs collapses into one running total.
package energy

import (
	"fmt"
	"sort"

	"github.com/leafmac/leafmac/logger"
	"github.com/leafmac/leafmac/radio"
)

// Default consumption figures for an STM32WB55RG at 3.3V: kilowatts per
// state, time in microseconds, resulting energy in millijoules.
const (
	DisabledConsumption float64 = 0.00000011
	SleepConsumption    float64 = 0.00001485
	RxConsumption       float64 = 0.00001485
	TxConsumption       float64 = 0.00001716
)

// phase is the accounting bucket a radio.PowerState (plus the two
// transmit/receive sub-states the MAC core distinguishes) falls into.
type phase int

const (
	phaseDisabled phase = iota
	phaseSleep
	phaseRx
	phaseTx
	numPhases
)

func (p phase) String() string {
	switch p {
	case phaseDisabled:
		return "disabled"
	case phaseSleep:
		return "sleep"
	case phaseRx:
		return "rx"
	case phaseTx:
		return "tx"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time readout of accumulated time and estimated
// energy, one entry per phase.
type Snapshot struct {
	Timestamp   uint64
	SpentUs     [numPhases]uint64
	ConsumedMJ  [numPhases]float64
	TotalMJ     float64
}

// Tracker accumulates the time a single radio spends disabled, asleep,
// receiving, and transmitting, and periodically snapshots it. It is not
// safe for concurrent use; the mac.Core that owns the radio calls it from
// its single worker goroutine only.
type Tracker struct {
	current   phase
	since     uint64
	spentUs   [numPhases]uint64
	history   []Snapshot
}

// NewTracker creates a tracker starting in the disabled phase at time 0.
func NewTracker() *Tracker {
	return &Tracker{history: make([]Snapshot, 0, 256)}
}

// SetPowerState records a transition away from the current phase (folding
// its elapsed time into spentUs) and into the one radio.PowerState state
// maps to. StateIdle and StateRx both count as the rx phase; callers that
// are transmitting use EnterTx instead.
func (t *Tracker) SetPowerState(state radio.PowerState, timestampUs uint64) {
	switch state {
	case radio.StateSleep:
		t.transition(phaseSleep, timestampUs)
	case radio.StateIdle:
		t.transition(phaseRx, timestampUs)
	case radio.StateRx:
		t.transition(phaseRx, timestampUs)
	default:
		logger.Panicf("energy: unknown radio power state %v", state)
	}
}

// EnterTx accounts the time since the last transition and marks the radio
// as transmitting from timestampUs.
func (t *Tracker) EnterTx(timestampUs uint64) {
	t.transition(phaseTx, timestampUs)
}

// EnterDisabled accounts elapsed time and marks the radio as powered off
// (duty cycling disabled, before the first SLEEP transition).
func (t *Tracker) EnterDisabled(timestampUs uint64) {
	t.transition(phaseDisabled, timestampUs)
}

func (t *Tracker) transition(to phase, timestampUs uint64) {
	if timestampUs >= t.since {
		t.spentUs[t.current] += timestampUs - t.since
	}
	t.current = to
	t.since = timestampUs
}

func consumption(p phase) float64 {
	switch p {
	case phaseDisabled:
		return DisabledConsumption
	case phaseSleep:
		return SleepConsumption
	case phaseRx:
		return RxConsumption
	case phaseTx:
		return TxConsumption
	default:
		return 0
	}
}

// Snapshot folds in time up to timestampUs (without committing a phase
// change) and records an entry in the tracker's history, which Snapshots
// returns.
func (t *Tracker) Snapshot(timestampUs uint64) Snapshot {
	spent := t.spentUs
	if timestampUs >= t.since {
		spent[t.current] += timestampUs - t.since
	}

	s := Snapshot{Timestamp: timestampUs}
	for p := phase(0); p < numPhases; p++ {
		s.SpentUs[p] = spent[p]
		mj := float64(spent[p]) * consumption(p)
		s.ConsumedMJ[p] = mj
		s.TotalMJ += mj
	}
	t.history = append(t.history, s)
	return s
}

// History returns every snapshot taken so far, oldest first.
func (t *Tracker) History() []Snapshot {
	return t.history
}

// Reset discards accumulated history, keeping the current phase/timestamp.
func (t *Tracker) Reset() {
	t.history = t.history[:0]
}

// Report renders the sorted per-phase totals from the latest snapshot as
// a human-readable table, the single-leaf analogue of the network-wide
// energy report the teacher writes to a results file.
func Report(s Snapshot) string {
	phases := make([]phase, 0, numPhases)
	for p := phase(0); p < numPhases; p++ {
		phases = append(phases, p)
	}
	sort.Slice(phases, func(i, j int) bool { return phases[i] < phases[j] })

	out := fmt.Sprintf("energy at t=%dus (total %.6f mJ)\n", s.Timestamp, s.TotalMJ)
	for _, p := range phases {
		out += fmt.Sprintf("  %-9s %10dus  %.6f mJ\n", p, s.SpentUs[p], s.ConsumedMJ[p])
	}
	return out
}
