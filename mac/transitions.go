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
	"time"

	"github.com/leafmac/leafmac/logger"
	"github.com/leafmac/leafmac/macerr"
	"github.com/leafmac/leafmac/prng"
	"github.com/leafmac/leafmac/queue"
	"github.com/leafmac/leafmac/radio"
)

// enable drives INIT -> SLEEP: arms a randomized first wake, forces short
// addressing, and resets the governor so a disable/enable round trip
// always lands back at shift=0 (§8's round-trip property).
func (c *Core) enable() macerr.Status {
	if c.dutyCycling {
		return macerr.StatusOK // already enabled: idempotent.
	}
	if status := c.driver.SetShortAddressMode(true); !status.Ok() {
		return status
	}
	c.dutyCycling = true
	c.gov.Reset()
	c.state = StateSleep
	c.radioState = radio.StateSleep
	_ = c.driver.SetPowerState(radio.StateSleep)
	c.energy.SetPowerState(radio.StateSleep, c.nowUs())
	c.arm(prng.UniformDuration(time.Duration(c.cfg.IntervalMaxUs) * time.Microsecond))
	return macerr.StatusOK
}

// disable drives the current state -> INIT: the core becomes inert,
// passing messages straight to the driver without touching the duty cycle.
func (c *Core) disable() macerr.Status {
	c.cancelTimer()
	c.dutyCycling = false
	c.state = StateInit
	c.radioState = radio.StateSleep
	c.radioBusy = false
	c.irqPending = false
	c.beaconPending = false
	c.energy.EnterDisabled(c.nowUs())
	return c.driver.SetPowerState(radio.StateSleep)
}

// enterSleep is the EVENT action for SLEEP, also reused by every table
// entry whose target state is SLEEP (TX_COMPLETE/backoff, retry
// exhaustion, REMOVE_QUEUE-drained, and LISTEN-with-empty-queue): arm the
// governor's current interval and idle the radio down.
func (c *Core) enterSleep() {
	c.radioState = radio.StateSleep
	_ = c.driver.SetPowerState(radio.StateSleep)
	c.energy.SetPowerState(radio.StateSleep, c.nowUs())
	c.armUs(c.gov.Current())
}

// enterListen is the EVENT action for LISTEN, also reused whenever the
// table lands in LISTEN (TX_COMPLETE_PENDING, RX_COMPLETE with
// additional_wakeup): idle the radio up and extend the listen window.
func (c *Core) enterListen() {
	c.radioState = radio.StateIdle
	_ = c.driver.SetPowerState(radio.StateIdle)
	c.energy.SetPowerState(radio.StateIdle, c.nowUs())
	c.arm(c.cfg.WakeupInterval)
}

// handleTimerFired implements the spec's "timer" trigger rows. Which row
// applies is determined by the state the timer fire observes.
func (c *Core) handleTimerFired() {
	switch c.state {
	case StateSleep:
		if c.queue.Empty() {
			c.state = StateTxBeacon
		} else {
			c.state = StateTxDataBeforeBeacon
		}
		c.postDutyEvent()
	case StateListen:
		if !c.queue.Empty() {
			c.state = StateTxData
			c.armUs(c.gov.Current())
			c.postCheckQueue()
		} else {
			c.state = StateSleep
			c.postDutyEvent()
		}
	case StateTxData:
		// "sleep ends while transmitting data": a pure state change, no I/O
		// (see DESIGN.md for the §9 ambiguity this resolves).
		c.state = StateTxDataBeforeBeacon
	default:
		// Stray/stale timer fire for a state not driven by the timer
		// (INIT, TX_BEACON, TX_DATA_BEFORE_BEACON); ignored.
	}
}

// handleDutyEvent implements the "EVENT" trigger rows: the action taken
// immediately after landing in TX_BEACON/TX_DATA_BEFORE_BEACON/LISTEN/SLEEP
// by way of a timer-driven transition.
func (c *Core) handleDutyEvent() {
	switch c.state {
	case StateTxBeacon:
		c.transmitBeacon()
	case StateTxDataBeforeBeacon:
		c.transmitHead()
	case StateListen:
		c.enterListen()
	case StateSleep:
		c.enterSleep()
	default:
		logger.Warnf("mac: DUTY_EVENT in unexpected state %v", c.state)
	}
}

// transmitBeacon launches a beacon if the safe-transmit policy allows it;
// otherwise defers it via beacon_pending, to be drained after the next ISR
// completes with the radio idle.
func (c *Core) transmitBeacon() {
	if !c.isSafeToTransmit() {
		c.beaconPending = true
		return
	}
	c.beaconPending = false
	c.radioBusy = true
	c.sendingBeacon = true
	c.retryRexmit = false
	c.energy.EnterTx(c.nowUs())
	c.captureTx(nil)
	status := c.driver.SendBeacon()
	if !status.Ok() {
		c.radioBusy = false
		c.handleTxFailure(radio.EventTxMediumBusy)
	}
}

// transmitHead launches the queue head if the safe-transmit policy allows
// it. A no-op on an empty queue or when unsafe; the next CHECK_QUEUE,
// REMOVE_QUEUE, or ISR completion will retry.
func (c *Core) transmitHead() {
	if c.queue.Empty() || !c.isSafeToTransmit() {
		return
	}
	entry := c.queue.Head()
	c.radioBusy = true
	c.sendingBeacon = false
	c.energy.EnterTx(c.nowUs())
	c.captureTx(entry.Frame)
	var status macerr.Status
	if c.retryRexmit {
		status = c.driver.Resend(entry.Frame)
	} else {
		status = c.driver.Send(entry.Frame, false)
	}
	if !status.Ok() {
		c.radioBusy = false
		c.handleTxFailure(radio.EventTxMediumBusy)
	}
}

// tryDrainBeaconPending fires a deferred beacon once the condition that
// deferred it has cleared, per §4.E's "drained once after the next ISR
// completes with radio idle."
func (c *Core) tryDrainBeaconPending() {
	if c.beaconPending && c.isSafeToTransmit() {
		c.transmitBeacon()
	}
}

func (c *Core) handleRadioEvent(evt radio.Event) {
	switch evt.Kind {
	case radio.EventISR:
		c.irqPending = true
		c.driver.ISR()
		c.irqPending = false
		c.tryDrainBeaconPending()
	case radio.EventRxPending:
		c.additionalWakeup = true
	case radio.EventRxComplete:
		c.handleRxComplete(evt.Frame)
	case radio.EventTxComplete:
		c.handleTxComplete()
	case radio.EventTxCompletePending:
		c.handleTxCompletePending()
	case radio.EventTxMediumBusy, radio.EventTxNoAck:
		c.handleTxFailure(evt.Kind)
	default:
		logger.Warnf("mac: unknown radio event kind %v", evt.Kind)
	}
}

func (c *Core) handleRxComplete(frame []byte) {
	c.cancelTimer()
	c.captureRx(frame)
	if c.onReceive != nil {
		c.onReceive(frame)
	}

	pending := c.additionalWakeup
	c.additionalWakeup = false

	switch {
	case pending:
		c.state = StateListen
		c.enterListen()
	case c.queue.Empty():
		c.state = StateSleep
		c.enterSleep()
	default:
		c.state = StateTxData
		c.armUs(c.gov.Current())
		if c.isSafeToTransmit() {
			c.transmitHead()
		}
	}
}

func (c *Core) handleTxComplete() {
	c.radioBusy = false
	c.csmaLayer.SendSucceeded()
	c.retryLayer.SendSucceeded()
	c.retryRexmit = false

	switch c.state {
	case StateInit:
		if !c.queue.Empty() {
			c.releaseFrame(c.queue.PopHead())
		}
	case StateTxBeacon:
		c.gov.Backoff()
		c.cancelTimer()
		c.state = StateSleep
		c.enterSleep()
	case StateTxData, StateTxDataBeforeBeacon:
		if !c.queue.Empty() {
			c.releaseFrame(c.queue.PopHead())
			c.gov.Reset()
			c.postRemoveQueue()
		}
		// Else: TX_COMPLETE observed with an already-empty queue while in a
		// TX_DATA* state. The spec flags this path as ambiguous (§9) and
		// asks implementers to decide no-op vs error; this core treats it
		// as a harmless no-op (nothing to pop, nothing to requeue).
	default:
		logger.Panicf("mac: TX_COMPLETE in unexpected state %v", c.state)
	}
}

func (c *Core) handleTxCompletePending() {
	logger.AssertTrue(c.state == StateTxBeacon)
	c.radioBusy = false
	c.csmaLayer.SendSucceeded()
	c.retryLayer.SendSucceeded()
	c.retryRexmit = false
	c.gov.Reset()
	c.cancelTimer()
	c.state = StateListen
	c.enterListen()
}

// handleTxFailure implements both the CSMA-busy and no-ack branches of
// §4.B: the opaque helpers decide whether a retry follows; the core only
// acts on the resulting edge.
func (c *Core) handleTxFailure(kind radio.EventKind) {
	busy := kind == radio.EventTxMediumBusy
	var retry bool
	if busy {
		retry = c.csmaLayer.SendFailed()
	} else {
		c.csmaLayer.SendSucceeded()
		retry = c.retryLayer.SendFailed()
	}

	if retry {
		c.retryRexmit = true
		c.postLinkRetransmit(0)
		return // radio_busy stays set; awaiting the next completion.
	}

	// Retries exhausted: this is a permanent failure for the in-flight frame.
	c.radioBusy = false
	c.csmaLayer.SendSucceeded()
	c.retryLayer.SendSucceeded()
	c.retryRexmit = false

	switch c.state {
	case StateInit:
		// Pass-through transmit (duty cycling disabled, or a frame sent
		// immediately on SND while still INIT): just release the frame,
		// same as the TX_COMPLETE path for this state.
		if !c.queue.Empty() {
			c.releaseFrame(c.queue.PopHead())
		}
	case StateTxBeacon:
		c.cancelTimer()
		c.state = StateSleep
		c.enterSleep()
	case StateTxData, StateTxDataBeforeBeacon:
		if !c.queue.Empty() {
			c.releaseFrame(c.queue.PopHead())
		}
		c.postRemoveQueue()
	default:
		logger.Panicf("mac: TX failure event in unexpected state %v", c.state)
	}
}

// handleLinkRetransmit reissues the in-flight frame (or beacon). If the
// radio is momentarily unavailable it reposts itself, bounded by
// MaxLinkRetransmitReposts so a flood of retries cannot starve the rest of
// the mailbox.
func (c *Core) handleLinkRetransmit(repostCount int) {
	// radio_busy stays set for the frame being retried, so only a pending
	// ISR or an active reception makes the radio unavailable here.
	if c.irqPending || c.radioState == radio.StateRx {
		if repostCount+1 >= c.cfg.MaxLinkRetransmitReposts {
			logger.Warnf("mac: LINK_RETRANSMIT reposts exhausted, dropping in-flight frame")
			c.radioBusy = false
			c.retryRexmit = false
			if !c.sendingBeacon && !c.queue.Empty() {
				c.releaseFrame(c.queue.PopHead())
			}
			c.postRemoveQueue()
			return
		}
		c.postLinkRetransmit(repostCount + 1)
		return
	}

	c.radioBusy = true
	var status macerr.Status
	if c.sendingBeacon {
		status = c.driver.SendBeacon()
	} else if !c.queue.Empty() {
		entry := c.queue.Head()
		c.captureTx(entry.Frame)
		status = c.driver.Resend(entry.Frame)
	} else {
		c.radioBusy = false
		return
	}
	if !status.Ok() {
		c.radioBusy = false
		c.handleTxFailure(radio.EventTxMediumBusy)
	}
}

func (c *Core) handleCheckQueue() {
	if c.queue.Empty() {
		return // repeated CHECK_QUEUE on an empty queue is a no-op, per §8.
	}
	if c.state == StateTxData {
		c.transmitHead()
	}
}

func (c *Core) handleRemoveQueue() {
	switch {
	case c.state == StateTxDataBeforeBeacon && c.queue.Empty():
		c.state = StateTxBeacon
		c.transmitBeacon()
	case c.state == StateTxData && c.queue.Empty():
		c.cancelTimer()
		c.state = StateSleep
		c.enterSleep()
	case !c.queue.Empty() && c.isSafeToTransmit():
		c.transmitHead()
	}
	// Otherwise: queue non-empty but the radio is momentarily unavailable;
	// the next ISR completion or CHECK_QUEUE will retry.
}

// SND enqueues frame for transmission. Returns StatusQueueFull if the
// queue is already at capacity (the caller's frame is dropped, no state
// change — §7's queue-overflow error path).
func (c *Core) SND(frame []byte) macerr.Status {
	reply := make(chan setReply, 1)
	c.postExternal(message{kind: msgNetSend, frame: frame, reply: reply})
	return (<-reply).status
}

func (c *Core) handleNetSend(frame []byte) macerr.Status {
	ok := c.queue.Enqueue(queue.Entry{Kind: queue.KindData, Frame: frame})
	if !ok {
		return macerr.StatusQueueFull
	}
	switch {
	case c.state == StateInit:
		c.transmitHead()
	case c.state == StateSleep && c.isSafeToTransmit():
		c.cancelTimer()
		c.state = StateTxData
		c.transmitHead()
	}
	return macerr.StatusOK
}

// SET forwards a NET_SET message and waits for its synchronous ack.
func (c *Core) SET(opt Option, val int32) macerr.Status {
	reply := make(chan setReply, 1)
	c.postExternal(message{kind: msgNetSet, opt: opt, val: val, reply: reply})
	return (<-reply).status
}

// GET forwards a NET_GET message and waits for its synchronous ack.
func (c *Core) GET(opt Option) (int32, macerr.Status) {
	reply := make(chan getReply, 1)
	c.postExternal(message{kind: msgNetGet, opt: opt, replyGet: reply})
	r := <-reply
	return r.val, r.status
}

func (c *Core) handleNetSet(opt Option, val int32) macerr.Status {
	switch opt {
	case OptDutyCycling:
		if val != 0 {
			return c.enable()
		}
		return c.disable()
	case OptSourceAddressLength:
		return macerr.StatusInvalidArgs // fixed at 2 bytes during duty cycling.
	default:
		return c.driver.SetOption(radio.Option(opt), val)
	}
}

func (c *Core) handleNetGet(opt Option) (int32, macerr.Status) {
	switch opt {
	case OptDutyCycling:
		if c.dutyCycling {
			return 1, macerr.StatusOK
		}
		return 0, macerr.StatusOK
	case OptSourceAddressLength:
		if c.dutyCycling {
			return 2, macerr.StatusOK
		}
		return c.driver.GetOption(radio.Option(opt))
	default:
		return c.driver.GetOption(radio.Option(opt))
	}
}

// State returns the current duty-cycle state, for tests and diagnostics.
func (c *Core) State() State {
	return c.state
}

