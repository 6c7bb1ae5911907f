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

// Package mac implements the duty-cycling MAC adaptation layer: the
// finite state machine that decides when the radio wakes, beacons, drains
// the transmit queue, and sleeps again, plus the single-threaded event
// loop that serializes everything driving it.
package mac

import (
	"sync"
	"time"

	"github.com/leafmac/leafmac/csma"
	"github.com/leafmac/leafmac/energy"
	"github.com/leafmac/leafmac/governor"
	"github.com/leafmac/leafmac/logger"
	"github.com/leafmac/leafmac/macerr"
	"github.com/leafmac/leafmac/pcapdump"
	"github.com/leafmac/leafmac/progctx"
	"github.com/leafmac/leafmac/prng"
	"github.com/leafmac/leafmac/queue"
	"github.com/leafmac/leafmac/radio"
)

// ReceiveFunc is how the core delivers a completed reception upward
// (the RCV message in §6's external interface).
type ReceiveFunc func(frame []byte)

// Core is the single Core struct the design notes recommend in place of
// the source's file-scope globals: every piece of mutable state the duty
// cycle depends on is a field here, and only the worker goroutine touches
// it (aside from the narrow, explicitly-synchronized exceptions called out
// inline below).
type Core struct {
	cfg    Config
	driver radio.Driver

	queue      *queue.TransmitQueue
	gov        *governor.Governor
	csmaLayer  csma.Layer
	retryLayer csma.Layer
	pcap       *pcapdump.Writer
	energy     *energy.Tracker
	onReceive  ReceiveFunc

	mailbox chan message

	startedAt time.Time

	// state machine fields; worker-owned.
	state       State
	dutyCycling bool
	radioState  radio.PowerState

	radioBusy        bool
	irqPending       bool
	beaconPending    bool
	additionalWakeup bool
	sendingBeacon    bool
	retryRexmit      bool

	timer    *time.Timer
	timerGen uint64

	startOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a Core around driver, using cfg for its timing/capacity
// knobs. onReceive may be nil if the caller has no upward consumer (tests).
func New(driver radio.Driver, cfg Config, onReceive ReceiveFunc) *Core {
	logger.AssertNotNil(driver)
	c := &Core{
		cfg:        cfg,
		driver:     driver,
		queue:      queue.New(cfg.QueueCapacity),
		gov:        governor.New(cfg.IntervalMinUs, cfg.IntervalMaxUs),
		csmaLayer:  csma.NewCSMALayer(cfg.CSMAMaxAttempts),
		retryLayer: csma.NewRetryLayer(cfg.RetryMaxRetries),
		energy:     energy.NewTracker(),
		onReceive:  onReceive,
		mailbox:    make(chan message, cfg.MailboxDepth),
		state:      StateInit,
		radioState: radio.StateSleep,
		startedAt:  time.Now(),
	}
	return c
}

// EnergySnapshot reports accumulated per-phase radio time and estimated
// energy since the core started. Like SND/SET/GET this crosses into the
// worker goroutine via the mailbox, since the tracker is worker-owned.
func (c *Core) EnergySnapshot() energy.Snapshot {
	reply := make(chan energy.Snapshot, 1)
	c.postExternal(message{kind: msgEnergySnapshot, energyReply: reply})
	return <-reply
}

func (c *Core) nowUs() uint64 {
	return uint64(time.Since(c.startedAt).Microseconds())
}

// SetCapture attaches a pcap writer; every frame handed to or received
// from the radio is appended to it. Nil disables capture (the default).
func (c *Core) SetCapture(w *pcapdump.Writer) {
	c.pcap = w
}

// Start initializes the driver and launches the event-loop goroutine. ctx
// governs the worker's lifetime the way it governs the rest of the module's
// background tasks.
func (c *Core) Start(ctx *progctx.ProgCtx) macerr.Status {
	status := c.driver.Init(c.onRadioEvent)
	if !status.Ok() {
		return status
	}
	c.startOnce.Do(func() {
		ctx.WaitAdd(progctx.RoleCore, 1)
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			defer ctx.WaitDone(progctx.RoleCore)
			c.run(ctx)
		}()
	})
	return macerr.StatusOK
}

// Wait blocks until the event loop has exited.
func (c *Core) Wait() {
	c.wg.Wait()
}

func (c *Core) run(ctx *progctx.ProgCtx) {
	done := ctx.Done()
	for {
		select {
		case <-done:
			return
		case msg := <-c.mailbox:
			c.dispatch(msg)
		}
	}
}

func (c *Core) dispatch(msg message) {
	switch msg.kind {
	case msgRadioEvent:
		c.handleRadioEvent(msg.radioEvt)
	case msgTimerFired:
		if msg.timerGen != c.timerGen {
			return // stale fire from a timer that was since cancelled/rearmed.
		}
		c.handleTimerFired()
	case msgDutyEvent:
		c.handleDutyEvent()
	case msgCheckQueue:
		c.handleCheckQueue()
	case msgRemoveQueue:
		c.handleRemoveQueue()
	case msgLinkRetransmit:
		c.handleLinkRetransmit(msg.repostCount)
	case msgNetSend:
		msg.reply <- setReply{status: c.handleNetSend(msg.frame)}
	case msgNetSet:
		msg.reply <- setReply{status: c.handleNetSet(msg.opt, msg.val)}
	case msgNetGet:
		v, status := c.handleNetGet(msg.opt)
		msg.replyGet <- getReply{val: v, status: status}
	case msgEnergySnapshot:
		msg.energyReply <- c.energy.Snapshot(c.nowUs())
	default:
		logger.Panicf("mac: unknown mailbox message kind %d", msg.kind)
	}
}

// postExternal is used by goroutines other than the worker itself (timer
// callbacks, the radio driver's event callback, and the upward SND/SET/GET
// API). It blocks if the mailbox is full, which is fine: those callers are
// not the one draining it.
func (c *Core) postExternal(msg message) {
	c.mailbox <- msg
}

// postSelf is used by the worker to re-post a message to its own mailbox
// (the table's "post EVENT" / "post CHECK_QUEUE" / "post REMOVE_QUEUE"
// actions). It never blocks: the worker is the sole consumer, so a full
// mailbox here would deadlock it against itself. A drop only happens if
// the mailbox is saturated, which should not occur at the configured
// depths; it is logged loudly since it silently breaks forward progress.
func (c *Core) postSelf(msg message) {
	select {
	case c.mailbox <- msg:
	default:
		logger.Errorf("mac: mailbox saturated, dropping self-posted message kind %d", msg.kind)
	}
}

func (c *Core) postDutyEvent()   { c.postSelf(message{kind: msgDutyEvent}) }
func (c *Core) postCheckQueue()  { c.postSelf(message{kind: msgCheckQueue}) }
func (c *Core) postRemoveQueue() { c.postSelf(message{kind: msgRemoveQueue}) }

func (c *Core) postLinkRetransmit(repostCount int) {
	c.postSelf(message{kind: msgLinkRetransmit, repostCount: repostCount})
}

// onRadioEvent is the EventHandler registered with the driver at Start.
// Per §5's concurrency model it does nothing but enqueue: flags and state
// are touched only by the worker once the message is dispatched.
func (c *Core) onRadioEvent(evt radio.Event) {
	c.postExternal(message{kind: msgRadioEvent, radioEvt: evt})
}

// arm schedules a timer-fired message after d. Any previously armed timer
// is stopped first; cancel+rearm is idempotent per §5.
func (c *Core) arm(d time.Duration) {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timerGen++
	gen := c.timerGen
	c.timer = time.AfterFunc(d, func() {
		c.postExternal(message{kind: msgTimerFired, timerGen: gen})
	})
}

func (c *Core) cancelTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerGen++
}

func (c *Core) armUs(us uint32) {
	c.arm(time.Duration(us) * time.Microsecond)
}

// isSafeToTransmit is the safe transmit policy from §4.E: a send or
// beacon may launch only when none of these hold.
func (c *Core) isSafeToTransmit() bool {
	return !c.radioBusy && !c.irqPending && c.radioState != radio.StateRx
}

func (c *Core) releaseFrame(e queue.Entry) {
	// pop_head's only remaining duty once the frame has left the queue:
	// nothing else in this module retains a reference to e.Frame, so it
	// becomes eligible for GC here (the external buffer-pool analogue).
	_ = e
}

func (c *Core) captureTx(frame []byte) {
	if c.pcap == nil {
		return
	}
	if err := c.pcap.AppendFrame(pcapdump.Frame{Data: frame}); err != nil {
		logger.Warnf("mac: pcap capture failed: %v", err)
	}
}

func (c *Core) captureRx(frame []byte) {
	c.captureTx(frame)
}
