// Copyright (c) 2020, The leafmac Authors.
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

// Package progctx implements the lifecycle-tracked, cancellable context a
// leafsimd process runs under. A leaf process has a small, fixed roster of
// goroutines — the mac.Core worker, an optional signal handler, an optional
// console — so they register by Role rather than by an open-ended name, the
// way a multi-node simulator would need for an unbounded set of per-node
// routines.
package progctx

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/simonlingoogle/go-simplelogger"
)

// Role identifies one of the leaf process's fixed set of long-lived
// goroutines for WaitAdd/WaitDone bookkeeping.
type Role string

const (
	RoleCore          Role = "mac-core"
	RoleSignalHandler Role = "signal-handler"
	RoleConsole       Role = "console"
)

// ProgCtx represents the context of the leafsimd process during its lifetime.
type ProgCtx struct {
	context.Context // the inner context of the program
	wg              sync.WaitGroup
	cancel          context.CancelFunc
	rolesLock       sync.Mutex
	roles           map[Role]int
	deferred        []func()
}

// WaitCount returns the number of goroutines currently registered across
// all roles.
func (ctx *ProgCtx) WaitCount() int {
	ctx.rolesLock.Lock()
	defer ctx.rolesLock.Unlock()

	total := 0
	for _, c := range ctx.roles {
		total += c
	}
	return total
}

// Cancel cancels the program context with a given error. It is only
// effective the first time it's called.
func (ctx *ProgCtx) Cancel(err interface{}) {
	if ctx.Err() != nil {
		return
	}

	defer func() {
		ctx.deferred = nil
	}()

	ctx.cancel()

	if e, ok := err.(error); ok {
		simplelogger.TraceError("leafsimd exiting: %v", e)
	} else {
		simplelogger.Infof("leafsimd exiting: %v", err)
	}

	for _, f := range ctx.deferred {
		f()
	}
}

// WaitAdd registers delta more goroutines running under role.
func (ctx *ProgCtx) WaitAdd(role Role, delta int) {
	ctx.rolesLock.Lock()
	ctx.roles[role] += delta
	ctx.rolesLock.Unlock()

	ctx.wg.Add(delta)
}

// WaitDone notifies that one goroutine running under role has finished.
func (ctx *ProgCtx) WaitDone(role Role) {
	ctx.rolesLock.Lock()
	defer ctx.rolesLock.Unlock()

	count := ctx.roles[role]
	if count <= 0 {
		simplelogger.Panicf("role %s is not running, should not call WaitDone", role)
	}

	ctx.roles[role] -= 1
	ctx.wg.Done()
}

// Wait blocks until every registered goroutine, across every role, has
// called WaitDone.
func (ctx *ProgCtx) Wait() {
	ctx.rolesLock.Lock()
	simplelogger.Infof("leafsimd waiting on roles: %v", ctx.roles)
	ctx.rolesLock.Unlock()

	ctx.wg.Wait()
}

// Defer registers a function to be called when the program context is
// cancelled. The function runs when Cancel is first called.
func (ctx *ProgCtx) Defer(f func()) {
	if ctx.Err() != nil {
		panic(errors.Errorf("can not Defer after context is done"))
	}

	ctx.deferred = append(ctx.deferred, f)
}

// New creates a new ProgCtx from the parent context.
func New(parent context.Context) *ProgCtx {
	if parent == nil {
		parent = context.Background()
	}

	ctx, cancel := context.WithCancel(parent)

	return &ProgCtx{
		Context: ctx,
		wg:      sync.WaitGroup{},
		cancel:  cancel,
		roles:   map[Role]int{},
	}
}
