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

// Package prng centralizes the module's sources of randomness, so a single
// root seed reproduces an entire run deterministically for testing.
package prng

import (
	"math/rand"
	"time"
)

var jitterGenerator *rand.Rand

// Init initializes the prng package, either with a fixed seed (rootSeed != 0) or a
// time-based seed (rootSeed == 0).
func Init(rootSeed int64) {
	if rootSeed == 0 {
		rootSeed = time.Now().UnixNano()
	}
	jitterGenerator = rand.New(rand.NewSource(rootSeed))
}

func init() {
	Init(0)
}

// UniformDuration returns a random duration uniformly distributed in [0, max).
// Used for the enable() transition's randomized first sleep (spec: "arm timer
// with uniform random in [0, INTERVAL_MAX)"), so freshly enabled leaves do not
// all beacon in lock-step.
func UniformDuration(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(jitterGenerator.Int63n(int64(max)))
}

// UniformUint32 returns a random value uniformly distributed in [0, max).
func UniformUint32(max uint32) uint32 {
	if max == 0 {
		return 0
	}
	return uint32(jitterGenerator.Int63n(int64(max)))
}

// UnitFloat returns a random float64 in [0, 1), usable as a probability draw
// (e.g. simulated channel-busy sampling in radio/simradio).
func UnitFloat() float64 {
	return jitterGenerator.Float64()
}
