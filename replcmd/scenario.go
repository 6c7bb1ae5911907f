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

package replcmd

import (
	"fmt"
	"time"

	"github.com/leafmac/leafmac/logger"
	"github.com/leafmac/leafmac/replcmd/script"
)

// PlayScenario parses and replays a scenario script against rn, one step
// at a time, stopping at the first step that errors or fails its assertion.
func (rn *Runner) PlayScenario(src []byte) error {
	sc, err := script.Parse(src)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	logger.Infof("replcmd: playing scenario %q (%d steps)", sc.Name, len(sc.Steps))
	for i, step := range sc.Steps {
		if err := rn.playStep(step); err != nil {
			return fmt.Errorf("scenario %q step %d: %w", sc.Name, i+1, err)
		}
	}
	return nil
}

func (rn *Runner) playStep(step *script.Step) error {
	switch {
	case step.Send != nil:
		_, err := dispatch(rn, "send", []string{step.Send.Frame})
		return err
	case step.Fire != nil:
		args := []string{step.Fire.Event}
		if step.Fire.Frame != nil {
			args = append(args, *step.Fire.Frame)
		}
		_, err := dispatch(rn, "fire", args)
		return err
	case step.Rx != nil:
		args := []string{step.Rx.Frame}
		if step.Rx.Pending != nil {
			args = append(args, "pending")
		}
		_, err := dispatch(rn, "rx", args)
		return err
	case step.Set != nil:
		_, err := dispatch(rn, "set", []string{step.Set.Option, itoa(step.Set.Value)})
		return err
	case step.Get != nil:
		_, err := dispatch(rn, "get", []string{step.Get.Option})
		return err
	case step.Assert != nil:
		got := rn.core.State().String()
		if got != step.Assert.State {
			return fmt.Errorf("assert state: want %s, got %s", step.Assert.State, got)
		}
		return nil
	case step.Wait != nil:
		time.Sleep(time.Duration(step.Wait.Millis) * time.Millisecond)
		return nil
	default:
		return fmt.Errorf("empty step")
	}
}

func itoa(n int) string {
	return fmt.Sprintf("%d", n)
}
