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
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/leafmac/leafmac/mac"
	"github.com/leafmac/leafmac/radio"
)

var eventByName = map[string]radio.EventKind{
	"isr":                  radio.EventISR,
	"rx_pending":           radio.EventRxPending,
	"rx_complete":          radio.EventRxComplete,
	"tx_complete":          radio.EventTxComplete,
	"tx_complete_pending":  radio.EventTxCompletePending,
	"tx_medium_busy":       radio.EventTxMediumBusy,
	"tx_noack":             radio.EventTxNoAck,
}

var optByName = map[string]mac.Option{
	"duty_cycling":           mac.OptDutyCycling,
	"source_address_length":  mac.OptSourceAddressLength,
}

// dispatch implements every command except exit/help, which Execute
// handles directly since they don't touch the core.
func dispatch(rn *Runner, cmd string, args []string) (string, error) {
	switch cmd {
	case "send":
		return cmdSend(rn, args)
	case "set":
		return cmdSet(rn, args)
	case "get":
		return cmdGet(rn, args)
	case "fire":
		return cmdFire(rn, args)
	case "rx":
		return cmdRx(rn, args)
	case "state":
		return rn.core.State().String(), nil
	case "energy":
		return formatEnergy(rn.core.EnergySnapshot()), nil
	default:
		return "", fmt.Errorf("unknown command %q (try 'help')", cmd)
	}
}

func cmdSend(rn *Runner, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: send <hex-frame>")
	}
	frame, err := hex.DecodeString(args[0])
	if err != nil {
		return "", fmt.Errorf("bad hex frame: %w", err)
	}
	status := rn.core.SND(frame)
	if !status.Ok() {
		return "", fmt.Errorf("SND failed: %v", status)
	}
	return "Done", nil
}

func cmdSet(rn *Runner, args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("usage: set <option> <value>")
	}
	opt, ok := optByName[strings.ToLower(args[0])]
	if !ok {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return "", fmt.Errorf("unknown option %q", args[0])
		}
		opt = mac.Option(n)
	}
	val, err := strconv.Atoi(args[1])
	if err != nil {
		return "", fmt.Errorf("bad value %q: %w", args[1], err)
	}
	status := rn.core.SET(opt, int32(val))
	if !status.Ok() {
		return "", fmt.Errorf("SET failed: %v", status)
	}
	return "Done", nil
}

func cmdGet(rn *Runner, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: get <option>")
	}
	opt, ok := optByName[strings.ToLower(args[0])]
	if !ok {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return "", fmt.Errorf("unknown option %q", args[0])
		}
		opt = mac.Option(n)
	}
	val, status := rn.core.GET(opt)
	if !status.Ok() {
		return "", fmt.Errorf("GET failed: %v", status)
	}
	return strconv.Itoa(int(val)), nil
}

// cmdFire injects a raw radio event directly into the simulated driver,
// bypassing its probabilistic outcome model, the way the documented
// end-to-end scenarios are expressed.
func cmdFire(rn *Runner, args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("usage: fire <event> [hex-frame]")
	}
	kind, ok := eventByName[strings.ToLower(args[0])]
	if !ok {
		return "", fmt.Errorf("unknown event %q", args[0])
	}
	var frame []byte
	if len(args) > 1 {
		var err error
		frame, err = hex.DecodeString(args[1])
		if err != nil {
			return "", fmt.Errorf("bad hex frame: %w", err)
		}
	}
	rn.radio.Inject(radio.Event{Kind: kind, Frame: frame})
	return "Done", nil
}

func cmdRx(rn *Runner, args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("usage: rx <hex-frame> [pending]")
	}
	frame, err := hex.DecodeString(args[0])
	if err != nil {
		return "", fmt.Errorf("bad hex frame: %w", err)
	}
	pending := len(args) > 1 && strings.EqualFold(args[1], "pending")
	rn.radio.DeliverRx(frame, pending)
	return "Done", nil
}
