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

// Package script implements a small declarative grammar for the duty-cycle
// scenarios documented as end-to-end traces: a named sequence of one-line
// steps driving SND/SET/GET and radio-event injection, with optional state
// assertions checked as the trace plays out.
package script

import (
	"github.com/alecthomas/participle"
)

// Step is one line of a scenario script; exactly one alternative matches.
type Step struct {
	Send   *SendStep   `  @@`  //nolint
	Fire   *FireStep   `| @@`  //nolint
	Rx     *RxStep     `| @@`  //nolint
	Set    *SetStep    `| @@`  //nolint
	Get    *GetStep    `| @@`  //nolint
	Assert *AssertStep `| @@`  //nolint
	Wait   *WaitStep   `| @@`  //nolint
}

// SendStep is `send <hex-frame>`, the script form of SND.
type SendStep struct {
	Cmd   struct{} `"send"`  //nolint
	Frame string   `@String` //nolint
}

// FireStep is `fire <event> [<hex-frame>]`, a direct radio-event injection.
type FireStep struct {
	Cmd   struct{} `"fire"`    //nolint
	Event string   `@Ident`    //nolint
	Frame *string  `[@String]` //nolint
}

// RxStep is `rx <hex-frame> [pending]`, an unsolicited reception.
type RxStep struct {
	Cmd     struct{}     `"rx"`          //nolint
	Frame   string       `@String`       //nolint
	Pending *PendingFlag `[ @@ ]`        //nolint
}

// PendingFlag is the `pending` keyword marking an RxStep as preceded by
// RX_PENDING.
type PendingFlag struct {
	Dummy struct{} `"pending"` //nolint
}

// SetStep is `set <option> <value>`, the script form of NET_SET.
type SetStep struct {
	Cmd    struct{} `"set"`  //nolint
	Option string   `@Ident` //nolint
	Value  int      `@Int`   //nolint
}

// GetStep is `get <option>`, the script form of NET_GET.
type GetStep struct {
	Cmd    struct{} `"get"`  //nolint
	Option string   `@Ident` //nolint
}

// AssertStep is `assert state <name>`, checked against Core.State().String().
type AssertStep struct {
	Cmd   struct{} `"assert" "state"` //nolint
	State string   `@Ident`           //nolint
}

// WaitStep is `wait <milliseconds>`, a real-time pause between steps.
type WaitStep struct {
	Cmd    struct{} `"wait"` //nolint
	Millis int      `@Int`   //nolint
}

// Scenario is a parsed scenario script: a name and its ordered steps.
type Scenario struct {
	Cmd   struct{} `"scenario"` //nolint
	Name  string   `@Ident`     //nolint
	Steps []*Step  `@@*`        //nolint
}

var scenarioParser = participle.MustBuild(&Scenario{})

// Parse compiles scenario script source into a Scenario.
func Parse(src []byte) (*Scenario, error) {
	s := &Scenario{}
	if err := scenarioParser.ParseBytes(src, s); err != nil {
		return nil, err
	}
	return s, nil
}
