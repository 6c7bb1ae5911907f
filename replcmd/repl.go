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

// Package replcmd implements the interactive console for driving a running
// mac.Core by hand: SND/SET/GET, direct radio-event injection, and
// replaying declarative scenario scripts (see replcmd/script).
package replcmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/leafmac/leafmac/energy"
	"github.com/leafmac/leafmac/mac"
	"github.com/leafmac/leafmac/progctx"
	"github.com/leafmac/leafmac/radio/simradio"
)

const prompt = "leaf> "

// Runner binds a live Core and its simulated radio to the commands this
// console understands. It is the REPL's analogue of a CmdRunner.
type Runner struct {
	ctx   *progctx.ProgCtx
	core  *mac.Core
	radio *simradio.Radio
}

// NewRunner builds a Runner around an already-started Core/Radio pair.
func NewRunner(ctx *progctx.ProgCtx, core *mac.Core, r *simradio.Radio) *Runner {
	return &Runner{ctx: ctx, core: core, radio: r}
}

// Run reads commands from stdin until EOF, Ctrl-D, or the program context
// is cancelled, in the same readline-driven shape as the teacher's console.
func Run(ctx *progctx.ProgCtx, rn *Runner) error {
	ctx.WaitAdd(progctx.RoleConsole, 1)
	defer ctx.WaitDone(progctx.RoleConsole)

	l, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     "/tmp/leafsimd-cmds.tmp",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	for {
		line, err := l.Readline()
		if rn.ctx.Err() != nil {
			return nil
		}
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return nil
			}
			continue
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		reply, quit := rn.Execute(line)
		fmt.Fprintln(os.Stdout, reply)
		if quit {
			return nil
		}
		_ = os.Stdout.Sync()
	}
}

// Execute runs a single command line and returns the text to display and
// whether the console should exit.
func (rn *Runner) Execute(line string) (reply string, quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false
	}

	cmd, args := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "exit", "quit":
		return "bye", true
	case "help", "?":
		return Help(), false
	default:
		out, err := dispatch(rn, cmd, args)
		if err != nil {
			return "Error: " + err.Error(), false
		}
		return out, false
	}
}

func formatEnergy(s energy.Snapshot) string {
	return strings.TrimRight(energy.Report(s), "\n")
}
