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
	"os"
	"strings"

	"github.com/mitchellh/go-wordwrap"
	"golang.org/x/term"
)

const helpBody = "Commands:\n" +
	"  send <hex-frame>             enqueue a frame for transmission (SND)\n" +
	"  set <option> <value>         NET_SET duty_cycling|source_address_length|<n>\n" +
	"  get <option>                 NET_GET duty_cycling|source_address_length|<n>\n" +
	"  fire <event> [hex-frame]     inject a radio event directly (isr, rx_complete, " +
	"rx_pending, tx_complete, tx_complete_pending, tx_medium_busy, tx_noack)\n" +
	"  rx <hex-frame> [pending]     deliver an unsolicited reception, optionally preceded by RX_PENDING\n" +
	"  state                        print the current duty-cycle state\n" +
	"  energy                       print accumulated per-phase radio time and estimated energy\n" +
	"  help                         print this text\n" +
	"  exit                         leave the console\n"

// Help renders the command reference wrapped to the current terminal
// width (falling back to 80 columns when stdout isn't a terminal).
func Help() string {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	var out strings.Builder
	for _, line := range strings.Split(helpBody, "\n") {
		if line == "" {
			out.WriteByte('\n')
			continue
		}
		out.WriteString(wordwrap.WrapString(line, uint(width)))
		out.WriteByte('\n')
	}
	return strings.TrimRight(out.String(), "\n")
}
