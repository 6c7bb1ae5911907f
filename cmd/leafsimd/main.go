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

// Command leafsimd wires a simulated radio to the duty-cycling MAC core and
// exposes it through the replcmd console, optionally replaying a scenario
// script non-interactively.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leafmac/leafmac/energy"
	"github.com/leafmac/leafmac/logger"
	"github.com/leafmac/leafmac/mac"
	"github.com/leafmac/leafmac/pcapdump"
	"github.com/leafmac/leafmac/progctx"
	"github.com/leafmac/leafmac/prng"
	"github.com/leafmac/leafmac/radio/simradio"
	"github.com/leafmac/leafmac/replcmd"
)

type mainArgs struct {
	Config    string
	LogLevel  string
	Pcap      string
	PcapTap   bool
	Scenario  string
	AutoEnable bool
}

var args mainArgs

func parseArgs() {
	flag.StringVar(&args.Config, "config", "", "YAML file overriding the default MAC/radio tuning")
	flag.StringVar(&args.LogLevel, "log", "info", "set logging level")
	flag.StringVar(&args.Pcap, "pcap", "", "capture every transmitted/received frame to this pcap file")
	flag.BoolVar(&args.PcapTap, "pcap-tap", false, "use the 802.15.4-TAP pcap framing instead of plain")
	flag.StringVar(&args.Scenario, "scenario", "", "replay this scenario script non-interactively, then exit")
	flag.BoolVar(&args.AutoEnable, "enable", true, "enable duty cycling immediately at startup")
	flag.Parse()
}

func main() {
	parseArgs()
	logger.SetLevel(parseLevel(args.LogLevel))

	macCfg, radioCfg, seed, err := loadConfig(args.Config)
	if err != nil {
		logger.Fatalf("failed to load config %q: %v", args.Config, err)
	}
	if seed != 0 {
		prng.Init(seed)
	}

	ctx := progctx.New(context.Background())
	handleSignals(ctx)

	driver := simradio.New(radioCfg)
	core := mac.New(driver, macCfg, onReceive)

	if args.Pcap != "" {
		frameType := pcapdump.FrameTypePlain
		if args.PcapTap {
			frameType = pcapdump.FrameTypeWpanTap
		}
		w, err := pcapdump.New(args.Pcap, frameType)
		if err != nil {
			logger.Fatalf("failed to open pcap file %q: %v", args.Pcap, err)
		}
		ctx.Defer(func() { _ = w.Close() })
		core.SetCapture(w)
	}

	if status := core.Start(ctx); !status.Ok() {
		logger.Fatalf("failed to start MAC core: %v", status)
	}

	if args.AutoEnable {
		if status := core.SET(mac.OptDutyCycling, 1); !status.Ok() {
			logger.Fatalf("failed to enable duty cycling: %v", status)
		}
	}

	rn := replcmd.NewRunner(ctx, core, driver)

	if args.Scenario != "" {
		src, err := os.ReadFile(args.Scenario)
		if err != nil {
			logger.Fatalf("failed to read scenario %q: %v", args.Scenario, err)
		}
		if err := rn.PlayScenario(src); err != nil {
			logger.Fatalf("scenario %q failed: %v", args.Scenario, err)
		}
		fmt.Println(energy.Report(core.EnergySnapshot()))
		ctx.Cancel("scenario complete")
		return
	}

	go func() {
		if err := replcmd.Run(ctx, rn); err != nil {
			ctx.Cancel(fmt.Errorf("console exit: %w", err))
		}
	}()

	logger.Infof("leafsimd running, waiting to stop gracefully ...")
	ctx.Wait()
}

func parseLevel(s string) logger.Level {
	switch s {
	case "micro":
		return logger.MicroLevel
	case "trace":
		return logger.TraceLevel
	case "debug":
		return logger.DebugLevel
	case "info":
		return logger.InfoLevel
	case "note":
		return logger.NoteLevel
	case "warn":
		return logger.WarnLevel
	case "error":
		return logger.ErrorLevel
	case "off":
		return logger.OffLevel
	default:
		return logger.DefaultLevel
	}
}

func onReceive(frame []byte) {
	logger.Infof("leafsimd: received %d-byte frame", len(frame))
}

func handleSignals(ctx *progctx.ProgCtx) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)

	ctx.WaitAdd(progctx.RoleSignalHandler, 1)
	go func() {
		defer ctx.WaitDone(progctx.RoleSignalHandler)
		select {
		case sig := <-c:
			logger.Infof("signal received: %v", sig)
			ctx.Cancel(nil)
		case <-ctx.Done():
		}
	}()
}
