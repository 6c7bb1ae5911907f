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

package main

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/leafmac/leafmac/mac"
	"github.com/leafmac/leafmac/radio/simradio"
)

// fileConfig is the on-disk shape for -config: a YAML rendering of the
// mac.Config/simradio.Params knobs a scenario run wants to override,
// everything else falling back to the package defaults.
type fileConfig struct {
	IntervalMinUs            *uint32  `yaml:"interval_min_us"`
	IntervalMaxUs            *uint32  `yaml:"interval_max_us"`
	WakeupIntervalMs         *int64   `yaml:"wakeup_interval_ms"`
	QueueCapacity            *int     `yaml:"queue_capacity"`
	MailboxDepth             *int     `yaml:"mailbox_depth"`
	CSMAMaxAttempts          *int     `yaml:"csma_max_attempts"`
	RetryMaxRetries          *int     `yaml:"retry_max_retries"`
	MaxLinkRetransmitReposts *int     `yaml:"max_link_retransmit_reposts"`
	TxDurationMs             *int64   `yaml:"tx_duration_ms"`
	MediumBusyProb           *float64 `yaml:"medium_busy_prob"`
	NoAckProb                *float64 `yaml:"no_ack_prob"`
	PendingDataProb          *float64 `yaml:"pending_data_prob"`
	RxAfterBeaconProb        *float64 `yaml:"rx_after_beacon_prob"`
	Seed                     *int64   `yaml:"seed"`
}

func loadConfig(path string) (mac.Config, simradio.Params, int64, error) {
	macCfg := mac.DefaultConfig()
	radioCfg := simradio.DefaultParams()
	var seed int64

	if path == "" {
		return macCfg, radioCfg, seed, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return macCfg, radioCfg, seed, err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return macCfg, radioCfg, seed, err
	}

	if fc.IntervalMinUs != nil {
		macCfg.IntervalMinUs = *fc.IntervalMinUs
	}
	if fc.IntervalMaxUs != nil {
		macCfg.IntervalMaxUs = *fc.IntervalMaxUs
	}
	if fc.WakeupIntervalMs != nil {
		macCfg.WakeupInterval = time.Duration(*fc.WakeupIntervalMs) * time.Millisecond
	}
	if fc.QueueCapacity != nil {
		macCfg.QueueCapacity = *fc.QueueCapacity
	}
	if fc.MailboxDepth != nil {
		macCfg.MailboxDepth = *fc.MailboxDepth
	}
	if fc.CSMAMaxAttempts != nil {
		macCfg.CSMAMaxAttempts = *fc.CSMAMaxAttempts
	}
	if fc.RetryMaxRetries != nil {
		macCfg.RetryMaxRetries = *fc.RetryMaxRetries
	}
	if fc.MaxLinkRetransmitReposts != nil {
		macCfg.MaxLinkRetransmitReposts = *fc.MaxLinkRetransmitReposts
	}
	if fc.TxDurationMs != nil {
		radioCfg.TxDuration = time.Duration(*fc.TxDurationMs) * time.Millisecond
	}
	if fc.MediumBusyProb != nil {
		radioCfg.MediumBusyProb = *fc.MediumBusyProb
	}
	if fc.NoAckProb != nil {
		radioCfg.NoAckProb = *fc.NoAckProb
	}
	if fc.PendingDataProb != nil {
		radioCfg.PendingDataProb = *fc.PendingDataProb
	}
	if fc.RxAfterBeaconProb != nil {
		radioCfg.RxAfterBeaconProb = *fc.RxAfterBeaconProb
	}
	if fc.Seed != nil {
		seed = *fc.Seed
	}

	return macCfg, radioCfg, seed, nil
}
