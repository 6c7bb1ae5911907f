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

// Package pcapdump writes every frame a leaf hands to its radio driver (or
// receives from it) to a pcap file, for offline inspection with wireshark.
// Two framings are supported: plain DLT_IEEE802_15_4 and the richer
// wpan-tap framing (https://gitlab.com/exegin/ieee802-15-4-tap) which
// additionally carries RSSI and channel per frame.
package pcapdump

import (
	"encoding/binary"
	"math"
	"os"
)

// FrameType selects the pcap link-layer framing used by a Writer.
type FrameType int

const (
	// FrameTypePlain wraps frames in bare DLT_IEEE802_15_4 records.
	FrameTypePlain FrameType = iota
	// FrameTypeWpanTap wraps frames in DLT_IEEE802_15_4_TAP records, carrying RSSI/channel/FCS TLVs.
	FrameTypeWpanTap
)

const (
	dltIeee802154    = 195
	dltIeee802154Tap = 283
	pcapMagicNumber  = 0xA1B2C3D4
	pcapVersionMajor = 2
	pcapVersionMinor = 4

	pcapFileHeaderSize   = 24
	frameRecordHeaderLen = 16
	tapFrameHeaderSize   = 28
)

const (
	tlvFcsType           = 0
	tlvRss               = 1
	tlvChannelAssignment = 3
)

// Frame is one captured 802.15.4 PHY frame, with the sideband info the tap framing records.
type Frame struct {
	TimestampUs uint64
	Channel     uint8
	RssiDbm     float32
	Data        []byte
}

// Writer appends captured frames to an open pcap file.
type Writer struct {
	fd        *os.File
	frameType FrameType
}

// New creates (truncating any existing file) a pcap capture file at filename, using frameType framing.
func New(filename string, frameType FrameType) (*Writer, error) {
	fd, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	w := &Writer{fd: fd, frameType: frameType}
	if err = w.writeFileHeader(); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeFileHeader() error {
	var hdr [pcapFileHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[:4], pcapMagicNumber)
	binary.LittleEndian.PutUint16(hdr[4:6], pcapVersionMajor)
	binary.LittleEndian.PutUint16(hdr[6:8], pcapVersionMinor)
	binary.LittleEndian.PutUint32(hdr[16:20], 256)
	dlt := uint32(dltIeee802154)
	if w.frameType == FrameTypeWpanTap {
		dlt = dltIeee802154Tap
	}
	binary.LittleEndian.PutUint32(hdr[20:24], dlt)
	if _, err := w.fd.Write(hdr[:]); err != nil {
		return err
	}
	return w.fd.Sync()
}

// AppendFrame appends one captured frame.
func (w *Writer) AppendFrame(f Frame) error {
	if w.frameType == FrameTypeWpanTap {
		return w.appendTapFrame(f)
	}
	return w.appendPlainFrame(f)
}

func (w *Writer) appendPlainFrame(f Frame) error {
	var hdr [frameRecordHeaderLen]byte
	writeTimestamp(hdr[:8], f.TimestampUs)
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(len(f.Data)))
	binary.LittleEndian.PutUint32(hdr[12:16], uint32(len(f.Data)))
	if _, err := w.fd.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.fd.Write(f.Data)
	return err
}

func (w *Writer) appendTapFrame(f Frame) error {
	var hdr [frameRecordHeaderLen + tapFrameHeaderSize]byte
	writeTimestamp(hdr[:8], f.TimestampUs)
	frLen := uint32(len(f.Data)) + tapFrameHeaderSize
	binary.LittleEndian.PutUint32(hdr[8:12], frLen)
	binary.LittleEndian.PutUint32(hdr[12:frameRecordHeaderLen], frLen)

	n := frameRecordHeaderLen
	hdr[n] = 0 // wpan-tap version
	n++
	hdr[n] = 0 // reserved
	n++
	binary.LittleEndian.PutUint16(hdr[n:n+2], tapFrameHeaderSize)
	n += 2

	setTlv(hdr[:], &n, tlvFcsType, []byte{1}) // 1 == 16-bit CRC (FCS)
	rssBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(rssBytes, math.Float32bits(f.RssiDbm))
	setTlv(hdr[:], &n, tlvRss, rssBytes)
	chanBytes := []byte{f.Channel, 0, 0} // byte 2: channel page 0
	setTlv(hdr[:], &n, tlvChannelAssignment, chanBytes)

	if _, err := w.fd.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.fd.Write(f.Data)
	return err
}

func setTlv(hdr []byte, idx *int, tlvType uint16, data []byte) {
	lenData := uint16(len(data))
	padded := lenData & 0xFFFC
	if lenData&0x0003 > 0 {
		padded += 4
	}
	tlv := make([]byte, 4+padded)
	binary.LittleEndian.PutUint16(tlv[0:2], tlvType)
	binary.LittleEndian.PutUint16(tlv[2:4], lenData)
	copy(tlv[4:], data)
	copy(hdr[*idx:], tlv)
	*idx += int(4 + padded)
}

func writeTimestamp(b []byte, ustime uint64) {
	sec := uint32(ustime / 1000000)
	usec := uint32(ustime % 1000000)
	binary.LittleEndian.PutUint32(b[:4], sec)
	binary.LittleEndian.PutUint32(b[4:8], usec)
}

// Sync flushes the capture file to disk.
func (w *Writer) Sync() error {
	return w.fd.Sync()
}

// Close closes the capture file.
func (w *Writer) Close() error {
	return w.fd.Close()
}
