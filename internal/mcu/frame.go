// Package mcu talks to a buzzer microcontroller over a serial line.
//
// Every message in either direction is one frame:
//
//	[SOF0][SOF1][LEN][CMD][payload...][CKS]
//
// LEN counts CMD plus payload and CKS is the XOR of LEN, CMD and the
// payload bytes.
package mcu

import (
	"encoding/binary"
	"errors"
)

const (
	SOF0 = 0xAA
	SOF1 = 0x55

	CmdTone    = 0x20 // host -> MCU: freq[3] (centihertz, big endian), duty, seq
	CmdSilence = 0x21 // host -> MCU: seq
	CmdButton  = 0x30 // MCU -> host: button pressed

	maxPayload = 250
)

// ErrChecksum is reported for frames whose checksum does not match.
var ErrChecksum = errors.New("mcu: bad checksum")

// Frame is one message on the serial line.
type Frame struct {
	Cmd     byte
	Payload []byte
}

// ToneFrame asks the MCU to sound freq centihertz at duty percent.
func ToneFrame(freq uint32, duty, seq byte) Frame {
	var p [5]byte
	var be [4]byte
	binary.BigEndian.PutUint32(be[:], freq)
	copy(p[:3], be[1:])
	p[3] = duty
	p[4] = seq
	return Frame{Cmd: CmdTone, Payload: p[:]}
}

// SilenceFrame asks the MCU to stop the tone.
func SilenceFrame(seq byte) Frame {
	return Frame{Cmd: CmdSilence, Payload: []byte{seq}}
}

// Freq returns the frequency carried by a tone frame.
func (f Frame) Freq() uint32 {
	if f.Cmd != CmdTone || len(f.Payload) < 3 {
		return 0
	}
	return uint32(f.Payload[0])<<16 | uint32(f.Payload[1])<<8 | uint32(f.Payload[2])
}

// Encode builds the on-wire representation.
func (f Frame) Encode() []byte {
	length := byte(len(f.Payload) + 1) // +1 for CMD byte
	cks := length ^ f.Cmd
	for _, b := range f.Payload {
		cks ^= b
	}

	out := make([]byte, 0, len(f.Payload)+5)
	out = append(out, SOF0, SOF1, length, f.Cmd)
	out = append(out, f.Payload...)
	return append(out, cks)
}

// Decoder splits a byte stream into frames. It resynchronises on the
// start-of-frame marker after garbage or a bad checksum.
type Decoder struct {
	buf []byte
	bad int
}

// Feed adds p to the stream and returns every complete frame found.
func (d *Decoder) Feed(p []byte) []Frame {
	d.buf = append(d.buf, p...)
	var frames []Frame
	for {
		i := d.sync()
		d.buf = d.buf[i:]
		if len(d.buf) < 3 {
			return frames
		}
		length := int(d.buf[2])
		if length == 0 || length > maxPayload+1 {
			d.drop()
			continue
		}
		total := 3 + length + 1
		if len(d.buf) < total {
			return frames
		}
		body := d.buf[3 : 3+length]
		cks := byte(length)
		for _, b := range body {
			cks ^= b
		}
		if cks != d.buf[total-1] {
			d.drop()
			continue
		}
		frames = append(frames, Frame{
			Cmd:     body[0],
			Payload: append([]byte(nil), body[1:]...),
		})
		d.buf = d.buf[total:]
	}
}

// Bad returns how many frames were discarded for a bad length or checksum.
func (d *Decoder) Bad() int {
	return d.bad
}

// sync returns the index of the next start-of-frame marker, or the index
// of a trailing SOF0 that may be completed by the next Feed.
func (d *Decoder) sync() int {
	for i := 0; i < len(d.buf); i++ {
		if d.buf[i] != SOF0 {
			continue
		}
		if i+1 == len(d.buf) || d.buf[i+1] == SOF1 {
			return i
		}
	}
	return len(d.buf)
}

func (d *Decoder) drop() {
	d.bad++
	d.buf = d.buf[1:]
}
