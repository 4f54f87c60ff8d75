package mcu

import (
	"bytes"
	"testing"
)

func TestToneFrameEncode(t *testing.T) {
	got := ToneFrame(0x0112AB, 70, 3).Encode()
	want := []byte{SOF0, SOF1, 6, CmdTone, 0x01, 0x12, 0xAB, 70, 3, 0}
	want[len(want)-1] = 6 ^ CmdTone ^ 0x01 ^ 0x12 ^ 0xAB ^ 70 ^ 3
	if !bytes.Equal(got, want) {
		t.Errorf("Encode() = % x, want % x", got, want)
	}
}

func TestDecoderFeed(t *testing.T) {
	tone := ToneFrame(44000, 70, 1)
	stream := append([]byte{0x00, 0xAA, 0x13}, tone.Encode()...)
	stream = append(stream, Frame{Cmd: CmdButton}.Encode()...)

	var d Decoder
	// Feed one byte at a time to exercise partial frames.
	var frames []Frame
	for _, b := range stream {
		frames = append(frames, d.Feed([]byte{b})...)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[0].Cmd != CmdTone || frames[0].Freq() != 44000 {
		t.Errorf("frame 0 = %+v", frames[0])
	}
	if frames[1].Cmd != CmdButton || len(frames[1].Payload) != 0 {
		t.Errorf("frame 1 = %+v", frames[1])
	}
}

func TestDecoderBadChecksum(t *testing.T) {
	bad := SilenceFrame(9).Encode()
	bad[len(bad)-1] ^= 0xFF
	good := Frame{Cmd: CmdButton}.Encode()

	var d Decoder
	frames := d.Feed(append(bad, good...))
	if len(frames) != 1 || frames[0].Cmd != CmdButton {
		t.Fatalf("frames = %+v, want one button frame", frames)
	}
	if d.Bad() != 1 {
		t.Errorf("Bad() = %d, want 1", d.Bad())
	}
}
