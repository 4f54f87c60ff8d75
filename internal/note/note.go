// Package note encodes melodies for a single-tone buzzer.
//
// A note is a frequency in centihertz plus a one-byte duration code:
//
//	bit 7     triplet flag (each figure lasts 2/3 of its normal length)
//	bits 0-6  figure mask; bit i selects a 1/2^i whole-note figure
//
// Several figure bits may be set at once, which is how dotted and tied
// durations are written (Quarter|Eighth is a dotted quarter). A note with
// zero frequency and zero code is the end-of-song sentinel.
package note

import (
	"fmt"
	"math"
	"time"
)

// Figures, one bit each.
const (
	Whole        uint8 = 1 << 0
	Half         uint8 = 1 << 1
	Quarter      uint8 = 1 << 2
	Eighth       uint8 = 1 << 3
	Sixteenth    uint8 = 1 << 4
	ThirtySecond uint8 = 1 << 5
	SixtyFourth  uint8 = 1 << 6

	// Triplet scales every selected figure by 2/3.
	Triplet uint8 = 1 << 7

	figureMask = Triplet - 1
	numFigures = 7
)

// MaxFreq is the largest frequency (in centihertz) a note can carry.
const MaxFreq = 1<<24 - 1

// wholeNoteMS is the length of a whole note at one beat per minute:
// 60000 ms per minute times four quarter notes.
const wholeNoteMS = 240000

// MaxBeat is the fastest tempo. Beyond it every figure lasts under 1 ms.
const MaxBeat = wholeNoteMS

// Note is one step of a melody.
type Note struct {
	Freq uint32 // centihertz, 0 is a rest (or the sentinel when Code is 0 too)
	Code uint8  // duration code, see package doc
}

// Sentinel marks the end of a song.
var Sentinel = Note{}

// IsSentinel reports whether n is the end-of-song marker.
func IsSentinel(n Note) bool {
	return n.Freq == 0 && n.Code == 0
}

// IsRest reports whether n is a silent, non-sentinel note.
func (n Note) IsRest() bool {
	return n.Freq == 0 && n.Code != 0
}

// Triplet reports whether the triplet flag is set.
func (n Note) Triplet() bool {
	return n.Code&Triplet != 0
}

// DelayMS returns how long a note with the given duration code lasts at
// beat quarter notes per minute. beat must be positive; callers validate it.
// Any positive beat is safe, including ones above MaxBeat.
//
// Each selected figure contributes 240000/(beat*2^i) ms, scaled by 2/3 for
// triplets. A code with at least one figure bit never rounds down to zero.
func DelayMS(code uint8, beat int) int {
	total := 0
	for i := 0; i < numFigures; i++ {
		if code&(1<<i) == 0 {
			continue
		}
		ms := wholeNoteMS / beat >> i
		if code&Triplet != 0 {
			ms = ms * 2 / 3
		}
		total += ms
	}
	if total == 0 && code&figureMask != 0 {
		total = 1
	}
	return total
}

// Delay is DelayMS as a time.Duration.
func Delay(code uint8, beat int) time.Duration {
	return time.Duration(DelayMS(code, beat)) * time.Millisecond
}

// Delay returns how long n lasts at the given tempo.
func (n Note) Delay(beat int) time.Duration {
	return Delay(n.Code, beat)
}

// Hz returns the note frequency in hertz.
func (n Note) Hz() float64 {
	return float64(n.Freq) / 100
}

// MIDIKey returns the nearest MIDI key number for the note (A4 = 69).
// ok is false for rests and frequencies outside the MIDI range.
func (n Note) MIDIKey() (key uint8, ok bool) {
	if n.Freq == 0 {
		return 0, false
	}
	k := math.Round(69 + 12*math.Log2(n.Hz()/440))
	if k < 0 || k > 127 {
		return 0, false
	}
	return uint8(k), true
}

// String formats the note the way the control protocol spells it, "f:d".
func (n Note) String() string {
	return fmt.Sprintf("%d:%d", n.Freq, n.Code)
}
