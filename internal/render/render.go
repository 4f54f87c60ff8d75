// Package render writes songs to files instead of a buzzer, so a melody
// can be checked before it is sent to the device.
package render

import (
	"fmt"
	"io"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/chase3718/buzzer/internal/actuator"
	"github.com/chase3718/buzzer/internal/note"
)

// PPQ is the MIDI resolution, ticks per quarter note.
const PPQ = 960

// WAVOptions tune the audio rendering. Zero fields take defaults.
type WAVOptions struct {
	SampleRate beep.SampleRate
	Volume     float64
}

// Stream returns the song as a finite mono square-wave stream and its
// length in samples. Rests are silence.
func Stream(song note.Song, beat int, sr beep.SampleRate, volume float64) (beep.Streamer, int) {
	var parts []beep.Streamer
	total := 0
	for _, n := range song {
		if note.IsSentinel(n) {
			break
		}
		samples := sr.N(n.Delay(beat))
		total += samples
		if n.IsRest() {
			parts = append(parts, beep.Silence(samples))
			continue
		}
		sq := actuator.NewSquare(sr, volume)
		sq.SetFreq(n.Freq)
		parts = append(parts, beep.Take(samples, sq))
	}
	return beep.Seq(parts...), total
}

// WAV renders song at beat as a 16-bit mono WAV file.
func WAV(w io.WriteSeeker, song note.Song, beat int, opts WAVOptions) error {
	if beat <= 0 || beat > note.MaxBeat {
		return fmt.Errorf("render: beat %d", beat)
	}
	if opts.SampleRate == 0 {
		opts.SampleRate = actuator.DefaultSampleRate
	}
	if opts.Volume == 0 {
		opts.Volume = 0.5
	}
	s, _ := Stream(song, beat, opts.SampleRate, opts.Volume)
	err := wav.Encode(w, s, beep.Format{
		SampleRate:  opts.SampleRate,
		NumChannels: 1,
		Precision:   2,
	})
	if err != nil {
		return fmt.Errorf("render: wav: %w", err)
	}
	return nil
}

// Ticks converts a note length to MIDI ticks at PPQ with a tempo of beat.
func Ticks(code uint8, beat int) uint32 {
	return uint32(int64(note.DelayMS(code, beat)) * PPQ * int64(beat) / 60000)
}

// MIDI renders song as a single-track standard MIDI file at path. Notes
// that have no MIDI key are written as rests.
func MIDI(path string, song note.Song, beat int) error {
	if beat <= 0 || beat > note.MaxBeat {
		return fmt.Errorf("render: beat %d", beat)
	}
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(PPQ)

	var tr smf.Track
	tr.Add(0, smf.MetaMeter(4, 4))
	tr.Add(0, smf.MetaTempo(float64(beat)))

	var delta uint32
	for _, n := range song {
		if note.IsSentinel(n) {
			break
		}
		ticks := Ticks(n.Code, beat)
		key, ok := n.MIDIKey()
		if !ok {
			delta += ticks
			continue
		}
		tr.Add(delta, midi.NoteOn(0, key, 100))
		tr.Add(ticks, midi.NoteOff(0, key))
		delta = 0
	}
	tr.Close(delta)

	if err := sm.Add(tr); err != nil {
		return fmt.Errorf("render: add track: %w", err)
	}
	if err := sm.WriteFile(path); err != nil {
		return fmt.Errorf("render: write %s: %w", path, err)
	}
	return nil
}
