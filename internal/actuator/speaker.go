package actuator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// DefaultSampleRate is used when a speaker or renderer is given none.
const DefaultSampleRate = beep.SampleRate(44100)

// Square is an endless square-wave beep.Streamer. Its frequency can be
// changed from any goroutine; 0 produces silence.
type Square struct {
	sr     beep.SampleRate
	volume float64
	freq   atomic.Uint32 // centihertz
	phase  float64
}

// NewSquare returns a silent square wave at sample rate sr. volume is the
// peak amplitude in [0, 1].
func NewSquare(sr beep.SampleRate, volume float64) *Square {
	return &Square{sr: sr, volume: math.Max(0, math.Min(1, volume))}
}

// SetFreq changes the frequency, in centihertz.
func (s *Square) SetFreq(freq uint32) {
	s.freq.Store(freq)
}

func (s *Square) Stream(samples [][2]float64) (n int, ok bool) {
	hz := float64(s.freq.Load()) / 100
	step := hz / float64(s.sr)
	for i := range samples {
		v := 0.0
		if hz > 0 {
			if s.phase < 0.5 {
				v = s.volume
			} else {
				v = -s.volume
			}
			s.phase += step
			s.phase -= math.Floor(s.phase)
		}
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

func (s *Square) Err() error { return nil }

// Speaker plays tones on the default audio output.
type Speaker struct {
	wave *Square
	log  *slog.Logger
}

// OpenSpeaker initialises the audio device and starts a silent square
// wave on it.
func OpenSpeaker(sr beep.SampleRate, volume float64, log *slog.Logger) (*Speaker, error) {
	if log == nil {
		log = slog.Default()
	}
	if sr == 0 {
		sr = DefaultSampleRate
	}
	if err := speaker.Init(sr, sr.N(time.Second/20)); err != nil {
		return nil, fmt.Errorf("speaker: init: %w", err)
	}
	wave := NewSquare(sr, volume)
	speaker.Play(wave)
	log.Info("speaker: ready", "sample_rate", int(sr), "volume", wave.volume)
	return &Speaker{wave: wave, log: log}, nil
}

func (s *Speaker) Tone(_ context.Context, freq uint32) error {
	s.wave.SetFreq(freq)
	return nil
}

func (s *Speaker) Silence(context.Context) error {
	s.wave.SetFreq(0)
	return nil
}

// Close stops playback on the audio device.
func (s *Speaker) Close() error {
	s.wave.SetFreq(0)
	speaker.Clear()
	return nil
}
