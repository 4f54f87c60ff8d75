package render

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep/wav"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/chase3718/buzzer/internal/note"
)

func mustParse(t *testing.T, text string) note.Song {
	t.Helper()
	s, err := note.Parse(text, note.DefaultCapacity)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestTicks(t *testing.T) {
	tests := []struct {
		code uint8
		beat int
		want uint32
	}{
		{note.Quarter, 120, PPQ},
		{note.Whole, 120, 4 * PPQ},
		{note.Eighth, 60, PPQ / 2},
		{note.Quarter | note.Eighth, 120, PPQ * 3 / 2},
	}
	for _, tt := range tests {
		if got := Ticks(tt.code, tt.beat); got != tt.want {
			t.Errorf("Ticks(%d, %d) = %d, want %d", tt.code, tt.beat, got, tt.want)
		}
	}
}

func TestWAVLength(t *testing.T) {
	song := mustParse(t, "44000:4,0:4,88000:8")
	path := filepath.Join(t.TempDir(), "song.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := WAV(f, song, 120, WAVOptions{SampleRate: 8000}); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	f, err = os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	s, format, err := wav.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if format.SampleRate != 8000 || format.NumChannels != 1 {
		t.Errorf("format = %+v", format)
	}
	// 500ms + 500ms + 250ms at 8kHz.
	if got, want := s.Len(), 10000; got != want {
		t.Errorf("samples = %d, want %d", got, want)
	}
}

func TestStreamRestIsSilent(t *testing.T) {
	s, n := Stream(mustParse(t, "0:4"), 60, 1000, 0.5)
	if n != 1000 {
		t.Fatalf("length = %d, want 1000", n)
	}
	buf := make([][2]float64, 512)
	got := 0
	for {
		k, ok := s.Stream(buf)
		for _, v := range buf[:k] {
			if v[0] != 0 {
				t.Fatalf("rest sample = %v", v)
			}
		}
		got += k
		if !ok {
			break
		}
	}
	if got != n {
		t.Errorf("streamed %d samples, want %d", got, n)
	}
}

func TestMIDI(t *testing.T) {
	song := mustParse(t, "44000:4,0:4,88000:4")
	path := filepath.Join(t.TempDir(), "song.mid")
	if err := MIDI(path, song, 90); err != nil {
		t.Fatal(err)
	}

	rd, err := smf.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	tempos := rd.TempoChanges()
	if len(tempos) == 0 || math.Abs(tempos[0].BPM-90) > 0.01 {
		t.Errorf("tempo changes = %+v, want 90 bpm", tempos)
	}

	var keys []uint8
	var starts []int64
	for _, tr := range rd.Tracks {
		var abs int64
		for _, ev := range tr {
			abs += int64(ev.Delta)
			var ch, key, vel uint8
			if midi.Message(ev.Message).GetNoteStart(&ch, &key, &vel) {
				keys = append(keys, key)
				starts = append(starts, abs)
			}
		}
	}
	if len(keys) != 2 || keys[0] != 69 || keys[1] != 81 {
		t.Fatalf("note keys = %v, want [69 81]", keys)
	}
	// The rest pushes the second note two quarters in.
	if starts[1]-starts[0] != 2*PPQ {
		t.Errorf("second note at %d ticks, want %d", starts[1]-starts[0], 2*PPQ)
	}
}

func TestRejectsBadBeat(t *testing.T) {
	song := mustParse(t, "44000:4")
	dir := t.TempDir()
	for _, beat := range []int{0, -1, note.MaxBeat + 1, 1 << 62} {
		if err := MIDI(filepath.Join(dir, "x.mid"), song, beat); err == nil {
			t.Errorf("MIDI at beat %d succeeded", beat)
		}
		f, err := os.Create(filepath.Join(dir, "x.wav"))
		if err != nil {
			t.Fatal(err)
		}
		if err := WAV(f, song, beat, WAVOptions{}); err == nil {
			t.Errorf("WAV at beat %d succeeded", beat)
		}
		f.Close()
	}
}
