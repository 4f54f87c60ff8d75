package actuator

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/gopxl/beep"
	"periph.io/x/conn/v3/physic"

	"github.com/chase3718/buzzer/internal/mcu"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestSquareSilentByDefault(t *testing.T) {
	sq := NewSquare(8000, 0.5)
	buf := make([][2]float64, 64)
	n, ok := sq.Stream(buf)
	if n != len(buf) || !ok {
		t.Fatalf("Stream = %d, %v", n, ok)
	}
	for i, s := range buf {
		if s[0] != 0 || s[1] != 0 {
			t.Fatalf("sample %d = %v, want silence", i, s)
		}
	}
}

func TestSquarePeriod(t *testing.T) {
	// 1000 Hz at 8000 Hz sampling: four samples high, four low.
	sq := NewSquare(beep.SampleRate(8000), 0.5)
	sq.SetFreq(100000)
	buf := make([][2]float64, 16)
	sq.Stream(buf)
	for i, s := range buf {
		want := 0.5
		if i%8 >= 4 {
			want = -0.5
		}
		if s[0] != want || s[1] != want {
			t.Errorf("sample %d = %v, want %v", i, s, want)
		}
	}
}

func TestSquareVolumeClamped(t *testing.T) {
	if v := NewSquare(8000, 3).volume; v != 1 {
		t.Errorf("volume = %v, want 1", v)
	}
	if v := NewSquare(8000, -1).volume; v != 0 {
		t.Errorf("volume = %v, want 0", v)
	}
}

func TestFrequency(t *testing.T) {
	if got, want := Frequency(44000), 440*physic.Hertz; got != want {
		t.Errorf("Frequency(44000) = %v, want %v", got, want)
	}
}

func TestLog(t *testing.T) {
	l := NewLog(discard)
	ctx := context.Background()
	if err := l.Tone(ctx, 44000); err != nil || l.Freq() != 44000 {
		t.Fatalf("Tone: %v, freq %d", err, l.Freq())
	}
	if err := l.Silence(ctx); err != nil || l.Freq() != 0 {
		t.Fatalf("Silence: %v, freq %d", err, l.Freq())
	}
}

type bufPort struct {
	written []byte
}

func (b *bufPort) Read([]byte) (int, error) { return 0, io.EOF }
func (b *bufPort) Close() error             { return nil }

func (b *bufPort) Write(p []byte) (int, error) {
	b.written = append(b.written, p...)
	return len(p), nil
}

func TestMCU(t *testing.T) {
	port := &bufPort{}
	m := NewMCU(mcu.NewLink(port, discard), 0)
	ctx := context.Background()
	if err := m.Tone(ctx, 44000); err != nil {
		t.Fatal(err)
	}
	if err := m.Tone(ctx, 0); err != nil {
		t.Fatal(err)
	}

	var d mcu.Decoder
	frames := d.Feed(port.written)
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[0].Cmd != mcu.CmdTone || frames[0].Freq() != 44000 || frames[0].Payload[3] != DefaultDuty {
		t.Errorf("tone frame = %+v", frames[0])
	}
	if frames[1].Cmd != mcu.CmdSilence {
		t.Errorf("rest frame = %+v, want silence", frames[1])
	}
}
