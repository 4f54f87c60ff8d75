package trigger

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/chase3718/buzzer/internal/mcu"
)

func TestPickPreferred(t *testing.T) {
	tests := []struct {
		name   string
		inputs []string
		want   string
		ok     bool
	}{
		{"preferred wins", []string{"USB Pedal", "Launchkey Mini MIDI"}, "Launchkey Mini MIDI", true},
		{"case insensitive", []string{"novation pad"}, "novation pad", true},
		{"single input", []string{"USB Pedal"}, "USB Pedal", true},
		{"ambiguous", []string{"Keystation", "Foot Switch"}, "", false},
		{"none", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickPreferred(tt.inputs, DefaultPreferred)
			if got != tt.want || ok != tt.ok {
				t.Errorf("pickPreferred(%q) = %q, %v; want %q, %v", tt.inputs, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFilterExcluded(t *testing.T) {
	got := filterExcluded([]string{"Midi Through Port-0", "USB Pedal", "dummy out"}, DefaultExcluded)
	if want := []string{"USB Pedal"}; !reflect.DeepEqual(got, want) {
		t.Errorf("filterExcluded = %q, want %q", got, want)
	}
}

func TestMCUSource(t *testing.T) {
	r, w := io.Pipe()
	link := mcu.NewLink(struct {
		io.Reader
		io.Writer
		io.Closer
	}{r, io.Discard, r}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	var src Source = MCU{Link: link}
	presses := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- src.Run(context.Background(), func() { presses <- struct{}{} })
	}()

	if _, err := w.Write(mcu.Frame{Cmd: mcu.CmdButton}.Encode()); err != nil {
		t.Fatal(err)
	}
	select {
	case <-presses:
	case <-time.After(time.Second):
		t.Fatal("press not delivered")
	}
	w.Close()
	if err := <-done; err != nil {
		t.Errorf("Run = %v", err)
	}
}
