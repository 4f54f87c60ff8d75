package mcu

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// pipePort is an in-memory serial port: reads come from r, writes go to w.
type pipePort struct {
	r  *io.PipeReader
	mu sync.Mutex
	w  bytes.Buffer
}

func (p *pipePort) Read(b []byte) (int, error) { return p.r.Read(b) }

func (p *pipePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.w.Write(b)
}

func (p *pipePort) Close() error { return p.r.Close() }

func (p *pipePort) written() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.w.Bytes()...)
}

func TestLinkToneSilence(t *testing.T) {
	r, _ := io.Pipe()
	port := &pipePort{r: r}
	l := NewLink(port, discard)

	if err := l.Tone(44000, 70); err != nil {
		t.Fatal(err)
	}
	if err := l.Silence(); err != nil {
		t.Fatal(err)
	}

	var d Decoder
	frames := d.Feed(port.written())
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[0].Cmd != CmdTone || frames[0].Freq() != 44000 || frames[0].Payload[4] != 1 {
		t.Errorf("tone frame = %+v", frames[0])
	}
	if frames[1].Cmd != CmdSilence || frames[1].Payload[0] != 2 {
		t.Errorf("silence frame = %+v", frames[1])
	}
}

func TestLinkWatch(t *testing.T) {
	r, w := io.Pipe()
	l := NewLink(&pipePort{r: r}, discard)

	presses := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- l.Watch(context.Background(), func() { presses <- struct{}{} })
	}()

	button := Frame{Cmd: CmdButton}.Encode()
	if _, err := w.Write(append(button, button...)); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		select {
		case <-presses:
		case <-time.After(time.Second):
			t.Fatalf("press %d not delivered", i)
		}
	}

	w.Close()
	if err := <-done; err != nil {
		t.Errorf("Watch = %v, want nil on EOF", err)
	}
}
