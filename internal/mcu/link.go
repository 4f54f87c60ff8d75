package mcu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.bug.st/serial"
)

// readTimeout bounds each serial read so Watch notices cancellation.
const readTimeout = 100 * time.Millisecond

// Link is a framed connection to the buzzer MCU.
type Link struct {
	rw  io.ReadWriteCloser
	log *slog.Logger

	mu  sync.Mutex
	seq byte
}

// Open opens the named serial device at the given baud rate.
func Open(name string, baud int, log *slog.Logger) (*Link, error) {
	if log == nil {
		log = slog.Default()
	}
	mode := &serial.Mode{BaudRate: baud}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("mcu: open %s: %w", name, err)
	}
	if err := p.SetReadTimeout(readTimeout); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("mcu: set read timeout: %w", err)
	}
	log.Info("mcu: port opened", "device", name, "baud", baud)
	return NewLink(p, log), nil
}

// NewLink wraps an already open byte stream.
func NewLink(rw io.ReadWriteCloser, log *slog.Logger) *Link {
	if log == nil {
		log = slog.Default()
	}
	return &Link{rw: rw, log: log}
}

// Send writes one frame.
func (l *Link) Send(f Frame) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sendLocked(f)
}

func (l *Link) sendLocked(f Frame) error {
	data := f.Encode()
	n, err := l.rw.Write(data)
	if err != nil {
		return fmt.Errorf("mcu: write: %w", err)
	}
	l.log.Debug("mcu: frame sent", "bytes", n, "cmd", f.Cmd, "seq", l.seq)
	return nil
}

// Tone asks the MCU to sound freq centihertz at duty percent.
func (l *Link) Tone(freq uint32, duty byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	return l.sendLocked(ToneFrame(freq, duty, l.seq))
}

// Silence asks the MCU to stop the tone.
func (l *Link) Silence() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	return l.sendLocked(SilenceFrame(l.seq))
}

// Watch reads frames from the MCU and calls onButton for every button
// frame until ctx is done or the link fails.
func (l *Link) Watch(ctx context.Context, onButton func()) error {
	var dec Decoder
	buf := make([]byte, 64)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		n, err := l.rw.Read(buf)
		for _, f := range dec.Feed(buf[:n]) {
			if f.Cmd == CmdButton {
				l.log.Debug("mcu: button")
				onButton()
			} else {
				l.log.Debug("mcu: unhandled frame", "cmd", f.Cmd)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("mcu: read: %w", err)
		}
	}
}

// Close closes the underlying port.
func (l *Link) Close() error {
	l.log.Info("mcu: closing port")
	return l.rw.Close()
}
