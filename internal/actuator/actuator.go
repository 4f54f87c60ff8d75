// Package actuator provides the tone generators a player can drive.
package actuator

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// Actuator sounds one square-wave tone at a time. Frequencies are in
// centihertz.
type Actuator interface {
	Tone(ctx context.Context, freq uint32) error
	Silence(ctx context.Context) error
	io.Closer
}

// Log is a headless actuator that only logs tone changes.
type Log struct {
	log *slog.Logger

	mu   sync.Mutex
	freq uint32
}

// NewLog returns an actuator that writes every change to log.
func NewLog(log *slog.Logger) *Log {
	if log == nil {
		log = slog.Default()
	}
	return &Log{log: log}
}

func (l *Log) Tone(_ context.Context, freq uint32) error {
	l.mu.Lock()
	l.freq = freq
	l.mu.Unlock()
	l.log.Info("buzzer: tone", "freq_hz", float64(freq)/100)
	return nil
}

func (l *Log) Silence(context.Context) error {
	l.mu.Lock()
	l.freq = 0
	l.mu.Unlock()
	l.log.Info("buzzer: silence")
	return nil
}

// Freq returns the tone currently sounding, 0 if silent.
func (l *Log) Freq() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.freq
}

func (l *Log) Close() error { return nil }
