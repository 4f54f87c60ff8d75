package actuator

import (
	"context"

	"github.com/chase3718/buzzer/internal/mcu"
)

// MCU sounds tones through a buzzer microcontroller on a serial link.
type MCU struct {
	link *mcu.Link
	duty byte
}

// NewMCU drives link with the given duty percentage (0 selects
// DefaultDuty). The caller keeps ownership of link, which may also be
// carrying button frames.
func NewMCU(link *mcu.Link, duty int) *MCU {
	if duty <= 0 || duty > 100 {
		duty = DefaultDuty
	}
	return &MCU{link: link, duty: byte(duty)}
}

func (m *MCU) Tone(_ context.Context, freq uint32) error {
	if freq == 0 {
		return m.link.Silence()
	}
	return m.link.Tone(freq, m.duty)
}

func (m *MCU) Silence(context.Context) error {
	return m.link.Silence()
}

// Close silences the buzzer. It leaves the link open.
func (m *MCU) Close() error {
	return m.link.Silence()
}
