package actuator

import (
	"context"
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// DefaultDuty is the PWM duty cycle, in percent, used for tones.
const DefaultDuty = 70

// PWM drives a piezo buzzer from a hardware PWM pin.
type PWM struct {
	pin  gpio.PinOut
	duty gpio.Duty
	log  *slog.Logger
}

// OpenPWM initialises the host drivers and claims the named pin, e.g.
// "GPIO12". duty is a percentage; 0 selects DefaultDuty.
func OpenPWM(name string, duty int, log *slog.Logger) (*PWM, error) {
	if log == nil {
		log = slog.Default()
	}
	if duty <= 0 || duty > 100 {
		duty = DefaultDuty
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("pwm: host init: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("pwm: no pin %q", name)
	}
	if err := p.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("pwm: %s: %w", name, err)
	}
	log.Info("pwm: pin ready", "pin", name, "duty", duty)
	return &PWM{
		pin:  p,
		duty: gpio.DutyMax * gpio.Duty(duty) / 100,
		log:  log,
	}, nil
}

// Frequency converts centihertz to a periph frequency.
func Frequency(centiHz uint32) physic.Frequency {
	return physic.Frequency(centiHz) * 10 * physic.MilliHertz
}

func (p *PWM) Tone(_ context.Context, freq uint32) error {
	if freq == 0 {
		return p.silence()
	}
	if err := p.pin.PWM(p.duty, Frequency(freq)); err != nil {
		return fmt.Errorf("pwm: tone %d: %w", freq, err)
	}
	p.log.Debug("pwm: tone", "freq", Frequency(freq))
	return nil
}

func (p *PWM) Silence(context.Context) error {
	return p.silence()
}

func (p *PWM) silence() error {
	if err := p.pin.Out(gpio.Low); err != nil {
		return fmt.Errorf("pwm: silence: %w", err)
	}
	return nil
}

// Close silences the buzzer and releases the pin.
func (p *PWM) Close() error {
	err := p.silence()
	if herr := p.pin.Halt(); err == nil {
		err = herr
	}
	return err
}
