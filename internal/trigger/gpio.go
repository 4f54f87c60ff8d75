package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// edgePoll bounds each wait for an edge so Run notices cancellation.
const edgePoll = 100 * time.Millisecond

// GPIO watches a push button wired to a GPIO input with a pull-down; a
// rising edge is a press.
type GPIO struct {
	pin gpio.PinIn
	log *slog.Logger
}

// OpenGPIO initialises the host drivers and configures the named pin,
// e.g. "GPIO22", for rising-edge detection.
func OpenGPIO(name string, log *slog.Logger) (*GPIO, error) {
	if log == nil {
		log = slog.Default()
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("gpio: host init: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio: no pin %q", name)
	}
	if err := p.In(gpio.PullDown, gpio.RisingEdge); err != nil {
		return nil, fmt.Errorf("gpio: %s: %w", name, err)
	}
	log.Info("gpio: button ready", "pin", name)
	return &GPIO{pin: p, log: log}, nil
}

func (g *GPIO) Run(ctx context.Context, edge func()) error {
	defer func() {
		if err := g.pin.Halt(); err != nil {
			g.log.Warn("gpio: halt failed", "err", err)
		}
	}()
	for ctx.Err() == nil {
		if g.pin.WaitForEdge(edgePoll) {
			g.log.Debug("gpio: edge", "pin", g.pin.Name())
			edge()
		}
	}
	return nil
}
