package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// DefaultPreferred devices are picked first when several inputs exist.
var DefaultPreferred = []string{"Launchkey", "Novation", "Pedal"}

// DefaultExcluded virtual/system ports are never auto-connected.
var DefaultExcluded = []string{"Midi Through", "Through Port", "Dummy"}

// midiScanEvery is the hot-plug polling period.
const midiScanEvery = time.Second

// MIDI turns note-on messages from a MIDI pad or foot switch into button
// presses. It follows the device across unplug and replug.
type MIDI struct {
	Preferred []string
	Excluded  []string

	log *slog.Logger
	drv *rtmididrv.Driver

	mu     sync.Mutex
	port   drivers.In
	stop   func()
	device string // connected input, "" when none
	edge   func()
}

// NewMIDI initialises the rtmidi driver. Run closes it.
func NewMIDI(log *slog.Logger) (*MIDI, error) {
	if log == nil {
		log = slog.Default()
	}
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("midi: rtmididrv: %w", err)
	}
	return &MIDI{
		Preferred: DefaultPreferred,
		Excluded:  DefaultExcluded,
		log:       log,
		drv:       drv,
	}, nil
}

// Run polls for devices until ctx is done, then disconnects and closes
// the driver.
func (m *MIDI) Run(ctx context.Context, edge func()) error {
	m.mu.Lock()
	m.edge = edge
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.disconnect()
		m.mu.Unlock()
		m.drv.Close()
	}()

	ticker := time.NewTicker(midiScanEvery)
	defer ticker.Stop()
	for {
		m.scan()
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// scan drops a vanished device or connects to the best new one. A
// dropped device is looked for again on the next scan.
func (m *MIDI) scan() {
	m.mu.Lock()
	defer m.mu.Unlock()

	inputs := m.inputs()
	if m.device != "" {
		if slices.Contains(inputs, m.device) {
			return
		}
		m.log.Warn("midi: device disappeared", "device", m.device)
		m.disconnect()
		return
	}

	name, ok := pickPreferred(inputs, m.Preferred)
	if !ok {
		return
	}
	if err := m.connect(name); err != nil {
		m.log.Error("midi: connect failed", "device", name, "err", err)
	}
}

func (m *MIDI) inputs() []string {
	ins, err := m.drv.Ins()
	if err != nil {
		m.log.Error("midi: list inputs failed", "err", err)
		return nil
	}
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	names = filterExcluded(names, m.Excluded)
	m.log.Debug("midi: inputs", "count", len(names), "devices", strings.Join(names, ", "))
	return names
}

func filterExcluded(names, excluded []string) []string {
	return slices.DeleteFunc(slices.Clone(names), func(name string) bool {
		return slices.ContainsFunc(excluded, func(pat string) bool {
			return containsCI(name, pat)
		})
	})
}

// pickPreferred returns the first input matching a preferred pattern, or
// the only input when there is exactly one.
func pickPreferred(inputs, preferred []string) (string, bool) {
	for _, pat := range preferred {
		if i := slices.IndexFunc(inputs, func(name string) bool { return containsCI(name, pat) }); i >= 0 {
			return inputs[i], true
		}
	}
	if len(inputs) == 1 {
		return inputs[0], true
	}
	return "", false
}

func (m *MIDI) disconnect() {
	if m.stop != nil {
		m.stop()
		m.stop = nil
	}
	if m.port != nil {
		_ = m.port.Close()
		m.port = nil
	}
	m.device = ""
}

// connect opens name and listens for note-ons. mu is held.
func (m *MIDI) connect(name string) error {
	ins, err := m.drv.Ins()
	if err != nil {
		return err
	}
	i := slices.IndexFunc(ins, func(in drivers.In) bool { return in.String() == name })
	if i < 0 {
		return fmt.Errorf("input %q not found", name)
	}
	port := ins[i]
	if err := port.Open(); err != nil {
		return fmt.Errorf("open %q: %w", name, err)
	}

	edge := m.edge
	onMsg := func(msg midi.Message, _ int32) {
		var ch, key, vel uint8
		if !msg.GetNoteStart(&ch, &key, &vel) {
			return
		}
		m.log.Debug("midi: note on", "ch", ch, "key", key, "vel", vel)
		if edge != nil {
			edge()
		}
	}
	onErr := func(err error) {
		m.log.Warn("midi: listener error", "device", name, "err", err)
		// The listener goroutine must not tear itself down.
		go func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.device == name {
				m.disconnect()
			}
		}()
	}
	stop, err := midi.ListenTo(port, onMsg, midi.HandleError(onErr))
	if err != nil {
		_ = port.Close()
		return fmt.Errorf("listen %q: %w", name, err)
	}

	m.port, m.stop, m.device = port, stop, name
	m.log.Info("midi: connected", "device", name)
	return nil
}
