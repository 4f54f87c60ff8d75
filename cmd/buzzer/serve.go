package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gopxl/beep"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/chase3718/buzzer/internal/actuator"
	"github.com/chase3718/buzzer/internal/config"
	"github.com/chase3718/buzzer/internal/control"
	"github.com/chase3718/buzzer/internal/mcu"
	"github.com/chase3718/buzzer/internal/player"
	"github.com/chase3718/buzzer/internal/trigger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the player daemon",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := getConfig()
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("buzzer starting",
		"actuator", cfg.Actuator.Kind,
		"beat", cfg.Beat,
		"capacity", cfg.Capacity,
		"debounce_ms", cfg.DebounceMS,
		"control", cfg.Control.Address,
	)

	var link *mcu.Link
	if cfg.UsesSerial() {
		l, err := mcu.Open(cfg.Actuator.Serial.Device, cfg.Actuator.Serial.Baud, logger)
		if err != nil {
			return err
		}
		defer l.Close()
		link = l
	}

	act, err := openActuator(cfg, link)
	if err != nil {
		return err
	}
	defer func() {
		if err := act.Close(); err != nil {
			logger.Warn("actuator close failed", "err", err)
		}
	}()

	c, err := player.New(act, player.Options{
		Beat:     cfg.Beat,
		Capacity: cfg.Capacity,
		Debounce: cfg.Debounce(),
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	sources, err := openTriggers(cfg, link)
	if err != nil {
		return err
	}

	ln, err := control.Listen(cfg.Control.Network, cfg.Control.Address)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.Run(ctx) })
	g.Go(func() error { return control.NewServer(c, logger).Serve(ctx, ln) })
	for name, src := range sources {
		g.Go(func() error {
			if err := src.Run(ctx, c.ButtonEdge); err != nil {
				logger.Error("trigger stopped", "trigger", name, "err", err)
			}
			return nil
		})
	}

	logger.Info("running – waiting for a song", "triggers", len(sources))
	err = g.Wait()
	logger.Info("buzzer stopped")
	return err
}

func openActuator(cfg *config.Config, link *mcu.Link) (actuator.Actuator, error) {
	a := cfg.Actuator
	switch a.Kind {
	case config.KindLog:
		return actuator.NewLog(logger), nil
	case config.KindPWM:
		return actuator.OpenPWM(a.Pin, a.Duty, logger)
	case config.KindMCU:
		return actuator.NewMCU(link, a.Duty), nil
	case config.KindSpeaker:
		return actuator.OpenSpeaker(beep.SampleRate(a.SampleRate), a.Volume, logger)
	}
	return nil, fmt.Errorf("unknown actuator kind %q", a.Kind)
}

func openTriggers(cfg *config.Config, link *mcu.Link) (map[string]trigger.Source, error) {
	t := cfg.Triggers
	sources := make(map[string]trigger.Source)
	if t.GPIO.Enabled {
		g, err := trigger.OpenGPIO(t.GPIO.Pin, logger)
		if err != nil {
			return nil, err
		}
		sources["gpio"] = g
	}
	if t.MIDI.Enabled {
		m, err := trigger.NewMIDI(logger)
		if err != nil {
			return nil, err
		}
		if len(t.MIDI.Preferred) > 0 {
			m.Preferred = t.MIDI.Preferred
		}
		if len(t.MIDI.Excluded) > 0 {
			m.Excluded = t.MIDI.Excluded
		}
		sources["midi"] = m
	}
	if t.MCU.Enabled {
		sources["mcu"] = trigger.MCU{Link: link}
	}
	return sources, nil
}
