// Package trigger turns physical inputs into play/pause button presses.
package trigger

import (
	"context"
	"strings"

	"github.com/chase3718/buzzer/internal/mcu"
)

// Source delivers button presses to edge until ctx is done. edge must not
// block; player.Controller.ButtonEdge qualifies.
type Source interface {
	Run(ctx context.Context, edge func()) error
}

// MCU reads button frames from a buzzer microcontroller link.
type MCU struct {
	Link *mcu.Link
}

func (m MCU) Run(ctx context.Context, edge func()) error {
	return m.Link.Watch(ctx, edge)
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
