// Package player drives a single buzzer through a melody.
//
// A Controller is shared by three roles. ButtonEdge and the note tick
// never block: they touch a few fields under the lock and wake the
// evaluator. The evaluator goroutine started by Run is the only code that
// talks to the actuator, and it never holds the lock while doing so.
package player

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/chase3718/buzzer/internal/note"
)

// Actuator produces the tones. Both calls may block on hardware.
type Actuator interface {
	// Tone sounds a square wave at freq centihertz until the next call.
	Tone(ctx context.Context, freq uint32) error
	// Silence stops any sound.
	Silence(ctx context.Context) error
}

// Defaults.
const (
	DefaultBeat     = 120
	DefaultDebounce = 20 * time.Millisecond

	// MaxWrite is the longest command Write accepts, one page.
	MaxWrite = 4096
)

// Options configure a Controller. Zero fields take defaults.
type Options struct {
	Beat     int           // initial tempo, quarter notes per minute
	Capacity int           // max notes per song, sentinel included
	Debounce time.Duration // button edges closer than this are dropped
	Logger   *slog.Logger
	Now      func() time.Time
}

// Controller is the buzzer's playback controller.
type Controller struct {
	act      Actuator
	log      *slog.Logger
	now      func() time.Time
	debounce time.Duration
	capacity int

	tick *oneShot
	wake chan struct{}

	mu       sync.Mutex
	state    State
	pending  Request
	ticked   bool
	lastEdge time.Time
	store

	// applying is set while the evaluator drives the actuator towards
	// next and state has not caught up yet.
	applying bool
	next     State
}

// New returns a stopped controller with no song.
func New(act Actuator, opts Options) (*Controller, error) {
	if opts.Beat == 0 {
		opts.Beat = DefaultBeat
	}
	if opts.Capacity == 0 {
		opts.Capacity = note.DefaultCapacity
	}
	if opts.Debounce == 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Beat < 0 || opts.Beat > note.MaxBeat {
		return nil, fault.Wrap(ErrInvalidArgument,
			fmsg.With(fmt.Sprintf("beat %d", opts.Beat)),
			ftag.With(ftag.InvalidArgument))
	}
	if opts.Capacity < 2 {
		return nil, fault.Wrap(ErrInvalidArgument,
			fmsg.With(fmt.Sprintf("capacity %d", opts.Capacity)),
			ftag.With(ftag.InvalidArgument))
	}

	c := &Controller{
		act:      act,
		log:      opts.Logger,
		now:      opts.Now,
		debounce: opts.Debounce,
		capacity: opts.Capacity,
		wake:     make(chan struct{}, 1),
	}
	c.beat = opts.Beat
	c.tick = newOneShot(c.onTick)
	return c, nil
}

// Run evaluates pending requests until ctx is done, then silences the
// actuator and stops playback. Run must be called exactly once.
func (c *Controller) Run(ctx context.Context) error {
	c.log.Info("player: running", "beat", c.Beat(), "capacity", c.capacity, "debounce", c.debounce)
	defer c.shutdown(context.WithoutCancel(ctx))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.wake:
			c.evaluate(ctx)
		}
	}
}

func (c *Controller) shutdown(ctx context.Context) {
	c.tick.cancel()
	if err := c.act.Silence(ctx); err != nil {
		c.log.Error("player: silence on shutdown failed", "err", err)
	}
	c.mu.Lock()
	c.state = Stopped
	c.pending = RequestNone
	c.ticked = false
	c.applying = false
	c.cursor = 0
	c.mu.Unlock()
	c.log.Info("player: stopped")
}

// signal wakes the evaluator. Wakes coalesce: the evaluator reads the
// latest request, not one per wake.
func (c *Controller) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// onTick runs when the current note has finished. It only moves the
// cursor and hands over to the evaluator.
func (c *Controller) onTick() {
	c.mu.Lock()
	if c.state != Playing || !c.loaded() {
		c.mu.Unlock()
		return
	}
	c.advance()
	c.ticked = true
	c.mu.Unlock()
	c.signal()
}

// evaluate applies the pending request to the actuator.
func (c *Controller) evaluate(ctx context.Context) {
	c.mu.Lock()
	req, ticked := c.pending, c.ticked
	c.pending, c.ticked = RequestNone, false
	state := c.state
	song, cursor, beat := c.song, c.cursor, c.beat
	cur := c.current()
	in := Inputs{
		Ticked: ticked,
		Loaded: len(song) > 0,
		AtEnd:  note.IsSentinel(cur),
	}
	next, eff := Transition(state, req, in)
	if eff != EffectNone {
		c.applying, c.next = true, next
	}
	c.mu.Unlock()

	if req == RequestStart && state == Stopped && !in.Loaded {
		c.log.Warn("player: start ignored", "err", ErrNotConfigured)
	}
	c.log.Debug("player: transition",
		"from", state, "request", req, "ticked", ticked,
		"to", next, "effect", eff, "cursor", cursor)

	switch eff {
	case EffectArm:
		if err := c.sound(ctx, cur); err != nil {
			c.log.Error("player: actuator failed", "freq", cur.Freq, "err", err)
		}
		// Arming under the lock means the tick always sees the new state.
		c.mu.Lock()
		c.state = next
		c.applying = false
		c.tick.arm(cur.Delay(beat))
		c.mu.Unlock()
		return
	case EffectSilence, EffectStop:
		c.tick.cancel()
		if err := c.act.Silence(ctx); err != nil {
			c.log.Error("player: silence failed", "err", err)
		}
	}
	c.commit(next, eff == EffectStop)
	if eff == EffectStop && state == Playing && req == RequestNone {
		c.log.Info("player: song finished", "notes", song.Len())
	}
}

func (c *Controller) sound(ctx context.Context, n note.Note) error {
	if n.IsRest() {
		return c.act.Silence(ctx)
	}
	return c.act.Tone(ctx, n.Freq)
}

func (c *Controller) commit(s State, rewind bool) {
	c.mu.Lock()
	c.state = s
	c.applying = false
	if rewind {
		c.cursor = 0
	}
	c.mu.Unlock()
}

// ButtonEdge handles a press of the play/pause button. It never blocks.
// Presses within the debounce window of the last accepted one are dropped.
func (c *Controller) ButtonEdge() {
	now := c.now()

	c.mu.Lock()
	if !c.lastEdge.IsZero() && now.Sub(c.lastEdge) < c.debounce {
		c.mu.Unlock()
		return
	}
	c.lastEdge = now
	c.pending = buttonRequest(c.heading())
	c.mu.Unlock()

	c.signal()
}

// heading is the state the controller settles in once the transition in
// flight and a pending Start or Resume have been applied. mu is held.
func (c *Controller) heading() State {
	s := c.settled()
	if c.pending == RequestStart || c.pending == RequestResume {
		s, _ = Transition(s, c.pending, Inputs{
			Loaded: c.loaded(),
			AtEnd:  note.IsSentinel(c.current()),
		})
	}
	return s
}

// Write runs one control command: "music f1:d1,f2:d2,..." installs a song,
// "beat n" sets the tempo. Surrounding whitespace is ignored.
func (c *Controller) Write(text string) error {
	if len(text) >= MaxWrite {
		return fault.Wrap(ErrInvalidArgument,
			fmsg.With(fmt.Sprintf("command of %d bytes", len(text))),
			ftag.With(ftag.InvalidArgument))
	}
	cmd, arg, _ := strings.Cut(strings.TrimSpace(text), " ")
	switch cmd {
	case "music":
		return c.Install(arg)
	case "beat":
		beat, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			return fault.Wrap(ErrInvalidArgument,
				fmsg.With(fmt.Sprintf("beat %q", arg)),
				ftag.With(ftag.InvalidArgument))
		}
		return c.SetBeat(beat)
	}
	return fault.Wrap(ErrInvalidCommand,
		fmsg.With(fmt.Sprintf("command %q", cmd)),
		ftag.With(ftag.InvalidArgument))
}

// Install parses notes and makes them the active song. It fails with
// ErrBusy unless playback is stopped, and leaves the previous song in
// place on any error.
func (c *Controller) Install(notes string) error {
	if s := c.State(); s != Stopped {
		return busy(s)
	}

	song, err := note.Parse(notes, c.capacity)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if s := c.settled(); s != Stopped {
		c.mu.Unlock()
		return busy(s)
	}
	c.install(song)
	c.pending = RequestReconfigure
	c.mu.Unlock()

	c.signal()
	c.log.Info("player: song configured", "notes", song.Len())
	return nil
}

// settled is state, or the state being applied by the evaluator. mu is held.
func (c *Controller) settled() State {
	if c.applying {
		return c.next
	}
	return c.state
}

func busy(s State) error {
	return fault.Wrap(ErrBusy,
		fmsg.With(fmt.Sprintf("player %s", s)),
		ftag.With(KindBusy))
}

// SetBeat changes the tempo. It takes effect from the next note and is
// allowed while playing.
func (c *Controller) SetBeat(beat int) error {
	c.mu.Lock()
	err := c.setBeat(beat)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.log.Info("player: beat configured", "beat", beat)
	return nil
}

// Beat returns the current tempo.
func (c *Controller) Beat() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.beat
}

// State returns the current playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Status is a consistent snapshot of the controller.
type Status struct {
	State   State
	Pending Request
	Cursor  int
	Notes   int
	Beat    int
	Song    note.Song
}

func (s Status) String() string {
	return fmt.Sprintf("state=%s cursor=%d notes=%d beat=%d", s.State, s.Cursor, s.Notes, s.Beat)
}

// Status returns a snapshot of the controller.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:   c.state,
		Pending: c.pending,
		Cursor:  c.cursor,
		Notes:   c.song.Len(),
		Beat:    c.beat,
		Song:    c.song,
	}
}
