package player

import (
	"fmt"
	"io"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/chase3718/buzzer/internal/note"
)

// Handle is one open of the control device. Reads report the tempo once;
// writes are control commands.
type Handle struct {
	c   *Controller
	off int64
}

// Open returns a new handle positioned at the start.
func (c *Controller) Open() *Handle {
	return &Handle{c: c}
}

// Read fills p with "beat=<n>\n" on the first call and returns io.EOF
// after that. p must be large enough for the whole line.
func (h *Handle) Read(p []byte) (int, error) {
	if h.off > 0 {
		return 0, io.EOF
	}
	msg := fmt.Sprintf("beat=%d\n", h.c.Beat())
	if len(p) < len(msg) {
		return 0, fault.Wrap(ErrNoSpace,
			fmsg.With(fmt.Sprintf("need %d bytes, have %d", len(msg), len(p))),
			ftag.With(note.KindNoSpace))
	}
	n := copy(p, msg)
	h.off += int64(n)
	return n, nil
}

// Write runs p as a control command and reports all of p as consumed.
func (h *Handle) Write(p []byte) (int, error) {
	if err := h.c.Write(string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}
