package player

import (
	"errors"

	"github.com/Southclaws/fault/ftag"

	"github.com/chase3718/buzzer/internal/note"
)

// Error kinds beyond the ones ftag defines.
const (
	KindBusy          ftag.Kind = "BUSY"
	KindNotConfigured ftag.Kind = "NOT_CONFIGURED"
)

var (
	// ErrInvalidArgument covers malformed text and non-positive tempos.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidCommand is returned by Write for an unknown command word.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrBusy is returned when a song is written while playback is not
	// stopped.
	ErrBusy = errors.New("device busy")

	// ErrNoSpace is returned by Handle.Read when the buffer cannot hold the
	// whole reply.
	ErrNoSpace = errors.New("no space left in buffer")

	// ErrNotConfigured is logged when Start is requested without a song.
	// The button has no way to receive it.
	ErrNotConfigured = errors.New("no song configured")
)

// Errno names the errno a device driver would have returned for err.
func Errno(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrInvalidCommand):
		return "EINVAL"
	case errors.Is(err, ErrBusy):
		return "EBUSY"
	case errors.Is(err, note.ErrTooLong), errors.Is(err, ErrNoSpace):
		return "ENOSPC"
	}
	switch ftag.Get(err) {
	case ftag.InvalidArgument:
		return "EINVAL"
	case KindBusy:
		return "EBUSY"
	case note.KindNoSpace:
		return "ENOSPC"
	}
	return "EIO"
}

// FromErrno returns the sentinel error matching an errno name, or nil if
// there is none.
func FromErrno(errno string) error {
	switch errno {
	case "EINVAL":
		return ErrInvalidArgument
	case "EBUSY":
		return ErrBusy
	case "ENOSPC":
		return ErrNoSpace
	}
	return nil
}
