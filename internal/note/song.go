package note

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

// KindNoSpace tags errors caused by a song that does not fit the buffer.
const KindNoSpace ftag.Kind = "NO_SPACE"

var (
	// ErrInvalidNote is returned for a pair that is not "freq:code".
	ErrInvalidNote = errors.New("invalid note")

	// ErrTooLong is returned when a song exceeds the buffer capacity.
	ErrTooLong = errors.New("song too long")
)

// DefaultCapacity is how many notes, sentinel included, fit one 4 KiB page
// of 4-byte steps.
const DefaultCapacity = 4096 / 4

// Song is a sequence of notes terminated by exactly one sentinel.
// A Song is never modified after Parse or New returns it.
type Song []Note

// New builds a song from notes, appending the sentinel.
func New(notes ...Note) Song {
	s := make(Song, 0, len(notes)+1)
	s = append(s, notes...)
	return append(s, Sentinel)
}

// Len returns the number of playable notes, excluding the sentinel.
func (s Song) Len() int {
	if len(s) == 0 {
		return 0
	}
	return len(s) - 1
}

// Duration returns the total playing time of the song at the given tempo.
func (s Song) Duration(beat int) time.Duration {
	var d time.Duration
	for _, n := range s {
		if IsSentinel(n) {
			break
		}
		d += n.Delay(beat)
	}
	return d
}

// String formats the song without its sentinel, e.g. "44000:4,88000:4".
func (s Song) String() string {
	var b strings.Builder
	for i, n := range s {
		if IsSentinel(n) {
			break
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(n.String())
	}
	return b.String()
}

// Parse reads "f1:d1,f2:d2,...,fn:dn" into a song and appends the
// sentinel. The whole text is rejected if any pair is malformed or if the
// song plus its sentinel would not fit in capacity notes.
//
// Frequencies are decimal centihertz below 2^24. Codes are decimal bytes
// with at least one figure bit. The pair 0:0 is reserved for the sentinel.
func Parse(text string, capacity int) (Song, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fault.Wrap(ErrInvalidNote,
			fmsg.With("empty note list"),
			ftag.With(ftag.InvalidArgument))
	}

	pairs := strings.Split(text, ",")
	if len(pairs)+1 > capacity {
		return nil, fault.Wrap(ErrTooLong,
			fmsg.With(fmt.Sprintf("%d notes, capacity %d", len(pairs), capacity-1)),
			ftag.With(KindNoSpace))
	}

	song := make(Song, 0, len(pairs)+1)
	for i, pair := range pairs {
		n, err := parseNote(pair)
		if err != nil {
			return nil, fault.Wrap(err,
				fmsg.With(fmt.Sprintf("note %d %q", i, pair)),
				ftag.With(ftag.InvalidArgument))
		}
		song = append(song, n)
	}
	return append(song, Sentinel), nil
}

func parseNote(pair string) (Note, error) {
	freqStr, codeStr, ok := strings.Cut(strings.TrimSpace(pair), ":")
	if !ok {
		return Note{}, fmt.Errorf("%w: missing ':'", ErrInvalidNote)
	}
	freq, err := strconv.ParseUint(freqStr, 10, 32)
	if err != nil || freq > MaxFreq {
		return Note{}, fmt.Errorf("%w: bad frequency %q", ErrInvalidNote, freqStr)
	}
	code, err := strconv.ParseUint(codeStr, 10, 8)
	if err != nil {
		return Note{}, fmt.Errorf("%w: bad duration %q", ErrInvalidNote, codeStr)
	}
	n := Note{Freq: uint32(freq), Code: uint8(code)}
	if IsSentinel(n) {
		return Note{}, fmt.Errorf("%w: 0:0 is reserved", ErrInvalidNote)
	}
	if n.Code&figureMask == 0 {
		return Note{}, fmt.Errorf("%w: duration %d selects no figure", ErrInvalidNote, code)
	}
	return n, nil
}
