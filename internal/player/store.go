package player

import (
	"fmt"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/chase3718/buzzer/internal/note"
)

// store owns the active song, the tempo and the playback cursor.
// Every method expects the controller lock to be held and does O(1) work.
type store struct {
	song   note.Song // nil until the first install; never mutated in place
	beat   int
	cursor int
}

// install swaps in a fully built song and rewinds the cursor.
func (st *store) install(song note.Song) {
	st.song = song
	st.cursor = 0
}

func (st *store) setBeat(beat int) error {
	if beat <= 0 || beat > note.MaxBeat {
		return fault.Wrap(ErrInvalidArgument,
			fmsg.With(fmt.Sprintf("beat %d", beat)),
			ftag.With(ftag.InvalidArgument))
	}
	st.beat = beat
	return nil
}

func (st *store) loaded() bool {
	return len(st.song) > 0
}

// current returns the note under the cursor, or the sentinel when no song
// is installed.
func (st *store) current() note.Note {
	if !st.loaded() {
		return note.Sentinel
	}
	return st.song[st.cursor]
}

// advance moves the cursor to the next note, wrapping to the start once it
// has reached the sentinel.
func (st *store) advance() {
	if !st.loaded() {
		return
	}
	if note.IsSentinel(st.song[st.cursor]) {
		st.cursor = 0
		return
	}
	st.cursor++
}
