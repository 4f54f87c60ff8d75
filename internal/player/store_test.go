package player

import (
	"testing"

	"github.com/chase3718/buzzer/internal/note"
)

func TestStoreAdvance(t *testing.T) {
	var st store
	st.advance()
	if st.cursor != 0 || !note.IsSentinel(st.current()) {
		t.Fatalf("empty store: cursor %d, current %v", st.cursor, st.current())
	}

	st.install(note.New(note.Note{Freq: 100, Code: note.Quarter}, note.Note{Freq: 200, Code: note.Quarter}))
	want := []int{1, 2, 0, 1}
	for i, w := range want {
		st.advance()
		if st.cursor != w {
			t.Fatalf("advance %d: cursor %d, want %d", i, st.cursor, w)
		}
	}

	st.install(note.New(note.Note{Freq: 300, Code: note.Half}))
	if st.cursor != 0 || st.current().Freq != 300 {
		t.Errorf("after install: cursor %d, current %v", st.cursor, st.current())
	}
}

func TestStoreSetBeat(t *testing.T) {
	st := store{beat: 120}
	if err := st.setBeat(0); err == nil {
		t.Error("setBeat(0) succeeded")
	}
	if st.beat != 120 {
		t.Errorf("beat changed to %d after rejected update", st.beat)
	}
	if err := st.setBeat(note.MaxBeat + 1); err == nil {
		t.Error("setBeat above MaxBeat succeeded")
	}
	if err := st.setBeat(note.MaxBeat); err != nil {
		t.Errorf("setBeat(MaxBeat) = %v", err)
	}
	if err := st.setBeat(200); err != nil || st.beat != 200 {
		t.Errorf("setBeat(200) = %v, beat %d", err, st.beat)
	}
}
