package player

// State is the playback state.
type State int

const (
	Stopped State = iota // nothing playing; the song may be replaced
	Paused               // stopped by the user mid-song, cursor kept
	Playing              // the tick is armed and the actuator sounds
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Paused:
		return "paused"
	case Playing:
		return "playing"
	}
	return "unknown"
}

// Request is the most recent intent not yet applied to the actuator.
// Newer requests overwrite older ones.
type Request int

const (
	RequestNone Request = iota
	RequestStart
	RequestResume
	RequestPause
	RequestReconfigure
)

func (r Request) String() string {
	switch r {
	case RequestNone:
		return "none"
	case RequestStart:
		return "start"
	case RequestResume:
		return "resume"
	case RequestPause:
		return "pause"
	case RequestReconfigure:
		return "reconfigure"
	}
	return "unknown"
}

// buttonRequest maps a button press to the request it raises in state s.
func buttonRequest(s State) Request {
	switch s {
	case Stopped:
		return RequestStart
	case Paused:
		return RequestResume
	default:
		return RequestPause
	}
}

// Effect is what the evaluator must do to the actuator after a transition.
type Effect int

const (
	// EffectNone leaves the actuator and the tick alone.
	EffectNone Effect = iota
	// EffectArm sounds the note under the cursor and arms the tick for
	// its length.
	EffectArm
	// EffectSilence cancels the tick and silences the actuator.
	EffectSilence
	// EffectStop is EffectSilence plus rewinding the cursor to the first
	// note.
	EffectStop
)

func (e Effect) String() string {
	switch e {
	case EffectNone:
		return "none"
	case EffectArm:
		return "arm"
	case EffectSilence:
		return "silence"
	case EffectStop:
		return "stop"
	}
	return "unknown"
}

// Inputs are the facts about the store that Transition needs.
type Inputs struct {
	Ticked bool // the tick fired since the last evaluation
	Loaded bool // a song is installed
	AtEnd  bool // the cursor is on the sentinel
}

// Transition is the playback state machine. It is a pure function of the
// current state, the pending request and the store facts in in.
//
// Requests that make no sense in the current state are ignored, which
// leaves the tick (if it fired) to decide. The tick only matters while
// playing.
func Transition(s State, r Request, in Inputs) (State, Effect) {
	switch {
	case r == RequestReconfigure:
		return Stopped, EffectStop
	case r == RequestResume && s == Paused && in.AtEnd:
		// Paused right as the last note ended.
		return Stopped, EffectStop
	case r == RequestStart && s == Stopped && in.Loaded,
		r == RequestResume && s == Paused && in.Loaded:
		return Playing, EffectArm
	case r == RequestPause && s == Playing:
		return Paused, EffectSilence
	}

	if s != Playing || !in.Ticked {
		return s, EffectNone
	}
	if !in.Loaded || in.AtEnd {
		return Stopped, EffectStop
	}
	return Playing, EffectArm
}
