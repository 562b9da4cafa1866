package flatrec

// streamState is the Fresh -> HeaderHandled -> Streaming -> Errored|Drained
// state machine shared by Reader and Writer (spec §4.7).
type streamState int

const (
	stateFresh streamState = iota
	stateHeaderHandled
	stateStreaming
	stateErrored
	stateDrained
)
