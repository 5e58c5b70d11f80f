package model

// PhaseKind names the active submission phase.
type PhaseKind int

const (
	// PhaseIdle means nothing has been submitted yet, or the last outcome was cleared.
	PhaseIdle PhaseKind = iota

	// PhaseLoading means a submission request is in flight.
	PhaseLoading

	// PhaseResult means the last submission produced an AnalysisResult.
	PhaseResult

	// PhaseError means the last submission failed.
	PhaseError
)

// String returns the phase name.
func (k PhaseKind) String() string {
	switch k {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseResult:
		return "result"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// Phase is the submission workflow state. It is a closed union: the only
// implementations are Idle, Loading, Result and Failed. Exactly one is active
// at a time, so a loading indicator and a result can never be shown together.
type Phase interface {
	Kind() PhaseKind
	sealed()
}

// Idle is the initial phase.
type Idle struct{}

// Loading is entered when a valid submission starts.
type Loading struct{}

// Result carries the outcome of a successful submission.
type Result struct {
	Analysis AnalysisResult
}

// Failed carries the message of a failed submission. Err keeps the typed
// error for callers that need errors.As.
type Failed struct {
	Message string
	Err     error
}

// Kind implements Phase.
func (Idle) Kind() PhaseKind { return PhaseIdle }

// Kind implements Phase.
func (Loading) Kind() PhaseKind { return PhaseLoading }

// Kind implements Phase.
func (Result) Kind() PhaseKind { return PhaseResult }

// Kind implements Phase.
func (Failed) Kind() PhaseKind { return PhaseError }

func (Idle) sealed()    {}
func (Loading) sealed() {}
func (Result) sealed()  {}
func (Failed) sealed()  {}
