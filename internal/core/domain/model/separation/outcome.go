package separation

// Outcome tells a caller whether a lifecycle call changed anything.
// Repeated release and repeated completion are benign and reported, not rejected.
type Outcome int

const (
	// OutcomeApplied means the transition happened.
	OutcomeApplied Outcome = iota + 1
	// OutcomeAlreadyReleased answers a release of a released control.
	OutcomeAlreadyReleased
	// OutcomeAlreadyCompleted answers a completion of a completed record.
	OutcomeAlreadyCompleted
)

// String returns the wire name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeAlreadyReleased:
		return "already_released"
	case OutcomeAlreadyCompleted:
		return "already_completed"
	default:
		return "unknown"
	}
}

// Changed reports whether the call mutated state.
func (o Outcome) Changed() bool {
	return o == OutcomeApplied
}
