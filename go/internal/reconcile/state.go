package reconcile

// Phase is the lifecycle phase of a reconciled view
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Source records where the current value came from
type Source uint8

const (
	SourceNone Source = iota
	SourceSnapshot
	SourceLive
	SourceFallback // snapshot failed or timed out before any data arrived
)

func (s Source) String() string {
	switch s {
	case SourceNone:
		return "none"
	case SourceSnapshot:
		return "snapshot"
	case SourceLive:
		return "live"
	case SourceFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// State is a point-in-time copy of a reconciler. Value is shared with the
// reconciler and must not be modified.
type State[T any] struct {
	Phase  Phase
	Source Source
	Stale  bool // push connection reported an error since the last applied update
	Value  T
}

// Loading reports whether the view should show a loading indicator
func (s State[T]) Loading() bool {
	return s.Phase == PhaseLoading
}

// Ready reports whether the view has data (possibly fallback data) to display
func (s State[T]) Ready() bool {
	return s.Phase == PhaseReady
}
