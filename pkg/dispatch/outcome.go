package dispatch

// Status is the terminal state of one event's processing.
type Status int

const (
	// StatusSuppressed means the event was deliberately not delivered:
	// failed validation, disabled guild, unset or vanished channel, or a
	// no-op diff. Normal control flow, not a failure.
	StatusSuppressed Status = iota

	// StatusDelivered means the rendered notification reached the sink.
	StatusDelivered

	// StatusFailed means rendering succeeded but delivery failed (or a
	// handler panicked). Swallowed at the boundary; never retried.
	StatusFailed
)

// String returns the status label.
func (s Status) String() string {
	switch s {
	case StatusDelivered:
		return "delivered"
	case StatusFailed:
		return "failed"
	default:
		return "suppressed"
	}
}

// Outcome is the result of dispatching one event. Suppression and failure
// are values here so the per-event state machine is directly observable in
// tests and metrics.
type Outcome struct {
	Status    Status
	Detail    string // suppression reason or failure context
	ChannelID uint64 // destination, when routed
}

func suppressed(detail string) Outcome {
	return Outcome{Status: StatusSuppressed, Detail: detail}
}
