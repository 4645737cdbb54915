package fetch

import "time"

// Reason classifies why a fetch failed. It is present on an Outcome
// only when Succeeded is false.
type Reason string

const (
	// ReasonTimeout means no response arrived within the attempt window. Retryable.
	ReasonTimeout Reason = "timeout"
	// ReasonConnection covers DNS failures, refused or reset connections. Retryable.
	ReasonConnection Reason = "connection_failure"
	// ReasonHTTPStatus means a response arrived with a non-2xx status. Terminal.
	ReasonHTTPStatus Reason = "http_status_error"
	// ReasonParse means the body could not be interpreted as HTML. Never terminal:
	// it is downgraded to a success with empty extracted fields and only logged.
	ReasonParse Reason = "parse_failure"
	// ReasonCancelled means the fetch was abandoned because the run deadline
	// expired or the run was interrupted. Terminal.
	ReasonCancelled Reason = "cancelled"
	// ReasonUnknown is any uncategorized failure. Terminal, always logged.
	ReasonUnknown Reason = "unknown"
)

// Outcome is the terminal classification of one target's fetch, after all
// retries. Exactly one Outcome is produced per target per runner invocation
// and it is immutable once returned.
type Outcome struct {
	Target     string        `json:"url"`
	Succeeded  bool          `json:"success"`
	StatusCode int           `json:"status_code,omitempty"`
	Title      string        `json:"title,omitempty"`
	LinkCount  int           `json:"links"`
	Elapsed    time.Duration `json:"-"`
	ElapsedMs  float64       `json:"elapsed_ms"`
	Retries    int           `json:"retries"`
	Reason     Reason        `json:"reason,omitempty"`
	Detail     string        `json:"detail,omitempty"`
}

func (o Outcome) withElapsed(d time.Duration) Outcome {
	o.Elapsed = d
	o.ElapsedMs = float64(d) / float64(time.Millisecond)
	return o
}

// CancelledOutcome builds the terminal Outcome recorded for a target that was
// never fetched, or abandoned mid-flight, because its run was cancelled.
func CancelledOutcome(target string, elapsed time.Duration) Outcome {
	return Outcome{
		Target: target,
		Reason: ReasonCancelled,
		Detail: "run deadline expired before fetch completed",
	}.withElapsed(elapsed)
}

// UnknownOutcome builds the terminal Outcome for an uncategorized failure,
// such as a panic recovered inside a worker.
func UnknownOutcome(target string, elapsed time.Duration, detail string) Outcome {
	return Outcome{
		Target: target,
		Reason: ReasonUnknown,
		Detail: detail,
	}.withElapsed(elapsed)
}
