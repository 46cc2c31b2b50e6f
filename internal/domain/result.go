package domain

// ErrorKind classifies why an operation failed. KindNone marks success.
type ErrorKind string

const (
	KindNone             ErrorKind = ""
	KindConnectTimeout   ErrorKind = "connect_timeout"
	KindConnectFailure   ErrorKind = "connect_failure"
	KindReadTimeout      ErrorKind = "read_timeout"
	KindUnexpectedStatus ErrorKind = "unexpected_status"
	KindAuthFailure      ErrorKind = "auth_failure"
	KindTransportFault   ErrorKind = "transport_fault"
	KindBodyTooLarge     ErrorKind = "body_too_large"
	KindInvalidArgument  ErrorKind = "invalid_argument"
	KindBusy             ErrorKind = "busy"
)

// GroupDescriptor is one parsed line of a LIST / LIST ACTIVE reply.
type GroupDescriptor struct {
	Name    string `json:"name"`
	High    int64  `json:"high"`
	Low     int64  `json:"low"`
	Posting string `json:"posting"`
}

// GroupStatus is the parsed "211 count low high name" reply to GROUP.
type GroupStatus struct {
	Count int64  `json:"count"`
	Low   int64  `json:"low"`
	High  int64  `json:"high"`
	Name  string `json:"name"`
}

// Result is the uniform outcome of every operation. Failures are reported
// through Success, Kind and Message; no operation returns an error.
type Result struct {
	// ID references the history record when the operation was recorded.
	ID string `json:"id,omitempty"`

	Success      bool      `json:"success"`
	Kind         ErrorKind `json:"kind,omitempty"`
	Message      string    `json:"message"`
	Greeting     string    `json:"greeting"`
	LastResponse string    `json:"last_response"`

	// Lines is the multiline payload after per-command shaping.
	Lines  []string          `json:"lines,omitempty"`
	Groups []GroupDescriptor `json:"groups,omitempty"`
	Group  *GroupStatus      `json:"group,omitempty"`

	// Err keeps the underlying cause for errors.Is / errors.As.
	Err error `json:"-"`
}

// Failed builds a failure result.
func Failed(kind ErrorKind, message string, err error) Result {
	return Result{Kind: kind, Message: message, Err: err}
}
