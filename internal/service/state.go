package service

// Status is the lifecycle of a single fetch site: idle → loading → success | failure.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Settled reports whether the fetch has finished, successfully or not.
func (s Status) Settled() bool {
	return s == StatusSuccess || s == StatusFailure
}

// Static user-facing messages. Network, status and decode failures all
// collapse into these.
const (
	MsgUsersFailed = "Failed to fetch users."
	MsgUserFailed  = "Failed to fetch user details."
	MsgUserMissing = "No user details found."
)
