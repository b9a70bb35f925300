package types

// PollResultKind tags a single discovery attempt
type PollResultKind int

const (
	// PollUnknown is a response no recognised path matched
	PollUnknown PollResultKind = iota
	PollPending
	PollSuccess
	PollError
)

func (k PollResultKind) String() string {
	switch k {
	case PollPending:
		return "pending"
	case PollSuccess:
		return "success"
	case PollError:
		return "error"
	default:
		return "unknown"
	}
}

// PollResult is produced once per discovery attempt and discarded after reconciliation
type PollResult struct {
	Kind    PollResultKind
	Streams []*Stream // set for PollSuccess
	Message string    // set for PollError
}

func Pending() *PollResult {
	return &PollResult{Kind: PollPending}
}

func Success(streams []*Stream) *PollResult {
	return &PollResult{Kind: PollSuccess, Streams: streams}
}

func Failure(message string) *PollResult {
	return &PollResult{Kind: PollError, Message: message}
}
