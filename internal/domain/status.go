package domain

type RequestStatus string

const (
	RequestPending    RequestStatus = "pending"
	RequestAssigned   RequestStatus = "assigned"
	RequestInProgress RequestStatus = "in_progress"
	RequestCompleted  RequestStatus = "completed"
	RequestCancelled  RequestStatus = "cancelled"
)

func ParseRequestStatus(s string) (RequestStatus, bool) {
	switch RequestStatus(s) {
	case RequestPending, RequestAssigned, RequestInProgress, RequestCompleted, RequestCancelled:
		return RequestStatus(s), true
	}
	return "", false
}

// Terminal statuses accept no further transitions.
func (s RequestStatus) Terminal() bool {
	return s == RequestCompleted || s == RequestCancelled
}

// Open reports whether an agent is still working on the request.
func (s RequestStatus) Open() bool {
	return s == RequestAssigned || s == RequestInProgress
}

var adminTransitions = map[RequestStatus][]RequestStatus{
	RequestPending:    {RequestAssigned, RequestCancelled},
	RequestAssigned:   {RequestInProgress, RequestCancelled, RequestPending},
	RequestInProgress: {RequestCompleted, RequestCancelled},
}

var agentTransitions = map[RequestStatus][]RequestStatus{
	RequestAssigned:   {RequestInProgress},
	RequestInProgress: {RequestCompleted},
}

var customerTransitions = map[RequestStatus][]RequestStatus{
	RequestPending:  {RequestCancelled},
	RequestAssigned: {RequestCancelled},
}

// CanTransition reports whether a user of the given type may move a request from one status to another.
func CanTransition(actor UserType, from, to RequestStatus) bool {
	var table map[RequestStatus][]RequestStatus
	switch actor {
	case UserAdmin:
		table = adminTransitions
	case UserAgent:
		table = agentTransitions
	case UserCustomer:
		table = customerTransitions
	default:
		return false
	}
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}
