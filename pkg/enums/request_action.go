package enums

import "fmt"

// RequestAction represents the decision an administrator can take on a
// pending request.
type RequestAction string

const (
	// RequestActionApprove moves the request to Approved.
	RequestActionApprove RequestAction = "Approved"
	// RequestActionReject moves the request to Rejected.
	RequestActionReject RequestAction = "Rejected"
)

// IsValid reports whether the value is a known RequestAction.
func (a RequestAction) IsValid() bool {
	return a == RequestActionApprove || a == RequestActionReject
}

// ParseRequestAction converts raw input into a RequestAction.
func ParseRequestAction(value string) (RequestAction, error) {
	switch RequestAction(value) {
	case RequestActionApprove:
		return RequestActionApprove, nil
	case RequestActionReject:
		return RequestActionReject, nil
	default:
		return "", fmt.Errorf("invalid request action %q", value)
	}
}
