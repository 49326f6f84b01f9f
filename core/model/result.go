package model

// Status is the outcome of a docking request.
type Status string

const (
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Reason explains a rejection. The set of reasons is closed.
type Reason string

const (
	ReasonRefuelingUnsupported Reason = "refueling unsupported at requested port"
	ReasonNoCompatiblePort     Reason = "no compatible ports available"
)

// AllocationResult is returned for every request that passes validation.
type AllocationResult struct {
	Status       Status `json:"status"`
	AssignedPort PortID `json:"assigned_port,omitempty"`
	Reason       Reason `json:"reason,omitempty"`
}

// Accepted builds a result assigning the mission to port.
func Accepted(port PortID) AllocationResult {
	return AllocationResult{Status: StatusAccepted, AssignedPort: port}
}

// Rejected builds a rejection carrying reason.
func Rejected(reason Reason) AllocationResult {
	return AllocationResult{Status: StatusRejected, Reason: reason}
}

// IsAccepted returns true when a port was assigned.
func (r AllocationResult) IsAccepted() bool { return r.Status == StatusAccepted }
