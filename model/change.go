package model

// ChangeKind identifies the allocator operation that produced a Change
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeRemoved  ChangeKind = "removed"
	ChangeUpdated  ChangeKind = "updated"
	ChangeLimited  ChangeKind = "limited"
	ChangeRejected ChangeKind = "rejected"
	ChangeReplaced ChangeKind = "replaced"
)

// Change describes a single mutation of the power budget
type Change struct {
	Kind      ChangeKind `json:"kind"`
	DeviceID  string     `json:"deviceId"`
	Requested float64    `json:"requested,omitempty"`
	Applied   float64    `json:"applied"`
	// Released is the power returned by a removed or replaced device
	Released float64 `json:"released,omitempty"`
	// Redistributed is the power handed out by the rebalance that followed the mutation
	Redistributed float64 `json:"redistributed,omitempty"`
	Total         float64 `json:"total"`
	Remaining     float64 `json:"remaining"`
}
