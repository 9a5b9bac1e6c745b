package allocator

// Grant reports the outcome of a single allocator operation
type Grant struct {
	DeviceID string `json:"deviceId"`
	// Found is false when the operation targeted an unknown device and was a no-op
	Found bool `json:"found"`
	// Requested is the consumption asked for by an update
	Requested float64 `json:"requested,omitempty"`
	// Applied is the device usage once the operation, including the rebalance, completed
	Applied float64 `json:"applied"`
	// Released is the power returned to the budget by a removal or replacement
	Released float64 `json:"released,omitempty"`
	// Limited is set when the request could not be fully honoured
	Limited bool `json:"limited,omitempty"`
	// Replaced is set when an admission replaced an existing device
	Replaced bool `json:"replaced,omitempty"`
	// Redistributed is the power handed out by the rebalance pass
	Redistributed float64 `json:"redistributed,omitempty"`
	Total         float64 `json:"total"`
	Remaining     float64 `json:"remaining"`
}
