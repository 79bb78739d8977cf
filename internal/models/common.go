package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// AcceptedResponse acknowledges a queued workflow
type AcceptedResponse struct {
	Status   string `json:"status"`
	Workflow string `json:"workflow"`
	ServerId string `json:"server_id,omitempty"`
}
