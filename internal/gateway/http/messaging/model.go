package messaging

type sendRequest struct {
	To       string            `json:"to"`
	Template string            `json:"template"`
	Params   map[string]string `json:"params"`
}

type sendResponse struct {
	Success     bool   `json:"success"`
	ErrorReason string `json:"error_reason,omitempty"`
}
