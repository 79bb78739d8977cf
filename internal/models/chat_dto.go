package models

// SendMessageRequest is the chat composer submission
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// SetCredentialRequest carries the API key the backend uses for the model
type SetCredentialRequest struct {
	APIKey string `json:"apiKey"`
}

// MessageListResponse is the visible transcript
type MessageListResponse struct {
	Messages     []ChatMessage `json:"messages"`
	IsProcessing bool          `json:"isProcessing"`
}

// Overview summarises the session for the dashboard stats panel
type Overview struct {
	Servers   int `json:"servers"`
	Connected int `json:"connected"`
	Tools     int `json:"tools"`
	Messages  int `json:"messages"`
}

// StateResponse is the snapshot the view renders from.
// The credential itself never leaves the process.
type StateResponse struct {
	Servers        []ServerDescriptor `json:"servers"`
	ActiveServerId *string            `json:"activeServerId"`
	Messages       []ChatMessage      `json:"messages"`
	IsProcessing   bool               `json:"isProcessing"`
	HasCredential  bool               `json:"hasCredential"`
	Settings       Settings           `json:"settings"`
	Overview       Overview           `json:"overview"`
}
