package dto

type ChatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type ChatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
	UserID   string `json:"user_id,omitempty"`
}

type VoiceResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	UserText string `json:"user_text,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Version   string `json:"version"`
}
