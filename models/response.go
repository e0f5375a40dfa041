package models

// Response model
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// WebhookResponse is the acknowledgment body returned to the order platform.
// Business no-ops still acknowledge with "ok" so the platform never retries
// them.
type WebhookResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	OrderID string `json:"order_id,omitempty"`
}
