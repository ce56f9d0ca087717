package handlers

// SearchRequest is the city search input, from the query string, a form or JSON.
type SearchRequest struct {
	City string `form:"city" json:"city" binding:"required" validate:"required,cityname,max=100"`
}

// ErrorResponse represents an error response with validation
type ErrorResponse struct {
	Error   string      `json:"error" validate:"required,min=1,max=500"`
	Code    string      `json:"code,omitempty" validate:"omitempty,min=1,max=50"`
	Details interface{} `json:"details,omitempty"`
}

type HealthResponse struct {
	Status        string `json:"status" validate:"required,oneof=ok alive ready"`
	Uptime        string `json:"uptime" validate:"required"`
	Timestamp     string `json:"timestamp,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	DisplayStatus string `json:"display_status,omitempty"`
}
