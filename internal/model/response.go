package model

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail points an error message at a specific field.
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
