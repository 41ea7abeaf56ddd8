package handler

// ErrorResponse is the canonical error envelope for all API errors.
type ErrorResponse struct {
	Message string      `json:"message"`
	Errors  FieldErrors `json:"errors,omitempty"`
}
