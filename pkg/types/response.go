package types

// SuccessEnvelope wraps every successful API payload.
type SuccessEnvelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

// ErrorEnvelope is the single failure shape. ErrorType names the taxonomy
// bucket (NotFound, Unauthorized, BadRequest, ...) and Code the machine code.
type ErrorEnvelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	ErrorType  string `json:"errorType"`
	Code       string `json:"code,omitempty"`
	Details    any    `json:"details,omitempty"`
}

// Page is the pagination block returned by list endpoints.
type Page struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}
