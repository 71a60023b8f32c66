// Package apierror provides the JSON error envelopes returned by the API.
// Handlers never serialize raw errors from storage; only user-facing notices
// and validation details reach the client.
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Erro de validação", Fields: fields}
}

// Internal is the only message sent for unexpected failures.
func Internal() *APIError {
	return &APIError{Detail: "Erro interno do servidor"}
}
