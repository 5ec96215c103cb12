package errors

const (
	HttpInternalError           = "internal_error"
	HttpInvalidJsonError        = "invalid_json"
	HttpValidationError         = "validation_failed"
	HttpStorageUnavailableError = "storage_unavailable"
)

// ErrorResponse is the error response body of every API endpoint.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
