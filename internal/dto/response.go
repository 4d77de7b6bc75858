package dto

// APIResponse is the success envelope every handler answers with.
type APIResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// ErrorBody carries the machine-readable kind and a human message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the error envelope used by every error path.
type ErrorResponse struct {
	StatusCode int       `json:"statusCode"`
	Error      ErrorBody `json:"error"`
	Success    bool      `json:"success"`
}

// NewAPIResponse builds a success envelope.
func NewAPIResponse(statusCode int, data any, message string) APIResponse {
	if data == nil {
		data = struct{}{}
	}
	return APIResponse{StatusCode: statusCode, Data: data, Message: message, Success: statusCode < 400}
}

// NewErrorResponse builds an error envelope.
func NewErrorResponse(statusCode int, kind, message string) ErrorResponse {
	return ErrorResponse{StatusCode: statusCode, Error: ErrorBody{Code: kind, Message: message}, Success: false}
}
