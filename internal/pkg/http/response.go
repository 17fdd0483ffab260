package http

// ErrorResponse envelope shared by every API error.
type ErrorResponse struct {
	Code    int    `json:"code"` // non-zero
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	// Error mirrors Message for clients of the completion endpoint, which read {error}.
	Error string `json:"error,omitempty"`
}

// SuccessResponse envelope shared by every API success.
type SuccessResponse struct {
	Code    int         `json:"code"` // always 0
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewSuccessResponse wraps data.
func NewSuccessResponse(message string, data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Code:    0,
		Message: message,
		Data:    data,
	}
}

// NewErrorResponse builds an error envelope; detail is optional.
func NewErrorResponse(code int, message string, detail ...string) *ErrorResponse {
	resp := &ErrorResponse{
		Code:    code,
		Message: message,
		Error:   message,
	}
	if len(detail) > 0 && detail[0] != "" {
		resp.Detail = detail[0]
	}
	return resp
}
