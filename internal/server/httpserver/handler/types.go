package handler

import "time"

// Response is the admin JSON envelope.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
	}
}
