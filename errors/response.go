package errors

// ErrorResponse is the JSON body of every failed HTTP request.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes one failure. Retryable tells the client that calling
// again may succeed, as with ENGINE_NOT_READY during startup.
type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: ErrorBody{
		Code:      e.Code,
		Message:   e.Message,
		Retryable: e.Retryable,
		Details:   e.Details,
	}}
}

// Response maps any error to an HTTP status and body tagged with
// requestID. Errors that are not AppErrors become INTERNAL_ERROR and their
// text is not sent to the client.
func Response(err error, requestID string) (int, ErrorResponse) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = Internal(err)
	}
	status := appErr.HTTPStatus
	if status == 0 {
		status = StatusOf(appErr.Code)
	}
	body := appErr.ToResponse()
	body.Error.RequestID = requestID
	return status, body
}
