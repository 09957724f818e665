package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

// PostgREST code for "JSON object requested, multiple (or no) rows
// returned", the not-found answer to a Single() query.
const CodeNoRows = "PGRST116"

// ErrNotFound is matched by APIError when the backend reports no rows.
var ErrNotFound = errors.New("supabase: not found")

// APIError is a rejected backend call. The message is the backend's own
// and is surfaced to the user verbatim.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("supabase: %s", e.Message)
	}
	return fmt.Sprintf("supabase: status %d", e.StatusCode)
}

// Is maps not-found responses onto ErrNotFound for errors.Is checks.
func (e *APIError) Is(target error) bool {
	if target == ErrNotFound {
		return e.Code == CodeNoRows || e.StatusCode == 406 || e.StatusCode == 404
	}
	return false
}

// parseAPIError decodes the error body shapes used by PostgREST
// ({code,message,details,hint}), GoTrue ({error,error_description} or
// {msg}) and storage ({message,error}).
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var payload struct {
		Code             string `json:"code"`
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Code = payload.Code
		switch {
		case payload.Message != "":
			apiErr.Message = payload.Message
		case payload.Msg != "":
			apiErr.Message = payload.Msg
		case payload.ErrorDescription != "":
			apiErr.Message = payload.ErrorDescription
		case payload.Error != "":
			apiErr.Message = payload.Error
		}
	}
	return apiErr
}
