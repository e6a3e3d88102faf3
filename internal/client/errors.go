package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	ErrRemoteAPI    = errors.New("dracoon api error")
	ErrUnauthorized = fmt.Errorf("%w: unauthorized", ErrRemoteAPI)
	ErrNotFound     = fmt.Errorf("%w: not found", ErrRemoteAPI)
	ErrUnavailable  = fmt.Errorf("%w: server unavailable", ErrRemoteAPI)
)

const maxErrorBody = 64 << 10

// APIError is a non-2xx response. It unwraps to the sentinel matching its
// status code.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
	DebugInfo  string
	ErrorCode  int

	err error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%v (status %d): %s", e.err, e.StatusCode, e.Message)
	if e.DebugInfo != "" {
		msg += " [" + e.DebugInfo + "]"
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.err
}

// errorBody covers both the DRACOON error model and the OAuth one.
type errorBody struct {
	Code        int    `json:"code"`
	Message     string `json:"message"`
	DebugInfo   string `json:"debugInfo"`
	ErrorCode   int    `json:"errorCode"`
	OAuthError  string `json:"error"`
	Description string `json:"error_description"`
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, err: mapStatus(resp.StatusCode)}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body errorBody
	if json.Unmarshal(data, &body) == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
		apiErr.DebugInfo = body.DebugInfo
		apiErr.ErrorCode = body.ErrorCode
		if apiErr.Message == "" {
			apiErr.Message = body.Description
		}
		if apiErr.Message == "" {
			apiErr.Message = body.OAuthError
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func mapStatus(code int) error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ErrUnavailable
	default:
		return ErrRemoteAPI
	}
}
