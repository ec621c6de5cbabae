package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/qbpharma/deployctl/internal/storage"
)

// statusError maps a non-success upload response to a storage error.
func statusError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return storage.ErrAccessDenied
	case http.StatusRequestEntityTooLarge:
		return storage.ErrFileTooLarge
	case http.StatusTooManyRequests:
		return storage.ErrTooManyRequests
	default:
		return newServerError(resp)
	}
}

// newServerError inspects server error responses, trying to gather as much information as possible, especially if the
// body is a JSON object with a message, and returns a storage.ServerError.
func newServerError(resp *http.Response) *storage.ServerError {
	var errResp struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	reader := bytes.NewReader(body)
	if err := json.NewDecoder(reader).Decode(&errResp); err == nil {
		msg := errResp.Message
		if msg == "" {
			msg = errResp.Detail
		}
		if msg != "" {
			return &storage.ServerError{Code: resp.StatusCode, Title: resp.Status, Msg: msg}
		}
	}

	return &storage.ServerError{
		Code:  resp.StatusCode,
		Title: resp.Status,
		Msg:   strings.TrimSpace(string(body)),
	}
}
