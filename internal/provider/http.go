package provider

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	maxBody      = 1 << 20
	maxErrorBody = 2 << 10
)

// DecodeResponse checks the status of res and decodes its JSON body into v.
// Non-2xx answers and undecodable bodies are reported as *Error.
func DecodeResponse(name string, res *http.Response, v any) error {
	b, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return &Error{Provider: name, StatusCode: res.StatusCode, Err: fmt.Errorf("reading body: %w", err)}
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return &Error{Provider: name, StatusCode: res.StatusCode, Body: truncate(b)}
	}
	if err := json.Unmarshal(b, v); err != nil {
		return &Error{Provider: name, Body: truncate(b), Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return string(b)
}
