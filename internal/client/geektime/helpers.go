package geektime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/oshokin/geektime-grabber/internal/logger"
	http_transport "github.com/oshokin/geektime-grabber/internal/transport/http"
)

// apiEnvelope is the uniform response wrapper of every API endpoint.
type apiEnvelope struct {
	// Code is zero on success.
	Code int64 `json:"code"`
	// Data carries the operation-specific payload.
	Data json.RawMessage `json:"data"`
	// Error carries failure details when Code is nonzero.
	Error json.RawMessage `json:"error"`
}

// errorMessage extracts the server-supplied message from the error field.
// The field is usually an object with a msg key, but that is not guaranteed,
// so anything unexpected is surfaced as raw text.
func (e *apiEnvelope) errorMessage() string {
	raw := strings.TrimSpace(string(e.Error))
	if raw == "" || raw == "null" || raw == "{}" {
		return ""
	}

	var details struct {
		Msg string `json:"msg"`
	}

	if err := json.Unmarshal(e.Error, &details); err == nil && details.Msg != "" {
		return details.Msg
	}

	return strings.Trim(raw, `"`)
}

// isNullData reports whether the envelope data field carries no usable payload.
// The API signals missing entities as null or false rather than a nonzero code.
func isNullData(data json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(data))

	return trimmed == "" || trimmed == "null" || trimmed == "false"
}

// postJSON issues one POST against the content API and validates the response
// envelope. Network failures and unexpected HTTP statuses surface as
// *TransportError, a nonzero envelope code as *APIError, and a null data
// field decodes to the zero value of T.
//
//nolint:revive // Has no sense, it's cause Go doesn't allow struct methods to be generic.
func postJSON[T any](c *ClientImpl, ctx context.Context, uri, referer string, payload any) (T, error) {
	var zero T

	route := c.cfg.APIBaseURL + uri

	body := io.Reader(http.NoBody)

	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return zero, fmt.Errorf("failed to encode request payload: %w", err)
		}

		body = bytes.NewReader(encoded)

		// Log a redacted copy, the request itself carries the original bytes.
		logger.Debugf(ctx, "Calling %s with payload: %s", route, http_transport.RedactCredentials(encoded))
	} else {
		logger.Debugf(ctx, "Calling %s", route)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, route, body)
	if err != nil {
		return zero, err
	}

	request.Header.Set("Content-Type", "application/json")

	if referer != "" {
		request.Header.Set("Referer", referer)
	}

	c.decorateWithSession(request)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return zero, &TransportError{URL: route, Err: err}
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return zero, &TransportError{URL: route, StatusCode: response.StatusCode}
	}

	var envelope apiEnvelope
	if err = json.NewDecoder(response.Body).Decode(&envelope); err != nil {
		return zero, fmt.Errorf("failed to decode response from %s: %w", route, err)
	}

	if envelope.Code != 0 {
		return zero, &APIError{Code: envelope.Code, Message: envelope.errorMessage()}
	}

	if isNullData(envelope.Data) {
		return zero, nil
	}

	var result T
	if err = json.Unmarshal(envelope.Data, &result); err != nil {
		return zero, fmt.Errorf("failed to decode response data from %s: %w", route, err)
	}

	return result, nil
}

// courseReferer is the course page that intro and article list requests
// originate from.
func (c *ClientImpl) courseReferer(courseID int64) string {
	return c.cfg.APIBaseURL + courseRefererPath + strconv.FormatInt(courseID, 10)
}

// postReferer is the article page that content and comments requests
// originate from.
func (c *ClientImpl) postReferer(postID int64) string {
	return c.cfg.APIBaseURL + postRefererPath + strconv.FormatInt(postID, 10)
}

// collectionReferer is the collection page that video requests originate from.
func (c *ClientImpl) collectionReferer(collectionID int64) string {
	return c.cfg.APIBaseURL + collectionRefererPath + strconv.FormatInt(collectionID, 10)
}
