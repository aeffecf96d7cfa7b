package http

import (
	"errors"
	"net/http"
	"net/http/httputil"
	"regexp"
	"time"

	"github.com/oshokin/geektime-grabber/internal/config"
	"github.com/oshokin/geektime-grabber/internal/logger"
	"github.com/oshokin/geektime-grabber/internal/utils"
)

// LogTransport is a custom http.RoundTripper that logs HTTP requests and responses.
// It wraps another http.RoundTripper and logs debug information for each request/response cycle.
// Account credentials and session cookies are masked in the dumps before they
// reach the log, so a debug-level transcript never contains the phone number,
// the password, or a usable session.
type LogTransport struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// maxLogLength is the maximum length of logged request/response data.
	maxLogLength uint64
}

// Static error definitions for better error handling.
var (
	// ErrNilRequest indicates that the HTTP request is nil.
	ErrNilRequest = errors.New("request is nil")
)

// credentialFieldsPattern matches the JSON credential fields of the login payload.
// Both the login request body and its echo in error responses are covered.
//
//nolint:gochecknoglobals // This is immutable, pre-compiled regex pattern and used as a constant.
var credentialFieldsPattern = regexp.MustCompile(`("(?:cellphone|password)"\s*:\s*)"(?:[^"\\]|\\.)*"`)

// sessionCookiePattern matches Cookie and Set-Cookie header lines in dumps.
// Session cookies grant the same access as the credentials that produced them.
//
//nolint:gochecknoglobals // This is immutable, pre-compiled regex pattern and used as a constant.
var sessionCookiePattern = regexp.MustCompile(`(?mi)^((?:Cookie|Set-Cookie):)[^\r\n]*`)

// credentialMask replaces masked credential values in dumps.
const credentialMask = `$1"xxx"`

// NewLogTransport creates and returns a new instance of LogTransport.
// If maxLogLength is less than or equal to 0, it defaults to config.DefaultMaxLogLength.
func NewLogTransport(next http.RoundTripper, maxLogLength uint64) http.RoundTripper {
	if maxLogLength <= 0 {
		maxLogLength = config.DefaultMaxLogLength
	}

	return &LogTransport{
		next:         next,
		maxLogLength: maxLogLength,
	}
}

// RoundTrip executes a single HTTP transaction and logs the request and response.
// It implements the http.RoundTripper interface.
func (t *LogTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	// Skip logging if the logger is not at debug level.
	if !logger.IsDebugLevel() {
		return t.next.RoundTrip(req)
	}

	ctx := req.Context()

	requestDump := t.dumpRequest(req)

	// Record the start time to measure the duration of the request.
	startTime := time.Now()

	// Forward the request to the underlying RoundTripper.
	resp, err := t.next.RoundTrip(req)

	// Calculate the duration of the request.
	duration := time.Since(startTime)

	if err != nil {
		logger.Debugf(ctx, "Request failed: %s %s | Error: %v", req.Method, req.URL.String(), err)

		return nil, err
	}

	responseDump := t.dumpResponse(resp)

	logger.Debugf(ctx, "%s %s [%d] %s\nRequest: %s\nResponse: %s",
		req.Method, req.URL.Path, resp.StatusCode, duration, requestDump, responseDump)

	return resp, nil
}

func (t *LogTransport) dumpRequest(req *http.Request) string {
	// Include the request body in the dump.
	dump, err := httputil.DumpRequest(req, true)
	if err != nil {
		return err.Error()
	}

	return t.truncate(RedactCredentials(dump))
}

func (t *LogTransport) dumpResponse(resp *http.Response) string {
	// Check the Content-Type header to determine if the response body should be dumped.
	contentType := resp.Header.Get("Content-Type")

	dump, err := httputil.DumpResponse(resp, utils.IsTextContentType(contentType))
	if err != nil {
		return err.Error()
	}

	return t.truncate(RedactCredentials(dump))
}

func (t *LogTransport) truncate(data []byte) string {
	if uint64(len(data)) > t.maxLogLength {
		return string(data[:t.maxLogLength]) + "... [truncated]"
	}

	return string(data)
}

// RedactCredentials masks credential values and session cookie lines in an
// HTTP dump or a raw JSON payload. The input is never modified in place, so
// callers can keep using the original bytes for the live request.
func RedactCredentials(dump []byte) []byte {
	dump = credentialFieldsPattern.ReplaceAll(dump, []byte(credentialMask))

	return sessionCookiePattern.ReplaceAll(dump, []byte(`$1 [redacted]`))
}
