package geektime

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/geektime-grabber/internal/config"
)

// writeEnvelope sends a response in the API's uniform envelope format.
func writeEnvelope(w http.ResponseWriter, code int64, data any, errMsg string) {
	w.Header().Set("Content-Type", "application/json")

	envelope := map[string]any{"code": code}
	if data != nil {
		envelope["data"] = data
	}

	if errMsg != "" {
		envelope["error"] = map[string]string{"msg": errMsg}
	}

	json.NewEncoder(w).Encode(envelope) //nolint:errcheck,errchkjson // Test mock handler, error is not critical.
}

// handleLogin answers a login request with a fresh session cookie.
func handleLogin(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: "GCESS", Value: "ticket"})
	writeEnvelope(w, 0, nil, "")
}

// newTestClient builds a client whose account and API hosts both point at the
// given handler. The client uses lazy login unless mutate changes that.
func newTestClient(t *testing.T, handler http.Handler, mutate func(cfg *config.Config)) Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		Account:        "13800138000",
		Password:       "hunter2",
		Area:           "86",
		LazyLogin:      true,
		AccountBaseURL: server.URL,
		APIBaseURL:     server.URL,
	}

	if mutate != nil {
		mutate(cfg)
	}

	client, err := NewClient(context.Background(), cfg)
	require.NoError(t, err)

	return client
}

// TestNewClient_NoLoginSkipsNetwork verifies that a client constructed with
// no_login never touches the network and stays without a session.
func TestNewClient_NoLoginSkipsNetwork(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		writeEnvelope(w, 0, nil, "")
	}), func(cfg *config.Config) {
		cfg.NoLogin = true
		cfg.LazyLogin = false
		cfg.Account = ""
		cfg.Password = ""
	})

	assert.False(t, client.HasSession())
	assert.Equal(t, int64(0), requests.Load())
}

// TestNewClient_EagerLogin verifies that construction logs in immediately
// when neither lazy login nor no_login is set.
func TestNewClient_EagerLogin(t *testing.T) {
	t.Parallel()

	var logins atomic.Int64

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/account/ticket/login" {
			logins.Add(1)
		}

		handleLogin(w, r)
	}), func(cfg *config.Config) {
		cfg.LazyLogin = false
	})

	assert.True(t, client.HasSession())
	assert.Equal(t, int64(1), logins.Load())
}

// TestNewClient_LazyLoginDefersUntilFirstCall verifies that lazy login holds
// off until the first read operation needs a session.
func TestNewClient_LazyLoginDefersUntilFirstCall(t *testing.T) {
	t.Parallel()

	var logins atomic.Int64

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/account/ticket/login":
			logins.Add(1)
			handleLogin(w, r)
		case "/serv/v1/column/all":
			writeEnvelope(w, 0, map[string]any{}, "")
		}
	}), nil)

	assert.False(t, client.HasSession())
	assert.Equal(t, int64(0), logins.Load())

	_, err := client.GetCourseList(context.Background())
	require.NoError(t, err)

	assert.True(t, client.HasSession())
	assert.Equal(t, int64(1), logins.Load())
}

// TestNewClient_AdoptsConfiguredCookie verifies that a pre-supplied cookie
// string becomes the session without any login round trip.
func TestNewClient_AdoptsConfiguredCookie(t *testing.T) {
	t.Parallel()

	var (
		logins      atomic.Int64
		seenSession atomic.Value
	)

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/account/ticket/login":
			logins.Add(1)
			handleLogin(w, r)
		case "/serv/v1/column/all":
			if cookie, err := r.Cookie("GCESS"); err == nil {
				seenSession.Store(cookie.Value)
			}

			writeEnvelope(w, 0, map[string]any{}, "")
		}
	}), func(cfg *config.Config) {
		cfg.LazyLogin = false
		cfg.Cookie = "GCESS=exported; SERVERID=node7"
	})

	assert.True(t, client.HasSession())

	_, err := client.GetCourseList(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(0), logins.Load())
	assert.Equal(t, "exported", seenSession.Load())
}

// TestNewClient_InvalidCookie verifies that an unparsable cookie string fails
// construction instead of being silently dropped.
func TestNewClient_InvalidCookie(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(handleLogin))
	t.Cleanup(server.Close)

	cfg := &config.Config{
		Cookie:         "definitely not a cookie header",
		AccountBaseURL: server.URL,
		APIBaseURL:     server.URL,
	}

	client, err := NewClient(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "failed to parse session cookies")
}

// TestNewClient_LoginFailure verifies that a rejected eager login surfaces as
// an authentication error carrying the server's message.
func TestNewClient_LoginFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, 451, nil, "账号或密码错误")
	}))
	t.Cleanup(server.Close)

	cfg := &config.Config{
		Account:        "13800138000",
		Password:       "wrong",
		Area:           "86",
		AccountBaseURL: server.URL,
		APIBaseURL:     server.URL,
	}

	client, err := NewClient(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, client)

	require.ErrorIs(t, err, ErrAuthFailed)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, int64(451), apiErr.Code)
	assert.Equal(t, "账号或密码错误", apiErr.Message)
}

// TestClientImpl_DownloadFromURL tests the DownloadFromURL method.
func TestClientImpl_DownloadFromURL(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("test content")) //nolint:errcheck // Test mock handler, error is not critical.
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, http.HandlerFunc(handleLogin), nil)
	ctx := context.Background()

	reader, err := client.DownloadFromURL(ctx, server.URL+"/asset.mp3")
	require.NoError(t, err)

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "test content", string(content))
	reader.Close()

	_, err = client.DownloadFromURL(ctx, server.URL+"/missing")
	require.ErrorIs(t, err, ErrUnexpectedHTTPStatus)
}

// TestClientImpl_FetchAsset tests the FetchAsset method.
func TestClientImpl_FetchAsset(t *testing.T) {
	t.Parallel()

	var rangeHeader atomic.Value

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rangeHeader.Store(r.Header.Get("Range"))
		w.Write([]byte("test content")) //nolint:errcheck // Test mock handler, error is not critical.
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, http.HandlerFunc(handleLogin), nil)

	result, err := client.FetchAsset(context.Background(), server.URL+"/audio.mp3")
	require.NoError(t, err)
	assert.Equal(t, int64(12), result.TotalBytes) // "test content" length.
	assert.Equal(t, "bytes=0-", rangeHeader.Load())

	result.Body.Close()
}

// TestClientImpl_GetCourseList tests decoding of the grouped course catalog.
func TestClientImpl_GetCourseList(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/account/ticket/login":
			handleLogin(w, r)
		case "/serv/v1/column/all":
			writeEnvelope(w, 0, map[string]any{
				"1": map[string]any{
					"nav": map[string]any{"id": 1, "name": "专栏"},
					"list": []map[string]any{
						{
							"id":              48,
							"column_title":    "左耳听风",
							"column_subtitle": "洞悉技术的本质，享受科技的乐趣",
							"author_name":     "陈皓",
							"had_sub":         true,
						},
					},
				},
				"3": map[string]any{
					"nav":  map[string]any{"id": 3, "name": "视频课程"},
					"list": []map[string]any{},
				},
			}, "")
		}
	}), nil)

	groups, err := client.GetCourseList(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)

	columns := groups["1"]
	require.NotNil(t, columns)
	require.NotNil(t, columns.Nav)
	assert.Equal(t, "专栏", columns.Nav.Name)
	require.Len(t, columns.List, 1)
	assert.Equal(t, int64(48), columns.List[0].ID)
	assert.Equal(t, "左耳听风", columns.List[0].Title)
	assert.Equal(t, "陈皓", columns.List[0].AuthorName)
	assert.True(t, columns.List[0].HadSub)

	assert.Empty(t, groups["3"].List)
}
