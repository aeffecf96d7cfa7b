package geektime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/oshokin/geektime-grabber/internal/logger"
	http_transport "github.com/oshokin/geektime-grabber/internal/transport/http"
)

// Session holds the authenticated identity for API calls.
// It is replaced wholesale on every login and never mutated in place.
type Session struct {
	// Cookies are the authentication cookies issued by the login endpoint.
	Cookies []*http.Cookie
	// UserAgent is the browser identity the session was established under.
	// The ticket is bound to it, so it stays fixed for the session lifetime.
	UserAgent string
}

// newSessionFromCookieString builds a session from a raw Cookie header value,
// e.g. "GCESS=...; SERVERID=...". Used to adopt a browser-exported session.
func newSessionFromCookieString(raw, userAgent string) (*Session, error) {
	cookies, err := http.ParseCookie(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session cookies: %w", err)
	}

	return &Session{Cookies: cookies, UserAgent: userAgent}, nil
}

// HasSession reports whether an authenticated session is currently present.
func (c *ClientImpl) HasSession() bool {
	return c.currentSession() != nil
}

// ResetSession performs a fresh login and replaces the current session
// wholesale. Logins are serialized, but there is no freshness check: a caller
// asking for a reset gets new cookies even if another goroutine just
// obtained some.
func (c *ClientImpl) ResetSession(ctx context.Context) error {
	c.loginMu.Lock()
	defer c.loginMu.Unlock()

	session, err := c.login(ctx)
	if err != nil {
		return err
	}

	c.setSession(session)

	return nil
}

// ensureSession makes sure a session exists before an authenticated call.
// With no_login set, calls proceed without a session and reach public data only.
func (c *ClientImpl) ensureSession(ctx context.Context) error {
	if c.cfg.NoLogin || c.HasSession() {
		return nil
	}

	return c.ResetSession(ctx)
}

// login posts the configured credentials to the account service and returns
// the fresh session. Every login runs under a newly generated browser identity.
func (c *ClientImpl) login(ctx context.Context) (*Session, error) {
	userAgent := c.userAgents.GetUserAgent()
	route := c.cfg.AccountBaseURL + loginURI

	payload := loginRequest{
		Country:   c.cfg.Area,
		Cellphone: c.cfg.Account,
		Password:  c.cfg.Password,
		Captcha:   "",
		Remember:  loginRemember,
		Platform:  loginPlatformWeb,
		AppID:     loginAppID,
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode login payload: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, route, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json, text/plain, */*")
	request.Header.Set("Accept-Language", acceptLanguage)
	request.Header.Set("Origin", c.cfg.AccountBaseURL)
	request.Header.Set("Referer", loginReferer)
	request.Header.Set("User-Agent", userAgent)

	// Log a redacted copy, the request itself carries the original bytes.
	logger.Debugf(ctx, "Logging in at %s with payload: %s", route, http_transport.RedactCredentials(encoded))

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, &TransportError{URL: route, Err: err}
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, &TransportError{URL: route, StatusCode: response.StatusCode}
	}

	var envelope apiEnvelope
	if err = json.NewDecoder(response.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}

	if envelope.Code != 0 {
		return nil, &APIError{Code: envelope.Code, Message: envelope.errorMessage(), Err: ErrAuthFailed}
	}

	logger.Debug(ctx, "Login succeeded, session cookies refreshed")

	return &Session{
		Cookies:   response.Cookies(),
		UserAgent: userAgent,
	}, nil
}

// currentSession returns the session pointer under the read lock.
func (c *ClientImpl) currentSession() *Session {
	c.sessionMu.RLock()
	defer c.sessionMu.RUnlock()

	return c.session
}

// setSession replaces the session wholesale.
func (c *ClientImpl) setSession(session *Session) {
	c.sessionMu.Lock()
	c.session = session
	c.sessionMu.Unlock()
}

// decorateWithSession attaches the session cookies and browser identity to a
// request. Cookies ride on each request instead of in a jar so a relogin
// discards the previous session completely.
func (c *ClientImpl) decorateWithSession(request *http.Request) {
	session := c.currentSession()
	if session == nil {
		request.Header.Set("User-Agent", c.defaultUserAgent)

		return
	}

	request.Header.Set("User-Agent", session.UserAgent)

	for _, cookie := range session.Cookies {
		request.AddCookie(cookie)
	}
}
