package auth

import (
	"context"
	"strings"

	"github.com/go-rod/rod/lib/proto"

	"github.com/oshokin/geektime-grabber/internal/logger"
)

// sessionCookieHeader returns the assembled Cookie header if the session
// cookie is already present, or an empty string if it is not.
func (s *ServiceImpl) sessionCookieHeader(ctx context.Context) string {
	defer func() {
		if r := recover(); r != nil {
			logger.Debugf(ctx, "sessionCookieHeader panic recovered: %v", r)
		}
	}()

	cookies, err := s.page.Cookies([]string{s.cfg.APIBaseURL})
	if err != nil {
		return ""
	}

	if !hasSessionCookie(cookies) {
		return ""
	}

	return buildCookieHeader(cookies)
}

// extractCookiesFromBrowser extracts the session cookies from the browser
// and assembles them into a Cookie header string.
func (s *ServiceImpl) extractCookiesFromBrowser(ctx context.Context) (string, error) {
	logger.Info(ctx, "Extracting session cookies from browser...")

	// Get current page URL.
	currentURL := s.page.MustInfo().URL
	logger.Debugf(ctx, "Current page URL: %s", currentURL)

	// Get the cookies that would be sent to the content API.
	logger.Debug(ctx, "Fetching cookies from browser...")

	cookies, err := s.page.Cookies([]string{s.cfg.APIBaseURL})
	if err != nil {
		return "", err
	}

	logger.Debugf(ctx, "Found %d cookies", len(cookies))

	// Cookie values are session credentials, so only names and lengths are logged.
	if logger.IsDebugLevel() && len(cookies) > 0 {
		logger.Debug(ctx, "Cookie list:")

		for i, cookie := range cookies {
			logger.Debugf(ctx,
				"Cookie %d: name=%s, domain=%s, length=%d",
				i+1, cookie.Name, cookie.Domain, len(cookie.Value))
		}
	}

	logger.Debugf(ctx, "Looking for '%s' cookie...", sessionCookieName)

	if !hasSessionCookie(cookies) {
		logger.Error(ctx, "Session cookie not found! Available cookies:")

		for _, cookie := range cookies {
			logger.Errorf(ctx, "%s (domain: %s)", cookie.Name, cookie.Domain)
		}

		return "", ErrSessionCookieNotFound
	}

	logger.Info(ctx, "Session cookies extracted successfully from browser!")

	return buildCookieHeader(cookies), nil
}

// hasSessionCookie reports whether the session cookie is present with a non-empty value.
func hasSessionCookie(cookies []*proto.NetworkCookie) bool {
	for _, cookie := range cookies {
		if cookie.Name == sessionCookieName && cookie.Value != "" {
			return true
		}
	}

	return false
}

// buildCookieHeader assembles cookies into a Cookie header string
// the way a browser would send them.
func buildCookieHeader(cookies []*proto.NetworkCookie) string {
	pairs := make([]string, 0, len(cookies))

	for _, cookie := range cookies {
		if cookie.Name == "" || cookie.Value == "" {
			continue
		}

		pairs = append(pairs, cookie.Name+"="+cookie.Value)
	}

	return strings.Join(pairs, "; ")
}
