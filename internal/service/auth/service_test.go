package auth

import (
	"context"
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/geektime-grabber/internal/config"
)

// TestNewService tests the NewService function.
func TestNewService(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Cookie: "GCESS=test_value",
	}

	service, err := NewService(cfg)

	require.NoError(t, err)
	assert.NotNil(t, service)
	assert.Equal(t, cfg, service.cfg)
	assert.Nil(t, service.browser)
	assert.Nil(t, service.page)
}

// TestValidateLoginURL tests the validateLoginURL function.
func TestValidateLoginURL(t *testing.T) {
	t.Parallel()

	service := &ServiceImpl{}

	tests := []struct {
		name        string
		url         string
		expectError bool
	}{
		{
			name:        "valid time.geekbang.org URL",
			url:         "https://time.geekbang.org/column/intro/100002201",
			expectError: false,
		},
		{
			name:        "valid account.geekbang.org URL",
			url:         "https://account.geekbang.org/signin",
			expectError: false,
		},
		{
			name:        "valid WeChat QR scan URL",
			url:         "https://open.weixin.qq.com/connect/qrconnect?appid=wxa1b2c3",
			expectError: false,
		},
		{
			name:        "valid geekbang.org subdomain URL",
			url:         "https://horde.geekbang.org/serv/v1",
			expectError: false,
		},
		{
			name:        "invalid URL - different domain",
			url:         "https://google.com",
			expectError: true,
		},
		{
			name:        "invalid URL - malicious site",
			url:         "https://evil.com/phishing",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := service.validateLoginURL(tt.url)

			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrNavigatedAway)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestSentinelErrors tests that all sentinel errors are defined and have proper messages.
func TestSentinelErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		err   error
		wants string
	}{
		{
			name:  "ErrLoginTimeout",
			err:   ErrLoginTimeout,
			wants: "login timeout exceeded",
		},
		{
			name:  "ErrBrowserClosed",
			err:   ErrBrowserClosed,
			wants: "browser was closed by user",
		},
		{
			name:  "ErrNavigatedAway",
			err:   ErrNavigatedAway,
			wants: "user navigated away from login flow",
		},
		{
			name:  "ErrSessionCookieNotFound",
			err:   ErrSessionCookieNotFound,
			wants: "session cookie not found - login may have failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Error(t, tt.err)
			assert.Equal(t, tt.wants, tt.err.Error())
		})
	}
}

// TestConstants tests that all constants are properly defined.
func TestConstants(t *testing.T) {
	t.Parallel()

	// Test URL constants.
	assert.Equal(t,
		"https://account.geekbang.org/signin?redirect=https%3A%2F%2Ftime.geekbang.org%2F",
		geekTimeLoginURL)
	assert.Equal(t, "time.geekbang.org", geekTimeDomain)
	assert.Equal(t, "account.geekbang.org", accountDomain)
	assert.Equal(t, "geekbang.org", geekbangDomain)
	assert.Equal(t, "open.weixin.qq.com", wechatOAuthDomain)

	// Test cookie name.
	assert.Equal(t, "GCESS", sessionCookieName)

	// Test CSS selectors.
	assert.Equal(t, `[class*="header-avatar"]`, profileAvatarSelector)
	assert.Equal(t, `[class*="header-login"]`, loginEntrySelector)

	// Test timing constants.
	assert.Equal(t, 200, int(browserSlowMotionDelay.Milliseconds()))
	assert.Equal(t, 10, int(maxLoginWaitTime.Minutes()))
	assert.Equal(t, 2, int(sessionEstablishDelay.Seconds()))
}

// TestHasSessionCookie tests session cookie detection.
func TestHasSessionCookie(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cookies []*proto.NetworkCookie
		wants   bool
	}{
		{
			name: "session cookie present",
			cookies: []*proto.NetworkCookie{
				{Name: "GCID", Value: "abc123"},
				{Name: "GCESS", Value: "deadbeef"},
			},
			wants: true,
		},
		{
			name: "session cookie missing",
			cookies: []*proto.NetworkCookie{
				{Name: "GCID", Value: "abc123"},
				{Name: "SERVERID", Value: "srv1"},
			},
			wants: false,
		},
		{
			name: "session cookie with empty value",
			cookies: []*proto.NetworkCookie{
				{Name: "GCESS", Value: ""},
			},
			wants: false,
		},
		{
			name:    "no cookies at all",
			cookies: nil,
			wants:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.wants, hasSessionCookie(tt.cookies))
		})
	}
}

// TestBuildCookieHeader tests Cookie header assembly.
func TestBuildCookieHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cookies []*proto.NetworkCookie
		wants   string
	}{
		{
			name: "multiple cookies joined in order",
			cookies: []*proto.NetworkCookie{
				{Name: "GCID", Value: "abc123", Domain: ".geekbang.org"},
				{Name: "GCESS", Value: "deadbeef", Domain: ".geekbang.org"},
				{Name: "SERVERID", Value: "srv1", Domain: "time.geekbang.org"},
			},
			wants: "GCID=abc123; GCESS=deadbeef; SERVERID=srv1",
		},
		{
			name: "cookies with empty names or values are skipped",
			cookies: []*proto.NetworkCookie{
				{Name: "GCESS", Value: "deadbeef"},
				{Name: "", Value: "orphan"},
				{Name: "empty", Value: ""},
			},
			wants: "GCESS=deadbeef",
		},
		{
			name:    "no cookies produce an empty header",
			cookies: nil,
			wants:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.wants, buildCookieHeader(tt.cookies))
		})
	}
}

// TestServiceImpl_Cleanup tests the cleanup function.
func TestServiceImpl_Cleanup(t *testing.T) {
	t.Parallel()

	service := &ServiceImpl{
		browser: nil, // No browser initialized.
	}

	// Should not panic even with nil browser.
	assert.NotPanics(t, func() {
		service.cleanup(context.Background())
	})
}
