package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"

	"github.com/oshokin/geektime-grabber/internal/config"
	"github.com/oshokin/geektime-grabber/internal/logger"
)

const (
	// browserSlowMotionDelay is the delay between browser actions for visibility during debugging.
	browserSlowMotionDelay = 200 * time.Millisecond

	// geekTimeLoginURL is the account service sign-in page with a redirect back to GeekTime.
	geekTimeLoginURL = "https://account.geekbang.org/signin?redirect=https%3A%2F%2Ftime.geekbang.org%2F"

	// geekTimeDomain is the main GeekTime domain.
	geekTimeDomain = "time.geekbang.org"

	// accountDomain is the GeekTime account service domain that hosts the sign-in forms.
	accountDomain = "account.geekbang.org"

	// geekbangDomain is the shared parent domain that session cookies are scoped to.
	geekbangDomain = "geekbang.org"

	// wechatOAuthDomain is the WeChat OAuth service domain used by the QR scan login.
	wechatOAuthDomain = "open.weixin.qq.com"

	// sessionCookieName is the name of the cookie that proves an established session.
	sessionCookieName = "GCESS"

	// profileAvatarSelector is the CSS selector for the header avatar (appears when logged in).
	// Uses attribute selector to avoid hashed class name issues.
	profileAvatarSelector = `[class*="header-avatar"]`

	// loginEntrySelector is the CSS selector for the header login entry (appears when not logged in).
	// Uses attribute selector to avoid hashed class name issues.
	loginEntrySelector = `[class*="header-login"]`

	// maxLoginWaitTime is the maximum time to wait for user to complete login.
	maxLoginWaitTime = 10 * time.Minute

	// sessionEstablishDelay is the delay after login to allow session to fully establish.
	sessionEstablishDelay = 2 * time.Second

	// humanBehaviorMinDelay is the minimum delay for simulated human actions.
	humanBehaviorMinDelay = 500 * time.Millisecond
	// humanBehaviorMaxDelay is the maximum delay for simulated human actions.
	humanBehaviorMaxDelay = 2 * time.Second

	// mouseMovementsPerCheck is the number of random mouse movements to simulate per polling cycle.
	mouseMovementsPerCheck = 2

	// mouseMovementMinDelay is the minimum delay between mouse movements.
	mouseMovementMinDelay = 100 * time.Millisecond
	// mouseMovementMaxDelay is the maximum delay between mouse movements.
	mouseMovementMaxDelay = 400 * time.Millisecond

	// scrollProbability is the probability of scrolling (1 in N).
	scrollProbability = 3
	// skimScrollMinPixels is the minimum downward scroll amount in pixels.
	skimScrollMinPixels = 40
	// skimScrollMaxPixels is the maximum downward scroll amount in pixels.
	skimScrollMaxPixels = 320
	// backScrollPixels is the upward scroll amount for an occasional re-read nudge.
	backScrollPixels = 60

	// interactionProbability is the probability of random interaction (1 in N).
	interactionProbability = 5
	// interactionActionCount is the number of possible random interaction actions.
	interactionActionCount = 4

	// pauseMinDelay is the minimum pause duration for human-like pauses.
	pauseMinDelay = 500 * time.Millisecond
	// pauseMaxDelay is the maximum pause duration for human-like pauses.
	pauseMaxDelay = 1500 * time.Millisecond

	// browserCleanupDelay is the delay to wait for Chrome to release file locks before cleanup.
	browserCleanupDelay = 500 * time.Millisecond
)

var (
	// ErrLoginTimeout is returned when login takes too long.
	ErrLoginTimeout = errors.New("login timeout exceeded")

	// ErrBrowserClosed is returned when the browser is closed by the user.
	ErrBrowserClosed = errors.New("browser was closed by user")

	// ErrNavigatedAway is returned when the user navigates away from the login flow.
	ErrNavigatedAway = errors.New("user navigated away from login flow")

	// ErrSessionCookieNotFound is returned when the session cookie cannot be found after login.
	ErrSessionCookieNotFound = errors.New("session cookie not found - login may have failed")
)

// Service provides browser-based authentication.
type Service interface {
	// LoginAndExtractCookies opens a browser, waits for user to log in,
	// then extracts the session cookies as a Cookie header string.
	LoginAndExtractCookies(ctx context.Context) (string, error)
}

// ServiceImpl provides browser-based authentication for GeekTime.
type ServiceImpl struct {
	cfg     *config.Config
	browser *rod.Browser
	page    *rod.Page
	// tempDir stores the temporary profile directory for cleanup.
	tempDir string
}

// NewService creates a new browser authentication service.
func NewService(cfg *config.Config) (*ServiceImpl, error) {
	return &ServiceImpl{
		cfg: cfg,
	}, nil
}

// LoginAndExtractCookies opens a browser, waits for user to log in, then extracts the session cookies.
func (s *ServiceImpl) LoginAndExtractCookies(ctx context.Context) (string, error) {
	logger.Info(ctx, "Starting browser-based authentication")

	// Initialize browser.
	if err := s.initBrowser(ctx); err != nil {
		return "", fmt.Errorf("failed to initialize browser: %w", err)
	}

	defer s.cleanup(ctx)

	// Navigate to the sign-in page and wait for user to complete authentication.
	directCookies, err := s.waitForUserLogin(ctx)
	if err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}

	if directCookies != "" {
		logger.Info(ctx, "Session cookies retrieved directly from login flow")

		return directCookies, nil
	}

	// Extract cookies from the browser session.
	cookieHeader, err := s.extractCookiesFromBrowser(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract cookies: %w", err)
	}

	logger.Info(ctx, "Session cookies extracted successfully")

	return cookieHeader, nil
}
