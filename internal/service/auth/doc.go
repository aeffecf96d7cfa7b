// Package auth provides browser-based authentication services for GeekTime.
//
// This package implements automated session cookie extraction using
// browser automation via go-rod. It opens a visible Chrome window on the
// GeekTime account sign-in page, waits for the user to log in manually
// (password, SMS code, or WeChat QR scan) and collects the session
// cookies once the account service hands the session back to
// time.geekbang.org.
package auth
