package client

import (
	"context"
	"net/http"
)

// UserAgent returns a middleware that stamps every request with the
// given User-Agent string.
func UserAgent(ua string) Middleware {
	return func(_ context.Context, req *http.Request) error {
		if ua != "" {
			req.Header.Set("User-Agent", ua)
		}
		return nil
	}
}

// Header returns a middleware that sets a fixed header on every
// request.
func Header(key, value string) Middleware {
	return func(_ context.Context, req *http.Request) error {
		if key != "" {
			req.Header.Set(key, value)
		}
		return nil
	}
}

// BearerToken returns a middleware that injects a bearer token.
func BearerToken(token string) Middleware {
	return func(_ context.Context, req *http.Request) error {
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return nil
	}
}
