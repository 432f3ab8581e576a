package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func staticValidator(claims *Claims, err error) TokenValidator {
	return func(_ context.Context, token string) (*Claims, error) {
		if err != nil {
			return nil, err
		}
		return claims, nil
	}
}

func claimsEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Test-User", UserIDFromContext(r.Context()))
		w.Header().Set("X-Test-Email", EmailFromContext(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_ValidToken(t *testing.T) {
	handler := Auth(staticValidator(&Claims{UserID: "user-1", Email: "a@b.com"}, nil))(claimsEcho())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "user-1", rr.Header().Get("X-Test-User"))
	assert.Equal(t, "a@b.com", rr.Header().Get("X-Test-Email"))
}

func TestAuth_MissingHeader(t *testing.T) {
	handler := Auth(staticValidator(&Claims{UserID: "user-1"}, nil))(claimsEcho())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "UNAUTHORIZED")
}

func TestAuth_MalformedHeader(t *testing.T) {
	handler := Auth(staticValidator(&Claims{UserID: "user-1"}, nil))(claimsEcho())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	handler := Auth(staticValidator(nil, errors.New("expired")))(claimsEcho())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestOptionalAuth_ValidToken(t *testing.T) {
	handler := OptionalAuth(staticValidator(&Claims{UserID: "user-2"}, nil))(claimsEcho())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "user-2", rr.Header().Get("X-Test-User"))
}

func TestOptionalAuth_NoToken_PassesThroughAnonymously(t *testing.T) {
	handler := OptionalAuth(staticValidator(&Claims{UserID: "user-2"}, nil))(claimsEcho())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("X-Test-User"))
}

func TestOptionalAuth_InvalidToken_PassesThroughAnonymously(t *testing.T) {
	handler := OptionalAuth(staticValidator(nil, errors.New("revoked")))(claimsEcho())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer revoked-token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("X-Test-User"))
}
