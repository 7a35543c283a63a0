package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omegavideos/internal/model"
)

const testSecret = "middleware-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func validClaims(userID int64) jwt.MapClaims {
	return jwt.MapClaims{"user_id": userID, "exp": time.Now().Add(time.Hour).Unix(), "iat": time.Now().Unix()}
}

// echoViewer writes the viewer id seen by the handler into a header.
var echoViewer = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Viewer", strconv.FormatInt(ViewerID(r.Context()), 10))
	w.WriteHeader(http.StatusNoContent)
})

func TestAuthMiddleware(t *testing.T) {
	expired := jwt.MapClaims{"user_id": 7, "exp": time.Now().Add(-time.Minute).Unix()}

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
		wantCode   string
	}{
		{"bearer header", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims(7)))
		}, http.StatusNoContent, ""},
		{"cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: signToken(t, testSecret, validClaims(7))})
		}, http.StatusNoContent, ""},
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized, model.CodeAuthRequired},
		{"expired", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, expired))
		}, http.StatusUnauthorized, model.CodeTokenExpired},
		{"wrong secret", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signToken(t, "other", validClaims(7)))
		}, http.StatusUnauthorized, model.CodeTokenInvalid},
		{"anonymous id claim", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims(0)))
		}, http.StatusUnauthorized, model.CodeTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			AuthMiddleware(testSecret)(echoViewer).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Contains(t, rec.Body.String(), tt.wantCode)
				return
			}
			assert.Equal(t, "7", rec.Header().Get("X-Viewer"))
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid token", "Bearer " + signToken(t, testSecret, validClaims(7)), "7"},
		{"no token", "", "0"},
		{"garbage token", "Bearer not-a-jwt", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/videos/feed", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			OptionalAuthMiddleware(testSecret)(echoViewer).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("X-Viewer"))
		})
	}
}
