package middleware_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/maynagashev/roomrent/internal/server/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret"

func TestGetUserIDFromContext(t *testing.T) {
	tests := []struct {
		name       string
		ctx        context.Context
		expectedID int64
		expectedOK bool
	}{
		{
			name:       "Контекст с UserID",
			ctx:        context.WithValue(context.Background(), middleware.UserIDKey, int64(123)),
			expectedID: 123,
			expectedOK: true,
		},
		{
			name: "Пустой контекст",
			ctx:  context.Background(),
		},
		{
			name: "UserID неверного типа",
			ctx:  context.WithValue(context.Background(), middleware.UserIDKey, "not-an-int64"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, ok := middleware.GetUserIDFromContext(tt.ctx)
			assert.Equal(t, tt.expectedID, userID)
			assert.Equal(t, tt.expectedOK, ok)
		})
	}
}

func signToken(t *testing.T, claims middleware.AccessClaims, secret string, method jwt.SigningMethod) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func accessClaims(userID int64, tokenType string, expiresAt time.Time) middleware.AccessClaims {
	return middleware.AccessClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestAuthenticator(t *testing.T) {
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		assert.True(t, ok, "UserID должен быть в контексте")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "OK for user %d", userID)
	})

	server := httptest.NewServer(middleware.Authenticator([]byte(testSecret))(nextHandler))
	defer server.Close()

	hour := time.Now().Add(time.Hour)
	tests := []struct {
		name           string
		header         string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Токен доступа",
			header:         "Bearer " + signToken(t, accessClaims(123, "access", hour), testSecret, jwt.SigningMethodHS256),
			expectedStatus: http.StatusOK,
			expectedBody:   "OK for user 123",
		},
		{
			name:           "Токен без token_type",
			header:         "Bearer " + signToken(t, accessClaims(5, "", hour), testSecret, jwt.SigningMethodHS256),
			expectedStatus: http.StatusOK,
			expectedBody:   "OK for user 5",
		},
		{
			name:           "Нет заголовка Authorization",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Требуется аутентификация",
		},
		{
			name:           "Нет Bearer",
			header:         signToken(t, accessClaims(1, "access", hour), testSecret, jwt.SigningMethodHS256),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Неверный формат токена",
		},
		{
			name:           "Неверный секрет",
			header:         "Bearer " + signToken(t, accessClaims(1, "access", hour), "wrong", jwt.SigningMethodHS256),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Невалидный токен",
		},
		{
			name:           "Истекший токен",
			header:         "Bearer " + signToken(t, accessClaims(1, "access", time.Now().Add(-time.Hour)), testSecret, jwt.SigningMethodHS256),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Невалидный токен",
		},
		{
			name:           "Refresh токен",
			header:         "Bearer " + signToken(t, accessClaims(1, "refresh", hour), testSecret, jwt.SigningMethodHS256),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Невалидный токен",
		},
		{
			name:           "Без user_id",
			header:         "Bearer " + signToken(t, accessClaims(0, "access", hour), testSecret, jwt.SigningMethodHS256),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Невалидный токен",
		},
		{
			name:           "Мусор",
			header:         "Bearer garbage",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Невалидный токен",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, server.URL, nil)
			require.NoError(t, err)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			bodyBytes, _ := io.ReadAll(resp.Body)
			assert.Contains(t, string(bodyBytes), tt.expectedBody)
		})
	}
}
