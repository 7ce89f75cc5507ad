// Package middleware содержит HTTP middleware сервиса подписи.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Тип для ключа контекста.
type contextKey string

// UserIDKey - ключ ID пользователя в контексте запроса.
const UserIDKey contextKey = "userID"

// accessTokenType - значение token_type у токенов доступа бэкенда маркетплейса.
const accessTokenType = "access"

// AccessClaims - claims токена доступа, который выдает бэкенд маркетплейса.
type AccessClaims struct {
	UserID    int64  `json:"user_id"`
	TokenType string `json:"token_type,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator возвращает middleware, которое проверяет bearer JWT (HS256)
// ключом secret и кладет ID пользователя в контекст.
func Authenticator(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				slog.Debug("Заголовок Authorization отсутствует", "path", r.URL.Path)
				http.Error(w, "Требуется аутентификация", http.StatusUnauthorized)
				return
			}

			// Формат "Bearer token"
			headerParts := strings.Fields(authHeader)
			if len(headerParts) != 2 || !strings.EqualFold(headerParts[0], "bearer") {
				slog.Debug("Неверный формат заголовка Authorization")
				http.Error(w, "Неверный формат токена", http.StatusUnauthorized)
				return
			}

			claims := &AccessClaims{}
			token, err := jwt.ParseWithClaims(headerParts[1], claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				slog.Debug("Токен не прошел проверку", "error", err)
				http.Error(w, "Невалидный токен", http.StatusUnauthorized)
				return
			}
			if claims.TokenType != "" && claims.TokenType != accessTokenType {
				slog.Debug("Предъявлен не токен доступа", "token_type", claims.TokenType)
				http.Error(w, "Невалидный токен", http.StatusUnauthorized)
				return
			}
			if claims.UserID == 0 {
				http.Error(w, "Невалидный токен", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext извлекает ID пользователя из контекста запроса.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}
