// Package middleware промежуточные обработчики HTTP: личность из токена,
// проверка роли, журнал запросов
package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Роли, которые выдаёт провайдер личности
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

const (
	userIDKey = "user_id"
	roleKey   = "role"
)

// Claims поля токена, на которые опирается сервис
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Identity проверяет Bearer-токен HS256 и кладёт в контекст id пользователя (sub) и роль.
// Токены выпускает провайдер личности, сервис их только проверяет.
func Identity(secret string) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			var claims Claims
			tok, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil || claims.Role == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			c.Set(userIDKey, userID)
			c.Set(roleKey, claims.Role)
			return next(c)
		}
	}
}

// RequireRole пропускает только пользователей с одной из ролей
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !allowed[Role(c)] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// UserID id пользователя, положенный Identity
func UserID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(userIDKey).(uuid.UUID)
	return id, ok
}

// Role роль пользователя, положенная Identity
func Role(c echo.Context) string {
	role, _ := c.Get(roleKey).(string)
	return role
}
