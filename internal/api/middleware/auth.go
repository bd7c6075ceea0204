package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/oneplanet-market/internal/domain/account"
)

const (
	// AccountIDKey is the key for the authenticated account ID in the gin context
	AccountIDKey = "account_id"
	// AccountRoleKey is the key for the authenticated account role in the gin context
	AccountRoleKey = "account_role"

	authCookieName = "auth_token"
	bearerSchema   = "Bearer "
)

// Claims carries the account identity inside a signed session token
type Claims struct {
	AccountID uuid.UUID    `json:"account_id"`
	Role      account.Role `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken issues a signed session token for the account
func GenerateToken(accountID uuid.UUID, role account.Role, secret string, ttl time.Duration) (string, error) {
	claims := Claims{
		AccountID: accountID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a session token and returns its claims
func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Auth middleware authenticates requests via the Authorization header or the
// session cookie and stores the account identity in the request context
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := ParseToken(tokenString, secret)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(AccountIDKey, claims.AccountID)
		c.Set(AccountRoleKey, claims.Role)
		c.Next()
	}
}

// RequireRoles rejects authenticated requests whose account role is not in
// the allowed set. Must run after Auth.
func RequireRoles(roles ...account.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetAccountRole(c)
		if !ok {
			abortUnauthorized(c)
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		response := gin.H{
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Insufficient permissions",
			},
		}
		if correlationID := GetCorrelationID(c); correlationID != "" {
			response["correlation_id"] = correlationID
		}
		c.AbortWithStatusJSON(http.StatusForbidden, response)
	}
}

// GetAccountID extracts the authenticated account ID from the gin context
func GetAccountID(c *gin.Context) (uuid.UUID, bool) {
	if v, exists := c.Get(AccountIDKey); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}

// GetAccountRole extracts the authenticated account role from the gin context
func GetAccountRole(c *gin.Context) (account.Role, bool) {
	if v, exists := c.Get(AccountRoleKey); exists {
		if role, ok := v.(account.Role); ok {
			return role, true
		}
	}
	return "", false
}

// extractToken extracts the session token from the Authorization header or cookie
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, bearerSchema) {
		return strings.TrimPrefix(authHeader, bearerSchema)
	}

	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}

	return ""
}

func abortUnauthorized(c *gin.Context) {
	response := gin.H{
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": "Authentication required",
		},
	}
	if correlationID := GetCorrelationID(c); correlationID != "" {
		response["correlation_id"] = correlationID
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, response)
}
