package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"forum-geni/pkg/rbac"
)

const sessionContextKey = "forumGeniSession"

// SessionClaims are the claims of the session token issued by the
// authentication provider
type SessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Session is the authenticated principal stored in the request context.
// Role is empty when the token carries an unknown role.
type Session struct {
	UserID string
	Email  string
	Role   rbac.Role
}

// Authenticate validates the bearer session token and stores the session
func Authenticate(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		token := extractBearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims := &SessionClaims{}
		_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		role, _ := rbac.ParseRole(claims.Role)
		c.Set(sessionContextKey, Session{
			UserID: claims.Subject,
			Email:  claims.Email,
			Role:   role,
		})
		c.Next()
	}
}

// CurrentSession extracts the authenticated session from the context
func CurrentSession(c *gin.Context) (Session, bool) {
	value, exists := c.Get(sessionContextKey)
	if !exists {
		return Session{}, false
	}
	session, ok := value.(Session)
	return session, ok
}

// RequireRoute denies the request unless the session role may open the
// requested path. Requests without a session are denied too.
func (h *Handler) RequireRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, _ := CurrentSession(c)

		decision := rbac.CanAccessRoute(session.Role, c.Request.URL.Path)
		if decision.Allowed {
			c.Next()
			return
		}

		if wantsHTML(c) {
			h.render(c, http.StatusForbidden, "denied.pug", gin.H{
				"Message":      decision.Message,
				"RequiredRole": decision.RequiredRole.Label(),
			})
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":        decision.Message,
			"requiredRole": decision.RequiredRole,
		})
	}
}

func extractBearerToken(header string) string {
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func wantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
