package middleware

import (
	"net/http"
	"strings"

	"kidquiz/config"
	"kidquiz/internal/auth"
	"kidquiz/internal/domain"

	"github.com/gin-gonic/gin"
)

// AuthRequired validates the bearer token and sets account id and role in context.
func AuthRequired(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		claims, err := auth.ParseAccessToken(cfg, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set("account_id", claims.AccountID)
		c.Set("role", claims.Role)
		c.Set("claims", claims)
		c.Next()
	}
}

// GuardianOnly rejects kid tokens. Must run after AuthRequired.
func GuardianOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != domain.RoleGuardian {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "guardian account required"})
			return
		}
		c.Next()
	}
}

// GetAccountID returns the authenticated account id (guardian or kid,
// depending on role). Must be used after AuthRequired.
func GetAccountID(c *gin.Context) uint {
	v, _ := c.Get("account_id")
	if v == nil {
		return 0
	}
	return v.(uint)
}

func GetRole(c *gin.Context) string {
	v, _ := c.Get("role")
	if v == nil {
		return ""
	}
	return v.(string)
}
