package handler

import (
	"net/http"
	"strconv"

	"kidquiz/internal/domain"
	"kidquiz/internal/middleware"
	"kidquiz/internal/service"

	"github.com/gin-gonic/gin"
)

// paramID parses a :name path parameter as an id. Writes the 400 itself.
func paramID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(v), true
}

// kidAccess checks the caller may act on a kid and writes the error response
// when not. Kid tokens may only act on themselves and never in manage mode
// beyond their own wallet operations; guardian tokens need a link, and manage
// mode needs an OWNER or GUARDIAN link.
func kidAccess(c *gin.Context, kids *service.KidService, kidID uint, manage bool) bool {
	switch middleware.GetRole(c) {
	case domain.RoleKid:
		if middleware.GetAccountID(c) != kidID {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return false
		}
		return true
	case domain.RoleGuardian:
		_, err := kids.RequireRole(middleware.GetAccountID(c), kidID, manage)
		if err != nil {
			switch err {
			case service.ErrNotLinked:
				c.JSON(http.StatusNotFound, gin.H{"error": "kid not found"})
			case service.ErrCannotManage:
				c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "permission check failed"})
			}
			return false
		}
		return true
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	return false
}

// guardianAccess is kidAccess restricted to guardian tokens.
func guardianAccess(c *gin.Context, kids *service.KidService, kidID uint, manage bool) bool {
	if middleware.GetRole(c) != domain.RoleGuardian {
		c.JSON(http.StatusForbidden, gin.H{"error": "guardian account required"})
		return false
	}
	return kidAccess(c, kids, kidID, manage)
}
