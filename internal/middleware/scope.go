package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	ContextBranchID = "branchID"
	ContextStaffID  = "staffID"
)

// BranchScope resolves the tenant for staff-facing routes from trusted
// headers. Identity is established upstream at the gateway; this layer only
// carries the scope.
func BranchScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		branchID, ok := headerUint(c, "X-Branch-ID")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing_branch_scope",
			})
			return
		}

		c.Set(ContextBranchID, branchID)

		if staffID, ok := headerUint(c, "X-Staff-ID"); ok {
			c.Set(ContextStaffID, staffID)
		}

		c.Next()
	}
}

// StaffScope additionally requires a concrete staff member on the request.
func StaffScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ContextStaffID); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing_staff_scope",
			})
			return
		}
		c.Next()
	}
}

func headerUint(c *gin.Context, name string) (uint, bool) {
	raw := c.GetHeader(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}
