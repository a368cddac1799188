// utils/admin.go
package utils

import (
	"cleanpro-backend/config"

	"github.com/gin-gonic/gin"
)

// AdminRequired gates admin routes. The role is re-checked against the
// profiles table on every call rather than trusted from the token claim,
// so a suspended or demoted admin is locked out immediately.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userId")
		if !exists {
			c.AbortWithStatusJSON(401, gin.H{"error": "User ID not found in context"})
			return
		}

		var row struct {
			Role          string
			AccountStatus string
		}
		if err := config.DB.Table("profiles").
			Select("role, account_status").
			Where("id = ?", userID).
			Scan(&row).Error; err != nil {
			c.AbortWithStatusJSON(500, gin.H{"error": "Database error"})
			return
		}

		if row.Role != "admin" || row.AccountStatus != "active" {
			c.AbortWithStatusJSON(403, gin.H{"error": "Admin access required"})
			return
		}

		c.Next()
	}
}
