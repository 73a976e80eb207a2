package middleware

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campuskit/loantrack/internal/models"
	"github.com/campuskit/loantrack/pkg/errors"
	"github.com/campuskit/loantrack/pkg/response"
)

// RequireAdmin allows only administrators through.
func RequireAdmin(db *gorm.DB) gin.HandlerFunc {
	return requireRole(db, func(u *models.User) bool { return u.IsAdmin() })
}

// RequireApprover allows administrators and staff through.
func RequireApprover(db *gorm.DB) gin.HandlerFunc {
	return requireRole(db, func(u *models.User) bool { return u.CanApproveLoans() })
}

// requireRole loads the authenticated user and checks the predicate. The role
// is read from the database rather than the token so demotions apply without
// waiting for the access token to expire.
func requireRole(db *gorm.DB, allowed func(*models.User) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxUserIDKey)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		userID, _ := v.(string)

		var user models.User
		if err := db.WithContext(c.Request.Context()).
			First(&user, "id = ?", userID).Error; err != nil {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		if !user.IsActive || !allowed(&user) {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}
