package rbac

import (
	"github.com/Wakkzz12/employee-leave-tracker/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes expects r to already carry the auth middleware.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	group := r.Group("/rbac")
	{
		group.GET("/permissions", middleware.RateLimitByUser(2, 10), handler.Permissions)
		group.POST("/enforce", middleware.RateLimitByUser(5, 20), handler.Enforce)
	}
}
