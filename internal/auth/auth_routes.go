package auth

import (
	"github.com/Wakkzz12/employee-leave-tracker/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, authMiddleware gin.HandlerFunc) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", middleware.RateLimitByIP(0.1, 3), handler.Register)
		auth.POST("/login", middleware.RateLimitByIP(0.08, 5), handler.Login)
		auth.POST("/refresh", middleware.RateLimitByIP(0.2, 5), handler.RefreshToken)
		auth.POST("/logout", middleware.RateLimitByIP(1, 5), handler.Logout)
		auth.GET("/me", authMiddleware, middleware.RateLimitByUser(2, 5), handler.Me)
	}
}
