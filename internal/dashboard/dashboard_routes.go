package dashboard

import (
	"github.com/Wakkzz12/employee-leave-tracker/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService middleware.RBACService) {
	r.GET("/dashboard",
		middleware.RateLimitByUser(5, 20),
		middleware.RBACAuthorize(rbacService, "dashboard", "read"),
		handler.Summary,
	)
}
