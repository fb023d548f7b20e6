package leave

import (
	"github.com/Wakkzz12/employee-leave-tracker/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RegisterRoutes expects r to already carry the auth and context logger
// middleware.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	rdb *redis.Client,
) {
	leaves := r.Group("/leave-requests")
	{
		leaves.GET("",
			middleware.RateLimitByUser(5, 20),
			middleware.RBACAuthorize(rbacService, "leave", "read"),
			handler.GetAll,
		)

		leaves.GET("/history",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "leave", "read"),
			handler.History,
		)

		leaves.GET("/employee/:employeeId",
			middleware.RateLimitByUser(5, 20),
			middleware.RBACAuthorize(rbacService, "leave", "read"),
			handler.EmployeeHistory,
		)

		leaves.GET("/employee/:employeeId/report",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "leave", "read"),
			handler.EmployeeReport,
		)

		leaves.GET("/:id",
			middleware.RateLimitByUser(5, 20),
			middleware.RBACAuthorize(rbacService, "leave", "read"),
			handler.GetById,
		)

		leaves.GET("/:id/proof",
			middleware.RateLimitByUser(2, 5),
			middleware.RBACAuthorize(rbacService, "leave", "read"),
			handler.Proof,
		)

		leaves.POST("",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "leave", "create"),
			middleware.Idempotency(rdb),
			handler.Create,
		)

		leaves.PUT("/:id",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "leave", "update"),
			handler.Update,
		)

		leaves.DELETE("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "leave", "delete"),
			handler.Delete,
		)
	}
}
