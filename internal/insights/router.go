package insights

import (
	"hobbystudio/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupInsightsRoutes mounts the studio routes under an authenticated
// /studios/:studioId group and the cache admin route under an admin group.
func SetupInsightsRoutes(studio *gin.RouterGroup, admin *gin.RouterGroup, controller Controller) {
	insights := studio.Group("/insights")
	{
		insights.GET("", controller.GetStudioInsights)
		insights.GET("/summary", controller.GetSummary)
		insights.GET("/time-slots", controller.GetTimeSlots)
		insights.GET("/rooms", controller.GetRoomEfficiency)
		insights.GET("/instructors", controller.GetInstructorOptimization)
		insights.GET("/capacity", controller.GetCapacityAdjustments)
		insights.POST("/refresh",
			middleware.RequireRoles(middleware.RoleAdmin, middleware.RoleStudioOwner),
			controller.RefreshStudioInsights)
	}

	admin.DELETE("/insights/cache", controller.InvalidateAll)
}
