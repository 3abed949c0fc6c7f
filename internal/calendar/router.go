package calendar

import (
	"hobbystudio/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupCalendarRoutes mounts under an authenticated /studios/:studioId group
func SetupCalendarRoutes(studio *gin.RouterGroup, controller Controller) {
	events := studio.Group("/calendar/events")
	{
		events.GET("", controller.ListEvents) // GET /api/v1/studios/:studioId/calendar/events

		// Instructors can read the calendar but not write to it
		events.POST("/import",
			middleware.RequireRoles(middleware.RoleAdmin, middleware.RoleStudioOwner),
			controller.ImportEvents) // POST /api/v1/studios/:studioId/calendar/events/import
	}
}
