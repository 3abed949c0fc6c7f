package insights

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hobbystudio/internal/shared/middleware"
	"hobbystudio/internal/shared/utils/response"
)

type Controller interface {
	GetStudioInsights(c *gin.Context)
	GetSummary(c *gin.Context)
	GetTimeSlots(c *gin.Context)
	GetRoomEfficiency(c *gin.Context)
	GetInstructorOptimization(c *gin.Context)
	GetCapacityAdjustments(c *gin.Context)
	RefreshStudioInsights(c *gin.Context)
	InvalidateAll(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// GetStudioInsights godoc
// @Summary      Studio intelligence insights
// @Description  Time slot, room, instructor and capacity recommendations over the last three months
// @Tags         insights
// @Produce      json
// @Param        studioId  path  string  true  "Studio ID"
// @Success      200  {object}  response.StandardApiResponse{data=StudioIntelligenceInsights}
// @Failure      500  {object}  response.StandardApiResponse
// @Security     BearerAuth
// @Router       /studios/{studioId}/insights [get]
func (ctrl *controller) GetStudioInsights(c *gin.Context) {
	result, ok := ctrl.load(c)
	if !ok {
		return
	}
	response.RespondJSON(c, response.StatusSuccess, http.StatusOK, "Insights retrieved successfully", result, nil)
}

// GetSummary godoc
// @Summary      Insights summary card
// @Tags         insights
// @Produce      json
// @Param        studioId  path  string  true  "Studio ID"
// @Success      200  {object}  response.StandardApiResponse{data=InsightsSummary}
// @Security     BearerAuth
// @Router       /studios/{studioId}/insights/summary [get]
func (ctrl *controller) GetSummary(c *gin.Context) {
	summary, err := ctrl.service.GetSummary(c.Request.Context(), c.Param("studioId"))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	response.RespondJSON(c, response.StatusSuccess, http.StatusOK, "Summary retrieved successfully", summary, nil)
}

// GetTimeSlots godoc
// @Summary      Time slot recommendations
// @Tags         insights
// @Produce      json
// @Param        studioId  path  string  true  "Studio ID"
// @Success      200  {object}  response.StandardApiResponse{data=[]TimeSlotRecommendation}
// @Security     BearerAuth
// @Router       /studios/{studioId}/insights/time-slots [get]
func (ctrl *controller) GetTimeSlots(c *gin.Context) {
	if result, ok := ctrl.load(c); ok {
		response.RespondJSON(c, response.StatusSuccess, http.StatusOK, "Time slot recommendations retrieved successfully", result.TimeSlots, nil)
	}
}

// GetRoomEfficiency godoc
// @Summary      Room utilisation
// @Tags         insights
// @Produce      json
// @Param        studioId  path  string  true  "Studio ID"
// @Success      200  {object}  response.StandardApiResponse{data=[]RoomEfficiencyData}
// @Security     BearerAuth
// @Router       /studios/{studioId}/insights/rooms [get]
func (ctrl *controller) GetRoomEfficiency(c *gin.Context) {
	if result, ok := ctrl.load(c); ok {
		response.RespondJSON(c, response.StatusSuccess, http.StatusOK, "Room efficiency retrieved successfully", result.RoomEfficiency, nil)
	}
}

// GetInstructorOptimization godoc
// @Summary      Instructor schedule suggestions
// @Tags         insights
// @Produce      json
// @Param        studioId  path  string  true  "Studio ID"
// @Success      200  {object}  response.StandardApiResponse{data=[]InstructorOptimization}
// @Security     BearerAuth
// @Router       /studios/{studioId}/insights/instructors [get]
func (ctrl *controller) GetInstructorOptimization(c *gin.Context) {
	if result, ok := ctrl.load(c); ok {
		response.RespondJSON(c, response.StatusSuccess, http.StatusOK, "Instructor optimization retrieved successfully", result.InstructorOptimization, nil)
	}
}

// GetCapacityAdjustments godoc
// @Summary      Class size adjustments
// @Tags         insights
// @Produce      json
// @Param        studioId  path  string  true  "Studio ID"
// @Success      200  {object}  response.StandardApiResponse{data=[]CapacityRecommendation}
// @Security     BearerAuth
// @Router       /studios/{studioId}/insights/capacity [get]
func (ctrl *controller) GetCapacityAdjustments(c *gin.Context) {
	if result, ok := ctrl.load(c); ok {
		response.RespondJSON(c, response.StatusSuccess, http.StatusOK, "Capacity adjustments retrieved successfully", result.CapacityAdjustments, nil)
	}
}

// RefreshStudioInsights godoc
// @Summary      Recompute insights
// @Description  Drops the cached insights for the studio and recomputes them
// @Tags         insights
// @Produce      json
// @Param        studioId  path  string  true  "Studio ID"
// @Success      200  {object}  response.StandardApiResponse{data=StudioIntelligenceInsights}
// @Security     BearerAuth
// @Router       /studios/{studioId}/insights/refresh [post]
func (ctrl *controller) RefreshStudioInsights(c *gin.Context) {
	result, err := ctrl.service.RefreshStudioInsights(c.Request.Context(), c.Param("studioId"))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	response.RespondJSON(c, response.StatusSuccess, http.StatusOK, "Insights refreshed successfully", result, nil)
}

// InvalidateAll godoc
// @Summary      Drop every cached insight
// @Tags         admin
// @Produce      json
// @Success      200  {object}  response.StandardApiResponse
// @Security     BearerAuth
// @Router       /admin/insights/cache [delete]
func (ctrl *controller) InvalidateAll(c *gin.Context) {
	if err := ctrl.service.InvalidateAll(c.Request.Context()); err != nil {
		middleware.RequestLog(c).LogHTTPError(c, err, http.StatusInternalServerError)
		response.RespondJSON(c, response.StatusError, http.StatusInternalServerError, "Failed to clear insights cache", nil, nil)
		return
	}
	response.RespondJSON(c, response.StatusSuccess, http.StatusOK, "Insights cache cleared", nil, nil)
}

func (ctrl *controller) load(c *gin.Context) (*StudioIntelligenceInsights, bool) {
	result, err := ctrl.service.GetStudioInsights(c.Request.Context(), c.Param("studioId"))
	if err != nil {
		ctrl.respondError(c, err)
		return nil, false
	}
	return result, true
}

func (ctrl *controller) respondError(c *gin.Context, err error) {
	if errors.Is(err, ErrStudioRequired) {
		response.RespondJSON(c, response.StatusError, http.StatusBadRequest, err.Error(), nil, nil)
		return
	}
	middleware.RequestLog(c).LogHTTPError(c, err, http.StatusInternalServerError)
	response.RespondJSON(c, response.StatusError, http.StatusInternalServerError, "Failed to generate insights", nil, nil)
}
