package calendar

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hobbystudio/internal/shared/middleware"
	"hobbystudio/internal/shared/utils/response"
)

type Controller interface {
	ImportEvents(c *gin.Context)
	ListEvents(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// ImportEvents godoc
// @Summary      Import calendar events
// @Description  Stores a batch of events pulled from an external calendar. Invalid and duplicate events are counted, not rejected.
// @Tags         calendar
// @Accept       json
// @Produce      json
// @Param        studioId  path  string               true  "Studio ID"
// @Param        request   body  ImportEventsRequest  true  "Events to import"
// @Success      201  {object}  response.StandardApiResponse{data=ImportResult}
// @Failure      400  {object}  response.StandardApiResponse
// @Failure      413  {object}  response.StandardApiResponse
// @Security     BearerAuth
// @Router       /studios/{studioId}/calendar/events/import [post]
func (ctrl *controller) ImportEvents(c *gin.Context) {
	var req ImportEventsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, response.StatusError, http.StatusBadRequest, "Invalid request body", nil, response.ValidationErrors(err))
		return
	}

	result, err := ctrl.service.ImportEvents(c.Request.Context(), c.Param("studioId"), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrBatchTooLarge):
			response.RespondJSON(c, response.StatusError, http.StatusRequestEntityTooLarge, err.Error(), nil, nil)
		case errors.Is(err, ErrStudioRequired):
			response.RespondJSON(c, response.StatusError, http.StatusBadRequest, err.Error(), nil, nil)
		default:
			middleware.RequestLog(c).LogHTTPError(c, err, http.StatusInternalServerError)
			response.RespondJSON(c, response.StatusError, http.StatusInternalServerError, "Failed to import events", nil, nil)
		}
		return
	}

	status := http.StatusCreated
	if result.SuccessfullyImported == 0 {
		status = http.StatusOK
	}
	response.RespondJSON(c, response.StatusSuccess, status, "Events processed", result, nil)
}

// ListEvents godoc
// @Summary      List imported events
// @Tags         calendar
// @Produce      json
// @Param        studioId  path   string  true   "Studio ID"
// @Param        page      query  int     false  "Page"
// @Param        limit     query  int     false  "Page size (max 100)"
// @Param        status    query  string  false  "Migration status"
// @Param        from      query  string  false  "Start date YYYY-MM-DD"
// @Param        to        query  string  false  "End date YYYY-MM-DD"
// @Success      200  {object}  response.StandardApiResponse{data=PaginatedEventsResponse}
// @Failure      400  {object}  response.StandardApiResponse
// @Security     BearerAuth
// @Router       /studios/{studioId}/calendar/events [get]
func (ctrl *controller) ListEvents(c *gin.Context) {
	var query EventListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, response.StatusError, http.StatusBadRequest, "Invalid query parameters", nil, response.ValidationErrors(err))
		return
	}

	events, err := ctrl.service.ListEvents(c.Request.Context(), c.Param("studioId"), query)
	if err != nil {
		middleware.RequestLog(c).LogHTTPError(c, err, http.StatusInternalServerError)
		response.RespondJSON(c, response.StatusError, http.StatusInternalServerError, "Failed to list events", nil, nil)
		return
	}

	response.RespondJSON(c, response.StatusSuccess, http.StatusOK, "Events retrieved successfully", events, nil)
}
