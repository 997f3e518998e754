package teacher

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/VictorLi621/5620-Marker/internal/controller"
	"github.com/VictorLi621/5620-Marker/internal/dto"
	"github.com/VictorLi621/5620-Marker/internal/service"
)

type AnalyticsController struct {
	analytics service.AnalyticsService
}

func NewAnalyticsController(analytics service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analytics: analytics}
}

func (c *AnalyticsController) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/teacher/assignments/:id/statistics", c.AssignmentStatistics)
}

// AssignmentStatistics godoc
// @Summary (Teacher) Grading statistics for an assignment
// @Description Score distribution, averages, publication progress and processing failures across the assignment's submissions.
// @Tags Teacher - Analytics
// @Produce json
// @Param id path int true "Assignment ID"
// @Param teacher_id query int true "Teacher ID"
// @Success 200 {object} dto.AssignmentStatisticsResponse
// @Failure 403 {object} dto.ErrorResponse "Teacher does not own the assignment"
// @Failure 404 {object} dto.ErrorResponse "Assignment not found"
// @Router /teacher/assignments/{id}/statistics [get]
func (c *AnalyticsController) AssignmentStatistics(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}

	teacherID, err := strconv.ParseUint(ctx.Query("teacher_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid teacher_id"})
		return
	}

	resp, err := c.analytics.AssignmentStatistics(uint(teacherID), id)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
