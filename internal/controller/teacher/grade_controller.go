package teacher

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/VictorLi621/5620-Marker/internal/controller"
	"github.com/VictorLi621/5620-Marker/internal/dto"
	"github.com/VictorLi621/5620-Marker/internal/model"
	"github.com/VictorLi621/5620-Marker/internal/service"
)

type GradeController struct {
	orchestrator service.SubmissionOrchestrator
}

func NewGradeController(orchestrator service.SubmissionOrchestrator) *GradeController {
	return &GradeController{orchestrator: orchestrator}
}

func (c *GradeController) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/teacher/grades/pending", c.PendingGrades)
	api.PUT("/teacher/submissions/:id/review", c.ReviewGrade)
	api.POST("/teacher/submissions/:id/publish", c.PublishGrade)
	api.POST("/teacher/appeals/:id/resolve", c.ResolveAppeal)
}

// PendingGrades godoc
// @Summary (Teacher) List grades awaiting review or publication
// @Tags Teacher - Grades
// @Produce json
// @Param teacher_id query int true "Teacher ID"
// @Success 200 {array} dto.PendingGradeResponse
// @Router /teacher/grades/pending [get]
func (c *GradeController) PendingGrades(ctx *gin.Context) {
	teacherID, err := strconv.ParseUint(ctx.Query("teacher_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid teacher_id"})
		return
	}

	resp, err := c.orchestrator.PendingGrades(uint(teacherID))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ReviewGrade godoc
// @Summary (Teacher) Review a grade
// @Description Records the teacher's score and comments; repeat reviews overwrite earlier ones.
// @Tags Teacher - Grades
// @Accept json
// @Produce json
// @Param id path int true "Submission ID"
// @Param body body dto.ReviewGradeRequest true "Review data"
// @Success 200 {object} dto.GradeResponse
// @Failure 400 {object} dto.ErrorResponse "Score out of range"
// @Failure 403 {object} dto.ErrorResponse "Teacher does not own the assignment"
// @Failure 409 {object} dto.ErrorResponse "Grade not reviewable or modified concurrently"
// @Router /teacher/submissions/{id}/review [put]
func (c *GradeController) ReviewGrade(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}

	var req dto.ReviewGradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.orchestrator.Review(req.TeacherID, id, req.TeacherScore, req.Comments)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// PublishGrade godoc
// @Summary (Teacher) Publish a reviewed grade
// @Description Makes the grade visible to the student and records an immutable snapshot.
// @Tags Teacher - Grades
// @Accept json
// @Produce json
// @Param id path int true "Submission ID"
// @Param body body dto.PublishGradeRequest true "Publish data"
// @Success 200 {object} dto.GradeResponse
// @Failure 403 {object} dto.ErrorResponse "Teacher does not own the assignment"
// @Failure 409 {object} dto.ErrorResponse "Grade has not been reviewed"
// @Router /teacher/submissions/{id}/publish [post]
func (c *GradeController) PublishGrade(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}

	var req dto.PublishGradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.orchestrator.Publish(req.TeacherID, id, req.Notes)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ResolveAppeal godoc
// @Summary (Teacher) Resolve a pending appeal
// @Description Approves (with a new score) or rejects a pending appeal; the grade returns to PUBLISHED either way.
// @Tags Teacher - Appeals
// @Accept json
// @Produce json
// @Param id path int true "Appeal ID"
// @Param body body dto.ResolveAppealRequest true "Resolution data"
// @Success 200 {object} dto.AppealResponse
// @Failure 400 {object} dto.ErrorResponse "Missing new score or score out of range"
// @Failure 403 {object} dto.ErrorResponse "Teacher does not own the assignment"
// @Failure 409 {object} dto.ErrorResponse "Appeal already resolved"
// @Router /teacher/appeals/{id}/resolve [post]
func (c *GradeController) ResolveAppeal(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}

	var req dto.ResolveAppealRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.orchestrator.ResolveAppeal(req.TeacherID, id, model.AppealStatus(req.Decision), req.Resolution, req.NewScore)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
