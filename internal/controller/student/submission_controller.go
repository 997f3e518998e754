package student

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/VictorLi621/5620-Marker/internal/controller"
	"github.com/VictorLi621/5620-Marker/internal/dto"
	"github.com/VictorLi621/5620-Marker/internal/service"
)

type SubmissionController struct {
	orchestrator service.SubmissionOrchestrator
}

func NewSubmissionController(orchestrator service.SubmissionOrchestrator) *SubmissionController {
	return &SubmissionController{orchestrator: orchestrator}
}

func (c *SubmissionController) RegisterRoutes(api *gin.RouterGroup) {
	submissions := api.Group("/submissions")
	submissions.POST("", c.Submit)
	submissions.GET("/:id", c.GetSubmission)
	submissions.GET("/:id/status", c.GetStatus)
	submissions.GET("/:id/grade", c.GetGrade)
	submissions.POST("/:id/acknowledge", c.AcknowledgeGrade)
	submissions.POST("/:id/appeals", c.FileAppeal)
}

// Submit godoc
// @Summary Upload a submission
// @Description Student uploads an answer file for an assignment; processing runs asynchronously.
// @Tags Student - Submissions
// @Accept multipart/form-data
// @Produce json
// @Param assignment_id formData int true "Assignment ID"
// @Param student_id formData int true "Student ID"
// @Param file formData file true "Answer file (pdf, txt, md, jpg, png)"
// @Success 201 {object} dto.SubmissionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid form data"
// @Failure 403 {object} dto.ErrorResponse "Student not enrolled in the course"
// @Failure 404 {object} dto.ErrorResponse "Assignment not found"
// @Router /submissions [post]
func (c *SubmissionController) Submit(ctx *gin.Context) {
	assignmentID, err := strconv.ParseUint(ctx.PostForm("assignment_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid assignment_id"})
		return
	}
	studentID, err := strconv.ParseUint(ctx.PostForm("student_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid student_id"})
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Missing submission file"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	resp, err := c.orchestrator.Submit(uint(assignmentID), uint(studentID), fileHeader.Filename, file)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// GetSubmission godoc
// @Summary Get a submission
// @Tags Student - Submissions
// @Produce json
// @Param id path int true "Submission ID"
// @Param student_id query int true "Student ID"
// @Success 200 {object} dto.SubmissionResponse
// @Failure 403 {object} dto.ErrorResponse "Submission belongs to another student"
// @Failure 404 {object} dto.ErrorResponse "Submission not found"
// @Router /submissions/{id} [get]
func (c *SubmissionController) GetSubmission(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	studentID, ok := queryUint(ctx, "student_id")
	if !ok {
		return
	}

	resp, err := c.orchestrator.GetSubmission(studentID, id)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetStatus godoc
// @Summary Get submission processing status
// @Tags Student - Submissions
// @Produce json
// @Param id path int true "Submission ID"
// @Success 200 {object} dto.SubmissionStatusResponse
// @Failure 404 {object} dto.ErrorResponse "Submission not found"
// @Router /submissions/{id}/status [get]
func (c *SubmissionController) GetStatus(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.orchestrator.Status(id)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetGrade godoc
// @Summary Get the published grade for a submission
// @Description Returns the grade once it has been published; unpublished grades are not visible to students.
// @Tags Student - Grades
// @Produce json
// @Param id path int true "Submission ID"
// @Param student_id query int true "Student ID"
// @Success 200 {object} dto.GradeResponse
// @Failure 403 {object} dto.ErrorResponse "Submission belongs to another student"
// @Failure 404 {object} dto.ErrorResponse "Submission or grade not found"
// @Failure 409 {object} dto.ErrorResponse "Grade not published yet"
// @Router /submissions/{id}/grade [get]
func (c *SubmissionController) GetGrade(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	studentID, ok := queryUint(ctx, "student_id")
	if !ok {
		return
	}

	resp, err := c.orchestrator.GradeForStudent(studentID, id)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// AcknowledgeGrade godoc
// @Summary Acknowledge a published grade
// @Tags Student - Grades
// @Accept json
// @Produce json
// @Param id path int true "Submission ID"
// @Param body body dto.AcknowledgeGradeRequest true "Acknowledging student"
// @Success 200 {object} dto.GradeResponse
// @Failure 403 {object} dto.ErrorResponse "Submission belongs to another student"
// @Failure 409 {object} dto.ErrorResponse "Grade not published"
// @Router /submissions/{id}/acknowledge [post]
func (c *SubmissionController) AcknowledgeGrade(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}

	var req dto.AcknowledgeGradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.orchestrator.Acknowledge(req.StudentID, id)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// FileAppeal godoc
// @Summary File an appeal against a published grade
// @Tags Student - Appeals
// @Accept json
// @Produce json
// @Param id path int true "Submission ID"
// @Param body body dto.FileAppealRequest true "Appeal reason"
// @Success 201 {object} dto.AppealResponse
// @Failure 400 {object} dto.ErrorResponse "Blank reason"
// @Failure 409 {object} dto.ErrorResponse "Grade not published or appeal already pending"
// @Router /submissions/{id}/appeals [post]
func (c *SubmissionController) FileAppeal(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}

	var req dto.FileAppealRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.orchestrator.FileAppeal(req.StudentID, id, req.Reason)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

func queryUint(ctx *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(ctx.Query(name), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name})
		return 0, false
	}
	return uint(v), true
}
