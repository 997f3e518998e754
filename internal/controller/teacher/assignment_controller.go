package teacher

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"

	"github.com/VictorLi621/5620-Marker/internal/controller"
	"github.com/VictorLi621/5620-Marker/internal/dto"
	"github.com/VictorLi621/5620-Marker/internal/model"
	"github.com/VictorLi621/5620-Marker/internal/service"
)

type AssignmentController struct {
	assignments service.AssignmentService
}

func NewAssignmentController(assignments service.AssignmentService) *AssignmentController {
	return &AssignmentController{assignments: assignments}
}

func (c *AssignmentController) RegisterRoutes(api *gin.RouterGroup) {
	assignments := api.Group("/teacher/assignments")
	assignments.POST("", c.CreateAssignment)
	assignments.GET("", c.ListAssignments)
	api.POST("/teacher/enrollments", c.EnrollStudent)
}

// CreateAssignment godoc
// @Summary (Teacher) Create an assignment
// @Tags Teacher - Assignments
// @Accept json
// @Produce json
// @Param body body dto.CreateAssignmentRequest true "Assignment data"
// @Success 201 {object} dto.AssignmentResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Router /teacher/assignments [post]
func (c *AssignmentController) CreateAssignment(ctx *gin.Context) {
	var req dto.CreateAssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	assignment := &model.Assignment{
		TeacherID:   req.TeacherID,
		Title:       req.Title,
		Description: req.Description,
		CourseCode:  req.CourseCode,
		TotalMarks:  req.TotalMarks,
		Rubric:      req.Rubric,
		DueDate:     req.DueDate,
	}
	if err := c.assignments.Create(assignment); err != nil {
		controller.RespondError(ctx, err)
		return
	}

	var resp dto.AssignmentResponse
	copier.Copy(&resp, assignment)
	ctx.JSON(http.StatusCreated, resp)
}

// ListAssignments godoc
// @Summary (Teacher) List own assignments
// @Tags Teacher - Assignments
// @Produce json
// @Param teacher_id query int true "Teacher ID"
// @Success 200 {array} dto.AssignmentResponse
// @Router /teacher/assignments [get]
func (c *AssignmentController) ListAssignments(ctx *gin.Context) {
	teacherID, err := strconv.ParseUint(ctx.Query("teacher_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid teacher_id"})
		return
	}

	assignments, err := c.assignments.ListByTeacher(uint(teacherID))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}

	resp := make([]dto.AssignmentResponse, 0, len(assignments))
	copier.Copy(&resp, assignments)
	ctx.JSON(http.StatusOK, resp)
}

// EnrollStudent godoc
// @Summary (Teacher) Enroll a student in a course
// @Tags Teacher - Assignments
// @Accept json
// @Produce json
// @Param body body dto.EnrollStudentRequest true "Enrollment data"
// @Success 201 {object} dto.EnrollStudentRequest
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Router /teacher/enrollments [post]
func (c *AssignmentController) EnrollStudent(ctx *gin.Context) {
	var req dto.EnrollStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	if err := c.assignments.Enroll(req.StudentID, req.CourseCode); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, req)
}
