package service

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"

	"github.com/VictorLi621/5620-Marker/internal/apperr"
	"github.com/VictorLi621/5620-Marker/internal/dto"
	"github.com/VictorLi621/5620-Marker/internal/model"
	"github.com/VictorLi621/5620-Marker/internal/repository"
)

// SubmissionOrchestrator is the facade the HTTP layer talks to. It owns
// primary authorization (ownership and roster checks), hands work to the
// workflow and grading services, and maps models to response DTOs.
type SubmissionOrchestrator interface {
	Submit(assignmentID, studentID uint, filename string, file io.Reader) (*dto.SubmissionResponse, error)
	Status(submissionID uint) (*dto.SubmissionStatusResponse, error)
	GetSubmission(studentID, submissionID uint) (*dto.SubmissionResponse, error)
	GradeForStudent(studentID, submissionID uint) (*dto.GradeResponse, error)

	Review(teacherID, submissionID uint, score float64, comments string) (*dto.GradeResponse, error)
	Publish(teacherID, submissionID uint, notes string) (*dto.GradeResponse, error)
	Acknowledge(studentID, submissionID uint) (*dto.GradeResponse, error)
	PendingGrades(teacherID uint) ([]dto.PendingGradeResponse, error)

	FileAppeal(studentID, submissionID uint, reason string) (*dto.AppealResponse, error)
	ResolveAppeal(teacherID, appealID uint, decision model.AppealStatus, resolution string, newScore *float64) (*dto.AppealResponse, error)
}

type orchestrator struct {
	submissionRepo repository.SubmissionRepository
	appealRepo     repository.AppealRepository
	assignments    AssignmentService
	storage        StorageService
	roster         RosterService
	workflow       WorkflowService
	grades         GradeManager
	appeals        AppealResolver
	audit          AuditService
}

func NewSubmissionOrchestrator(
	submissionRepo repository.SubmissionRepository,
	appealRepo repository.AppealRepository,
	assignments AssignmentService,
	storage StorageService,
	roster RosterService,
	workflow WorkflowService,
	grades GradeManager,
	appeals AppealResolver,
	audit AuditService,
) SubmissionOrchestrator {
	return &orchestrator{
		submissionRepo: submissionRepo,
		appealRepo:     appealRepo,
		assignments:    assignments,
		storage:        storage,
		roster:         roster,
		workflow:       workflow,
		grades:         grades,
		appeals:        appeals,
		audit:          audit,
	}
}

// teacherOwns gates teacher actions on assignment ownership before any
// grading service is reached. The grading services re-check ownership on the
// rows they load themselves.
func (o *orchestrator) teacherOwns(teacherID, assignmentID uint) error {
	owns, err := o.roster.IsTeacherOf(teacherID, assignmentID)
	if err != nil {
		return err
	}
	if !owns {
		return apperr.Authorizationf("teacher %d does not own assignment %d", teacherID, assignmentID)
	}
	return nil
}

// Submit stores the uploaded file, creates the submission in UPLOADED, and
// kicks off asynchronous pipeline processing.
func (o *orchestrator) Submit(assignmentID, studentID uint, filename string, file io.Reader) (*dto.SubmissionResponse, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, apperr.Validationf("filename must not be blank")
	}

	assignment, err := o.assignments.GetByID(assignmentID)
	if err != nil {
		return nil, err
	}

	enrolled, err := o.roster.IsEnrolled(studentID, assignment.CourseCode)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, apperr.Authorizationf("student %d is not enrolled in %s", studentID, assignment.CourseCode)
	}

	ref, err := o.storage.Save("submissions", filename, file)
	if err != nil {
		return nil, err
	}

	submission := &model.Submission{
		AssignmentID:     assignmentID,
		StudentID:        studentID,
		OriginalFileRef:  ref,
		OriginalFileName: filename,
		FileType:         strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."),
		Status:           model.SubmissionUploaded,
	}
	if err := o.submissionRepo.Create(submission); err != nil {
		return nil, err
	}

	o.audit.Log(&studentID, model.AuditUpload, "SUBMISSION", submission.ID, map[string]any{
		"assignment_id": assignmentID,
		"file_name":     filename,
	})
	log.Info().Uint("submissionID", submission.ID).Uint("studentID", studentID).Msg("Submission received")

	go o.workflow.Run(context.Background(), submission.ID)

	return toSubmissionResponse(submission), nil
}

func (o *orchestrator) Status(submissionID uint) (*dto.SubmissionStatusResponse, error) {
	status, reason, err := o.workflow.Status(submissionID)
	if err != nil {
		return nil, err
	}
	return &dto.SubmissionStatusResponse{
		SubmissionID:  submissionID,
		Status:        status,
		FailureReason: reason,
	}, nil
}

func (o *orchestrator) GetSubmission(studentID, submissionID uint) (*dto.SubmissionResponse, error) {
	submission, err := o.submissionRepo.FindByID(submissionID)
	if err != nil {
		return nil, notFoundOr(err, "submission %d not found", submissionID)
	}
	if submission.StudentID != studentID {
		return nil, apperr.Authorizationf("submission %d does not belong to student %d", submissionID, studentID)
	}
	return toSubmissionResponse(submission), nil
}

// GradeForStudent exposes a grade to its student only once it has been
// published at least once.
func (o *orchestrator) GradeForStudent(studentID, submissionID uint) (*dto.GradeResponse, error) {
	submission, err := o.submissionRepo.FindByID(submissionID)
	if err != nil {
		return nil, notFoundOr(err, "submission %d not found", submissionID)
	}
	if submission.StudentID != studentID {
		return nil, apperr.Authorizationf("submission %d does not belong to student %d", submissionID, studentID)
	}

	grade, err := o.grades.GetBySubmission(submissionID)
	if err != nil {
		return nil, err
	}
	if grade.PublishedAt == nil {
		return nil, apperr.InvalidStatef("grade for submission %d has not been published yet", submissionID)
	}
	return toGradeResponse(grade), nil
}

func (o *orchestrator) Review(teacherID, submissionID uint, score float64, comments string) (*dto.GradeResponse, error) {
	submission, err := o.submissionRepo.FindByID(submissionID)
	if err != nil {
		return nil, notFoundOr(err, "submission %d not found", submissionID)
	}
	if err := o.teacherOwns(teacherID, submission.AssignmentID); err != nil {
		return nil, err
	}

	grade, err := o.grades.Review(teacherID, submissionID, score, comments)
	if err != nil {
		return nil, err
	}
	return toGradeResponse(grade), nil
}

func (o *orchestrator) Publish(teacherID, submissionID uint, notes string) (*dto.GradeResponse, error) {
	submission, err := o.submissionRepo.FindByID(submissionID)
	if err != nil {
		return nil, notFoundOr(err, "submission %d not found", submissionID)
	}
	if err := o.teacherOwns(teacherID, submission.AssignmentID); err != nil {
		return nil, err
	}

	grade, err := o.grades.Publish(teacherID, submissionID, notes)
	if err != nil {
		return nil, err
	}
	return toGradeResponse(grade), nil
}

func (o *orchestrator) Acknowledge(studentID, submissionID uint) (*dto.GradeResponse, error) {
	grade, err := o.grades.Acknowledge(studentID, submissionID)
	if err != nil {
		return nil, err
	}
	return toGradeResponse(grade), nil
}

func (o *orchestrator) PendingGrades(teacherID uint) ([]dto.PendingGradeResponse, error) {
	grades, err := o.grades.PendingForTeacher(teacherID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PendingGradeResponse, 0, len(grades))
	for i := range grades {
		g := &grades[i]
		out = append(out, dto.PendingGradeResponse{
			GradeID:      g.ID,
			SubmissionID: g.SubmissionID,
			AssignmentID: g.Submission.AssignmentID,
			StudentID:    g.Submission.StudentID,
			AiScore:      g.AiScore,
			AiConfidence: g.AiConfidence,
			Status:       g.Status,
			CreatedAt:    g.CreatedAt,
		})
	}
	return out, nil
}

func (o *orchestrator) FileAppeal(studentID, submissionID uint, reason string) (*dto.AppealResponse, error) {
	appeal, err := o.appeals.File(studentID, submissionID, reason)
	if err != nil {
		return nil, err
	}
	return toAppealResponse(appeal), nil
}

func (o *orchestrator) ResolveAppeal(teacherID, appealID uint, decision model.AppealStatus, resolution string, newScore *float64) (*dto.AppealResponse, error) {
	existing, err := o.appealRepo.FindByIDWithSubmission(appealID)
	if err != nil {
		return nil, notFoundOr(err, "appeal %d not found", appealID)
	}
	if err := o.teacherOwns(teacherID, existing.Submission.AssignmentID); err != nil {
		return nil, err
	}

	appeal, err := o.appeals.Resolve(teacherID, appealID, decision, resolution, newScore)
	if err != nil {
		return nil, err
	}
	return toAppealResponse(appeal), nil
}

func toSubmissionResponse(submission *model.Submission) *dto.SubmissionResponse {
	var resp dto.SubmissionResponse
	copier.Copy(&resp, submission)
	return &resp
}

func toGradeResponse(grade *model.Grade) *dto.GradeResponse {
	var resp dto.GradeResponse
	copier.Copy(&resp, grade)
	resp.FinalScore = grade.EffectiveScore()
	return &resp
}

func toAppealResponse(appeal *model.Appeal) *dto.AppealResponse {
	var resp dto.AppealResponse
	copier.Copy(&resp, appeal)
	return &resp
}
