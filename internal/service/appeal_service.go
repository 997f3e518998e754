package service

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/VictorLi621/5620-Marker/internal/apperr"
	"github.com/VictorLi621/5620-Marker/internal/model"
	"github.com/VictorLi621/5620-Marker/internal/repository"
)

// AppealResolver handles the student appeal flow: filing against a published
// grade and the teacher's approve/reject resolution. A submission carries at
// most one PENDING appeal at a time.
type AppealResolver interface {
	File(studentID, submissionID uint, reason string) (*model.Appeal, error)
	Resolve(teacherID, appealID uint, decision model.AppealStatus, resolution string, newScore *float64) (*model.Appeal, error)
	PendingAppeals() ([]model.Appeal, error)
	BySubmission(submissionID uint) ([]model.Appeal, error)
}

type appealService struct {
	db             *gorm.DB
	appealRepo     repository.AppealRepository
	gradeRepo      repository.GradeRepository
	submissionRepo repository.SubmissionRepository
	snapshotRepo   repository.SnapshotRepository
	notifications  NotificationService
	audit          AuditService
}

func NewAppealService(
	db *gorm.DB,
	appealRepo repository.AppealRepository,
	gradeRepo repository.GradeRepository,
	submissionRepo repository.SubmissionRepository,
	snapshotRepo repository.SnapshotRepository,
	notifications NotificationService,
	audit AuditService,
) AppealResolver {
	return &appealService{
		db:             db,
		appealRepo:     appealRepo,
		gradeRepo:      gradeRepo,
		submissionRepo: submissionRepo,
		snapshotRepo:   snapshotRepo,
		notifications:  notifications,
		audit:          audit,
	}
}

func (s *appealService) File(studentID, submissionID uint, reason string) (*model.Appeal, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperr.Validationf("appeal reason must not be blank")
	}

	submission, err := s.submissionRepo.FindByIDWithAssignment(submissionID)
	if err != nil {
		return nil, notFoundOr(err, "submission %d not found", submissionID)
	}
	if submission.StudentID != studentID {
		return nil, apperr.Authorizationf("submission %d does not belong to student %d", submissionID, studentID)
	}

	grade, err := s.gradeRepo.FindBySubmissionID(submissionID)
	if err != nil {
		return nil, notFoundOr(err, "no grade for submission %d", submissionID)
	}
	if grade.Status != model.GradePublished {
		return nil, apperr.InvalidStatef("grade for submission %d is %s; only published grades can be appealed", submissionID, grade.Status)
	}

	pending, err := s.appealRepo.HasPendingForSubmission(submissionID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperr.InvalidStatef("submission %d already has a pending appeal", submissionID)
	}

	appeal := &model.Appeal{
		SubmissionID: submissionID,
		StudentID:    studentID,
		Reason:       reason,
		Status:       model.AppealPending,
	}
	grade.Status = model.GradeAppealed

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.appealRepo.Create(tx, appeal); err != nil {
			return err
		}
		return saveGradeVersioned(tx, grade)
	})
	if err != nil {
		// The partial unique index on pending appeals decides races the
		// pre-check missed.
		if repository.IsUniqueViolation(err) {
			return nil, apperr.Conflictf("submission %d already has a pending appeal", submissionID)
		}
		return nil, err
	}

	s.notifications.NotifyTeacherReviewNeeded(submission.Assignment.TeacherID, submissionID)
	s.audit.Log(&studentID, model.AuditCreateAppeal, "APPEAL", appeal.ID, map[string]any{
		"submission_id": submissionID,
		"reason":        reason,
	})
	return appeal, nil
}

func (s *appealService) Resolve(teacherID, appealID uint, decision model.AppealStatus, resolution string, newScore *float64) (*model.Appeal, error) {
	if decision != model.AppealApproved && decision != model.AppealRejected {
		return nil, apperr.Validationf("decision must be APPROVED or REJECTED, got %q", decision)
	}
	if strings.TrimSpace(resolution) == "" {
		return nil, apperr.Validationf("appeal resolution must not be blank")
	}

	appeal, err := s.appealRepo.FindByIDWithSubmission(appealID)
	if err != nil {
		return nil, notFoundOr(err, "appeal %d not found", appealID)
	}
	if appeal.Status != model.AppealPending {
		return nil, apperr.InvalidStatef("appeal %d is already %s", appealID, appeal.Status)
	}

	assignment := appeal.Submission.Assignment
	if assignment.TeacherID != teacherID {
		return nil, apperr.Authorizationf("teacher %d does not own assignment %d", teacherID, assignment.ID)
	}

	if decision == model.AppealApproved {
		if newScore == nil {
			return nil, apperr.Validationf("an approved appeal requires a new score")
		}
		if *newScore < 0 || *newScore > assignment.MaxScore() {
			return nil, apperr.Validationf("score %.2f is outside the valid range [0, %.0f]", *newScore, assignment.MaxScore())
		}
	}

	grade, err := s.gradeRepo.FindBySubmissionID(appeal.SubmissionID)
	if err != nil {
		return nil, notFoundOr(err, "no grade for submission %d", appeal.SubmissionID)
	}

	version := 0
	if decision == model.AppealApproved {
		if version, err = s.snapshotRepo.LatestVersion(appeal.SubmissionID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	appeal.Status = decision
	appeal.ResolverTeacherID = &teacherID
	appeal.Resolution = &resolution
	appeal.ResolvedAt = &now
	if decision == model.AppealApproved {
		appeal.NewScore = newScore
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(appeal).Error; err != nil {
			return err
		}

		if decision == model.AppealApproved {
			grade.TeacherScore = newScore
			grade.ReviewedByID = &teacherID
			grade.ReviewedAt = &now
			grade.TeacherComments = appendComment(grade.TeacherComments, fmt.Sprintf("[Adjusted after appeal] %s", resolution))
		} else {
			grade.TeacherComments = appendComment(grade.TeacherComments, fmt.Sprintf("[Appeal rejected] %s", resolution))
		}
		// The grade returns to PUBLISHED either way; the original publishedAt
		// is preserved.
		grade.Status = model.GradePublished
		if err := saveGradeVersioned(tx, grade); err != nil {
			return err
		}

		if decision == model.AppealApproved {
			return s.snapshotRepo.Create(tx, &model.GradeSnapshot{
				SubmissionID:  appeal.SubmissionID,
				VersionNumber: version + 1,
				FinalScore:    grade.EffectiveScore(),
				PublishedByID: teacherID,
				PublishNotes:  fmt.Sprintf("Republished after appeal %d", appeal.ID),
				Feedback:      combineFeedback(grade),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifications.NotifyStudentAppealResolved(appeal.StudentID, appeal.ID, resolution)
	s.audit.Log(&teacherID, model.AuditResolveAppeal, "APPEAL", appeal.ID, map[string]any{
		"submission_id": appeal.SubmissionID,
		"decision":      decision,
		"new_score":     newScore,
	})
	return appeal, nil
}

func (s *appealService) PendingAppeals() ([]model.Appeal, error) {
	return s.appealRepo.FindByStatus(model.AppealPending)
}

func (s *appealService) BySubmission(submissionID uint) ([]model.Appeal, error) {
	return s.appealRepo.FindBySubmission(submissionID)
}

func appendComment(existing *string, addition string) *string {
	if existing == nil || *existing == "" {
		return &addition
	}
	combined := *existing + "\n" + addition
	return &combined
}
