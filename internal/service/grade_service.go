package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/VictorLi621/5620-Marker/internal/apperr"
	"github.com/VictorLi621/5620-Marker/internal/model"
	"github.com/VictorLi621/5620-Marker/internal/repository"
)

// ConfidenceThreshold splits freshly scored grades: at or above it a grade
// lands in HIGH_CONFIDENCE, below it in NEEDS_REVIEW.
const ConfidenceThreshold = 0.85

// GradeManager owns the grade lifecycle after scoring: routing by confidence,
// teacher review, versioned publication, and student acknowledgement.
type GradeManager interface {
	NewFromScoring(submissionID uint, result *ScoringResult) *model.Grade
	// OnCreated fires the post-commit side effects for a freshly created
	// grade: the audit entry and, for NEEDS_REVIEW, the teacher notification.
	OnCreated(submission *model.Submission, grade *model.Grade)
	Review(teacherID, submissionID uint, score float64, comments string) (*model.Grade, error)
	Publish(teacherID, submissionID uint, notes string) (*model.Grade, error)
	Acknowledge(studentID, submissionID uint) (*model.Grade, error)
	GetBySubmission(submissionID uint) (*model.Grade, error)
	PendingForTeacher(teacherID uint) ([]model.Grade, error)
}

type gradeService struct {
	db             *gorm.DB
	gradeRepo      repository.GradeRepository
	submissionRepo repository.SubmissionRepository
	assignmentRepo repository.AssignmentRepository
	snapshotRepo   repository.SnapshotRepository
	notifications  NotificationService
	audit          AuditService
}

func NewGradeService(
	db *gorm.DB,
	gradeRepo repository.GradeRepository,
	submissionRepo repository.SubmissionRepository,
	assignmentRepo repository.AssignmentRepository,
	snapshotRepo repository.SnapshotRepository,
	notifications NotificationService,
	audit AuditService,
) GradeManager {
	return &gradeService{
		db:             db,
		gradeRepo:      gradeRepo,
		submissionRepo: submissionRepo,
		assignmentRepo: assignmentRepo,
		snapshotRepo:   snapshotRepo,
		notifications:  notifications,
		audit:          audit,
	}
}

func (s *gradeService) NewFromScoring(submissionID uint, result *ScoringResult) *model.Grade {
	status := model.GradeNeedsReview
	if result.Confidence >= ConfidenceThreshold {
		status = model.GradeHighConfidence
	}
	return &model.Grade{
		SubmissionID: submissionID,
		AiScore:      result.Score,
		AiConfidence: result.Confidence,
		AiFeedback:   result.Feedback,
		Status:       status,
		Version:      1,
	}
}

func (s *gradeService) OnCreated(submission *model.Submission, grade *model.Grade) {
	s.audit.Log(nil, model.AuditAIScore, "GRADE", grade.ID, map[string]any{
		"submission_id": submission.ID,
		"ai_score":      grade.AiScore,
		"ai_confidence": grade.AiConfidence,
		"status":        grade.Status,
	})
	if grade.Status == model.GradeNeedsReview {
		s.notifications.NotifyTeacherReviewNeeded(submission.Assignment.TeacherID, submission.ID)
	}
}

// Review records a teacher's score and comments, overwriting any earlier
// review. The grade moves to REVIEWED regardless of its pre-review routing.
func (s *gradeService) Review(teacherID, submissionID uint, score float64, comments string) (*model.Grade, error) {
	submission, err := s.submissionRepo.FindByIDWithAssignment(submissionID)
	if err != nil {
		return nil, notFoundOr(err, "submission %d not found", submissionID)
	}
	if submission.Assignment.TeacherID != teacherID {
		return nil, apperr.Authorizationf("teacher %d does not own assignment %d", teacherID, submission.AssignmentID)
	}
	if submission.Status != model.SubmissionScored {
		return nil, apperr.InvalidStatef("submission %d is %s, not SCORED", submissionID, submission.Status)
	}

	grade, err := s.gradeRepo.FindBySubmissionID(submissionID)
	if err != nil {
		return nil, notFoundOr(err, "no grade for submission %d", submissionID)
	}
	switch grade.Status {
	case model.GradeNeedsReview, model.GradeHighConfidence, model.GradeReviewed:
	default:
		return nil, apperr.InvalidStatef("grade for submission %d is %s and can no longer be reviewed", submissionID, grade.Status)
	}

	maxScore := submission.Assignment.MaxScore()
	if score < 0 || score > maxScore {
		return nil, apperr.Validationf("score %.2f is outside the valid range [0, %.0f]", score, maxScore)
	}

	now := time.Now()
	grade.TeacherScore = &score
	grade.TeacherComments = &comments
	grade.ReviewedByID = &teacherID
	grade.ReviewedAt = &now
	grade.Status = model.GradeReviewed

	if err := s.updateGrade(grade); err != nil {
		return nil, err
	}

	s.audit.Log(&teacherID, model.AuditReviewGrade, "GRADE", grade.ID, map[string]any{
		"submission_id": submissionID,
		"teacher_score": score,
	})
	return grade, nil
}

// Publish makes a reviewed grade visible to the student and writes an
// immutable snapshot. Unreviewed grades cannot be published, including
// HIGH_CONFIDENCE ones.
func (s *gradeService) Publish(teacherID, submissionID uint, notes string) (*model.Grade, error) {
	submission, err := s.submissionRepo.FindByIDWithAssignment(submissionID)
	if err != nil {
		return nil, notFoundOr(err, "submission %d not found", submissionID)
	}
	if submission.Assignment.TeacherID != teacherID {
		return nil, apperr.Authorizationf("teacher %d does not own assignment %d", teacherID, submission.AssignmentID)
	}

	grade, err := s.gradeRepo.FindBySubmissionID(submissionID)
	if err != nil {
		return nil, notFoundOr(err, "no grade for submission %d", submissionID)
	}
	if grade.Status != model.GradeReviewed {
		return nil, apperr.InvalidStatef("grade for submission %d is %s; only REVIEWED grades can be published", submissionID, grade.Status)
	}

	finalScore := grade.EffectiveScore()
	now := time.Now()
	grade.Status = model.GradePublished
	if grade.PublishedAt == nil {
		grade.PublishedAt = &now
	}

	version, err := s.snapshotRepo.LatestVersion(submissionID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := saveGradeVersioned(tx, grade); err != nil {
			return err
		}
		return s.snapshotRepo.Create(tx, &model.GradeSnapshot{
			SubmissionID:  submissionID,
			VersionNumber: version + 1,
			FinalScore:    finalScore,
			PublishedByID: teacherID,
			PublishNotes:  notes,
			Feedback:      combineFeedback(grade),
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifications.NotifyStudentGradePublished(submission.StudentID, submissionID, finalScore)
	s.audit.Log(&teacherID, model.AuditPublishGrade, "GRADE", grade.ID, map[string]any{
		"submission_id":    submissionID,
		"final_score":      finalScore,
		"snapshot_version": version + 1,
	})
	return grade, nil
}

// Acknowledge marks a published grade as seen by its student. Repeat calls
// are no-ops.
func (s *gradeService) Acknowledge(studentID, submissionID uint) (*model.Grade, error) {
	submission, err := s.submissionRepo.FindByID(submissionID)
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
		return nil, apperr.InvalidStatef("grade for submission %d is %s, not PUBLISHED", submissionID, grade.Status)
	}
	if grade.AcknowledgedByStudent {
		return grade, nil
	}

	grade.AcknowledgedByStudent = true
	if err := s.updateGrade(grade); err != nil {
		return nil, err
	}

	s.audit.Log(&studentID, model.AuditAcknowledgeGrade, "GRADE", grade.ID, map[string]any{
		"submission_id": submissionID,
	})
	return grade, nil
}

func (s *gradeService) GetBySubmission(submissionID uint) (*model.Grade, error) {
	grade, err := s.gradeRepo.FindBySubmissionID(submissionID)
	if err != nil {
		return nil, notFoundOr(err, "no grade for submission %d", submissionID)
	}
	return grade, nil
}

// PendingForTeacher lists unpublished grades across the teacher's assignments.
func (s *gradeService) PendingForTeacher(teacherID uint) ([]model.Grade, error) {
	assignments, err := s.assignmentRepo.FindByTeacher(teacherID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.ID)
	}
	return s.gradeRepo.FindPendingByAssignments(ids)
}

func (s *gradeService) updateGrade(grade *model.Grade) error {
	if err := s.gradeRepo.UpdateVersioned(grade); err != nil {
		if errors.Is(err, repository.ErrStaleGrade) {
			return apperr.Conflictf("grade for submission %d was modified concurrently, retry", grade.SubmissionID)
		}
		return err
	}
	return nil
}

// saveGradeVersioned is the in-transaction variant of the repository's
// compare-and-swap write; both the publish and appeal flows use it.
func saveGradeVersioned(tx *gorm.DB, grade *model.Grade) error {
	current := grade.Version
	grade.Version = current + 1
	res := tx.Model(&model.Grade{}).
		Where("id = ? AND version = ?", grade.ID, current).
		Select("*").
		Omit("id", "created_at").
		Updates(grade)
	if res.Error != nil {
		grade.Version = current
		return res.Error
	}
	if res.RowsAffected == 0 {
		grade.Version = current
		return apperr.Conflictf("grade for submission %d was modified concurrently, retry", grade.SubmissionID)
	}
	return nil
}

// combineFeedback flattens the AI feedback plus any teacher comments into the
// snapshot's student-facing feedback text.
func combineFeedback(grade *model.Grade) string {
	var b strings.Builder
	if len(grade.AiFeedback.Strengths) > 0 {
		b.WriteString("Strengths:\n")
		for _, item := range grade.AiFeedback.Strengths {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	if len(grade.AiFeedback.Weaknesses) > 0 {
		b.WriteString("Areas to improve:\n")
		for _, item := range grade.AiFeedback.Weaknesses {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	for _, sug := range grade.AiFeedback.Suggestions {
		fmt.Fprintf(&b, "Suggestion: %s. %s\n", sug.Issue, sug.Suggestion)
	}
	if grade.TeacherComments != nil && *grade.TeacherComments != "" {
		fmt.Fprintf(&b, "Teacher comments: %s\n", *grade.TeacherComments)
	}
	return b.String()
}
