package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/VictorLi621/5620-Marker/internal/apperr"
	"github.com/VictorLi621/5620-Marker/internal/model"
	"github.com/VictorLi621/5620-Marker/internal/repository"
)

// WorkflowService drives a submission through the processing pipeline:
// UPLOADED -> OCR_PROCESSING -> ANONYMIZING -> SCORING -> SCORED, with any
// stage failure parking the submission in FAILED. The persisted status always
// names the stage currently in flight.
type WorkflowService interface {
	// Advance performs exactly one pipeline stage and returns the resulting
	// status. A concurrent Advance on the same submission is rejected with a
	// CONFLICT error; advancing a terminal submission is an INVALID_STATE
	// error.
	Advance(ctx context.Context, submissionID uint) (model.SubmissionStatus, error)
	// Run advances the submission until it reaches a terminal status.
	Run(ctx context.Context, submissionID uint)
	// Status reads the current status without side effects.
	Status(submissionID uint) (model.SubmissionStatus, *string, error)
}

// submissionLocks hands out per-submission try-locks so only one goroutine
// advances a given submission at a time.
type submissionLocks struct {
	mu   sync.Mutex
	held map[uint]struct{}
}

func newSubmissionLocks() *submissionLocks {
	return &submissionLocks{held: make(map[uint]struct{})}
}

func (l *submissionLocks) tryLock(id uint) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, taken := l.held[id]; taken {
		return false
	}
	l.held[id] = struct{}{}
	return true
}

func (l *submissionLocks) unlock(id uint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, id)
}

type workflowService struct {
	db             *gorm.DB
	submissionRepo repository.SubmissionRepository
	gradeRepo      repository.GradeRepository
	runner         *StageRunner
	grades         GradeManager
	locks          *submissionLocks
}

func NewWorkflowService(
	db *gorm.DB,
	submissionRepo repository.SubmissionRepository,
	gradeRepo repository.GradeRepository,
	runner *StageRunner,
	grades GradeManager,
) WorkflowService {
	return &workflowService{
		db:             db,
		submissionRepo: submissionRepo,
		gradeRepo:      gradeRepo,
		runner:         runner,
		grades:         grades,
		locks:          newSubmissionLocks(),
	}
}

func (s *workflowService) Advance(ctx context.Context, submissionID uint) (model.SubmissionStatus, error) {
	if !s.locks.tryLock(submissionID) {
		return "", apperr.Conflictf("submission %d is already being processed", submissionID)
	}
	defer s.locks.unlock(submissionID)

	submission, err := s.submissionRepo.FindByIDWithAssignment(submissionID)
	if err != nil {
		return "", notFoundOr(err, "submission %d not found", submissionID)
	}

	switch submission.Status {
	case model.SubmissionUploaded:
		return s.runStage(ctx, submission, model.SubmissionOCRProcessing, model.SubmissionAnonymizing, s.runner.RunExtraction)
	case model.SubmissionOCRProcessing:
		// A previous run died mid-extraction; redo the stage.
		return s.runStage(ctx, submission, model.SubmissionOCRProcessing, model.SubmissionAnonymizing, s.runner.RunExtraction)
	case model.SubmissionAnonymizing:
		return s.runStage(ctx, submission, model.SubmissionAnonymizing, model.SubmissionScoring, s.runner.RunAnonymization)
	case model.SubmissionScoring:
		return s.scoreAndRecord(ctx, submission)
	case model.SubmissionScored, model.SubmissionFailed:
		return "", apperr.InvalidStatef("submission %d is already in terminal status %s", submissionID, submission.Status)
	default:
		return "", apperr.InvalidStatef("submission %d has unknown status %q", submissionID, submission.Status)
	}
}

// runStage marks the submission as being in the given stage, executes it, and
// on success moves it to next. Failures park the submission in FAILED with the
// stage error recorded.
func (s *workflowService) runStage(
	ctx context.Context,
	submission *model.Submission,
	stage, next model.SubmissionStatus,
	run func(context.Context, *model.Submission) error,
) (model.SubmissionStatus, error) {
	if submission.Status != stage {
		submission.Status = stage
		if err := s.submissionRepo.Update(submission); err != nil {
			return "", err
		}
	}

	if err := run(ctx, submission); err != nil {
		return s.fail(submission, err)
	}

	submission.Status = next
	submission.FailureReason = nil
	if err := s.submissionRepo.Update(submission); err != nil {
		return "", err
	}
	return next, nil
}

// scoreAndRecord runs the scoring stage and, in one transaction, marks the
// submission SCORED and creates its Grade.
func (s *workflowService) scoreAndRecord(ctx context.Context, submission *model.Submission) (model.SubmissionStatus, error) {
	result, err := s.runner.RunScoring(ctx, submission)
	if err != nil {
		return s.fail(submission, err)
	}

	grade := s.grades.NewFromScoring(submission.ID, result)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		submission.Status = model.SubmissionScored
		submission.FailureReason = nil
		if err := tx.Save(submission).Error; err != nil {
			return err
		}
		return s.gradeRepo.CreateTx(tx, grade)
	})
	if err != nil {
		return "", err
	}

	s.grades.OnCreated(submission, grade)
	return model.SubmissionScored, nil
}

func (s *workflowService) fail(submission *model.Submission, cause error) (model.SubmissionStatus, error) {
	reason := cause.Error()
	submission.Status = model.SubmissionFailed
	submission.FailureReason = &reason

	if err := s.submissionRepo.Update(submission); err != nil {
		log.Error().Err(err).Uint("submissionID", submission.ID).Msg("Failed to mark submission as FAILED")
		return "", err
	}
	log.Warn().Err(cause).Uint("submissionID", submission.ID).Msg("Submission processing failed")
	return model.SubmissionFailed, cause
}

func (s *workflowService) Run(ctx context.Context, submissionID uint) {
	for {
		status, err := s.Advance(ctx, submissionID)
		if err != nil {
			switch apperr.KindOf(err) {
			case apperr.Conflict:
				log.Debug().Uint("submissionID", submissionID).Msg("Submission already being processed elsewhere")
			case apperr.InvalidState:
				log.Debug().Uint("submissionID", submissionID).Msg("Submission already in a terminal status")
			}
			return
		}
		if status.IsTerminal() {
			log.Info().Uint("submissionID", submissionID).Str("status", string(status)).Msg("Submission processing finished")
			return
		}
	}
}

func (s *workflowService) Status(submissionID uint) (model.SubmissionStatus, *string, error) {
	submission, err := s.submissionRepo.FindByID(submissionID)
	if err != nil {
		return "", nil, notFoundOr(err, "submission %d not found", submissionID)
	}
	return submission.Status, submission.FailureReason, nil
}
