package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/VictorLi621/5620-Marker/internal/model"
	"github.com/VictorLi621/5620-Marker/internal/repository"
	"github.com/VictorLi621/5620-Marker/internal/service"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// One connection so every query sees the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Assignment{},
		&model.Enrollment{},
		&model.Submission{},
		&model.Grade{},
		&model.GradeSnapshot{},
		&model.Appeal{},
		&model.NotificationAttempt{},
		&model.AuditLog{},
	))
	require.NoError(t, db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_appeals_pending ON appeals (submission_id) WHERE status = 'PENDING'",
	).Error)

	return db
}

// fakeExtractor returns canned text; the optional channels let tests hold the
// extraction stage open to provoke concurrent access.
type fakeExtractor struct {
	text    string
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeExtractor) Extract(ctx context.Context, fileRef, fileType string) (string, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeAnonymizer struct {
	err error
}

func (f *fakeAnonymizer) Anonymize(ctx context.Context, text string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "[ANON] " + text, nil
}

type fakeScorer struct {
	result *service.ScoringResult
	err    error
}

func (f *fakeScorer) Score(ctx context.Context, anonymizedText string, assignment *model.Assignment) (*service.ScoringResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type sentEvent struct {
	Topic   string
	Message any
}

type fakeProducer struct {
	mu   sync.Mutex
	sent []sentEvent
	err  error
}

func (f *fakeProducer) Send(ctx context.Context, topic string, message any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEvent{Topic: topic, Message: message})
	return nil
}

func (f *fakeProducer) topics() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, e := range f.sent {
		out = append(out, e.Topic)
	}
	return out
}

// env wires the full service stack against an in-memory database and fake
// pipeline collaborators.
type env struct {
	db *gorm.DB

	submissionRepo repository.SubmissionRepository
	gradeRepo      repository.GradeRepository
	appealRepo     repository.AppealRepository
	snapshotRepo   repository.SnapshotRepository
	auditRepo      repository.AuditLogRepository

	extractor  *fakeExtractor
	anonymizer *fakeAnonymizer
	scorer     *fakeScorer
	producer   *fakeProducer

	storage       service.StorageService
	notifications service.NotificationService
	audit         service.AuditService
	roster        service.RosterService
	assignments   service.AssignmentService
	grades        service.GradeManager
	workflow      service.WorkflowService
	appeals       service.AppealResolver
	analytics     service.AnalyticsService
	orchestrator  service.SubmissionOrchestrator
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := newTestDB(t)

	e := &env{
		db:             db,
		submissionRepo: repository.NewSubmissionRepository(db),
		gradeRepo:      repository.NewGradeRepository(db),
		appealRepo:     repository.NewAppealRepository(db),
		snapshotRepo:   repository.NewSnapshotRepository(db),
		auditRepo:      repository.NewAuditLogRepository(db),
		extractor:      &fakeExtractor{text: "Name: Jane Doe\nThe mitochondria is the powerhouse of the cell."},
		anonymizer:     &fakeAnonymizer{},
		scorer: &fakeScorer{result: &service.ScoringResult{
			Score:      78,
			Confidence: 0.6,
			Feedback:   model.Feedback{Strengths: []string{"clear structure"}},
		}},
		producer: &fakeProducer{},
	}

	assignmentRepo := repository.NewAssignmentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	storage, err := service.NewStorageServiceWithFs(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)
	e.storage = storage

	e.notifications = service.NewNotificationService(notificationRepo, e.producer)
	e.audit = service.NewAuditService(e.auditRepo)
	e.roster = service.NewRosterService(assignmentRepo, enrollmentRepo)
	e.assignments = service.NewAssignmentService(assignmentRepo, enrollmentRepo)
	e.grades = service.NewGradeService(db, e.gradeRepo, e.submissionRepo, assignmentRepo, e.snapshotRepo, e.notifications, e.audit)

	runner := service.NewStageRunner(e.extractor, e.anonymizer, e.scorer, 0)
	e.workflow = service.NewWorkflowService(db, e.submissionRepo, e.gradeRepo, runner, e.grades)

	e.appeals = service.NewAppealService(db, e.appealRepo, e.gradeRepo, e.submissionRepo, e.snapshotRepo, e.notifications, e.audit)
	e.analytics = service.NewAnalyticsService(assignmentRepo, e.submissionRepo, e.gradeRepo)
	e.orchestrator = service.NewSubmissionOrchestrator(e.submissionRepo, e.appealRepo, e.assignments, e.storage, e.roster, e.workflow, e.grades, e.appeals, e.audit)

	return e
}

const (
	testTeacherID = uint(1)
	testStudentID = uint(2)
)

func (e *env) seedAssignment(t *testing.T) *model.Assignment {
	t.Helper()
	assignment := &model.Assignment{
		TeacherID:  testTeacherID,
		Title:      "Essay on cell biology",
		CourseCode: "BIOL1001",
		TotalMarks: 100,
	}
	require.NoError(t, e.assignments.Create(assignment))
	require.NoError(t, e.assignments.Enroll(testStudentID, "BIOL1001"))
	return assignment
}

func (e *env) seedSubmission(t *testing.T, assignmentID uint, status model.SubmissionStatus) *model.Submission {
	t.Helper()
	submission := &model.Submission{
		AssignmentID:     assignmentID,
		StudentID:        testStudentID,
		OriginalFileRef:  "submissions/fake.txt",
		OriginalFileName: "answer.txt",
		FileType:         "txt",
		Status:           status,
	}
	require.NoError(t, e.submissionRepo.Create(submission))
	return submission
}

// seedScoredSubmission creates an assignment, a SCORED submission and its
// grade in the given status.
func (e *env) seedScoredSubmission(t *testing.T, gradeStatus model.GradeStatus, confidence float64) (*model.Submission, *model.Grade) {
	t.Helper()
	assignment := e.seedAssignment(t)
	submission := e.seedSubmission(t, assignment.ID, model.SubmissionScored)

	grade := e.grades.NewFromScoring(submission.ID, &service.ScoringResult{
		Score:      78,
		Confidence: confidence,
		Feedback:   model.Feedback{Strengths: []string{"clear structure"}},
	})
	if gradeStatus != "" {
		grade.Status = gradeStatus
	}
	require.NoError(t, e.gradeRepo.Create(grade))
	return submission, grade
}

var errUpstreamDown = errors.New("upstream service unavailable")
