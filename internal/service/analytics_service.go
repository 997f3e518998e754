package service

import (
	"github.com/VictorLi621/5620-Marker/internal/apperr"
	"github.com/VictorLi621/5620-Marker/internal/dto"
	"github.com/VictorLi621/5620-Marker/internal/model"
	"github.com/VictorLi621/5620-Marker/internal/repository"
)

// AnalyticsService aggregates grading outcomes for a teacher's assignment:
// score distribution, averages and processing failures.
type AnalyticsService interface {
	AssignmentStatistics(teacherID, assignmentID uint) (*dto.AssignmentStatisticsResponse, error)
}

// scoreBands bucket effective scores as a percentage of the assignment's
// total marks. The upper band is closed so a full-mark score lands in it.
var scoreBands = []struct {
	label  string
	lo, hi float64
}{
	{"0-49", 0, 50},
	{"50-64", 50, 65},
	{"65-74", 65, 75},
	{"75-84", 75, 85},
	{"85-100", 85, 100.5},
}

type analyticsService struct {
	assignmentRepo repository.AssignmentRepository
	submissionRepo repository.SubmissionRepository
	gradeRepo      repository.GradeRepository
}

func NewAnalyticsService(
	assignmentRepo repository.AssignmentRepository,
	submissionRepo repository.SubmissionRepository,
	gradeRepo repository.GradeRepository,
) AnalyticsService {
	return &analyticsService{
		assignmentRepo: assignmentRepo,
		submissionRepo: submissionRepo,
		gradeRepo:      gradeRepo,
	}
}

func (s *analyticsService) AssignmentStatistics(teacherID, assignmentID uint) (*dto.AssignmentStatisticsResponse, error) {
	assignment, err := s.assignmentRepo.FindByID(assignmentID)
	if err != nil {
		return nil, notFoundOr(err, "assignment %d not found", assignmentID)
	}
	if assignment.TeacherID != teacherID {
		return nil, apperr.Authorizationf("teacher %d does not own assignment %d", teacherID, assignmentID)
	}

	submissions, err := s.submissionRepo.FindByAssignment(assignmentID)
	if err != nil {
		return nil, err
	}
	grades, err := s.gradeRepo.FindByAssignment(assignmentID)
	if err != nil {
		return nil, err
	}

	stats := &dto.AssignmentStatisticsResponse{
		AssignmentID:    assignmentID,
		SubmissionCount: len(submissions),
		Distribution:    make([]dto.ScoreBandCount, len(scoreBands)),
		FailureReasons:  make(map[string]int),
	}
	for i, band := range scoreBands {
		stats.Distribution[i] = dto.ScoreBandCount{Band: band.label}
	}

	for i := range submissions {
		sub := &submissions[i]
		if sub.Status != model.SubmissionFailed {
			continue
		}
		stats.FailedCount++
		if sub.FailureReason != nil {
			stats.FailureReasons[*sub.FailureReason]++
		}
	}

	var sum float64
	for i := range grades {
		grade := &grades[i]
		score := grade.EffectiveScore()

		stats.GradedCount++
		if grade.PublishedAt != nil {
			stats.PublishedCount++
		}

		sum += score
		if stats.HighestScore == nil || score > *stats.HighestScore {
			v := score
			stats.HighestScore = &v
		}
		if stats.LowestScore == nil || score < *stats.LowestScore {
			v := score
			stats.LowestScore = &v
		}

		percent := score / assignment.MaxScore() * 100
		for j, band := range scoreBands {
			if percent >= band.lo && percent < band.hi {
				stats.Distribution[j].Count++
				break
			}
		}
	}
	if stats.GradedCount > 0 {
		avg := sum / float64(stats.GradedCount)
		stats.AverageScore = &avg
	}

	return stats, nil
}
