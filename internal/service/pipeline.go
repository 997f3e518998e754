package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/VictorLi621/5620-Marker/internal/apperr"
	"github.com/VictorLi621/5620-Marker/internal/model"
)

// ExtractionService pulls text out of an uploaded artifact (OCR / vision / plain read).
type ExtractionService interface {
	Extract(ctx context.Context, fileRef, fileType string) (string, error)
}

// AnonymizerService strips personally identifiable information from extracted text.
type AnonymizerService interface {
	Anonymize(ctx context.Context, text string) (string, error)
}

// ScoringResult is what the scoring collaborator returns for an anonymized answer.
type ScoringResult struct {
	Score      float64
	Confidence float64
	Feedback   model.Feedback
}

// ScoringService grades anonymized text against the assignment's rubric.
type ScoringService interface {
	Score(ctx context.Context, anonymizedText string, assignment *model.Assignment) (*ScoringResult, error)
}

// StageRunner executes exactly one pipeline stage against a submission. Each
// invocation is bounded by the configured timeout; collaborator failures and
// timeouts come back tagged UPSTREAM so the state machine can park the
// submission in FAILED.
type StageRunner struct {
	extractor  ExtractionService
	anonymizer AnonymizerService
	scorer     ScoringService
	timeout    time.Duration
}

func NewStageRunner(extractor ExtractionService, anonymizer AnonymizerService, scorer ScoringService, timeout time.Duration) *StageRunner {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &StageRunner{
		extractor:  extractor,
		anonymizer: anonymizer,
		scorer:     scorer,
		timeout:    timeout,
	}
}

// RunExtraction fills submission.ExtractedText from the original file.
func (r *StageRunner) RunExtraction(ctx context.Context, submission *model.Submission) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	text, err := r.extractor.Extract(ctx, submission.OriginalFileRef, submission.FileType)
	if err != nil {
		return apperr.Upstreamf(err, "text extraction failed for submission %d", submission.ID)
	}
	submission.ExtractedText = &text
	log.Info().Uint("submissionID", submission.ID).Int("chars", len(text)).Msg("Text extraction completed")
	return nil
}

// RunAnonymization fills submission.AnonymizedText from the extracted text.
func (r *StageRunner) RunAnonymization(ctx context.Context, submission *model.Submission) error {
	if submission.ExtractedText == nil {
		return apperr.InvalidStatef("submission %d has no extracted text to anonymize", submission.ID)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	anonymized, err := r.anonymizer.Anonymize(ctx, *submission.ExtractedText)
	if err != nil {
		return apperr.Upstreamf(err, "anonymization failed for submission %d", submission.ID)
	}
	submission.AnonymizedText = &anonymized
	log.Info().Uint("submissionID", submission.ID).Msg("Anonymization completed")
	return nil
}

// RunScoring scores the anonymized text; the caller materializes the Grade.
func (r *StageRunner) RunScoring(ctx context.Context, submission *model.Submission) (*ScoringResult, error) {
	if submission.AnonymizedText == nil {
		return nil, apperr.InvalidStatef("submission %d has no anonymized text to score", submission.ID)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.scorer.Score(ctx, *submission.AnonymizedText, &submission.Assignment)
	if err != nil {
		return nil, apperr.Upstreamf(err, "scoring failed for submission %d", submission.ID)
	}
	log.Info().
		Uint("submissionID", submission.ID).
		Float64("score", result.Score).
		Float64("confidence", result.Confidence).
		Msg("AI scoring completed")
	return result, nil
}
