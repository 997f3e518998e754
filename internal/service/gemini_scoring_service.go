package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"github.com/VictorLi621/5620-Marker/config"
	"github.com/VictorLi621/5620-Marker/internal/model"
)

type geminiScoringService struct {
	client *genai.GenerativeModel
	cfg    *config.Config
}

// NewGeminiScoringService builds the production scoring collaborator on top of
// Gemini. With no API key configured the service is non-functional and every
// Score call errors, which the pipeline converts to a FAILED submission.
func NewGeminiScoringService(cfg *config.Config) (ScoringService, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Scoring service will be non-functional.")
		return &geminiScoringService{cfg: cfg, client: nil}, nil
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	model := client.GenerativeModel("gemini-1.5-flash")
	return &geminiScoringService{client: model, cfg: cfg}, nil
}

// scoringPayload is the JSON shape the model is instructed to return.
type scoringPayload struct {
	TotalScore float64        `json:"totalScore"`
	Confidence float64        `json:"confidence"`
	Feedback   model.Feedback `json:"feedback"`
}

func (s *geminiScoringService) Score(ctx context.Context, anonymizedText string, assignment *model.Assignment) (*ScoringResult, error) {
	if s.client == nil {
		return nil, fmt.Errorf("gemini client not initialized")
	}

	prompt := buildScoringPrompt(anonymizedText, assignment)

	resp, err := s.client.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Error().Err(err).Uint("assignmentID", assignment.ID).Msg("Gemini API error during scoring")
		return nil, err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no content")
	}

	fullResponseText := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			fullResponseText += string(txt)
		}
	}
	if fullResponseText == "" {
		return nil, fmt.Errorf("gemini returned no text content")
	}

	result, parseErr := parseScoringResponse(fullResponseText, assignment.MaxScore())
	if parseErr != nil {
		// Keep the pipeline moving with a low-confidence midpoint score; the
		// confidence routing guarantees a teacher will look at it.
		log.Warn().Err(parseErr).Str("rawResponse", fullResponseText).Msg("Failed to parse scoring response, returning low-confidence fallback")
		return &ScoringResult{
			Score:      assignment.MaxScore() / 2,
			Confidence: 0.3,
			Feedback: model.Feedback{
				Weaknesses: []string{"Automatic scoring could not be parsed; manual review required."},
			},
		}, nil
	}
	return result, nil
}

func buildScoringPrompt(studentAnswer string, assignment *model.Assignment) string {
	var b strings.Builder
	b.WriteString("You are a professional teaching assessment assistant. Grade the student's answer according to the grading criteria below.\n\n")

	b.WriteString("## Assignment Information\n")
	b.WriteString(fmt.Sprintf("Title: %s\n", assignment.Title))
	b.WriteString(fmt.Sprintf("Description: %s\n", assignment.Description))
	b.WriteString(fmt.Sprintf("Total Marks: %.0f\n\n", assignment.MaxScore()))

	if assignment.Rubric != nil && *assignment.Rubric != "" {
		b.WriteString("## Grading Criteria (Rubric)\n")
		b.WriteString(*assignment.Rubric)
		b.WriteString("\n\n")
	} else {
		b.WriteString("## Grading Criteria (General Standards)\n")
		b.WriteString("No specific rubric was set; grade along these dimensions:\n")
		b.WriteString("1. Content Completeness (40%) - requirements fully addressed, key knowledge points covered\n")
		b.WriteString("2. Accuracy (30%) - concepts correctly understood, reasoning sound\n")
		b.WriteString("3. Expression Quality (20%) - clear language, reasonable structure\n")
		b.WriteString("4. Innovation (10%) - unique insights, depth of thinking\n\n")
	}

	b.WriteString("## Student Answer (extracted text)\n")
	b.WriteString(studentAnswer)
	b.WriteString("\n\n")

	b.WriteString("## Grading Requirements\n")
	b.WriteString("1. Grade against the criteria and provide a total score plus a confidence level (0.0-1.0).\n")
	b.WriteString("2. Provide detailed, specific feedback: 3-5 strengths, 3-5 weaknesses, and 3-5 improvement suggestions.\n")
	b.WriteString("3. Each suggestion must carry four components: issue, suggestion, why, how_to_improve.\n")
	b.WriteString("4. Avoid generic statements; quote or reference exact parts of the answer.\n\n")

	b.WriteString("Return the result strictly as JSON in this format:\n")
	b.WriteString("```json\n")
	b.WriteString(fmt.Sprintf(`{
  "totalScore": <0-%.0f>,
  "confidence": <0.0-1.0>,
  "feedback": {
    "strengths": ["..."],
    "weaknesses": ["..."],
    "suggestions": [
      {"issue": "...", "suggestion": "...", "why": "...", "how_to_improve": "..."}
    ]
  }
}`, assignment.MaxScore()))
	b.WriteString("\n```\n")

	return b.String()
}

// parseScoringResponse extracts the fenced JSON block from the model output
// and clamps the score/confidence into their valid ranges.
func parseScoringResponse(raw string, maxScore float64) (*ScoringResult, error) {
	jsonStr := raw
	if idx := strings.Index(raw, "```json"); idx != -1 {
		rest := raw[idx+len("```json"):]
		if end := strings.LastIndex(rest, "```"); end != -1 {
			jsonStr = strings.TrimSpace(rest[:end])
		}
	}

	var payload scoringPayload
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil, fmt.Errorf("scoring response is not valid JSON: %w", err)
	}

	if payload.TotalScore > maxScore {
		payload.TotalScore = maxScore
	}
	if payload.TotalScore < 0 {
		payload.TotalScore = 0
	}
	if payload.Confidence > 1 {
		payload.Confidence = 1
	}
	if payload.Confidence < 0 {
		payload.Confidence = 0
	}

	return &ScoringResult{
		Score:      payload.TotalScore,
		Confidence: payload.Confidence,
		Feedback:   payload.Feedback,
	}, nil
}
