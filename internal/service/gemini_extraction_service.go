package service

import (
	"context"
	"fmt"
	"mime"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"github.com/VictorLi621/5620-Marker/config"
)

type geminiExtractionService struct {
	client  *genai.GenerativeModel
	storage StorageService
}

// NewGeminiExtractionService builds the production extraction collaborator.
// Plain-text artifacts are read directly; images go through Gemini vision
// transcription.
func NewGeminiExtractionService(cfg *config.Config, storage StorageService) (ExtractionService, error) {
	svc := &geminiExtractionService{storage: storage}
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Image extraction will be non-functional.")
		return svc, nil
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	svc.client = client.GenerativeModel("gemini-1.5-flash")
	return svc, nil
}

var supportedImageTypes = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "webp": true, "gif": true, "heic": true, "heif": true,
}

var plainTextTypes = map[string]bool{
	"txt": true, "md": true, "text": true,
}

func (s *geminiExtractionService) Extract(ctx context.Context, fileRef, fileType string) (string, error) {
	data, err := s.storage.Load(fileRef)
	if err != nil {
		return "", fmt.Errorf("failed to load original file: %w", err)
	}

	fileType = strings.ToLower(fileType)
	switch {
	case plainTextTypes[fileType]:
		return string(data), nil
	case supportedImageTypes[fileType]:
		return s.transcribeImage(ctx, data, fileType)
	default:
		return "", fmt.Errorf("unsupported file type for extraction: %s", fileType)
	}
}

func (s *geminiExtractionService) transcribeImage(ctx context.Context, data []byte, fileType string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("gemini client not initialized")
	}

	mimeType := mime.TypeByExtension("." + fileType)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("could not determine image MIME type for %s", fileType)
	}
	// genai wants the subtype only, e.g. "png" for image/png.
	format := strings.TrimPrefix(mimeType, "image/")

	prompt := "Transcribe all text visible in this image of a student's handwritten or printed assignment. " +
		"Preserve the structure (headings, numbered answers, formulas written in plain notation). " +
		"Describe any charts or diagrams briefly in square brackets. Return only the transcription."

	resp, err := s.client.GenerateContent(ctx, genai.ImageData(format, data), genai.Text(prompt))
	if err != nil {
		log.Error().Err(err).Msg("Gemini API error during image transcription")
		return "", err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no content")
	}

	text := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text += string(txt)
		}
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini returned no text content")
	}
	return text, nil
}
