package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// Redaction placeholders surfaced in anonymized text.
const (
	redactedStudentID = "[STUDENT_ID]"
	redactedEmail     = "[EMAIL]"
	redactedPhone     = "[PHONE]"
	redactedLabel     = "[REDACTED]"
)

var (
	// Common student ID shapes: 6-10 digits, or a letter followed by 5-9 digits.
	studentIDPattern = regexp.MustCompile(`\b[0-9]{6,10}\b|\b[A-Z][0-9]{5,9}\b`)
	emailPattern     = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern     = regexp.MustCompile(`\b1[3-9]\d{9}\b`)
	// Labeled identity lines like "Name: Jane Doe" or "Student ID: 12345".
	nameLinePattern = regexp.MustCompile(`(?i)(name)\s*[:：]\s*\S+`)
	idLinePattern   = regexp.MustCompile(`(?i)(student\s*id)\s*[:：]\s*\S+`)
)

type regexAnonymizer struct{}

// NewAnonymizationService builds the PII scrubber used by the anonymization stage.
func NewAnonymizationService() AnonymizerService {
	return &regexAnonymizer{}
}

func (a *regexAnonymizer) Anonymize(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if text == "" {
		return text, nil
	}

	anonymized := nameLinePattern.ReplaceAllString(text, "$1: "+redactedLabel)
	anonymized = idLinePattern.ReplaceAllString(anonymized, "$1: "+redactedLabel)
	anonymized = studentIDPattern.ReplaceAllString(anonymized, redactedStudentID)
	anonymized = emailPattern.ReplaceAllString(anonymized, redactedEmail)
	anonymized = phonePattern.ReplaceAllString(anonymized, redactedPhone)

	log.Info().Int("chars", len(text)).Int("redactions", CountRedactions(anonymized)).Msg("Text anonymized")
	return anonymized, nil
}

// CountRedactions counts redaction placeholders in anonymized text, used for
// anonymization previews.
func CountRedactions(text string) int {
	count := 0
	for _, marker := range []string{redactedStudentID, redactedEmail, redactedPhone, redactedLabel} {
		count += countOccurrences(text, marker)
	}
	return count
}

func countOccurrences(text, marker string) int {
	return strings.Count(text, marker)
}
