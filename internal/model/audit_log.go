package model

import "time"

// Audit actions recorded by the workflow engine.
const (
	AuditUpload           = "UPLOAD"
	AuditAIScore          = "AI_SCORE"
	AuditReviewGrade      = "REVIEW_GRADE"
	AuditPublishGrade     = "PUBLISH_GRADE"
	AuditAcknowledgeGrade = "ACKNOWLEDGE_GRADE"
	AuditCreateAppeal     = "CREATE_APPEAL"
	AuditResolveAppeal    = "RESOLVE_APPEAL"
)

// AuditLog is append-only; rows are never updated or deleted.
type AuditLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	ActorID    *uint     `json:"actor_id,omitempty" gorm:"index"` // nil for system actions
	Action     string    `json:"action" gorm:"not null"`
	EntityType string    `json:"entity_type" gorm:"not null"`
	EntityID   uint      `json:"entity_id" gorm:"not null;index"`
	Details    string    `json:"details,omitempty" gorm:"type:text"` // JSON payload
	CreatedAt  time.Time `json:"created_at"`
}
