package service

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/VictorLi621/5620-Marker/internal/model"
	"github.com/VictorLi621/5620-Marker/internal/repository"
)

// AuditService records who did what to which entity. Failures are logged
// and swallowed so an audit hiccup never blocks the operation itself.
type AuditService interface {
	Log(actorID *uint, action, entityType string, entityID uint, details map[string]any)
	Trail(entityType string, entityID uint) ([]model.AuditLog, error)
}

type auditService struct {
	auditRepo repository.AuditLogRepository
}

func NewAuditService(auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) Log(actorID *uint, action, entityType string, entityID uint, details map[string]any) {
	var detailsJSON string
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			log.Error().Err(err).Str("action", action).Msg("Failed to marshal audit details")
		} else {
			detailsJSON = string(raw)
		}
	}

	entry := &model.AuditLog{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    detailsJSON,
	}
	if err := s.auditRepo.Create(entry); err != nil {
		log.Error().Err(err).Str("action", action).Str("entityType", entityType).Uint("entityID", entityID).Msg("Failed to write audit log")
	}
}

func (s *auditService) Trail(entityType string, entityID uint) ([]model.AuditLog, error) {
	return s.auditRepo.FindByEntity(entityType, entityID)
}
