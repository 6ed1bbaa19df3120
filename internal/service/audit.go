package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"taxipro/internal/domain"
	"taxipro/internal/repository"
)

// AuditLogger appends entries to a trip's audit sub-log. Appends are
// fire-and-forget: a failed append is logged and swallowed, never
// surfaced to the caller.
type AuditLogger struct {
	auditRepo repository.AuditRepository
}

// NewAuditLogger creates a new AuditLogger.
func NewAuditLogger(auditRepo repository.AuditRepository) *AuditLogger {
	return &AuditLogger{auditRepo: auditRepo}
}

// Log records an action against a trip.
func (l *AuditLogger) Log(ctx context.Context, tripID string, actor domain.Actor, action string) {
	if l == nil || l.auditRepo == nil {
		return
	}

	entry := &domain.AuditEntry{
		ID:        uuid.New().String(),
		TripID:    tripID,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Action:    action,
		CreatedAt: time.Now(),
	}

	if err := l.auditRepo.Append(ctx, entry); err != nil {
		log.Printf("audit append failed for trip %s: %v", tripID, err)
	}
}
