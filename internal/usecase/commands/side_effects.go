package commands

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"academy-api/internal/infra/db"
	"academy-api/internal/pkg/clock"
	"academy-api/internal/usecase/queries"
	"academy-api/internal/usecase/shared"
)

// SideEffects runs the fire-and-forget collaborators after a command
// commits: notification enqueue, audit append, section cache
// invalidation. None of them can fail the primary operation; failures
// are logged and dropped.
type SideEffects struct {
	uow   shared.UnitOfWork
	cache queries.SectionCache
	clock clock.Clock

	notifications shared.NotificationRepository
	audit         shared.AuditRepository
}

func NewSideEffects(
	uow shared.UnitOfWork,
	cache queries.SectionCache,
	clk clock.Clock,
	notifications shared.NotificationRepository,
	audit shared.AuditRepository,
) *SideEffects {
	return &SideEffects{
		uow:           uow,
		cache:         cache,
		clock:         clk,
		notifications: notifications,
		audit:         audit,
	}
}

func (s *SideEffects) RequestCreated(ctx context.Context, requestID uuid.UUID, after any) {
	s.notify(ctx, "request_created", map[string]any{
		"request_id": requestID,
		"type":       "request_created",
	})
	s.auditAppend(ctx, shared.AuditEntry{
		Action:     "create",
		EntityType: "enrollment_requests",
		EntityID:   requestID,
		After:      mustJSON(after),
		OccurredAt: s.clock.Now(),
	})
	s.invalidateSections(ctx)
}

func (s *SideEffects) RequestDecided(ctx context.Context, requestID uuid.UUID, reviewerID uuid.UUID, decision string, before, after any) {
	s.notify(ctx, "request_decided", map[string]any{
		"request_id": requestID,
		"decision":   decision,
		"type":       "request_decided",
	})
	s.auditAppend(ctx, shared.AuditEntry{
		ActorID:    &reviewerID,
		Action:     decision,
		EntityType: "enrollment_requests",
		EntityID:   requestID,
		Before:     mustJSON(before),
		After:      mustJSON(after),
		OccurredAt: s.clock.Now(),
	})
	s.invalidateSections(ctx)
}

func (s *SideEffects) PromotionChanged(ctx context.Context, requestID uuid.UUID, actorID uuid.UUID, before, after any) {
	s.auditAppend(ctx, shared.AuditEntry{
		ActorID:    &actorID,
		Action:     "change_promotion",
		EntityType: "enrollment_requests",
		EntityID:   requestID,
		Before:     mustJSON(before),
		After:      mustJSON(after),
		OccurredAt: s.clock.Now(),
	})
	s.invalidateSections(ctx)
}

func (s *SideEffects) notify(ctx context.Context, topic string, payload map[string]any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("failed to encode notification payload", "topic", topic, "error", err)
		return
	}
	err = s.uow.WithDB(ctx, func(ctx context.Context, q db.DBTX) error {
		return s.notifications.CreateJob(ctx, q, "email", topic, raw, s.clock.Now())
	})
	if err != nil {
		slog.Warn("failed to enqueue notification job", "topic", topic, "error", err)
	}
}

func (s *SideEffects) auditAppend(ctx context.Context, entry shared.AuditEntry) {
	err := s.uow.WithDB(ctx, func(ctx context.Context, q db.DBTX) error {
		return s.audit.Append(ctx, q, entry)
	})
	if err != nil {
		slog.Warn("failed to append audit log", "action", entry.Action, "error", err)
	}
}

func (s *SideEffects) invalidateSections(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		slog.Warn("failed to invalidate section cache", "error", err)
	}
}

func mustJSON(v any) []byte {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}
