package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"academy-api/internal/infra"
	"academy-api/internal/infra/db"
	"academy-api/internal/pkg/pgconv"
)

type NotificationRepository struct{}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

const createNotificationJobSQL = `
INSERT INTO notification_jobs (id, kind, topic, payload, run_at, attempts, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 0, 'queued', now(), now())`

func (r *NotificationRepository) CreateJob(ctx context.Context, q db.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	_, err := q.Exec(ctx, createNotificationJobSQL,
		pgconv.UUIDToPgtype(uuid.New()),
		kind,
		topic,
		payload,
		pgconv.TimeToPgtype(runAt),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}
	return nil
}

const updateNotificationJobStatusSQL = `
UPDATE notification_jobs
SET status = $2, last_error = $3, attempts = attempts + 1, updated_at = now()
WHERE id = $1`

func (r *NotificationRepository) UpdateJobStatus(ctx context.Context, q db.DBTX, jobID uuid.UUID, status string, lastError *string) error {
	_, err := q.Exec(ctx, updateNotificationJobStatusSQL,
		pgconv.UUIDToPgtype(jobID),
		status,
		pgconv.StringPtrToPgtype(lastError),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update notification job status", err)
	}
	return nil
}
