package queries

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type SectionView struct {
	ID             uuid.UUID `json:"id"`
	CourseTypeID   uuid.UUID `json:"course_type_id"`
	CourseTypeName string    `json:"course_type_name"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	ScheduleSlot   string    `json:"schedule_slot"`
	StartDate      time.Time `json:"start_date"`
	Capacity       int32     `json:"capacity"`
	SeatsAvailable int32     `json:"seats_available"`
}

type SectionQueries interface {
	// ListAvailable returns active sections with at least one free seat.
	ListAvailable(ctx context.Context) ([]*SectionView, error)
}

type SectionViewRepo interface {
	FindAvailable(ctx context.Context) ([]*SectionView, error)
}

// SectionCache fronts the available-sections listing. A miss is not an
// error; cache failures never fail the query.
type SectionCache interface {
	GetAvailable(ctx context.Context) ([]*SectionView, bool, error)
	SetAvailable(ctx context.Context, views []*SectionView) error
	Invalidate(ctx context.Context) error
}

type sectionQueriesImpl struct {
	repo  SectionViewRepo
	cache SectionCache
}

func NewSectionQueries(repo SectionViewRepo, cache SectionCache) SectionQueries {
	return &sectionQueriesImpl{repo: repo, cache: cache}
}

func (q *sectionQueriesImpl) ListAvailable(ctx context.Context) ([]*SectionView, error) {
	if views, hit, err := q.cache.GetAvailable(ctx); err != nil {
		slog.Warn("section cache read failed", "error", err)
	} else if hit {
		return views, nil
	}

	views, err := q.repo.FindAvailable(ctx)
	if err != nil {
		return nil, err
	}

	if err := q.cache.SetAvailable(ctx, views); err != nil {
		slog.Warn("section cache write failed", "error", err)
	}
	return views, nil
}
