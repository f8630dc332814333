//go:build unit

package queries_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy-api/internal/infra/db"
	"academy-api/internal/pkg/errs"
	"academy-api/internal/usecase/queries"
	"academy-api/internal/usecase/shared"
)

type stubViewRepo struct {
	findByID      func(q db.DBTX, id uuid.UUID) (*queries.RequestView, error)
	findFiltered  func(q db.DBTX, filter queries.RequestFilter) ([]*queries.RequestListItem, error)
	countFiltered func(q db.DBTX, filter queries.RequestFilter) (int64, error)
	countGrouped  func(q db.DBTX) ([]queries.StateCount, error)
}

func (r *stubViewRepo) FindByID(_ context.Context, q db.DBTX, id uuid.UUID) (*queries.RequestView, error) {
	return r.findByID(q, id)
}

func (r *stubViewRepo) FindFiltered(_ context.Context, q db.DBTX, filter queries.RequestFilter) ([]*queries.RequestListItem, error) {
	return r.findFiltered(q, filter)
}

func (r *stubViewRepo) CountFiltered(_ context.Context, q db.DBTX, filter queries.RequestFilter) (int64, error) {
	return r.countFiltered(q, filter)
}

func (r *stubViewRepo) CountGroupedByState(_ context.Context, q db.DBTX) ([]queries.StateCount, error) {
	return r.countGrouped(q)
}

// markerDB is a distinguishable db.DBTX value; the stubs assert every
// repo call inside one transaction scope receives the same handle.
type markerDB struct {
	db.DBTX
}

type stubUoW struct {
	marker        db.DBTX
	readOnlyCalls int
	withDBCalls   int
}

func (u *stubUoW) Within(context.Context, func(ctx context.Context, tx shared.Tx) error) error {
	panic("write transactions have no business on the query side")
}

func (u *stubUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, q db.DBTX) error) error {
	u.readOnlyCalls++
	return fn(ctx, u.marker)
}

func (u *stubUoW) WithDB(ctx context.Context, fn func(ctx context.Context, q db.DBTX) error) error {
	u.withDBCalls++
	return fn(ctx, u.marker)
}

func (u *stubUoW) CommandReads() shared.CommandReads { return nil }

func TestRequestQueriesList(t *testing.T) {
	t.Run("page and total come from one read-only transaction", func(t *testing.T) {
		marker := &markerDB{}
		uow := &stubUoW{marker: marker}
		repo := &stubViewRepo{}

		var countQ, findQ db.DBTX
		repo.countFiltered = func(q db.DBTX, _ queries.RequestFilter) (int64, error) {
			countQ = q
			return 7, nil
		}
		repo.findFiltered = func(q db.DBTX, _ queries.RequestFilter) ([]*queries.RequestListItem, error) {
			findQ = q
			return []*queries.RequestListItem{{Code: "REQ-001"}}, nil
		}

		rows, total, err := queries.NewRequestQueries(uow, repo).List(context.Background(), queries.RequestFilter{})
		require.NoError(t, err)

		assert.Equal(t, int64(7), total)
		require.Len(t, rows, 1)
		assert.Equal(t, 1, uow.readOnlyCalls)
		assert.Zero(t, uow.withDBCalls)
		assert.Same(t, marker, countQ)
		assert.Same(t, marker, findQ)
	})

	t.Run("default limit applies when none given", func(t *testing.T) {
		uow := &stubUoW{marker: &markerDB{}}
		repo := &stubViewRepo{}

		var seen queries.RequestFilter
		repo.countFiltered = func(_ db.DBTX, filter queries.RequestFilter) (int64, error) {
			seen = filter
			return 0, nil
		}
		repo.findFiltered = func(_ db.DBTX, filter queries.RequestFilter) ([]*queries.RequestListItem, error) {
			return nil, nil
		}

		_, _, err := queries.NewRequestQueries(uow, repo).List(context.Background(), queries.RequestFilter{Offset: -3})
		require.NoError(t, err)
		assert.Equal(t, int32(50), seen.Limit)
		assert.Equal(t, int32(0), seen.Offset)
	})

	t.Run("count failure aborts before the page query", func(t *testing.T) {
		uow := &stubUoW{marker: &markerDB{}}
		boom := errs.New("count failed")
		repo := &stubViewRepo{
			countFiltered: func(db.DBTX, queries.RequestFilter) (int64, error) { return 0, boom },
			findFiltered: func(db.DBTX, queries.RequestFilter) ([]*queries.RequestListItem, error) {
				t.Fatal("page query must not run after a failed count")
				return nil, nil
			},
		}

		_, _, err := queries.NewRequestQueries(uow, repo).List(context.Background(), queries.RequestFilter{})
		assert.ErrorIs(t, err, boom)
	})
}

func TestRequestQueriesSingleReads(t *testing.T) {
	t.Run("get by id rides an implicit transaction", func(t *testing.T) {
		marker := &markerDB{}
		uow := &stubUoW{marker: marker}
		id := uuid.New()
		repo := &stubViewRepo{
			findByID: func(q db.DBTX, gotID uuid.UUID) (*queries.RequestView, error) {
				assert.Same(t, marker, q)
				assert.Equal(t, id, gotID)
				return &queries.RequestView{ID: gotID}, nil
			},
		}

		view, err := queries.NewRequestQueries(uow, repo).GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, view.ID)
		assert.Equal(t, 1, uow.withDBCalls)
		assert.Zero(t, uow.readOnlyCalls)
	})

	t.Run("count by state", func(t *testing.T) {
		uow := &stubUoW{marker: &markerDB{}}
		repo := &stubViewRepo{
			countGrouped: func(db.DBTX) ([]queries.StateCount, error) {
				return []queries.StateCount{{State: "pending", Count: 2}}, nil
			},
		}

		counts, err := queries.NewRequestQueries(uow, repo).CountByState(context.Background())
		require.NoError(t, err)
		require.Len(t, counts, 1)
		assert.Equal(t, int64(2), counts[0].Count)
	})
}
