//go:build unit

package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	domrequest "academy-api/internal/domain/request"
	"academy-api/internal/handler/api"
	resdto "academy-api/internal/handler/dto/response"
	"academy-api/internal/pkg/errs"
	"academy-api/internal/usecase/commands"
	"academy-api/internal/usecase/queries"
	"academy-api/internal/usecase/shared"
	"academy-api/tests/common/builder"
	"academy-api/tests/common/httptest"
)

type stubRequestCommands struct {
	createFn          func(ctx context.Context, input commands.CreateRequestInput) (*commands.CreateRequestResult, error)
	decideFn          func(ctx context.Context, input commands.DecideInput) (*queries.RequestView, error)
	changePromotionFn func(ctx context.Context, requestID uuid.UUID, newPromotionID *uuid.UUID, actorID uuid.UUID) (*queries.RequestView, error)
}

func (s *stubRequestCommands) Create(ctx context.Context, input commands.CreateRequestInput) (*commands.CreateRequestResult, error) {
	return s.createFn(ctx, input)
}

func (s *stubRequestCommands) Decide(ctx context.Context, input commands.DecideInput) (*queries.RequestView, error) {
	return s.decideFn(ctx, input)
}

func (s *stubRequestCommands) ChangePromotion(ctx context.Context, requestID uuid.UUID, newPromotionID *uuid.UUID, actorID uuid.UUID) (*queries.RequestView, error) {
	return s.changePromotionFn(ctx, requestID, newPromotionID, actorID)
}

type stubRequestQueries struct {
	getByIDFn      func(ctx context.Context, id uuid.UUID) (*queries.RequestView, error)
	listFn         func(ctx context.Context, filter queries.RequestFilter) ([]*queries.RequestListItem, int64, error)
	countByStateFn func(ctx context.Context) ([]queries.StateCount, error)
}

func (s *stubRequestQueries) GetByID(ctx context.Context, id uuid.UUID) (*queries.RequestView, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubRequestQueries) List(ctx context.Context, filter queries.RequestFilter) ([]*queries.RequestListItem, int64, error) {
	return s.listFn(ctx, filter)
}

func (s *stubRequestQueries) CountByState(ctx context.Context) ([]queries.StateCount, error) {
	return s.countByStateFn(ctx)
}

type RequestHandlerTestSuite struct {
	suite.Suite
	router  *gin.Engine
	cmds    *stubRequestCommands
	queries *stubRequestQueries
}

func (s *RequestHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.cmds = &stubRequestCommands{}
	s.queries = &stubRequestQueries{}
	handler := api.NewRequestHandler(s.cmds, s.queries)

	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		c.Set("reviewer_id", uuid.New())
		c.Set("reviewer_role", "reviewer")
		c.Next()
	}

	s.router.POST("/requests", handler.Create)
	s.router.GET("/requests", authMiddleware, handler.List)
	s.router.GET("/requests/counts", authMiddleware, handler.CountByState)
	s.router.GET("/requests/:id", authMiddleware, handler.Get)
	s.router.PUT("/requests/:id/decision", authMiddleware, handler.Decide)
	s.router.PUT("/requests/:id/promotion", authMiddleware, handler.ChangePromotion)
}

func requestViolations() domrequest.ValidationErrors {
	return domrequest.ValidationErrors{{
		Field:   "AmountCents",
		Message: "amount must be a positive multiple of 9000 cents for monthly courses",
	}}
}

func TestRequestHandlerSuite(t *testing.T) {
	suite.Run(t, new(RequestHandlerTestSuite))
}

func (s *RequestHandlerTestSuite) TestCreate() {
	url := "/requests"
	reqBody := builder.NewRequestBuilder().BuildCreateRequestDTO()

	s.Run("returns 201 with the reserved section", func() {
		requestID := uuid.New()
		s.cmds.createFn = func(_ context.Context, input commands.CreateRequestInput) (*commands.CreateRequestResult, error) {
			s.Equal(reqBody.NationalID, input.NationalID)
			return &commands.CreateRequestResult{
				RequestID: requestID,
				Code:      "REQ-20250310-X7K2M",
				Section: &shared.SectionSnapshot{
					ID:             *reqBody.SectionID,
					Code:           "ENG-A1-01",
					SeatsAvailable: 19,
				},
			}, nil
		}

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")

		var resp resdto.CreatedRequestResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusCreated, &resp)
		s.Equal(requestID, resp.RequestID)
		s.Equal("REQ-20250310-X7K2M", resp.Code)
		s.Equal(int32(19), resp.Section.SeatsAvailable)
	})

	s.Run("malformed body returns 400", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"email": 12}, "")
		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid request format")
	})

	s.Run("missing required field returns 400", func() {
		body := builder.NewRequestBuilder().BuildCreateRequestDTO()
		body.NationalID = ""
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "")
		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid request format")
	})

	s.Run("domain errors map onto statuses", func() {
		cases := []struct {
			name       string
			err        error
			wantStatus int
		}{
			{"validation", errs.ErrValidation, http.StatusUnprocessableEntity},
			{"section missing", errs.ErrSectionNotFound, http.StatusNotFound},
			{"promotion missing", errs.ErrPromotionNotFound, http.StatusNotFound},
			{"no seats", errs.ErrSeatConflict, http.StatusConflict},
			{"quota exhausted", errs.ErrQuotaExceeded, http.StatusConflict},
			{"duplicate proof", errs.ErrDuplicateProofReference, http.StatusConflict},
			{"already enrolled", errs.ErrAlreadyEnrolled, http.StatusConflict},
			{"promotion inactive", errs.ErrPromotionInactive, http.StatusUnprocessableEntity},
			{"promotion expired", errs.ErrPromotionExpired, http.StatusUnprocessableEntity},
			{"persistence", errs.ErrPersistence, http.StatusInternalServerError},
		}
		for _, c := range cases {
			s.Run(c.name, func() {
				s.cmds.createFn = func(_ context.Context, _ commands.CreateRequestInput) (*commands.CreateRequestResult, error) {
					return nil, c.err
				}
				w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
				s.Equal(c.wantStatus, w.Code, "unexpected status for %s: %s", c.name, w.Body.String())
			})
		}
	})

	s.Run("validation detail carries the violations", func() {
		violations := requestViolations()
		s.cmds.createFn = func(_ context.Context, _ commands.CreateRequestInput) (*commands.CreateRequestResult, error) {
			return nil, errs.Mark(violations, errs.ErrValidation)
		}
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")

		s.Equal(http.StatusUnprocessableEntity, w.Code)
		s.Contains(w.Body.String(), "AmountCents")
	})
}

func (s *RequestHandlerTestSuite) TestGet() {
	requestID := uuid.New()

	s.Run("returns the request view", func() {
		s.queries.getByIDFn = func(_ context.Context, id uuid.UUID) (*queries.RequestView, error) {
			s.Equal(requestID, id)
			return &queries.RequestView{ID: requestID, Code: "REQ-20250310-AAAAA", State: "pending"}, nil
		}

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/requests/"+requestID.String(), nil, "token")

		var resp resdto.RequestResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Equal(requestID, resp.ID)
		s.Equal("pending", resp.State)
	})

	s.Run("requires auth", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/requests/"+requestID.String(), nil, "")
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("bad id returns 400", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/requests/not-a-uuid", nil, "token")
		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid id")
	})

	s.Run("missing request returns 404", func() {
		s.queries.getByIDFn = func(_ context.Context, _ uuid.UUID) (*queries.RequestView, error) {
			return nil, errs.New("no rows")
		}
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/requests/"+requestID.String(), nil, "token")
		httptest.AssertErrorResponse(s.T(), w, http.StatusNotFound, "Request not found")
	})
}

func (s *RequestHandlerTestSuite) TestList() {
	s.Run("returns items and the total header", func() {
		s.queries.listFn = func(_ context.Context, filter queries.RequestFilter) ([]*queries.RequestListItem, int64, error) {
			s.Nil(filter.State)
			return []*queries.RequestListItem{
				{ID: uuid.New(), Code: "REQ-20250310-AAAAA", State: "pending"},
				{ID: uuid.New(), Code: "REQ-20250310-BBBBB", State: "approved"},
			}, 42, nil
		}

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/requests", nil, "token")

		var resp []resdto.RequestListResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Len(resp, 2)
		s.Equal("42", w.Header().Get("X-Total-Count"))
	})

	s.Run("passes filters through", func() {
		courseTypeID := uuid.New()
		s.queries.listFn = func(_ context.Context, filter queries.RequestFilter) ([]*queries.RequestListItem, int64, error) {
			s.NotNil(filter.State)
			s.Equal("pending", *filter.State)
			s.NotNil(filter.CourseTypeID)
			s.Equal(courseTypeID, *filter.CourseTypeID)
			s.Equal(int32(10), filter.Limit)
			s.Equal(int32(20), filter.Offset)
			return nil, 0, nil
		}

		path := "/requests?state=pending&course_type_id=" + courseTypeID.String() + "&limit=10&offset=20"
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, path, nil, "token")
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("rejects unknown state filter", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/requests?state=bogus", nil, "token")
		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid filter")
	})
}

func (s *RequestHandlerTestSuite) TestCountByState() {
	s.queries.countByStateFn = func(_ context.Context) ([]queries.StateCount, error) {
		return []queries.StateCount{
			{State: "pending", Count: 7},
			{State: "approved", Count: 3},
		}, nil
	}

	w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/requests/counts", nil, "token")

	var resp []resdto.StateCountResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
	s.Len(resp, 2)
	s.Equal(int64(7), resp[0].Count)
}

func (s *RequestHandlerTestSuite) TestDecide() {
	requestID := uuid.New()
	url := "/requests/" + requestID.String() + "/decision"

	s.Run("approves and returns the updated view", func() {
		s.cmds.decideFn = func(_ context.Context, input commands.DecideInput) (*queries.RequestView, error) {
			s.Equal(requestID, input.RequestID)
			s.Equal("approved", input.Decision)
			s.NotEqual(uuid.Nil, input.ReviewerID)
			return &queries.RequestView{ID: requestID, State: "approved"}, nil
		}

		body := map[string]any{"decision": "approved"}
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, body, "token")

		var resp resdto.RequestResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Equal("approved", resp.State)
	})

	s.Run("requires auth", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, map[string]any{"decision": "approved"}, "")
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("rejects decision values outside the enum", func() {
		for _, decision := range []string{"pending", "maybe", ""} {
			w := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, map[string]any{"decision": decision}, "token")
			s.Equal(http.StatusBadRequest, w.Code, "decision %q", decision)
		}
	})

	s.Run("terminal state conflict returns 409", func() {
		s.cmds.decideFn = func(_ context.Context, _ commands.DecideInput) (*queries.RequestView, error) {
			return nil, errs.ErrInvalidStateTransition
		}
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, map[string]any{"decision": "rejected"}, "token")
		httptest.AssertErrorResponse(s.T(), w, http.StatusConflict, "Invalid state transition")
	})

	s.Run("unknown request returns 404", func() {
		s.cmds.decideFn = func(_ context.Context, _ commands.DecideInput) (*queries.RequestView, error) {
			return nil, errs.ErrRequestNotFound
		}
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, map[string]any{"decision": "approved"}, "token")
		s.Equal(http.StatusNotFound, w.Code)
	})
}

func (s *RequestHandlerTestSuite) TestChangePromotion() {
	requestID := uuid.New()
	url := "/requests/" + requestID.String() + "/promotion"

	s.Run("swaps the promotion", func() {
		promoID := uuid.New()
		s.cmds.changePromotionFn = func(_ context.Context, id uuid.UUID, newPromotionID *uuid.UUID, _ uuid.UUID) (*queries.RequestView, error) {
			s.Equal(requestID, id)
			s.NotNil(newPromotionID)
			s.Equal(promoID, *newPromotionID)
			return &queries.RequestView{ID: requestID, PromotionID: newPromotionID, State: "pending"}, nil
		}

		body := map[string]any{"promotion_id": promoID.String()}
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, body, "token")

		var resp resdto.RequestResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.NotNil(resp.PromotionID)
	})

	s.Run("clears the promotion with a null id", func() {
		s.cmds.changePromotionFn = func(_ context.Context, _ uuid.UUID, newPromotionID *uuid.UUID, _ uuid.UUID) (*queries.RequestView, error) {
			s.Nil(newPromotionID)
			return &queries.RequestView{ID: requestID, State: "pending"}, nil
		}

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, map[string]any{"promotion_id": nil}, "token")
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("seat conflict on the new promotion returns 409", func() {
		s.cmds.changePromotionFn = func(_ context.Context, _ uuid.UUID, _ *uuid.UUID, _ uuid.UUID) (*queries.RequestView, error) {
			return nil, errs.ErrSeatConflict
		}
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, map[string]any{"promotion_id": uuid.New().String()}, "token")
		httptest.AssertErrorResponse(s.T(), w, http.StatusConflict, "No seat available")
	})
}
