package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"academy-api/internal/domain/request"
	reqdto "academy-api/internal/handler/dto/request"
	resdto "academy-api/internal/handler/dto/response"
	"academy-api/internal/handler/httperr"
	"academy-api/internal/handler/middleware"
	"academy-api/internal/pkg/errs"
	"academy-api/internal/usecase/commands"
	"academy-api/internal/usecase/queries"
)

type RequestHandler struct {
	cmds commands.RequestCommands
	q    queries.RequestQueries
}

func NewRequestHandler(cmds commands.RequestCommands, q queries.RequestQueries) *RequestHandler {
	return &RequestHandler{cmds: cmds, q: q}
}

// @Summary Create enrollment request
// @Description Submit an enrollment request and reserve a seat
// @Tags requests
// @Accept json
// @Produce json
// @Param request body reqdto.CreateEnrollmentRequest true "Enrollment request"
// @Success 201 {object} resdto.CreatedRequestResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	var req reqdto.CreateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.cmds.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromCreateResult(result))
}

// @Summary Get enrollment request
// @Description Get an enrollment request by ID
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} resdto.RequestResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}

	view, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithError(c, http.StatusNotFound, err, "Request not found", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRequestView(view))
}

// @Summary List enrollment requests
// @Description List enrollment requests with optional state and course-type filters
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param state query string false "Filter by state"
// @Param course_type_id query string false "Filter by course type"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} resdto.RequestListResponse
// @Failure 400 {object} httperr.Response
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	filter, err := parseListFilter(c)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid filter", nil)
		return
	}

	items, total, err := h.q.List(c.Request.Context(), filter)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to list requests", nil)
		return
	}

	responses := make([]*resdto.RequestListResponse, len(items))
	for i, item := range items {
		responses[i] = resdto.FromRequestListItem(item)
	}

	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	c.JSON(http.StatusOK, responses)
}

// @Summary Count requests by state
// @Description Aggregate request counts grouped by state
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.StateCountResponse
// @Router /requests/counts [get]
func (h *RequestHandler) CountByState(c *gin.Context) {
	counts, err := h.q.CountByState(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to count requests", nil)
		return
	}

	responses := make([]resdto.StateCountResponse, len(counts))
	for i, sc := range counts {
		responses[i] = resdto.StateCountResponse{State: sc.State, Count: sc.Count}
	}
	c.JSON(http.StatusOK, responses)
}

// @Summary Decide enrollment request
// @Description Approve, reject, or flag an enrollment request for observations
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param request body reqdto.DecideRequest true "Decision"
// @Success 200 {object} resdto.RequestResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /requests/{id}/decision [put]
func (h *RequestHandler) Decide(c *gin.Context) {
	reviewerID, ok := middleware.GetReviewerID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errs.New("missing reviewer context"), "Unauthorized", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}

	var req reqdto.DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	view, err := h.cmds.Decide(c.Request.Context(), commands.DecideInput{
		RequestID:  id,
		Decision:   req.Decision,
		ReviewerID: reviewerID,
		Notes:      req.Notes,
	})
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRequestView(view))
}

// @Summary Change promotion selection
// @Description Swap or clear the promotion linked to a pending request
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param request body reqdto.ChangePromotionRequest true "New promotion"
// @Success 200 {object} resdto.RequestResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /requests/{id}/promotion [put]
func (h *RequestHandler) ChangePromotion(c *gin.Context) {
	reviewerID, ok := middleware.GetReviewerID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errs.New("missing reviewer context"), "Unauthorized", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}

	var req reqdto.ChangePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	view, err := h.cmds.ChangePromotion(c.Request.Context(), id, req.PromotionID, reviewerID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRequestView(view))
}

func parseListFilter(c *gin.Context) (queries.RequestFilter, error) {
	var filter queries.RequestFilter

	if state := c.Query("state"); state != "" {
		if _, err := request.ParseStatus(state); err != nil {
			return filter, err
		}
		filter.State = &state
	}
	if raw := c.Query("course_type_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, err
		}
		filter.CourseTypeID = &id
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return filter, err
		}
		filter.Limit = int32(limit)
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return filter, err
		}
		filter.Offset = int32(offset)
	}
	return filter, nil
}

// abortWithDomainError maps the command error taxonomy to HTTP statuses:
// conflicts are retryable against another target, validation failures
// need a corrected resubmission, terminal-state violations are final.
func abortWithDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		var violations request.ValidationErrors
		errors.As(err, &violations)
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Validation failed", violations)
	case errors.Is(err, errs.ErrSectionNotFound),
		errors.Is(err, errs.ErrPromotionNotFound),
		errors.Is(err, errs.ErrRequestNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Not found", nil)
	case errors.Is(err, errs.ErrSeatConflict):
		httperr.AbortWithError(c, http.StatusConflict, err, "No seat available", nil)
	case errors.Is(err, errs.ErrQuotaExceeded):
		httperr.AbortWithError(c, http.StatusConflict, err, "Promotion quota exceeded", nil)
	case errors.Is(err, errs.ErrDuplicateProofReference):
		httperr.AbortWithError(c, http.StatusConflict, err, "Proof reference already used", nil)
	case errors.Is(err, errs.ErrAlreadyEnrolled):
		httperr.AbortWithError(c, http.StatusConflict, err, "Applicant already enrolled", nil)
	case errors.Is(err, errs.ErrPromotionInactive),
		errors.Is(err, errs.ErrPromotionExpired):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Promotion not usable", nil)
	case errors.Is(err, errs.ErrInvalidStateTransition):
		httperr.AbortWithError(c, http.StatusConflict, err, "Invalid state transition", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
