package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resdto "academy-api/internal/handler/dto/response"
	"academy-api/internal/handler/httperr"
	"academy-api/internal/usecase/queries"
)

type SectionHandler struct {
	q queries.SectionQueries
}

func NewSectionHandler(q queries.SectionQueries) *SectionHandler {
	return &SectionHandler{q: q}
}

// @Summary List available sections
// @Description List active sections with at least one free seat
// @Tags sections
// @Produce json
// @Success 200 {array} resdto.SectionResponse
// @Router /sections/available [get]
func (h *SectionHandler) ListAvailable(c *gin.Context) {
	views, err := h.q.ListAvailable(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to list sections", nil)
		return
	}

	responses := make([]*resdto.SectionResponse, len(views))
	for i, v := range views {
		responses[i] = resdto.FromSectionView(v)
	}
	c.JSON(http.StatusOK, responses)
}
