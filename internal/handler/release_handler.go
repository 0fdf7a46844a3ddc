package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"release-tracker-api/internal/dto"
	"release-tracker-api/internal/response"
	"release-tracker-api/internal/service"
	"release-tracker-api/internal/util"
)

// ReleaseHandler handles release HTTP requests
type ReleaseHandler struct {
	releaseService service.ReleaseService
	logger         *zap.Logger
}

// NewReleaseHandler creates a new ReleaseHandler
func NewReleaseHandler(releaseService service.ReleaseService, logger *zap.Logger) *ReleaseHandler {
	return &ReleaseHandler{releaseService: releaseService, logger: logger}
}

// CreateRelease godoc
// @Summary      Create a release
// @Tags         releases
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateReleaseRequest true "Release"
// @Success      201 {object} response.SuccessResponse{data=dto.ReleaseResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Router       /releases [post]
// @Security     BearerAuth
func (h *ReleaseHandler) CreateRelease(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}

	var req dto.CreateReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	release, err := h.releaseService.CreateRelease(c.Request.Context(), actor, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, release)
}

// GetRelease godoc
// @Summary      Get a release with its features
// @Tags         releases
// @Produce      json
// @Param        id path string true "Release ID"
// @Success      200 {object} response.SuccessResponse{data=dto.ReleaseDetailResponse}
// @Failure      404 {object} response.ErrorResponse
// @Router       /releases/{id} [get]
// @Security     BearerAuth
func (h *ReleaseHandler) GetRelease(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "release")
	if !ok {
		return
	}

	release, err := h.releaseService.GetRelease(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, release)
}

// ListReleases godoc
// @Summary      List releases
// @Tags         releases
// @Produce      json
// @Param        status      query string false "Release status"
// @Param        platform_id query string false "Platform ID"
// @Param        channel_id  query string false "Channel ID"
// @Param        name        query string false "Name substring"
// @Param        page        query int    false "Page"
// @Param        page_size   query int    false "Page size"
// @Success      200 {object} response.SuccessResponse{data=dto.ReleaseListResponse}
// @Failure      400 {object} response.ErrorResponse
// @Router       /releases [get]
// @Security     BearerAuth
func (h *ReleaseHandler) ListReleases(c *gin.Context) {
	filter := dto.ReleaseListFilter{
		Status: c.Query("status"),
		Name:   c.Query("name"),
	}
	var ok bool
	if filter.PlatformID, ok = parseUUIDQuery(c, "platform_id"); !ok {
		return
	}
	if filter.ChannelID, ok = parseUUIDQuery(c, "channel_id"); !ok {
		return
	}
	if filter.Pagination, ok = parsePagination(c); !ok {
		return
	}

	releases, err := h.releaseService.ListReleases(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, releases)
}

// UpdateRelease godoc
// @Summary      Update a release
// @Description  Partial update. Completing a release requires every feature to be done.
// @Tags         releases
// @Accept       json
// @Produce      json
// @Param        id path string true "Release ID"
// @Param        request body dto.UpdateReleaseRequest true "Changes"
// @Success      200 {object} response.SuccessResponse{data=dto.ReleaseResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /releases/{id} [put]
// @Security     BearerAuth
func (h *ReleaseHandler) UpdateRelease(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id", "release")
	if !ok {
		return
	}

	var req dto.UpdateReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	release, err := h.releaseService.UpdateRelease(c.Request.Context(), actor, id, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, release)
}

// DeleteRelease godoc
// @Summary      Delete a release
// @Tags         releases
// @Param        id path string true "Release ID"
// @Success      204
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /releases/{id} [delete]
// @Security     BearerAuth
func (h *ReleaseHandler) DeleteRelease(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id", "release")
	if !ok {
		return
	}

	if err := h.releaseService.DeleteRelease(c.Request.Context(), actor, id); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendNoContent(c)
}
