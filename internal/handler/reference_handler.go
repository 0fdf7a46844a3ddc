package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"release-tracker-api/internal/authz"
	"release-tracker-api/internal/dto"
	"release-tracker-api/internal/response"
	"release-tracker-api/internal/service"
	"release-tracker-api/internal/util"
)

// ReferenceHandler serves the platform, channel and release type dictionaries
type ReferenceHandler struct {
	referenceService service.ReferenceService
	logger           *zap.Logger
}

// NewReferenceHandler creates a new ReferenceHandler
func NewReferenceHandler(referenceService service.ReferenceService, logger *zap.Logger) *ReferenceHandler {
	return &ReferenceHandler{referenceService: referenceService, logger: logger}
}

type createNamedFunc func(ctx context.Context, actor authz.Actor, name string) (*dto.NamedResponse, error)
type renameNamedFunc func(ctx context.Context, actor authz.Actor, id uuid.UUID, name string) (*dto.NamedResponse, error)
type deleteByIDFunc func(ctx context.Context, actor authz.Actor, id uuid.UUID) error

func (h *ReferenceHandler) createNamed(c *gin.Context, create createNamedFunc) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}

	var req dto.NamedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	item, err := create(c.Request.Context(), actor, req.Name)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, item)
}

func (h *ReferenceHandler) renameNamed(c *gin.Context, label string, rename renameNamedFunc) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id", label)
	if !ok {
		return
	}

	var req dto.NamedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	item, err := rename(c.Request.Context(), actor, id, req.Name)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, item)
}

func (h *ReferenceHandler) deleteByID(c *gin.Context, label string, del deleteByIDFunc) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id", label)
	if !ok {
		return
	}

	if err := del(c.Request.Context(), actor, id); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendNoContent(c)
}

// CreatePlatform godoc
// @Summary      Create a platform
// @Tags         reference
// @Accept       json
// @Produce      json
// @Param        request body dto.NamedRequest true "Platform"
// @Success      201 {object} response.SuccessResponse{data=dto.NamedResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Router       /platforms [post]
// @Security     BearerAuth
func (h *ReferenceHandler) CreatePlatform(c *gin.Context) {
	h.createNamed(c, h.referenceService.CreatePlatform)
}

// ListPlatforms godoc
// @Summary      List platforms
// @Tags         reference
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=[]dto.NamedResponse}
// @Router       /platforms [get]
// @Security     BearerAuth
func (h *ReferenceHandler) ListPlatforms(c *gin.Context) {
	items, err := h.referenceService.ListPlatforms(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, items)
}

// RenamePlatform godoc
// @Summary      Rename a platform
// @Tags         reference
// @Accept       json
// @Produce      json
// @Param        id path string true "Platform ID"
// @Param        request body dto.NamedRequest true "Platform"
// @Success      200 {object} response.SuccessResponse{data=dto.NamedResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /platforms/{id} [put]
// @Security     BearerAuth
func (h *ReferenceHandler) RenamePlatform(c *gin.Context) {
	h.renameNamed(c, "platform", h.referenceService.RenamePlatform)
}

// DeletePlatform godoc
// @Summary      Delete a platform
// @Tags         reference
// @Param        id path string true "Platform ID"
// @Success      204
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /platforms/{id} [delete]
// @Security     BearerAuth
func (h *ReferenceHandler) DeletePlatform(c *gin.Context) {
	h.deleteByID(c, "platform", h.referenceService.DeletePlatform)
}

// CreateChannel godoc
// @Summary      Create a channel
// @Tags         reference
// @Accept       json
// @Produce      json
// @Param        request body dto.NamedRequest true "Channel"
// @Success      201 {object} response.SuccessResponse{data=dto.NamedResponse}
// @Failure      400 {object} response.ErrorResponse
// @Router       /channels [post]
// @Security     BearerAuth
func (h *ReferenceHandler) CreateChannel(c *gin.Context) {
	h.createNamed(c, h.referenceService.CreateChannel)
}

// ListChannels godoc
// @Summary      List channels
// @Tags         reference
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=[]dto.NamedResponse}
// @Router       /channels [get]
// @Security     BearerAuth
func (h *ReferenceHandler) ListChannels(c *gin.Context) {
	items, err := h.referenceService.ListChannels(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, items)
}

// RenameChannel godoc
// @Summary      Rename a channel
// @Tags         reference
// @Accept       json
// @Produce      json
// @Param        id path string true "Channel ID"
// @Param        request body dto.NamedRequest true "Channel"
// @Success      200 {object} response.SuccessResponse{data=dto.NamedResponse}
// @Router       /channels/{id} [put]
// @Security     BearerAuth
func (h *ReferenceHandler) RenameChannel(c *gin.Context) {
	h.renameNamed(c, "channel", h.referenceService.RenameChannel)
}

// DeleteChannel godoc
// @Summary      Delete a channel
// @Tags         reference
// @Param        id path string true "Channel ID"
// @Success      204
// @Router       /channels/{id} [delete]
// @Security     BearerAuth
func (h *ReferenceHandler) DeleteChannel(c *gin.Context) {
	h.deleteByID(c, "channel", h.referenceService.DeleteChannel)
}

// CreateReleaseType godoc
// @Summary      Create a release type
// @Tags         reference
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateReleaseTypeRequest true "Release type"
// @Success      201 {object} response.SuccessResponse{data=dto.ReleaseTypeResponse}
// @Failure      400 {object} response.ErrorResponse
// @Router       /release-types [post]
// @Security     BearerAuth
func (h *ReferenceHandler) CreateReleaseType(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}

	var req dto.CreateReleaseTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	item, err := h.referenceService.CreateReleaseType(c.Request.Context(), actor, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, item)
}

// ListReleaseTypes godoc
// @Summary      List release types
// @Tags         reference
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=[]dto.ReleaseTypeResponse}
// @Router       /release-types [get]
// @Security     BearerAuth
func (h *ReferenceHandler) ListReleaseTypes(c *gin.Context) {
	items, err := h.referenceService.ListReleaseTypes(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, items)
}

// DeleteReleaseType godoc
// @Summary      Delete a release type
// @Tags         reference
// @Param        id path string true "Release type ID"
// @Success      204
// @Router       /release-types/{id} [delete]
// @Security     BearerAuth
func (h *ReferenceHandler) DeleteReleaseType(c *gin.Context) {
	h.deleteByID(c, "release type", h.referenceService.DeleteReleaseType)
}
