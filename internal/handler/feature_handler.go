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

// FeatureHandler handles feature HTTP requests
type FeatureHandler struct {
	featureService service.FeatureService
	logger         *zap.Logger
}

// NewFeatureHandler creates a new FeatureHandler
func NewFeatureHandler(featureService service.FeatureService, logger *zap.Logger) *FeatureHandler {
	return &FeatureHandler{featureService: featureService, logger: logger}
}

// CreateFeature godoc
// @Summary      Create a feature
// @Description  Creates the feature and one open task per task type required by its feature type
// @Tags         features
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateFeatureRequest true "Feature"
// @Success      201 {object} response.SuccessResponse{data=dto.FeatureDetailResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /feature [post]
// @Security     BearerAuth
func (h *FeatureHandler) CreateFeature(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}

	var req dto.CreateFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	feature, err := h.featureService.CreateFeature(c.Request.Context(), actor, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, feature)
}

// GetFeature godoc
// @Summary      Get a feature with its tasks
// @Tags         features
// @Produce      json
// @Param        id path string true "Feature ID"
// @Success      200 {object} response.SuccessResponse{data=dto.FeatureDetailResponse}
// @Failure      404 {object} response.ErrorResponse
// @Router       /feature/{id} [get]
// @Security     BearerAuth
func (h *FeatureHandler) GetFeature(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "feature")
	if !ok {
		return
	}

	feature, err := h.featureService.GetFeature(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, feature)
}

// GetFeatureByName godoc
// @Summary      Get a feature by its unique name
// @Tags         features
// @Produce      json
// @Param        name path string true "Feature name"
// @Success      200 {object} response.SuccessResponse{data=dto.FeatureDetailResponse}
// @Failure      404 {object} response.ErrorResponse
// @Router       /feature/by-name/{name} [get]
// @Security     BearerAuth
func (h *FeatureHandler) GetFeatureByName(c *gin.Context) {
	feature, err := h.featureService.GetFeatureByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, feature)
}

// ListFeatures godoc
// @Summary      List features
// @Tags         features
// @Produce      json
// @Param        creator_id      query string false "Creator user ID"
// @Param        release_id      query string false "Release ID"
// @Param        feature_type_id query string false "Feature type ID"
// @Param        status          query string false "Feature status"
// @Param        name            query string false "Name substring"
// @Param        page            query int    false "Page"
// @Param        page_size       query int    false "Page size"
// @Success      200 {object} response.SuccessResponse{data=dto.FeatureListResponse}
// @Failure      400 {object} response.ErrorResponse
// @Router       /feature [get]
// @Security     BearerAuth
func (h *FeatureHandler) ListFeatures(c *gin.Context) {
	filter := dto.FeatureListFilter{
		Status: c.Query("status"),
		Name:   c.Query("name"),
	}
	var ok bool
	if filter.CreatorID, ok = parseUUIDQuery(c, "creator_id"); !ok {
		return
	}
	if filter.ReleaseID, ok = parseUUIDQuery(c, "release_id"); !ok {
		return
	}
	if filter.FeatureTypeID, ok = parseUUIDQuery(c, "feature_type_id"); !ok {
		return
	}
	if filter.Pagination, ok = parsePagination(c); !ok {
		return
	}

	features, err := h.featureService.ListFeatures(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, features)
}

// UpdateFeature godoc
// @Summary      Update a feature
// @Description  Partial update of name, Jira key and status. Marking a feature done requires every task to be done.
// @Tags         features
// @Accept       json
// @Produce      json
// @Param        id path string true "Feature ID"
// @Param        request body dto.UpdateFeatureRequest true "Changes"
// @Success      200 {object} response.SuccessResponse{data=dto.FeatureResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /feature/{id} [put]
// @Security     BearerAuth
func (h *FeatureHandler) UpdateFeature(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id", "feature")
	if !ok {
		return
	}

	var req dto.UpdateFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	feature, err := h.featureService.UpdateFeature(c.Request.Context(), actor, id, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, feature)
}

// ChangeFeatureType godoc
// @Summary      Change the feature type
// @Description  Reconciles the feature's tasks with the required task types of the new type
// @Tags         features
// @Accept       json
// @Produce      json
// @Param        id path string true "Feature ID"
// @Param        request body dto.ChangeFeatureTypeRequest true "New feature type"
// @Success      200 {object} response.SuccessResponse{data=dto.FeatureDetailResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /feature/{id}/type [put]
// @Security     BearerAuth
func (h *FeatureHandler) ChangeFeatureType(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id", "feature")
	if !ok {
		return
	}

	var req dto.ChangeFeatureTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	feature, err := h.featureService.ChangeFeatureType(c.Request.Context(), actor, id, req.FeatureTypeID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, feature)
}

// ChangeFeatureRelease godoc
// @Summary      Move a feature to another release
// @Tags         features
// @Accept       json
// @Produce      json
// @Param        id path string true "Feature ID"
// @Param        request body dto.ChangeFeatureReleaseRequest true "Target release"
// @Success      200 {object} response.SuccessResponse{data=dto.FeatureResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /feature/{id}/release [put]
// @Security     BearerAuth
func (h *FeatureHandler) ChangeFeatureRelease(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id", "feature")
	if !ok {
		return
	}

	var req dto.ChangeFeatureReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	feature, err := h.featureService.ChangeFeatureRelease(c.Request.Context(), actor, id, req.ReleaseID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, feature)
}

// DeleteFeature godoc
// @Summary      Delete a feature and its tasks
// @Tags         features
// @Param        id path string true "Feature ID"
// @Success      204
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /feature/{id} [delete]
// @Security     BearerAuth
func (h *FeatureHandler) DeleteFeature(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id", "feature")
	if !ok {
		return
	}

	if err := h.featureService.DeleteFeature(c.Request.Context(), actor, id); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendNoContent(c)
}
