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

// CatalogHandler manages task types, their approvers and feature types
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, logger: logger}
}

// CreateTaskType godoc
// @Summary      Create a task type
// @Tags         task-types
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateTaskTypeRequest true "Task type"
// @Success      201 {object} response.SuccessResponse{data=dto.TaskTypeResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Router       /task-types [post]
// @Security     BearerAuth
func (h *CatalogHandler) CreateTaskType(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}

	var req dto.CreateTaskTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	taskType, err := h.catalogService.CreateTaskType(c.Request.Context(), actor, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, taskType)
}

// ListTaskTypes godoc
// @Summary      List task types
// @Tags         task-types
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=[]dto.TaskTypeResponse}
// @Router       /task-types [get]
// @Security     BearerAuth
func (h *CatalogHandler) ListTaskTypes(c *gin.Context) {
	taskTypes, err := h.catalogService.ListTaskTypes(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, taskTypes)
}

// GetTaskType godoc
// @Summary      Get a task type
// @Description  Accepts either the task type ID or its key name
// @Tags         task-types
// @Produce      json
// @Param        id path string true "Task type ID or key name"
// @Success      200 {object} response.SuccessResponse{data=dto.TaskTypeResponse}
// @Failure      404 {object} response.ErrorResponse
// @Router       /task-types/{id} [get]
// @Security     BearerAuth
func (h *CatalogHandler) GetTaskType(c *gin.Context) {
	taskType, err := h.catalogService.GetTaskType(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, taskType)
}

// DeleteTaskType godoc
// @Summary      Delete a task type
// @Tags         task-types
// @Param        id path string true "Task type ID"
// @Success      204
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /task-types/{id} [delete]
// @Security     BearerAuth
func (h *CatalogHandler) DeleteTaskType(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id", "task type")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteTaskType(c.Request.Context(), actor, id); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendNoContent(c)
}

// AssignApprover godoc
// @Summary      Set the approving role of a task type
// @Tags         task-types
// @Accept       json
// @Produce      json
// @Param        id path string true "Task type ID"
// @Param        request body dto.AssignApproverRequest true "Role"
// @Success      200 {object} response.SuccessResponse{data=dto.ApproverResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /task-types/{id}/approver [put]
// @Security     BearerAuth
func (h *CatalogHandler) AssignApprover(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id", "task type")
	if !ok {
		return
	}

	var req dto.AssignApproverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	approver, err := h.catalogService.AssignApprover(c.Request.Context(), actor, id, req.RoleID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, approver)
}

// GetApprover godoc
// @Summary      Get the approving role of a task type
// @Tags         task-types
// @Produce      json
// @Param        id path string true "Task type ID"
// @Success      200 {object} response.SuccessResponse{data=dto.ApproverResponse}
// @Failure      404 {object} response.ErrorResponse
// @Router       /task-types/{id}/approver [get]
// @Security     BearerAuth
func (h *CatalogHandler) GetApprover(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "task type")
	if !ok {
		return
	}

	approver, err := h.catalogService.GetApprover(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, approver)
}

// RemoveApprover godoc
// @Summary      Remove the approving role of a task type
// @Tags         task-types
// @Param        id path string true "Task type ID"
// @Success      204
// @Failure      404 {object} response.ErrorResponse
// @Router       /task-types/{id}/approver [delete]
// @Security     BearerAuth
func (h *CatalogHandler) RemoveApprover(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id", "task type")
	if !ok {
		return
	}

	if err := h.catalogService.RemoveApprover(c.Request.Context(), actor, id); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendNoContent(c)
}

// CreateFeatureType godoc
// @Summary      Create a feature type
// @Tags         feature-types
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateFeatureTypeRequest true "Feature type"
// @Success      201 {object} response.SuccessResponse{data=dto.FeatureTypeResponse}
// @Failure      400 {object} response.ErrorResponse
// @Router       /feature-types [post]
// @Security     BearerAuth
func (h *CatalogHandler) CreateFeatureType(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}

	var req dto.CreateFeatureTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	featureType, err := h.catalogService.CreateFeatureType(c.Request.Context(), actor, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, featureType)
}

// ListFeatureTypes godoc
// @Summary      List feature types
// @Tags         feature-types
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=[]dto.FeatureTypeResponse}
// @Router       /feature-types [get]
// @Security     BearerAuth
func (h *CatalogHandler) ListFeatureTypes(c *gin.Context) {
	featureTypes, err := h.catalogService.ListFeatureTypes(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, featureTypes)
}

// GetFeatureType godoc
// @Summary      Get a feature type
// @Tags         feature-types
// @Produce      json
// @Param        id path string true "Feature type ID"
// @Success      200 {object} response.SuccessResponse{data=dto.FeatureTypeResponse}
// @Failure      404 {object} response.ErrorResponse
// @Router       /feature-types/{id} [get]
// @Security     BearerAuth
func (h *CatalogHandler) GetFeatureType(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "feature type")
	if !ok {
		return
	}

	featureType, err := h.catalogService.GetFeatureType(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, featureType)
}

// SetFeatureTypeTaskTypes godoc
// @Summary      Replace the required task types of a feature type
// @Description  Existing features keep their tasks
// @Tags         feature-types
// @Accept       json
// @Produce      json
// @Param        id path string true "Feature type ID"
// @Param        request body dto.SetFeatureTypeTaskTypesRequest true "Task type keys"
// @Success      200 {object} response.SuccessResponse{data=dto.FeatureTypeResponse}
// @Failure      400 {object} response.ErrorResponse
// @Router       /feature-types/{id}/task-types [put]
// @Security     BearerAuth
func (h *CatalogHandler) SetFeatureTypeTaskTypes(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id", "feature type")
	if !ok {
		return
	}

	var req dto.SetFeatureTypeTaskTypesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	featureType, err := h.catalogService.SetFeatureTypeTaskTypes(c.Request.Context(), actor, id, req.TaskTypeKeys)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, featureType)
}

// DeleteFeatureType godoc
// @Summary      Delete a feature type
// @Tags         feature-types
// @Param        id path string true "Feature type ID"
// @Success      204
// @Failure      400 {object} response.ErrorResponse
// @Router       /feature-types/{id} [delete]
// @Security     BearerAuth
func (h *CatalogHandler) DeleteFeatureType(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id", "feature type")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteFeatureType(c.Request.Context(), actor, id); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendNoContent(c)
}
