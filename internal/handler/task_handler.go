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

// TaskHandler handles tasks, their evidence links and comments
type TaskHandler struct {
	taskService service.TaskService
	logger      *zap.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{taskService: taskService, logger: logger}
}

// ListTasks godoc
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Param        feature_id   query string false "Feature ID"
// @Param        feature_name query string false "Exact feature name"
// @Param        key_name     query string false "Task type key"
// @Param        status       query string false "Task status"
// @Success      200 {object} response.SuccessResponse{data=[]dto.TaskResponse}
// @Failure      400 {object} response.ErrorResponse
// @Router       /tasks [get]
// @Security     BearerAuth
func (h *TaskHandler) ListTasks(c *gin.Context) {
	filter := dto.TaskListFilter{
		FeatureName: c.Query("feature_name"),
		KeyName:     c.Query("key_name"),
		Status:      c.Query("status"),
	}
	var ok bool
	if filter.FeatureID, ok = parseUUIDQuery(c, "feature_id"); !ok {
		return
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, tasks)
}

// GetTask godoc
// @Summary      Get a task with its evidence and comments
// @Tags         tasks
// @Produce      json
// @Param        id path string true "Task ID"
// @Success      200 {object} response.SuccessResponse{data=dto.TaskDetailResponse}
// @Failure      404 {object} response.ErrorResponse
// @Router       /tasks/{id} [get]
// @Security     BearerAuth
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "task")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, task)
}

// UpdateTaskStatus godoc
// @Summary      Change the status of a task
// @Description  Allowed for managers, the task type's approver role, or the feature creator when no approver is configured
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id path string true "Task ID"
// @Param        request body dto.UpdateTaskStatusRequest true "New status"
// @Success      200 {object} response.SuccessResponse{data=dto.TaskResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /tasks/{id}/status [put]
// @Security     BearerAuth
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id", "task")
	if !ok {
		return
	}

	var req dto.UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	task, err := h.taskService.UpdateTaskStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, task)
}

// DeleteTask godoc
// @Summary      Delete a task
// @Tags         tasks
// @Param        id path string true "Task ID"
// @Success      204
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /tasks/{id} [delete]
// @Security     BearerAuth
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id", "task")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), actor, id); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendNoContent(c)
}

// UploadAttachment godoc
// @Summary      Attach an evidence link
// @Description  An open task moves to in_progress
// @Tags         attachments
// @Accept       json
// @Produce      json
// @Param        id path string true "Task ID"
// @Param        request body dto.CreateAttachmentRequest true "Link"
// @Success      201 {object} response.SuccessResponse{data=dto.AttachmentResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /tasks/{id}/attachments [post]
// @Security     BearerAuth
func (h *TaskHandler) UploadAttachment(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id", "task")
	if !ok {
		return
	}

	var req dto.CreateAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	attachment, err := h.taskService.UploadAttachment(c.Request.Context(), actor, id, req.Link)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, attachment)
}

// ListAttachments godoc
// @Summary      List evidence links of a task
// @Tags         attachments
// @Produce      json
// @Param        id path string true "Task ID"
// @Success      200 {object} response.SuccessResponse{data=[]dto.AttachmentResponse}
// @Failure      404 {object} response.ErrorResponse
// @Router       /tasks/{id}/attachments [get]
// @Security     BearerAuth
func (h *TaskHandler) ListAttachments(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "task")
	if !ok {
		return
	}

	attachments, err := h.taskService.ListAttachments(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, attachments)
}

// GeneratePresignedURL godoc
// @Summary      Get an upload URL for an evidence file
// @Description  Upload the file with PUT to upload_url, then attach file_url to the task
// @Tags         attachments
// @Accept       json
// @Produce      json
// @Param        id path string true "Task ID"
// @Param        request body dto.PresignedURLRequest true "File"
// @Success      200 {object} response.SuccessResponse{data=dto.PresignedURLResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /tasks/{id}/attachments/presigned-url [post]
// @Security     BearerAuth
func (h *TaskHandler) GeneratePresignedURL(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id", "task")
	if !ok {
		return
	}

	var req dto.PresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	presigned, err := h.taskService.PresignEvidenceUpload(c.Request.Context(), actor, id, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, presigned)
}

// AddComment godoc
// @Summary      Comment on a task
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        id path string true "Task ID"
// @Param        request body dto.CreateCommentRequest true "Comment"
// @Success      201 {object} response.SuccessResponse{data=dto.CommentResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /tasks/{id}/comments [post]
// @Security     BearerAuth
func (h *TaskHandler) AddComment(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id", "task")
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	comment, err := h.taskService.AddComment(c.Request.Context(), actor, id, req.Comment)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, comment)
}

// GetComments godoc
// @Summary      List comments of a task
// @Tags         comments
// @Produce      json
// @Param        id path string true "Task ID"
// @Success      200 {object} response.SuccessResponse{data=[]dto.CommentResponse}
// @Failure      404 {object} response.ErrorResponse
// @Router       /tasks/{id}/comments [get]
// @Security     BearerAuth
func (h *TaskHandler) GetComments(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "task")
	if !ok {
		return
	}

	comments, err := h.taskService.GetComments(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, comments)
}
