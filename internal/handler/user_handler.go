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

// UserHandler handles user and role endpoints
type UserHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// Me godoc
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=dto.UserResponse}
// @Failure      401 {object} response.ErrorResponse
// @Router       /users/me [get]
// @Security     BearerAuth
func (h *UserHandler) Me(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), actor.ID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, user)
}

// UpdatePassword godoc
// @Summary      Change own password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body dto.UpdatePasswordRequest true "Passwords"
// @Success      204
// @Failure      400 {object} response.ErrorResponse
// @Router       /users/me/password [put]
// @Security     BearerAuth
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}

	var req dto.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	if err := h.userService.UpdatePassword(c.Request.Context(), actor, &req); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendNoContent(c)
}

// UpdateEmail godoc
// @Summary      Change own email
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body dto.UpdateEmailRequest true "New email"
// @Success      200 {object} response.SuccessResponse{data=dto.UserResponse}
// @Failure      400 {object} response.ErrorResponse
// @Router       /users/me/email [put]
// @Security     BearerAuth
func (h *UserHandler) UpdateEmail(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}

	var req dto.UpdateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	user, err := h.userService.UpdateEmail(c.Request.Context(), actor, req.Email)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, user)
}

// CreateUser godoc
// @Summary      Create a user
// @Description  Admin only
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateUserRequest true "User"
// @Success      201 {object} response.SuccessResponse{data=dto.UserResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Router       /users [post]
// @Security     BearerAuth
func (h *UserHandler) CreateUser(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}

	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), actor, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, user)
}

// ListUsers godoc
// @Summary      List users
// @Description  Admin only
// @Tags         users
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=[]dto.UserResponse}
// @Failure      403 {object} response.ErrorResponse
// @Router       /users [get]
// @Security     BearerAuth
func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}

	users, err := h.userService.ListUsers(c.Request.Context(), actor)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, users)
}

// GetUser godoc
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} response.SuccessResponse{data=dto.UserResponse}
// @Failure      404 {object} response.ErrorResponse
// @Router       /users/{id} [get]
// @Security     BearerAuth
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "user")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, user)
}

// UpdateRole godoc
// @Summary      Change a user's role
// @Description  Admin only
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        request body dto.UpdateRoleRequest true "Role name"
// @Success      200 {object} response.SuccessResponse{data=dto.UserResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Router       /users/{id}/role [put]
// @Security     BearerAuth
func (h *UserHandler) UpdateRole(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id", "user")
	if !ok {
		return
	}

	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	user, err := h.userService.UpdateRole(c.Request.Context(), actor, id, req.Role)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, user)
}

// DeleteUser godoc
// @Summary      Delete a user
// @Description  Admin only
// @Tags         users
// @Param        id path string true "User ID"
// @Success      204
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /users/{id} [delete]
// @Security     BearerAuth
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id", "user")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), actor, id); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendNoContent(c)
}

// CreateRole godoc
// @Summary      Create a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateRoleRequest true "Role"
// @Success      201 {object} response.SuccessResponse{data=dto.RoleResponse}
// @Failure      400 {object} response.ErrorResponse
// @Router       /roles [post]
// @Security     BearerAuth
func (h *UserHandler) CreateRole(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}

	var req dto.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	role, err := h.userService.CreateRole(c.Request.Context(), actor, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, role)
}

// ListRoles godoc
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=[]dto.RoleResponse}
// @Router       /roles [get]
// @Security     BearerAuth
func (h *UserHandler) ListRoles(c *gin.Context) {
	roles, err := h.userService.ListRoles(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, roles)
}

// DeleteRole godoc
// @Summary      Delete a role
// @Tags         roles
// @Param        id path string true "Role ID"
// @Success      204
// @Failure      400 {object} response.ErrorResponse
// @Router       /roles/{id} [delete]
// @Security     BearerAuth
func (h *UserHandler) DeleteRole(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id", "role")
	if !ok {
		return
	}

	if err := h.userService.DeleteRole(c.Request.Context(), actor, id); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendNoContent(c)
}
