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

// AuthHandler handles token issue and revocation
type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// Login godoc
// @Summary      Issue an access token
// @Description  Exchanges a username and password for a bearer token. Accepts JSON or form data.
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        request body dto.LoginRequest true "Credentials"
// @Success      200 {object} response.SuccessResponse{data=dto.TokenResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Router       /auth/token [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		sendBindError(c, err)
		return
	}

	token, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, token)
}

// Logout godoc
// @Summary      Revoke the current token
// @Tags         auth
// @Produce      json
// @Success      204
// @Failure      401 {object} response.ErrorResponse
// @Router       /auth/logout [post]
// @Security     BearerAuth
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := util.ExtractClaims(c)
	if !ok {
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendNoContent(c)
}
