package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SuccessResponse is the envelope for successful responses
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorDetail describes a failed request
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorResponse is the envelope for failed responses
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// SendSuccess writes a success envelope
func SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse{Success: true, Data: data})
}

// SendNoContent writes an empty 204 response
func SendNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// SendError writes an error envelope and aborts the handler chain
func SendError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Success: false,
		Error:   ErrorDetail{Code: code, Message: message},
	})
}

// SendAppError writes the envelope for a typed service error
func SendAppError(c *gin.Context, status int, appErr *AppError) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Success: false,
		Error:   ErrorDetail{Code: appErr.Code, Message: appErr.Message, Details: appErr.Details},
	})
}
