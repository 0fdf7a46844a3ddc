package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"release-tracker-api/internal/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantDetails string
	}{
		{"not found", response.NewNotFoundError("Feature not found", ""), http.StatusNotFound, response.ErrCodeNotFound, ""},
		{"forbidden keeps details", response.NewForbiddenError("Insufficient permissions", "required role: tester"), http.StatusForbidden, response.ErrCodeForbidden, "required role: tester"},
		{"conflict is a bad request", response.NewConflictError("Task already done", "task: test"), http.StatusBadRequest, response.ErrCodeConflict, "task: test"},
		{"validation", response.NewValidationError("Invalid status", "bogus"), http.StatusBadRequest, response.ErrCodeValidation, "bogus"},
		{"unauthorized", response.NewAppError(response.ErrCodeUnauthorized, "Invalid username or password", ""), http.StatusUnauthorized, response.ErrCodeUnauthorized, ""},
		{"internal hides details", response.NewAppError(response.ErrCodeInternal, "Internal server error", "dial tcp: refused"), http.StatusInternalServerError, response.ErrCodeInternal, ""},
		{"wrapped app error", fmt.Errorf("update: %w", response.NewValidationError("bad", "")), http.StatusBadRequest, response.ErrCodeValidation, ""},
		{"gorm not found", gorm.ErrRecordNotFound, http.StatusNotFound, response.ErrCodeNotFound, ""},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, response.ErrCodeInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			handleServiceError(c, zap.NewNop(), tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body response.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.wantDetails, body.Error.Details)
		})
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query    string
		wantOK   bool
		wantPage int
		wantSize int
	}{
		{"", true, 0, 0},
		{"page=3&page_size=50", true, 3, 50},
		{"page=abc", false, 0, 0},
		{"page_size=1.5", false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)

			p, ok := parsePagination(c)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantPage, p.Page)
				assert.Equal(t, tt.wantSize, p.PageSize)
			} else {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}
