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

type ChangeLogHandler struct {
	changeLogService service.ChangeLogService
	logger           *zap.Logger
}

func NewChangeLogHandler(changeLogService service.ChangeLogService, logger *zap.Logger) *ChangeLogHandler {
	return &ChangeLogHandler{changeLogService: changeLogService, logger: logger}
}

// ListChangeLog godoc
// @Summary      List change log entries
// @Description  Managers only
// @Tags         changelog
// @Produce      json
// @Param        entity_type query string false "RELEASE, FEATURE or TASK"
// @Param        entity_id   query string false "Entity ID"
// @Param        page        query int    false "Page"
// @Param        page_size   query int    false "Page size"
// @Success      200 {object} response.SuccessResponse{data=dto.ChangeLogListResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Router       /changelog [get]
// @Security     BearerAuth
func (h *ChangeLogHandler) ListChangeLog(c *gin.Context) {
	actor, ok := util.ExtractActor(c)
	if !ok {
		return
	}

	filter := dto.ChangeLogFilter{EntityType: c.Query("entity_type")}
	if filter.EntityID, ok = parseUUIDQuery(c, "entity_id"); !ok {
		return
	}
	if filter.Pagination, ok = parsePagination(c); !ok {
		return
	}

	entries, err := h.changeLogService.ListChangeLog(c.Request.Context(), actor, filter)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, entries)
}
