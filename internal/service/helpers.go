package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"release-tracker-api/internal/authz"
	"release-tracker-api/internal/client"
	"release-tracker-api/internal/domain"
	"release-tracker-api/internal/repository"
	"release-tracker-api/internal/response"
)

// lookupError converts a failed lookup into NOT_FOUND or INTERNAL_ERROR
func lookupError(err error, entity string) error {
	var appErr *response.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, gorm.ErrRecordNotFound):
		return response.NewNotFoundError(entity+" not found", "")
	default:
		return response.NewAppError(response.ErrCodeInternal, "Failed to load "+strings.ToLower(entity), err.Error())
	}
}

// persistError converts a failed write. A unique index violation becomes CONFLICT.
func persistError(err error, operation, conflictMsg string) error {
	var appErr *response.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return response.NewConflictError(conflictMsg, "")
	default:
		return response.NewAppError(response.ErrCodeInternal, "Failed to "+operation, err.Error())
	}
}

func internalError(operation string, err error) error {
	return response.NewAppError(response.ErrCodeInternal, "Failed to "+operation, err.Error())
}

// recordChange appends an audit entry using the transaction bound to ctx, if any
func recordChange(ctx context.Context, repo repository.ChangeLogRepository, entity domain.ChangeLogEntity, entityID uuid.UUID, actor authz.Actor, action string, details map[string]interface{}) error {
	entry := &domain.ChangeLog{EntityType: entity, EntityID: entityID, Action: action}
	if actor.ID != uuid.Nil {
		userID := actor.ID
		entry.UserID = &userID
	}
	if len(details) > 0 {
		raw, err := json.Marshal(details)
		if err != nil {
			return err
		}
		entry.Details = datatypes.JSON(raw)
	}
	return repo.Create(ctx, entry)
}

// removeEvidence deletes stored objects behind links that point into our bucket.
// Failures are logged; the database rows are already gone.
func removeEvidence(ctx context.Context, store client.EvidenceStore, links []domain.AttachmentLink, logger *zap.Logger) {
	if store == nil {
		return
	}
	for _, link := range links {
		key, ok := store.KeyFromURL(link.Link)
		if !ok {
			continue
		}
		if err := store.DeleteFile(ctx, key); err != nil {
			logger.Warn("Failed to delete evidence object",
				zap.String("key", key),
				zap.String("task_id", link.TaskID.String()),
				zap.Error(err))
		}
	}
}

// normalizeKeys trims, drops empty entries and removes duplicates while keeping order
func normalizeKeys(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	result := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		result = append(result, k)
	}
	return result
}

// validateDateRange validates that startDate is not after endDate
func validateDateRange(startDate, endDate *time.Time) error {
	if startDate != nil && endDate != nil && startDate.After(*endDate) {
		return response.NewValidationError("Start date cannot be after end date", "")
	}
	return nil
}

// isHTTPLink reports whether link uses the http or https scheme
func isHTTPLink(link string) bool {
	return strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://")
}
