package dto

import (
	"strings"

	"github.com/google/uuid"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination is a simple page/size window. Zero values select the defaults.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Normalize clamps the window to valid bounds
func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Offset returns the number of rows skipped before the page
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// FeatureListFilter selects features. Nil and empty fields do not constrain the result.
type FeatureListFilter struct {
	CreatorID     *uuid.UUID
	ReleaseID     *uuid.UUID
	FeatureTypeID *uuid.UUID
	Status        string
	// Name matches as a case-insensitive substring
	Name string
	Pagination
}

// ReleaseListFilter selects releases
type ReleaseListFilter struct {
	Status     string
	PlatformID *uuid.UUID
	ChannelID  *uuid.UUID
	Name       string
	Pagination
}

// TaskListFilter selects tasks
type TaskListFilter struct {
	FeatureID   *uuid.UUID
	FeatureName string
	KeyName     string
	Status      string
}

// ChangeLogFilter selects change log entries
type ChangeLogFilter struct {
	EntityType string
	EntityID   *uuid.UUID
	Pagination
}

// LikePattern builds a lower-cased substring pattern for LIKE ... ESCAPE '!'.
func LikePattern(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`).Replace(s)
	return "%" + s + "%"
}
