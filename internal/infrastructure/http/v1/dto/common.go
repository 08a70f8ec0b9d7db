// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"registrar/internal/core/entity"
	"registrar/internal/core/id"
)

// --- List Response ---

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- Base DTOs ---

// BaseResponse carries identity, version and the pipeline-managed fields.
type BaseResponse struct {
	ID        string     `json:"id"`
	Version   int        `json:"version"`
	CreatedAt time.Time  `json:"createdAt"`
	CreatedBy string     `json:"createdBy"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	UpdatedBy *string    `json:"updatedBy,omitempty"`
}

// FromBase builds the common part of a response.
func FromBase(b entity.BaseEntity, a entity.AuditFields) BaseResponse {
	return BaseResponse{
		ID:        b.ID.String(),
		Version:   b.Version,
		CreatedAt: a.CreatedAt,
		CreatedBy: a.CreatedBy.String(),
		UpdatedAt: a.UpdatedAt,
		UpdatedBy: idString(a.UpdatedBy),
	}
}

// DeletionResponse is present on soft-deletable resources.
type DeletionResponse struct {
	IsDeleted bool       `json:"isDeleted"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	DeletedBy *string    `json:"deletedBy,omitempty"`
}

// FromSoftDelete builds the deletion part of a response.
func FromSoftDelete(s entity.SoftDeleteFields) DeletionResponse {
	return DeletionResponse{
		IsDeleted: s.IsDeleted,
		DeletedAt: s.DeletedAt,
		DeletedBy: idString(s.DeletedBy),
	}
}

func idString(v *id.ID) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}

func parseOptionalID(s *string) (*id.ID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	v, err := id.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// --- ID Response ---

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
