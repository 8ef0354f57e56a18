// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"encoding/json"
	"time"
)

// --- List Response ---

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- Common Filters ---

// ListQuery contains the list query parameters.
type ListQuery struct {
	Owner           string `form:"owner"`
	Search          string `form:"search"`
	OrderBy         string `form:"orderBy"`
	IncludeInactive bool   `form:"includeInactive"`
	Limit           int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset          int    `form:"offset" binding:"omitempty,min=0"`
	// Filter is a JSON array of {field, operator, value} conditions.
	Filter string `form:"filter"`
}

// --- Mutations ---

// MutationRequest is the body of insert and update calls.
// FormData is decoded into the entity type of the route.
type MutationRequest struct {
	FormData           json.RawMessage `json:"formData"`
	RevalidationTarget string          `json:"revalidationTarget,omitempty"`
	OwnerPubID         string          `json:"ownerPubId,omitempty"`
	ExpectedUpdatedAt  *time.Time      `json:"expectedUpdatedAt,omitempty"`
}

// ActivationRequest switches isActive.
type ActivationRequest struct {
	IsActive           *bool      `json:"isActive" binding:"required"`
	RevalidationTarget string     `json:"revalidationTarget,omitempty"`
	ExpectedUpdatedAt  *time.Time `json:"expectedUpdatedAt,omitempty"`
}

// HistoryResponse lists the snapshots of one record.
type HistoryResponse struct {
	PubID string `json:"pubId"`
	Items any    `json:"items"`
}

// SuccessResponse for simple success messages.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
