// Package handlers provides HTTP request handlers.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"

	"healthops/internal/core/apperror"
	"healthops/internal/core/security"
	"healthops/internal/domain"
	domainFilter "healthops/internal/domain/filter"
	"healthops/internal/infrastructure/http/v1/dto"
)

// EntityService is the audited service behind one entity route.
type EntityService[T any] interface {
	Insert(ctx context.Context, caller security.Caller, req domain.MutationRequest[T]) (T, error)
	Update(ctx context.Context, caller security.Caller, req domain.MutationRequest[T]) (T, error)
	SetActive(ctx context.Context, caller security.Caller, req domain.ActivationRequest) (T, error)
	Get(ctx context.Context, caller security.Caller, pubID string) (T, error)
	List(ctx context.Context, caller security.Caller, f domain.ListFilter) (domain.ListResult[T], error)
	History(ctx context.Context, caller security.Caller, pubID string) ([]domain.HistoryEntry[T], error)
}

// EntityHandler provides the HTTP surface of one audited entity.
// Records are returned as-is; their json tags are the wire format.
type EntityHandler[T any] struct {
	*BaseHandler
	service EntityService[T]
	newFn   func() T
}

// NewEntityHandler creates a new entity handler. newFn returns an empty
// record that formData is decoded into.
func NewEntityHandler[T any](base *BaseHandler, service EntityService[T], newFn func() T) *EntityHandler[T] {
	return &EntityHandler[T]{
		BaseHandler: base,
		service:     service,
		newFn:       newFn,
	}
}

// Insert handles POST /{entity}.
func (h *EntityHandler[T]) Insert(c *gin.Context) {
	var req dto.MutationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	form, err := h.decodeForm(req.FormData)
	if err != nil {
		h.Error(c, err)
		return
	}

	created, err := h.service.Insert(c.Request.Context(), h.Caller(c), domain.MutationRequest[T]{
		FormData:           form,
		OwnerPubID:         req.OwnerPubID,
		RevalidationTarget: req.RevalidationTarget,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, created)
}

// Update handles PUT /{entity}/:pubId.
func (h *EntityHandler[T]) Update(c *gin.Context) {
	var req dto.MutationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	form, err := h.decodeForm(req.FormData)
	if err != nil {
		h.Error(c, err)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), h.Caller(c), domain.MutationRequest[T]{
		FormData:           form,
		PubID:              c.Param("pubId"),
		OwnerPubID:         req.OwnerPubID,
		RevalidationTarget: req.RevalidationTarget,
		ExpectedUpdatedAt:  req.ExpectedUpdatedAt,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, updated)
}

// SetActive handles POST /{entity}/:pubId/activation.
func (h *EntityHandler[T]) SetActive(c *gin.Context) {
	var req dto.ActivationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	updated, err := h.service.SetActive(c.Request.Context(), h.Caller(c), domain.ActivationRequest{
		PubID:              c.Param("pubId"),
		Active:             *req.IsActive,
		RevalidationTarget: req.RevalidationTarget,
		ExpectedUpdatedAt:  req.ExpectedUpdatedAt,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, updated)
}

// Get handles GET /{entity}/:pubId.
func (h *EntityHandler[T]) Get(c *gin.Context) {
	e, err := h.service.Get(c.Request.Context(), h.Caller(c), c.Param("pubId"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, e)
}

// List handles GET /{entity}?owner=<pubId>.
func (h *EntityHandler[T]) List(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	f := domain.DefaultListFilter()
	f.OwnerPubID = q.Owner
	f.Search = q.Search
	f.OrderBy = q.OrderBy
	f.IncludeInactive = q.IncludeInactive
	if q.Limit > 0 {
		f.Limit = q.Limit
	}
	f.Offset = q.Offset

	if q.Filter != "" {
		var items []domainFilter.Item
		if err := json.Unmarshal([]byte(q.Filter), &items); err != nil {
			h.Error(c, apperror.NewValidation("invalid filter format (json expected)"))
			return
		}
		f.AdvancedFilters = items
	}

	res, err := h.service.List(c.Request.Context(), h.Caller(c), f)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{
		Items:      res.Items,
		TotalCount: res.TotalCount,
		Limit:      res.Limit,
		Offset:     res.Offset,
	})
}

// History handles GET /{entity}/:pubId/history.
func (h *EntityHandler[T]) History(c *gin.Context) {
	pubID := c.Param("pubId")
	entries, err := h.service.History(c.Request.Context(), h.Caller(c), pubID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.HistoryResponse{PubID: pubID, Items: entries})
}

// decodeForm reads formData into a fresh record. A missing formData yields
// the zero value, which the service rejects.
func (h *EntityHandler[T]) decodeForm(raw json.RawMessage) (T, error) {
	var zero T
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return zero, nil
	}

	form := h.newFn()
	if err := json.Unmarshal(trimmed, form); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return zero, apperror.NewValidationFields(map[string]string{typeErr.Field: "has an invalid value"})
		}
		return zero, apperror.NewValidation("formData could not be read").WithDetail("error", err.Error())
	}
	return form, nil
}
