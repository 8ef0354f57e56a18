package domain

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"healthops/internal/core/apperror"
	"healthops/internal/core/entity"
	"healthops/internal/core/id"
	"healthops/internal/core/security"
	"healthops/internal/core/tx"
	"healthops/internal/core/types"
	"healthops/internal/core/validate"
	"healthops/pkg/logger"
)

var tracer = otel.Tracer("healthops/domain")

// MutationRequest is the caller-facing input of Insert and Update.
type MutationRequest[T any] struct {
	// FormData carries the untrusted domain fields.
	FormData T
	// PubID targets the record on update; ignored on insert.
	PubID string
	// OwnerPubID names the owning client or payer. Optional on update.
	OwnerPubID string
	// RevalidationTarget is a path ("/payers/123") or key ("tag:payers") to mark stale.
	RevalidationTarget string
	// ExpectedUpdatedAt, when set, must match the live row or the update is refused.
	ExpectedUpdatedAt *time.Time
}

// ActivationRequest switches isActive through the audited update path.
type ActivationRequest struct {
	PubID              string
	Active             bool
	RevalidationTarget string
	ExpectedUpdatedAt  *time.Time
}

// Policy declares which role each operation requires on the owner.
type Policy struct {
	InsertRole     security.Role
	UpdateRole     security.Role
	ActivationRole security.Role

	// VendorInsert restricts inserts to vendor callers (owners of nothing yet).
	VendorInsert bool
	// SelfOwned entities are their own owner; grants name their pubId.
	SelfOwned bool
}

// DefaultPolicy is add / edit / admin on the owner.
func DefaultPolicy() Policy {
	return Policy{
		InsertRole:     security.RoleAdd,
		UpdateRole:     security.RoleEdit,
		ActivationRole: security.RoleAdmin,
	}
}

// MutationObserver receives one call per finished mutation.
type MutationObserver interface {
	ObserveMutation(entityName, operation, outcome string, elapsed time.Duration)
}

// AuditedService runs the validate, authorize, snapshot, mutate,
// invalidate sequence for one entity type.
type AuditedService[T entity.Record[T]] struct {
	repo        AuditedRepository[T]
	txManager   tx.Manager
	invalidator Invalidator
	readCache   ReadCache
	observer    MutationObserver
	hooks       *HookRegistry[T]
	policy      Policy

	// entityName for error messages and cache tags
	entityName string
}

// AuditedServiceConfig configures the audited service.
type AuditedServiceConfig[T entity.Record[T]] struct {
	Repo        AuditedRepository[T]
	TxManager   tx.Manager
	Invalidator Invalidator      // optional
	ReadCache   ReadCache        // optional
	Observer    MutationObserver // optional
	Policy      Policy
	EntityName  string
}

// NewAuditedService creates a new audited service.
func NewAuditedService[T entity.Record[T]](cfg AuditedServiceConfig[T]) *AuditedService[T] {
	inv := cfg.Invalidator
	if inv == nil {
		inv = NopInvalidator{}
	}
	return &AuditedService[T]{
		repo:        cfg.Repo,
		txManager:   cfg.TxManager,
		invalidator: inv,
		readCache:   cfg.ReadCache,
		observer:    cfg.Observer,
		hooks:       NewHookRegistry[T](),
		policy:      cfg.Policy,
		entityName:  cfg.EntityName,
	}
}

// Hooks returns the hook registry for external registration.
func (s *AuditedService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

// EntityName returns the name used in messages and cache tags.
func (s *AuditedService[T]) EntityName() string {
	return s.entityName
}

// Insert validates e, checks the insert role on its owner, and adds it with a
// fresh pubId after rejecting duplicates among the owner's active rows.
func (s *AuditedService[T]) Insert(ctx context.Context, caller security.Caller, req MutationRequest[T]) (result T, err error) {
	ctx, done := s.begin(ctx, "insert")
	defer func() { done(err) }()

	e := req.FormData
	if isNil(e) {
		return result, apperror.NewValidation("formData is required")
	}
	if req.OwnerPubID != "" {
		e.SetOwnerPubID(req.OwnerPubID)
	}

	if err := s.check(ctx, e); err != nil {
		return result, err
	}

	if s.policy.VendorInsert {
		err = security.RequireVendor(caller)
	} else {
		err = security.Authorize(caller, e.OwnerPubID(), s.policy.InsertRole)
	}
	if err != nil {
		return result, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		e.Base().Stamp(caller.UserID, entity.NowUTC())

		if err := s.hooks.Run(ctx, BeforeInsert, e); err != nil {
			return err
		}

		dups, err := s.repo.FindDuplicates(ctx, e, "")
		if err != nil {
			return fmt.Errorf("check duplicates %s: %w", s.entityName, err)
		}
		if len(dups) > 0 {
			return apperror.NewDuplicate(s.entityName, dups)
		}

		if err := s.repo.Insert(ctx, e); err != nil {
			return fmt.Errorf("insert %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	s.afterCommit(ctx, AfterInsert, e, req.RevalidationTarget)
	return e, nil
}

// Update validates the payload, checks the update role on the record's owner
// and, in one transaction, snapshots the live row into history before
// writing the new domain fields.
func (s *AuditedService[T]) Update(ctx context.Context, caller security.Caller, req MutationRequest[T]) (result T, err error) {
	ctx, done := s.begin(ctx, "update")
	defer func() { done(err) }()

	payload := req.FormData
	if isNil(payload) {
		return result, apperror.NewValidation("formData is required")
	}
	if !id.IsPubID(req.PubID) {
		return result, apperror.NewValidationFields(map[string]string{"pubId": "must be a valid identifier"})
	}

	owner, err := s.resolveOwner(ctx, req.PubID, req.OwnerPubID)
	if err != nil {
		return result, err
	}
	payload.SetOwnerPubID(owner)

	if err := s.check(ctx, payload); err != nil {
		return result, err
	}
	if err := security.Authorize(caller, owner, s.policy.UpdateRole); err != nil {
		return result, err
	}

	var updated T
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.lockForMutation(ctx, req.PubID, owner, req.ExpectedUpdatedAt)
		if err != nil {
			return err
		}

		now := entity.NowUTC()
		if err := s.repo.Snapshot(ctx, current, now); err != nil {
			return fmt.Errorf("snapshot %s: %w", s.entityName, err)
		}

		current.ApplyFrom(payload)
		current.Base().Touch(caller.UserID, now)

		if err := s.hooks.Run(ctx, BeforeUpdate, current); err != nil {
			return err
		}
		if err := s.rejectDuplicates(ctx, current); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, current); err != nil {
			return fmt.Errorf("update %s: %w", s.entityName, err)
		}
		updated = current
		return nil
	})
	if err != nil {
		return result, err
	}

	s.afterCommit(ctx, AfterUpdate, updated, req.RevalidationTarget)
	return updated, nil
}

// SetActive deactivates or reactivates a record through the audited update path.
func (s *AuditedService[T]) SetActive(ctx context.Context, caller security.Caller, req ActivationRequest) (result T, err error) {
	ctx, done := s.begin(ctx, "activation")
	defer func() { done(err) }()

	if !id.IsPubID(req.PubID) {
		return result, apperror.NewValidationFields(map[string]string{"pubId": "must be a valid identifier"})
	}
	owner, err := s.resolveOwner(ctx, req.PubID, "")
	if err != nil {
		return result, err
	}
	if err := security.Authorize(caller, owner, s.policy.ActivationRole); err != nil {
		return result, err
	}

	var updated T
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.lockForMutation(ctx, req.PubID, owner, req.ExpectedUpdatedAt)
		if err != nil {
			return err
		}
		if current.Base().IsActive.Bool() == req.Active {
			updated = current
			return nil
		}

		now := entity.NowUTC()
		if err := s.repo.Snapshot(ctx, current, now); err != nil {
			return fmt.Errorf("snapshot %s: %w", s.entityName, err)
		}

		current.Base().IsActive = types.Flag(req.Active)
		current.Base().Touch(caller.UserID, now)

		if req.Active {
			if err := s.rejectDuplicates(ctx, current); err != nil {
				return err
			}
		}
		if err := s.repo.Update(ctx, current); err != nil {
			return fmt.Errorf("set active %s: %w", s.entityName, err)
		}
		updated = current
		return nil
	})
	if err != nil {
		return result, err
	}

	s.afterCommit(ctx, AfterUpdate, updated, req.RevalidationTarget)
	return updated, nil
}

// Get returns a live record; any role on its owner grants view.
func (s *AuditedService[T]) Get(ctx context.Context, caller security.Caller, pubID string) (T, error) {
	e, err := s.load(ctx, pubID)
	if err != nil {
		return e, err
	}
	if err := security.Authorize(caller, e.OwnerPubID(), security.RoleView); err != nil {
		var zero T
		return zero, err
	}
	return e, nil
}

// List returns records of one owner. Self-owned entities list every record
// the caller holds a grant on; vendors see all of them.
func (s *AuditedService[T]) List(ctx context.Context, caller security.Caller, f ListFilter) (ListResult[T], error) {
	if caller.UserID == "" {
		return ListResult[T]{}, apperror.NewUnauthorized("authentication required")
	}

	if s.policy.SelfOwned {
		if !caller.IsVendor() {
			f.PubIDs = grantedOwners(caller)
			if len(f.PubIDs) == 0 {
				return ListResult[T]{Items: []T{}, Limit: f.Limit, Offset: f.Offset}, nil
			}
		}
	} else {
		if f.OwnerPubID == "" {
			return ListResult[T]{}, apperror.NewValidationFields(map[string]string{"owner": "is required"})
		}
		if err := security.Authorize(caller, f.OwnerPubID, security.RoleView); err != nil {
			return ListResult[T]{}, err
		}
	}

	res, err := s.repo.List(ctx, f)
	if err != nil {
		return res, apperror.NewInternal(fmt.Errorf("list %s: %w", s.entityName, err))
	}
	return res, nil
}

// History returns the snapshots of one record, oldest first.
func (s *AuditedService[T]) History(ctx context.Context, caller security.Caller, pubID string) ([]HistoryEntry[T], error) {
	e, err := s.load(ctx, pubID)
	if err != nil {
		return nil, err
	}
	if err := security.Authorize(caller, e.OwnerPubID(), security.RoleView); err != nil {
		return nil, err
	}

	var entries []HistoryEntry[T]
	read := func(ctx context.Context) error {
		var err error
		entries, err = s.repo.History(ctx, pubID)
		return err
	}
	if ro, ok := s.txManager.(tx.ReadOnlyManager); ok {
		err = ro.ReadOnly(ctx, read)
	} else {
		err = read(ctx)
	}
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("history %s: %w", s.entityName, err))
	}
	return entries, nil
}

// --- internals ---

// check normalizes then validates an entity.
func (s *AuditedService[T]) check(ctx context.Context, e T) error {
	validate.Normalize(e)
	if err := e.Validate(ctx); err != nil {
		if apperror.IsAppError(err) {
			return err
		}
		return apperror.NewValidation(err.Error())
	}
	return nil
}

// resolveOwner returns the owner to authorize against. Without a hint it reads
// the live row outside any transaction.
func (s *AuditedService[T]) resolveOwner(ctx context.Context, pubID, hint string) (string, error) {
	if s.policy.SelfOwned {
		return pubID, nil
	}
	if hint != "" {
		return hint, nil
	}
	current, err := s.repo.Get(ctx, pubID)
	if err != nil {
		return "", s.normalizeGetErr(err, pubID)
	}
	return current.OwnerPubID(), nil
}

// lockForMutation loads the live row inside the transaction and checks that
// it still belongs to the authorized owner and matches the precondition.
func (s *AuditedService[T]) lockForMutation(ctx context.Context, pubID, owner string, expected *time.Time) (T, error) {
	current, err := s.repo.GetForUpdate(ctx, pubID)
	if err != nil {
		var zero T
		return zero, s.normalizeGetErr(err, pubID)
	}
	if current.OwnerPubID() != owner {
		var zero T
		return zero, apperror.NewForbidden("You do not have permission to edit this record").
			WithDetail("owner", owner)
	}
	if expected != nil && !current.Base().UpdatedAt.Equal(expected.UTC()) {
		var zero T
		return zero, apperror.NewConcurrentModification(s.entityName, pubID).
			WithDetail("updatedAt", current.Base().UpdatedAt)
	}
	return current, nil
}

func (s *AuditedService[T]) rejectDuplicates(ctx context.Context, e T) error {
	if !e.Base().IsActive.Bool() {
		return nil
	}
	dups, err := s.repo.FindDuplicates(ctx, e, e.Base().PubID)
	if err != nil {
		return fmt.Errorf("check duplicates %s: %w", s.entityName, err)
	}
	if len(dups) > 0 {
		return apperror.NewDuplicate(s.entityName, dups)
	}
	return nil
}

func (s *AuditedService[T]) load(ctx context.Context, pubID string) (T, error) {
	var zero T
	if !id.IsPubID(pubID) {
		return zero, apperror.NewNotFound(s.entityName, pubID)
	}

	tag := RecordTag(s.entityName, pubID).String()
	var gen uint64
	if s.readCache != nil {
		if v, ok := s.readCache.Get(tag); ok {
			if e, ok := v.(T); ok {
				return e, nil
			}
		}
		gen = s.readCache.Generation()
	}

	e, err := s.repo.Get(ctx, pubID)
	if err != nil {
		return zero, s.normalizeGetErr(err, pubID)
	}
	if s.readCache != nil && !s.readCache.Add(tag, e, gen) {
		logger.Debug(ctx, "read cache fill skipped after invalidation", "entity", s.entityName, "id", pubID)
	}
	return e, nil
}

func (s *AuditedService[T]) normalizeGetErr(err error, pubID string) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, pubID)
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.entityName).WithDetail("id", pubID)
}

// afterCommit runs post-commit hooks and invalidations. Failures are logged only.
func (s *AuditedService[T]) afterCommit(ctx context.Context, event HookEvent, e T, target string) {
	if err := s.hooks.Run(ctx, event, e); err != nil {
		logger.Warn(ctx, "post-commit hook failed", "entity", s.entityName, "event", event, "error", err)
	}

	keys := []CacheKey{
		RecordTag(s.entityName, e.Base().PubID),
		OwnerTag(s.entityName, e.OwnerPubID()),
	}
	if target != "" {
		key, err := ParseCacheKey(target)
		if err != nil {
			logger.Warn(ctx, "invalid revalidation target", "target", target, "error", err)
		} else {
			keys = append(keys, key)
		}
	}

	for _, key := range keys {
		if err := s.invalidator.Invalidate(ctx, key); err != nil {
			logger.Warn(ctx, "cache invalidation failed", "entity", s.entityName, "key", key.String(), "error", err)
		}
	}
}

// begin opens a span and returns a finisher that records the outcome.
func (s *AuditedService[T]) begin(ctx context.Context, op string) (context.Context, func(error)) {
	started := time.Now()
	ctx, span := tracer.Start(ctx, s.entityName+"."+op,
		trace.WithAttributes(attribute.String("entity", s.entityName)))

	return ctx, func(err error) {
		outcome := Outcome(err)
		span.SetAttributes(attribute.String("outcome", outcome))
		if err != nil {
			span.RecordError(err)
			if outcome == "error" {
				span.SetStatus(codes.Error, "mutation failed")
			}
		}
		span.End()

		if s.observer != nil {
			s.observer.ObserveMutation(s.entityName, op, outcome, time.Since(started))
		}
		if outcome == "error" {
			logger.Error(ctx, "mutation failed", "entity", s.entityName, "operation", op, "error", err)
		}
	}
}

// Outcome classifies an error for metrics and logs.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	appErr, ok := apperror.AsAppError(err)
	if !ok {
		return "error"
	}
	switch appErr.Code {
	case apperror.CodeValidation:
		return "validation"
	case apperror.CodeUnauthorized, apperror.CodeForbidden:
		return "forbidden"
	case apperror.CodeDuplicate, apperror.CodeConflict, apperror.CodeConcurrentModification:
		return "conflict"
	case apperror.CodeNotFound:
		return "not_found"
	default:
		return "error"
	}
}

func grantedOwners(caller security.Caller) []string {
	owners := make([]string, 0, len(caller.Grants))
	for owner, roles := range caller.Grants {
		if roles.Has(security.RoleView) {
			owners = append(owners, owner)
		}
	}
	return owners
}

func isNil[T any](v T) bool {
	rv := reflect.ValueOf(any(v))
	return !rv.IsValid() || (rv.Kind() == reflect.Ptr && rv.IsNil())
}

// ServiceDeps bundles the collaborators shared by every entity service.
type ServiceDeps struct {
	TxManager   tx.Manager
	Invalidator Invalidator
	ReadCache   ReadCache
	Observer    MutationObserver
}

// NewServiceFromDeps creates an audited service from shared collaborators.
func NewServiceFromDeps[T entity.Record[T]](deps ServiceDeps, repo AuditedRepository[T], entityName string, policy Policy) *AuditedService[T] {
	return NewAuditedService(AuditedServiceConfig[T]{
		Repo:        repo,
		TxManager:   deps.TxManager,
		Invalidator: deps.Invalidator,
		ReadCache:   deps.ReadCache,
		Observer:    deps.Observer,
		Policy:      policy,
		EntityName:  entityName,
	})
}
