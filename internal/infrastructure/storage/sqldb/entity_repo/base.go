// Package entity_repo provides SQL implementations of the audited repositories.
// One generic base covers every entity; per-entity files only declare tables,
// owner columns and unique columns.
package entity_repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"healthops/internal/core/apperror"
	"healthops/internal/core/entity"
	"healthops/internal/core/id"
	"healthops/internal/domain"
	"healthops/internal/domain/filter"
	"healthops/internal/infrastructure/storage/sqldb"
)

// Config describes the table layout of one audited entity.
type Config[T entity.Entity] struct {
	// Table is the live table; the history table is Table + "Hist".
	Table string
	// EntityName is used in error messages.
	EntityName string
	// OwnerColumn scopes uniqueness and is immutable after insert.
	// Empty for self-owned entities.
	OwnerColumn string
	// UniqueColumns must not repeat among the owner's active rows.
	UniqueColumns []string
	// SearchColumns are matched by ListFilter.Search.
	SearchColumns []string
	// DefaultOrder is used when ListFilter.OrderBy is empty.
	DefaultOrder string
	// NewFn returns an empty entity to scan into.
	NewFn func() T
}

// immutable columns are never part of an UPDATE.
var immutable = map[string]bool{"pubId": true, "createdAt": true, "createdBy": true}

// BaseAuditedRepo implements domain.AuditedRepository over database/sql.
type BaseAuditedRepo[T entity.Entity] struct {
	txm         *sqldb.TxManager
	cfg         Config[T]
	histTable   string
	cols        []string
	mutableCols []string
	validCols   map[string]bool
}

// NewBaseAuditedRepo creates a repository for the entity described by cfg.
// Columns are taken from the `db` tags of the entity struct.
func NewBaseAuditedRepo[T entity.Entity](txm *sqldb.TxManager, cfg Config[T]) *BaseAuditedRepo[T] {
	cols := sqldb.ExtractDBColumns[T]()

	mutable := make([]string, 0, len(cols))
	valid := make(map[string]bool, len(cols))
	for _, c := range cols {
		valid[c] = true
		if immutable[c] || c == cfg.OwnerColumn {
			continue
		}
		mutable = append(mutable, c)
	}
	if cfg.DefaultOrder == "" {
		cfg.DefaultOrder = "createdAt"
	}

	return &BaseAuditedRepo[T]{
		txm:         txm,
		cfg:         cfg,
		histTable:   cfg.Table + "Hist",
		cols:        cols,
		mutableCols: mutable,
		validCols:   valid,
	}
}

// Table returns the live table name.
func (r *BaseAuditedRepo[T]) Table() string { return r.cfg.Table }

// HistoryTable returns the history table name.
func (r *BaseAuditedRepo[T]) HistoryTable() string { return r.histTable }

// Columns returns the live columns in declaration order.
func (r *BaseAuditedRepo[T]) Columns() []string { return r.cols }

// OwnerColumn returns the owner column, empty for self-owned entities.
func (r *BaseAuditedRepo[T]) OwnerColumn() string { return r.cfg.OwnerColumn }

// UniqueColumns returns the columns checked by FindDuplicates.
func (r *BaseAuditedRepo[T]) UniqueColumns() []string { return r.cfg.UniqueColumns }

// Builder returns a squirrel builder for the connected dialect.
func (r *BaseAuditedRepo[T]) Builder() squirrel.StatementBuilderType {
	return r.txm.Dialect().Builder()
}

func (r *BaseAuditedRepo[T]) querier(ctx context.Context) sqldb.Querier {
	return r.txm.GetQuerier(ctx)
}

func (r *BaseAuditedRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(sqldb.QuoteAll(r.cols)...).
		From(sqldb.Quote(r.cfg.Table))
}

func eq(col string, v any) squirrel.Eq {
	return squirrel.Eq{sqldb.Quote(col): v}
}

// Get retrieves the live row by pubId.
func (r *BaseAuditedRepo[T]) Get(ctx context.Context, pubID string) (T, error) {
	return r.findOne(ctx, r.baseSelect().Where(eq("pubId", pubID)).Limit(1), pubID)
}

// GetForUpdate retrieves the live row and locks it on PostgreSQL.
func (r *BaseAuditedRepo[T]) GetForUpdate(ctx context.Context, pubID string) (T, error) {
	q := r.baseSelect().Where(eq("pubId", pubID)).Limit(1)
	if r.txm.Dialect().SupportsRowLock() {
		q = q.Suffix("FOR UPDATE")
	}
	return r.findOne(ctx, q, pubID)
}

func (r *BaseAuditedRepo[T]) findOne(ctx context.Context, q squirrel.SelectBuilder, pubID string) (T, error) {
	e := r.cfg.NewFn()

	query, args, err := q.ToSql()
	if err != nil {
		return e, fmt.Errorf("build query: %w", err)
	}

	if err := sqlscan.Get(ctx, r.querier(ctx), e, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			var zero T
			return zero, apperror.NewNotFound(r.cfg.EntityName, pubID)
		}
		return e, fmt.Errorf("get %s: %w", r.cfg.Table, err)
	}
	return e, nil
}

// FindDuplicates returns every unique column of e already used by another
// active row of the same owner. Nil values never collide.
func (r *BaseAuditedRepo[T]) FindDuplicates(ctx context.Context, e T, excludePubID string) ([]string, error) {
	data := sqldb.StructToMap(e)

	var dups []string
	for _, col := range r.cfg.UniqueColumns {
		val, ok := data[col]
		if !ok || isNilValue(val) {
			continue
		}

		q := r.Builder().
			Select("1").
			From(sqldb.Quote(r.cfg.Table)).
			Where(eq(col, val)).
			Where(eq("isActive", 1)).
			Limit(1)
		if r.cfg.OwnerColumn != "" && col != r.cfg.OwnerColumn {
			q = q.Where(eq(r.cfg.OwnerColumn, e.OwnerPubID()))
		}
		if excludePubID != "" {
			q = q.Where(squirrel.NotEq{sqldb.Quote("pubId"): excludePubID})
		}

		query, args, err := q.ToSql()
		if err != nil {
			return nil, fmt.Errorf("build duplicate check: %w", err)
		}

		var one int
		err = r.querier(ctx).QueryRowContext(ctx, query, args...).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("duplicate check %s.%s: %w", r.cfg.Table, col, err)
		}
		dups = append(dups, col)
	}

	sort.Strings(dups)
	return dups, nil
}

// Insert adds a new live row using the entity's "db" tags.
func (r *BaseAuditedRepo[T]) Insert(ctx context.Context, e T) error {
	data := sqldb.StructToMap(e)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	values := make(map[string]any, len(r.cols))
	for _, col := range r.cols {
		values[sqldb.Quote(col)] = data[col]
	}

	query, args, err := r.Builder().Insert(sqldb.Quote(r.cfg.Table)).SetMap(values).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).ExecContext(ctx, query, args...); err != nil {
		return r.translateWriteErr(err)
	}
	return nil
}

// Snapshot copies every live column of current into the history table.
func (r *BaseAuditedRepo[T]) Snapshot(ctx context.Context, current T, at time.Time) error {
	data := sqldb.StructToMap(current)

	values := make(map[string]any, len(r.cols)+2)
	for _, col := range r.cols {
		values[sqldb.Quote(col)] = data[col]
	}
	values[sqldb.Quote("histId")] = id.NewHistID(at)
	values[sqldb.Quote("histAddedAt")] = at

	query, args, err := r.Builder().Insert(sqldb.Quote(r.histTable)).SetMap(values).ToSql()
	if err != nil {
		return fmt.Errorf("build snapshot: %w", err)
	}

	if _, err := r.querier(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", r.histTable, err)
	}
	return nil
}

// Update writes every mutable column of e to its live row.
func (r *BaseAuditedRepo[T]) Update(ctx context.Context, e T) error {
	data := sqldb.StructToMap(e)

	values := make(map[string]any, len(r.mutableCols))
	for _, col := range r.mutableCols {
		values[sqldb.Quote(col)] = data[col]
	}

	pubID := e.Base().PubID
	query, args, err := r.Builder().
		Update(sqldb.Quote(r.cfg.Table)).
		SetMap(values).
		Where(eq("pubId", pubID)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := r.querier(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return r.translateWriteErr(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperror.NewNotFound(r.cfg.EntityName, pubID)
	}
	return nil
}

// List retrieves live rows with filtering and pagination.
func (r *BaseAuditedRepo[T]) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{
		Items:  []T{},
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	q := r.baseSelect()
	if r.cfg.OwnerColumn != "" && f.OwnerPubID != "" {
		q = q.Where(eq(r.cfg.OwnerColumn, f.OwnerPubID))
	}
	if f.PubIDs != nil {
		q = q.Where(eq("pubId", f.PubIDs))
	}
	if !f.IncludeInactive {
		q = q.Where(eq("isActive", 1))
	}
	if f.Search != "" && len(r.cfg.SearchColumns) > 0 {
		or := squirrel.Or{}
		for _, col := range r.cfg.SearchColumns {
			or = append(or, r.txm.Dialect().ContainsFold(sqldb.Quote(col), f.Search))
		}
		q = q.Where(or)
	}

	var err error
	q, err = r.applyAdvancedFilters(q, f.AdvancedFilters)
	if err != nil {
		return result, err
	}

	countSQL, countArgs, err := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub").
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := r.querier(ctx).QueryRowContext(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(f.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy, sqldb.Quote("pubId"))

	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := sqlscan.Select(ctx, r.querier(ctx), &result.Items, query, args...); err != nil {
		return result, fmt.Errorf("list %s: %w", r.cfg.Table, err)
	}
	return result, nil
}

// History returns the snapshots of one record ordered by histAddedAt.
func (r *BaseAuditedRepo[T]) History(ctx context.Context, pubID string) ([]domain.HistoryEntry[T], error) {
	q := r.historySelect().
		Where(eq("pubId", pubID)).
		OrderBy(sqldb.Quote("histAddedAt"), sqldb.Quote("histId"))
	return r.scanHistory(ctx, q)
}

// PendingHistory returns up to limit history rows, of every record, that
// have not been archived yet, in histId order.
func (r *BaseAuditedRepo[T]) PendingHistory(ctx context.Context, limit int) ([]domain.HistoryEntry[T], error) {
	q := r.historySelect().
		Where(eq("histArchivedAt", nil)).
		OrderBy(sqldb.Quote("histId")).
		Limit(uint64(limit))
	return r.scanHistory(ctx, q)
}

// MarkArchived stamps the given history rows as archived at at and returns
// how many of them were still pending.
func (r *BaseAuditedRepo[T]) MarkArchived(ctx context.Context, histIDs []string, at time.Time) (int64, error) {
	if len(histIDs) == 0 {
		return 0, nil
	}
	query, args, err := r.Builder().
		Update(sqldb.Quote(r.histTable)).
		Set(sqldb.Quote("histArchivedAt"), at).
		Where(eq("histId", histIDs)).
		Where(eq("histArchivedAt", nil)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build mark archived: %w", err)
	}

	res, err := r.querier(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("mark archived %s: %w", r.histTable, err)
	}
	return res.RowsAffected()
}

func (r *BaseAuditedRepo[T]) historySelect() squirrel.SelectBuilder {
	selectCols := append([]string{"histId", "histAddedAt"}, r.cols...)
	return r.Builder().
		Select(sqldb.QuoteAll(selectCols)...).
		From(sqldb.Quote(r.histTable))
}

// scanHistory scans the envelope columns, then the snapshot, positionally.
func (r *BaseAuditedRepo[T]) scanHistory(ctx context.Context, q squirrel.SelectBuilder) ([]domain.HistoryEntry[T], error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history query: %w", err)
	}

	rows, err := r.querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", r.histTable, err)
	}
	defer rows.Close()

	entries := make([]domain.HistoryEntry[T], 0)
	for rows.Next() {
		entry := domain.HistoryEntry[T]{Snapshot: r.cfg.NewFn()}
		dest, err := sqldb.FieldPointers(entry.Snapshot, r.cols)
		if err != nil {
			return nil, err
		}
		dest = append([]any{&entry.HistID, &entry.HistAddedAt}, dest...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.histTable, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", r.histTable, err)
	}
	return entries, nil
}

// applyAdvancedFilters applies client-supplied column conditions.
func (r *BaseAuditedRepo[T]) applyAdvancedFilters(q squirrel.SelectBuilder, filters []filter.Item) (squirrel.SelectBuilder, error) {
	dialect := r.txm.Dialect()
	for _, item := range filters {
		// Whitelist columns for SQL injection protection
		if !r.validCols[item.Field] {
			return q, apperror.NewValidation(fmt.Sprintf("invalid filter column: %s", item.Field))
		}
		if err := item.Validate(); err != nil {
			return q, apperror.NewValidation(err.Error())
		}

		col := sqldb.Quote(item.Field)
		switch item.Operator {
		case filter.Equal, filter.InList:
			q = q.Where(squirrel.Eq{col: item.Value})
		case filter.NotEqual, filter.NotInList:
			q = q.Where(squirrel.NotEq{col: item.Value})
		case filter.Less:
			q = q.Where(squirrel.Lt{col: item.Value})
		case filter.LessOrEqual:
			q = q.Where(squirrel.LtOrEq{col: item.Value})
		case filter.Greater:
			q = q.Where(squirrel.Gt{col: item.Value})
		case filter.GreaterOrEqual:
			q = q.Where(squirrel.GtOrEq{col: item.Value})
		case filter.Contains:
			q = q.Where(dialect.ContainsFold(col, item.Value))
		case filter.NotContains:
			q = q.Where(dialect.NotContainsFold(col, item.Value))
		case filter.IsNull:
			q = q.Where(squirrel.Eq{col: nil})
		case filter.IsNotNull:
			q = q.Where(squirrel.NotEq{col: nil})
		}
	}
	return q, nil
}

// parseOrderBy turns "name" / "-name" into a quoted ORDER BY clause.
func (r *BaseAuditedRepo[T]) parseOrderBy(orderBy string) (string, error) {
	if orderBy == "" {
		orderBy = r.cfg.DefaultOrder
	}
	dir := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		dir = "DESC"
		field = orderBy[1:]
	}
	if !r.validCols[field] {
		return "", apperror.NewValidation(fmt.Sprintf("invalid sort column: %s", field))
	}
	return sqldb.Quote(field) + " " + dir, nil
}

// translateWriteErr maps constraint violations that slipped past the
// application checks onto user-facing errors.
func (r *BaseAuditedRepo[T]) translateWriteErr(err error) error {
	switch {
	case sqldb.IsUniqueViolation(err):
		return apperror.NewConflict(fmt.Sprintf("A matching %s was saved at the same time. Please reload and try again.", r.cfg.EntityName)).
			WithCause(err)
	case sqldb.IsForeignKeyViolation(err):
		field := r.cfg.OwnerColumn
		if field == "" {
			field = "_"
		}
		return apperror.NewValidationFields(map[string]string{field: "refers to a record that does not exist"}).
			WithCause(err)
	default:
		return fmt.Errorf("write %s: %w", r.cfg.Table, err)
	}
}

func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}
