package auth_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"healthops/internal/core/security"
	"healthops/internal/domain/auth"
	"healthops/internal/infrastructure/storage/sqldb"
)

const grantTable = "userGrant"

// GrantRepo implements auth.GrantRepository.
type GrantRepo struct {
	txm *sqldb.TxManager
}

// NewGrantRepo creates a new grant repository.
func NewGrantRepo(txm *sqldb.TxManager) *GrantRepo {
	return &GrantRepo{txm: txm}
}

var _ auth.GrantRepository = (*GrantRepo)(nil)

func sqlEq(col string, v any) squirrel.Eq {
	return squirrel.Eq{sqldb.Quote(col): v}
}

// Add inserts a grant, ignoring one that already exists.
func (r *GrantRepo) Add(ctx context.Context, g auth.Grant) error {
	query, args, err := r.txm.Dialect().Builder().
		Insert(sqldb.Quote(grantTable)).
		Columns(sqldb.QuoteAll([]string{"userId", "ownerPubId", "role", "createdAt", "createdBy"})...).
		Values(g.UserID, g.OwnerPubID, string(g.Role), g.CreatedAt, g.CreatedBy).
		Suffix(`ON CONFLICT ("userId", "ownerPubId", "role") DO NOTHING`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert grant: %w", err)
	}
	return nil
}

// Remove deletes a grant. Removing a missing grant is not an error.
func (r *GrantRepo) Remove(ctx context.Context, userID, ownerPubID string, role security.Role) error {
	query, args, err := r.txm.Dialect().Builder().
		Delete(sqldb.Quote(grantTable)).
		Where(sqlEq("userId", userID)).
		Where(sqlEq("ownerPubId", ownerPubID)).
		Where(sqlEq("role", string(role))).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete grant: %w", err)
	}
	return nil
}

// Load returns every grant held by userID.
func (r *GrantRepo) Load(ctx context.Context, userID string) (security.Grants, error) {
	query, args, err := r.txm.Dialect().Builder().
		Select(sqldb.QuoteAll([]string{"ownerPubId", "role"})...).
		From(sqldb.Quote(grantTable)).
		Where(sqlEq("userId", userID)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.txm.GetQuerier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query grants: %w", err)
	}
	defer rows.Close()

	grants := make(security.Grants)
	for rows.Next() {
		var owner, role string
		if err := rows.Scan(&owner, &role); err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		parsed, err := security.ParseRole(role)
		if err != nil {
			continue
		}
		grants.Add(owner, parsed)
	}
	return grants, rows.Err()
}
