// Package auth_repo provides SQL implementations for the auth repositories.
package auth_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/sqlscan"

	"healthops/internal/core/apperror"
	"healthops/internal/domain/auth"
	"healthops/internal/infrastructure/storage/sqldb"
)

const userTable = "appUser"

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	txm  *sqldb.TxManager
	cols []string
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txm *sqldb.TxManager) *UserRepo {
	return &UserRepo{txm: txm, cols: sqldb.ExtractDBColumns[auth.User]()}
}

var _ auth.UserRepository = (*UserRepo)(nil)

// Create creates a new user.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	data := sqldb.StructToMap(user)
	values := make(map[string]any, len(data))
	for col, v := range data {
		values[sqldb.Quote(col)] = v
	}

	query, args, err := r.txm.Dialect().Builder().Insert(sqldb.Quote(userTable)).SetMap(values).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).ExecContext(ctx, query, args...); err != nil {
		if sqldb.IsUniqueViolation(err) {
			return apperror.NewConflict("email already registered").WithDetail("email", user.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID retrieves user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID string) (*auth.User, error) {
	return r.getBy(ctx, "userId", userID)
}

// GetByEmail retrieves user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepo) getBy(ctx context.Context, col, value string) (*auth.User, error) {
	query, args, err := r.txm.Dialect().Builder().
		Select(sqldb.QuoteAll(r.cols)...).
		From(sqldb.Quote(userTable)).
		Where(sqlEq(col, value)).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var user auth.User
	if err := sqlscan.Get(ctx, r.txm.GetQuerier(ctx), &user, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", value)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}
