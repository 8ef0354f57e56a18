// Package sqldb provides the relational storage layer: connection setup for
// PostgreSQL (pgx) and SQLite (modernc), a context-carried transaction
// manager, schema migrations and reflection helpers over `db` tags.
package sqldb

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

// Dialect identifies the SQL flavour of the connected store.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect maps a configured driver name onto a Dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "pgx", "postgres", "postgresql":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite"
}

// GooseDialect is the dialect name understood by goose.
func (d Dialect) GooseDialect() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite3"
}

// Builder returns a squirrel builder with the dialect's placeholder format.
func (d Dialect) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(d.Placeholder())
}

// Placeholder returns the bind-parameter style.
func (d Dialect) Placeholder() squirrel.PlaceholderFormat {
	if d == Postgres {
		return squirrel.Dollar
	}
	return squirrel.Question
}

// Rebind rewrites a query written with `?` placeholders for the dialect.
func (d Dialect) Rebind(query string) (string, error) {
	return d.Placeholder().ReplacePlaceholders(query)
}

// SupportsRowLock reports whether SELECT ... FOR UPDATE is available.
// SQLite serializes writers at the database level instead.
func (d Dialect) SupportsRowLock() bool {
	return d == Postgres
}

// SupportsStatementTimeout reports whether SET LOCAL statement_timeout applies.
func (d Dialect) SupportsStatementTimeout() bool {
	return d == Postgres
}

// ContainsFold builds a case-insensitive substring match on col.
func (d Dialect) ContainsFold(col string, value any) squirrel.Sqlizer {
	pattern := fmt.Sprintf("%%%v%%", value)
	if d == Postgres {
		return squirrel.ILike{col: pattern}
	}
	// LIKE is case-insensitive for ASCII in SQLite.
	return squirrel.Like{col: pattern}
}

// NotContainsFold is the negation of ContainsFold.
func (d Dialect) NotContainsFold(col string, value any) squirrel.Sqlizer {
	pattern := fmt.Sprintf("%%%v%%", value)
	if d == Postgres {
		return squirrel.NotILike{col: pattern}
	}
	return squirrel.NotLike{col: pattern}
}

// Quote wraps an identifier in double quotes so camelCase names survive
// PostgreSQL case folding. Embedded quotes are doubled.
func Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// QuoteAll quotes every identifier in cols.
func QuoteAll(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = Quote(c)
	}
	return out
}
