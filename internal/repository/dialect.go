package repository

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect selects placeholder syntax for the target database.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// rebind rewrites '?' placeholders as $1, $2, ... for PostgreSQL.
// Queries in this package never contain a literal '?'.
func rebind(d Dialect, query string) string {
	if d != DialectPostgres {
		return query
	}
	var (
		b strings.Builder
		n int
	)
	b.Grow(len(query) + 8)
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// uniqueViolation reports whether err is a unique constraint failure and,
// if so, which account column caused it.
func uniqueViolation(err error) (field string, ok bool) {
	var (
		liteErr *sqlite.Error
		pgErr   *pgconn.PgError
		detail  string
	)
	switch {
	case errors.As(err, &liteErr):
		if liteErr.Code() != sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return "", false
		}
		detail = liteErr.Error()
	case errors.As(err, &pgErr):
		if pgErr.Code != pgerrcode.UniqueViolation {
			return "", false
		}
		detail = pgErr.ConstraintName
	default:
		return "", false
	}
	if strings.Contains(detail, "email") {
		return "email", true
	}
	return "username", true
}
