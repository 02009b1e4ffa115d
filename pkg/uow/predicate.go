package uow

import (
	"strings"

	"github.com/jmoiron/sqlx"
)

// Predicate is a conjunction of SQL conditions written with `?`
// placeholders. Slice arguments expand into IN lists.
//
//	uow.Where("stock > ?", 0).And("sku IN (?)", skus)
type Predicate struct {
	clauses []string
	args    []any
}

// Where starts a predicate.
func Where(clause string, args ...any) Predicate {
	return Predicate{}.And(clause, args...)
}

// And adds a condition. The receiver is not modified.
func (p Predicate) And(clause string, args ...any) Predicate {
	return Predicate{
		clauses: append(p.clauses[:len(p.clauses):len(p.clauses)], clause),
		args:    append(p.args[:len(p.args):len(p.args)], args...),
	}
}

// IsZero reports whether the predicate has no conditions.
func (p Predicate) IsZero() bool { return len(p.clauses) == 0 }

// build renders the WHERE body with driver-neutral placeholders.
func (p Predicate) build() (string, []any, error) {
	if p.IsZero() {
		return "", nil, nil
	}
	clause := "(" + strings.Join(p.clauses, ") AND (") + ")"
	return sqlx.In(clause, p.args...)
}
