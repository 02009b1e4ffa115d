package uow

import (
	"context"
	"reflect"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Repository reads and stages writes of entity type E within one unit of
// work. Obtain it with Repo.
type Repository[E any] struct {
	uow  *UnitOfWork
	meta *entityMeta
}

// GetByID loads the entity with the given key or returns ErrNotFound.
func (r *Repository[E]) GetByID(ctx context.Context, id any) (*E, error) {
	return getByID[E](ctx, r.uow, r.meta, r.meta.columns, id)
}

// GetAll loads every entity ordered by key.
func (r *Repository[E]) GetAll(ctx context.Context) ([]E, error) {
	return selectAll[E](ctx, r.uow, r.meta, r.meta.columns, Predicate{})
}

// Find loads the entities matching p ordered by key.
func (r *Repository[E]) Find(ctx context.Context, p Predicate) ([]E, error) {
	return selectAll[E](ctx, r.uow, r.meta, r.meta.columns, p)
}

// Add stages an insert of e.
func (r *Repository[E]) Add(e *E) error {
	return r.stage(changeInsert, e)
}

// Update stages an update of every mapped column of e, matched by key.
func (r *Repository[E]) Update(e *E) error {
	return r.stage(changeUpdate, e)
}

// Remove stages a delete of e, matched by key.
func (r *Repository[E]) Remove(e *E) error {
	return r.stage(changeDelete, e)
}

func (r *Repository[E]) stage(kind changeKind, e *E) error {
	if e == nil {
		return ErrInvalidEntity
	}
	return r.uow.stage(change{kind: kind, meta: r.meta, entity: e})
}

// GetByIDAs loads a single row of the repository's table as projection P,
// selecting only the columns P maps. It returns ErrNotFound if no row has
// the key.
//
//	summary, err := uow.GetByIDAs[ProductSummary](ctx, repo, id)
func GetByIDAs[P, E any](ctx context.Context, r *Repository[E], id any) (*P, error) {
	cols, err := r.meta.projection(reflect.TypeFor[P]())
	if err != nil {
		return nil, err
	}
	return getByID[P](ctx, r.uow, r.meta, cols, id)
}

// GetAllAs loads every row as projection P ordered by key.
func GetAllAs[P, E any](ctx context.Context, r *Repository[E]) ([]P, error) {
	return FindAs[P](ctx, r, Predicate{})
}

// FindAs loads the rows matching p as projection P ordered by key.
func FindAs[P, E any](ctx context.Context, r *Repository[E], p Predicate) ([]P, error) {
	cols, err := r.meta.projection(reflect.TypeFor[P]())
	if err != nil {
		return nil, err
	}
	return selectAll[P](ctx, r.uow, r.meta, cols, p)
}

func getByID[T any](ctx context.Context, u *UnitOfWork, meta *entityMeta, cols []string, id any) (*T, error) {
	query := selectSQL(meta, cols) + " WHERE " + meta.key + " = ?"

	var dest T
	err := u.read(ctx, func(tx *sqlx.Tx) error {
		return tx.GetContext(ctx, &dest, tx.Rebind(query), id)
	})
	if err != nil {
		return nil, err
	}
	return &dest, nil
}

func selectAll[T any](ctx context.Context, u *UnitOfWork, meta *entityMeta, cols []string, p Predicate) ([]T, error) {
	where, args, err := p.build()
	if err != nil {
		return nil, err
	}

	query := selectSQL(meta, cols)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY " + meta.key

	dest := []T{}
	err = u.read(ctx, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &dest, tx.Rebind(query), args...)
	})
	if err != nil {
		return nil, err
	}
	return dest, nil
}

func selectSQL(meta *entityMeta, cols []string) string {
	if len(cols) == len(meta.columns) {
		return meta.selectSQL
	}
	return "SELECT " + strings.Join(cols, ", ") + " FROM " + meta.table
}
