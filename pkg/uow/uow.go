package uow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dmitrymomot/tenantdb/pkg/logger"
	"github.com/dmitrymomot/tenantdb/pkg/tenant"
	"github.com/dmitrymomot/tenantdb/pkg/tenantdb"
)

// Session is the tenant connection a unit of work runs on.
// *tenantdb.Session satisfies it for every schema.
type Session interface {
	TenantID() tenant.ID
	Module() string
	DB() *sqlx.DB
	Close() error
}

// State is the lifecycle position of a unit of work.
type State int

const (
	StateOpen State = iota
	StateCommitted
	StateRolledBack
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	case StateDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type changeKind int

const (
	changeInsert changeKind = iota
	changeUpdate
	changeDelete
)

type change struct {
	kind   changeKind
	meta   *entityMeta
	entity any
}

// UnitOfWork groups the reads and staged writes of one business operation
// against one tenant. Reads run inside a transaction begun on first use;
// staged writes are flushed in order by Commit. A unit of work is meant for
// a single goroutine; its methods are nonetheless safe to call concurrently.
type UnitOfWork struct {
	id      uuid.UUID
	sess    Session
	catalog *Catalog
	log     *slog.Logger
	metrics *tenantdb.Metrics

	mu       sync.Mutex
	state    State
	tx       *sqlx.Tx
	repos    map[reflect.Type]any
	changes  []change
	released bool
}

func newUnitOfWork(sess Session, catalog *Catalog, log *slog.Logger, metrics *tenantdb.Metrics) *UnitOfWork {
	id := uuid.New()
	return &UnitOfWork{
		id:      id,
		sess:    sess,
		catalog: catalog,
		log: log.With(
			logger.UnitOfWork(id.String()),
			logger.TenantID(sess.TenantID().String()),
		),
		metrics: metrics,
		state:   StateOpen,
		repos:   make(map[reflect.Type]any),
	}
}

// ID identifies the unit of work in logs.
func (u *UnitOfWork) ID() uuid.UUID { return u.id }

// TenantID returns the tenant every operation of u is confined to.
func (u *UnitOfWork) TenantID() tenant.ID { return u.sess.TenantID() }

// Module returns the persistence module u operates on.
func (u *UnitOfWork) Module() string { return u.sess.Module() }

// State returns the current lifecycle state.
func (u *UnitOfWork) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Pending returns the number of staged changes.
func (u *UnitOfWork) Pending() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.changes)
}

// Repo returns the repository for entity type E. Repeated calls on the same
// unit of work return the same instance.
func Repo[E any](u *UnitOfWork) (*Repository[E], error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state != StateOpen {
		return nil, ErrUnitOfWorkClosed
	}

	t := reflect.TypeFor[E]()
	if r, ok := u.repos[t]; ok {
		return r.(*Repository[E]), nil
	}

	meta, ok := u.catalog.lookup(t)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntityNotRegistered, t)
	}
	r := &Repository[E]{uow: u, meta: meta}
	u.repos[t] = r
	return r, nil
}

// Commit flushes the staged changes in staging order inside one transaction
// and returns the number of affected rows. On failure nothing is persisted,
// the unit of work moves to StateRolledBack and the error is classified as
// tenantdb.ErrPersistenceConflict or tenantdb.ErrPersistenceUnavailable where
// applicable. A cancelled ctx also releases the session.
func (u *UnitOfWork) Commit(ctx context.Context) (int64, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state != StateOpen {
		return 0, ErrUnitOfWorkClosed
	}

	start := time.Now()
	n, err := u.flush(ctx)
	if err != nil {
		u.rollbackTx()
		u.state = StateRolledBack
		u.changes = nil

		if ctxErr := ctx.Err(); ctxErr != nil {
			u.release()
			if !errors.Is(err, ctxErr) {
				err = errors.Join(ctxErr, err)
			}
		} else {
			err = tenantdb.Classify(err)
		}
		u.metrics.ObserveCommit(u.sess.Module(), err)
		u.log.WarnContext(ctx, "unit of work rolled back", logger.Error(err))
		return 0, err
	}

	u.state = StateCommitted
	u.changes = nil
	u.metrics.ObserveCommit(u.sess.Module(), nil)
	u.log.DebugContext(ctx, "unit of work committed",
		slog.Int64("rows", n),
		logger.Duration(time.Since(start)),
	)
	return n, nil
}

func (u *UnitOfWork) flush(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(u.changes) == 0 && u.tx == nil {
		return 0, nil
	}

	tx, err := u.transaction(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, c := range u.changes {
		n, err := applyChange(ctx, tx, c)
		if err != nil {
			return 0, err
		}
		total += n
	}

	u.tx = nil
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	for _, c := range u.changes {
		if c.kind == changeUpdate {
			c.meta.bumpVersion(c.entity)
		}
	}
	return total, nil
}

func applyChange(ctx context.Context, tx *sqlx.Tx, c change) (int64, error) {
	var (
		res sql.Result
		err error
	)
	switch c.kind {
	case changeInsert:
		res, err = tx.NamedExecContext(ctx, c.meta.insertSQL, c.entity)
	case changeUpdate:
		res, err = tx.NamedExecContext(ctx, c.meta.updateSQL, c.entity)
	case changeDelete:
		res, err = tx.ExecContext(ctx, tx.Rebind(c.meta.deleteSQL), c.meta.deleteArgs(c.entity)...)
	}
	if err != nil {
		return 0, fmt.Errorf("uow: flush %s: %w", c.meta.table, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 && c.kind != changeInsert {
		return 0, fmt.Errorf("%w: %s row %v changed concurrently",
			tenantdb.ErrPersistenceConflict, c.meta.table, c.meta.keyOf(c.entity))
	}
	return n, nil
}

// Rollback discards staged changes and aborts the transaction.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state != StateOpen {
		return ErrUnitOfWorkClosed
	}
	u.rollbackTx()
	u.state = StateRolledBack
	u.changes = nil
	u.log.DebugContext(ctx, "unit of work rolled back on request")
	return nil
}

// Dispose ends the unit of work: an open transaction is rolled back and the
// session is released. Failures are logged. Calling Dispose again has no
// effect, so it is safe to defer right after Begin.
func (u *UnitOfWork) Dispose() {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state == StateDisposed {
		return
	}
	u.rollbackTx()
	u.release()
	u.state = StateDisposed
	u.changes = nil
	clear(u.repos)
}

func (u *UnitOfWork) rollbackTx() {
	if u.tx == nil {
		return
	}
	tx := u.tx
	u.tx = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		u.log.Error("unit of work rollback failed", logger.Error(err))
	}
}

func (u *UnitOfWork) release() {
	if u.released {
		return
	}
	u.released = true
	if err := u.sess.Close(); err != nil {
		u.log.Error("tenant session close failed", logger.Error(err))
	}
}

// transaction returns the unit's transaction, beginning it on first use.
// The transaction outlives the context of the call that began it; each
// statement is bound to its own call's context instead. The caller holds u.mu.
func (u *UnitOfWork) transaction(ctx context.Context) (*sqlx.Tx, error) {
	if u.tx != nil {
		return u.tx, nil
	}
	tx, err := u.sess.DB().BeginTxx(context.WithoutCancel(ctx), nil)
	if err != nil {
		return nil, tenantdb.Classify(err)
	}
	u.tx = tx
	return tx, nil
}

// read runs fn inside the unit's transaction. A read interrupted by ctx
// aborts the unit of work and releases its session, like a cancelled Commit.
func (u *UnitOfWork) read(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state != StateOpen {
		return ErrUnitOfWorkClosed
	}

	err := ctx.Err()
	if err == nil {
		var tx *sqlx.Tx
		if tx, err = u.transaction(ctx); err == nil {
			err = fn(tx)
		}
	}
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		u.rollbackTx()
		u.release()
		u.state = StateRolledBack
		u.changes = nil
		if !errors.Is(err, ctxErr) {
			err = errors.Join(ctxErr, err)
		}
		u.log.WarnContext(ctx, "unit of work aborted by cancelled read", logger.Error(err))
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return tenantdb.Classify(err)
}

func (u *UnitOfWork) stage(c change) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state != StateOpen {
		return ErrUnitOfWorkClosed
	}
	u.changes = append(u.changes, c)
	return nil
}
