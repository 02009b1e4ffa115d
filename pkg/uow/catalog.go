package uow

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
)

// Mapping binds an entity type to its table. Key names the primary key
// column and defaults to "id". Version, when set, names an integer column
// used for optimistic locking: updates and deletes match it and updates
// increment it, so a write based on a stale read affects no row and fails
// the commit with tenantdb.ErrPersistenceConflict.
type Mapping struct {
	Table   string
	Key     string
	Version string
}

// Catalog lists the entity types a module persists. It is filled once at
// startup and read concurrently afterwards.
type Catalog struct {
	mu       sync.RWMutex
	entities map[reflect.Type]*entityMeta
}

type entityMeta struct {
	typ     reflect.Type
	table   string
	key     string
	version string
	columns []string

	selectSQL string
	insertSQL string
	updateSQL string
	deleteSQL string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entities: make(map[reflect.Type]*entityMeta)}
}

// Register adds entity type E to the catalog. It panics if E is not a
// struct, the table is empty or the key column is not mapped on E, since
// those are wiring mistakes caught at startup.
func Register[E any](c *Catalog, m Mapping) {
	t := reflect.TypeFor[E]()
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("uow: register %s: entity must be a struct", t))
	}
	if m.Table == "" {
		panic(fmt.Sprintf("uow: register %s: empty table name", t))
	}
	if m.Key == "" {
		m.Key = "id"
	}

	cols := columnsOf(t)
	if !slices.Contains(cols, m.Key) {
		panic(fmt.Sprintf("uow: register %s: key column %q is not mapped", t, m.Key))
	}
	if m.Version != "" {
		fi := mapper.TypeMap(t).GetByPath(m.Version)
		if fi == nil || !slices.Contains(cols, m.Version) {
			panic(fmt.Sprintf("uow: register %s: version column %q is not mapped", t, m.Version))
		}
		switch fi.Field.Type.Kind() {
		case reflect.Int, reflect.Int32, reflect.Int64:
		default:
			panic(fmt.Sprintf("uow: register %s: version column %q must be a signed integer", t, m.Version))
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entities[t] = newEntityMeta(t, m, cols)
}

func (c *Catalog) lookup(t reflect.Type) (*entityMeta, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	meta, ok := c.entities[t]
	return meta, ok
}

func newEntityMeta(t reflect.Type, m Mapping, cols []string) *entityMeta {
	named := make([]string, len(cols))
	sets := make([]string, 0, len(cols))
	for i, col := range cols {
		named[i] = ":" + col
		switch col {
		case m.Key:
		case m.Version:
			sets = append(sets, col+" = "+col+" + 1")
		default:
			sets = append(sets, col+" = :"+col)
		}
	}

	updateWhere := fmt.Sprintf("%s = :%s", m.Key, m.Key)
	deleteWhere := m.Key + " = ?"
	if m.Version != "" {
		updateWhere += fmt.Sprintf(" AND %s = :%s", m.Version, m.Version)
		deleteWhere += " AND " + m.Version + " = ?"
	}

	return &entityMeta{
		typ:       t,
		table:     m.Table,
		key:       m.Key,
		version:   m.Version,
		columns:   cols,
		selectSQL: "SELECT " + strings.Join(cols, ", ") + " FROM " + m.Table,
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			m.Table, strings.Join(cols, ", "), strings.Join(named, ", ")),
		updateSQL: fmt.Sprintf("UPDATE %s SET %s WHERE %s", m.Table, strings.Join(sets, ", "), updateWhere),
		deleteSQL: fmt.Sprintf("DELETE FROM %s WHERE %s", m.Table, deleteWhere),
	}
}

// deleteArgs returns the key, followed by the version when the entity is versioned.
func (m *entityMeta) deleteArgs(entity any) []any {
	if m.version == "" {
		return []any{m.keyOf(entity)}
	}
	v := reflect.Indirect(reflect.ValueOf(entity))
	return []any{m.keyOf(entity), mapper.FieldByName(v, m.version).Interface()}
}

// bumpVersion mirrors the increment a committed update applied to the row.
func (m *entityMeta) bumpVersion(entity any) {
	if m.version == "" {
		return
	}
	f := mapper.FieldByName(reflect.Indirect(reflect.ValueOf(entity)), m.version)
	f.SetInt(f.Int() + 1)
}

// keyOf returns the primary key value of entity, which must be a non-nil
// pointer to the registered type.
func (m *entityMeta) keyOf(entity any) any {
	v := reflect.Indirect(reflect.ValueOf(entity))
	return mapper.FieldByName(v, m.key).Interface()
}

// projection returns the columns of P, checking each is mapped on the entity.
func (m *entityMeta) projection(p reflect.Type) ([]string, error) {
	if p.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrInvalidProjection, p)
	}
	cols := columnsOf(p)
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: %s has no db columns", ErrInvalidProjection, p)
	}
	for _, col := range cols {
		if !slices.Contains(m.columns, col) {
			return nil, fmt.Errorf("%w: %s.%s is not a column of %s", ErrInvalidProjection, p, col, m.table)
		}
	}
	return cols, nil
}
