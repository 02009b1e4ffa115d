package uow

import (
	"reflect"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx/reflectx"
)

// mapper matches the name mapping sqlx applies when scanning rows.
var mapper = reflectx.NewMapperFunc("db", strings.ToLower)

var columnCache sync.Map // reflect.Type -> []string

// columnsOf lists the db-tagged columns of struct type t in field order.
// Fields of embedded structs are promoted.
func columnsOf(t reflect.Type) []string {
	if cols, ok := columnCache.Load(t); ok {
		return cols.([]string)
	}
	var cols []string
	collectColumns(mapper.TypeMap(t).Tree.Children, &cols)
	columnCache.Store(t, cols)
	return cols
}

func collectColumns(fields []*reflectx.FieldInfo, cols *[]string) {
	for _, fi := range fields {
		if fi == nil {
			continue
		}
		if fi.Embedded {
			collectColumns(fi.Children, cols)
			continue
		}
		if _, tagged := fi.Field.Tag.Lookup("db"); tagged {
			*cols = append(*cols, fi.Path)
		}
	}
}
