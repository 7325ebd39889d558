package table

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/nop-go/nop/codec"
	"github.com/nop-go/nop/format"
	"github.com/nop-go/nop/internal/options"
	"github.com/nop-go/nop/internal/siphash"
)

// entryField is the compiled plan for one Entry[X] struct field.
type entryField struct {
	index       []int
	id          uint64
	name        string
	coder       codec.Coder
	compression format.CompressionType
	reserved    int
}

// Schema is the reflect-once, cached derivation for a table struct type:
// its namespace hash and the compiled plan for each Entry field.
type Schema struct {
	typ           reflect.Type
	name          string
	namespaceHash uint64
	fields        []entryField
	byID          map[uint64]*entryField
	deprecated    map[uint64]bool
}

// schemaKey identifies a cached schema by struct type and table name.
type schemaKey struct {
	typ  reflect.Type
	name string
}

var schemas sync.Map // schemaKey -> *Schema

// DefineSchema derives (once per T and name, cached) and returns the table
// schema for T. name is hashed with SipHash-2-4 into the wire's namespace
// guard (spec §4.5); every field of T must be an Entry[X] tagged
// `nop:"id=N"`. A later call with the same T and name returns the cached
// schema and does not apply its opts.
func DefineSchema[T any](name string, opts ...Option) *Schema {
	t := reflect.TypeFor[T]()
	if s, ok := schemas.Load(schemaKey{typ: t, name: name}); ok {
		return s.(*Schema) //nolint:forcetypeassert
	}

	cfg := &schemaConfig{
		deprecated:       make(map[uint64]bool),
		compression:      format.CompressionNone,
		fieldCompression: make(map[string]format.CompressionType),
		fieldReserved:    make(map[string]int),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		panic(fmt.Sprintf("table: configuring schema for %s: %v", t, err))
	}

	schema := buildSchema(t, name, cfg)
	actual, _ := schemas.LoadOrStore(schemaKey{typ: t, name: name}, schema)
	return actual.(*Schema) //nolint:forcetypeassert
}

func buildSchema(t reflect.Type, name string, cfg *schemaConfig) *Schema {
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("table: %s is not a struct", t))
	}

	schema := &Schema{
		typ:           t,
		name:          name,
		namespaceHash: siphash.NamespaceHash(name),
		byID:          make(map[uint64]*entryField),
		deprecated:    cfg.deprecated,
	}

	for i := range t.NumField() {
		f := t.Field(i)
		if !isEntryShape(f.Type) {
			panic(fmt.Sprintf("table: %s.%s: not an Entry[T] field", t, f.Name))
		}

		id, err := parseEntryID(f.Tag.Get("nop"))
		if err != nil {
			panic(fmt.Sprintf("table: %s.%s: %v", t, f.Name, err))
		}

		if schema.byID[id] != nil {
			panic(fmt.Sprintf("table: %s: duplicate entry id %d on field %s", t, id, f.Name))
		}
		if cfg.deprecated[id] {
			panic(fmt.Sprintf("table: %s: entry id %d on field %s is marked deprecated", t, id, f.Name))
		}

		compression := cfg.compression
		if override, ok := cfg.fieldCompression[f.Name]; ok {
			compression = override
		}

		valueType := f.Type.Field(0).Type
		field := entryField{
			index:       f.Index,
			id:          id,
			name:        f.Name,
			coder:       codec.MustFor(valueType),
			compression: compression,
			reserved:    cfg.fieldReserved[f.Name],
		}

		schema.fields = append(schema.fields, field)
		schema.byID[id] = &schema.fields[len(schema.fields)-1]
	}

	return schema
}

// isEntryShape reports whether t has the {Value T; Present bool} shape of
// table.Entry[T]. Reflection can't recover T from a generic instantiation's
// name portably, so the schema derives entry plans from field shape instead.
func isEntryShape(t reflect.Type) bool {
	return t.Kind() == reflect.Struct &&
		t.NumField() == 2 &&
		t.Field(0).Name == "Value" &&
		t.Field(1).Name == "Present" &&
		t.Field(1).Type.Kind() == reflect.Bool
}
