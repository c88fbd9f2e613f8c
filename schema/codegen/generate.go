package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/tools/imports"

	chschema "github.com/syssam/analytiq/schema"
)

var titleCaser = cases.Title(language.Und)

// Options configures binding generation.
type Options struct {
	// Package is the Go package name for the generated file(s). Defaults
	// to "models".
	Package string
}

// Generate renders one Go source file per table in s, each containing a
// struct whose fields mirror the table's columns. The returned map keys
// are conventional file names ("<table>.gen.go"); callers choose where to
// write them.
func Generate(s *chschema.Schema, opts Options) (map[string][]byte, error) {
	pkg := opts.Package
	if pkg == "" {
		pkg = "models"
	}
	out := make(map[string][]byte, len(s.Tables()))
	tables := s.Tables()
	sort.Strings(tables)
	for _, table := range tables {
		src, err := generateTable(pkg, table, s.Columns(table))
		if err != nil {
			return nil, fmt.Errorf("codegen: generate %s: %w", table, err)
		}
		out[table+".gen.go"] = src
	}
	return out, nil
}

func generateTable(pkg, table string, columns map[string]chschema.ColumnType) ([]byte, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by analytiq/schema/codegen. DO NOT EDIT.")

	structName := pascal(inflect.Singularize(table))

	names := make([]string, 0, len(columns))
	for c := range columns {
		names = append(names, c)
	}
	sort.Strings(names)

	fields := make([]jen.Code, 0, len(names))
	for _, col := range names {
		goType := goTypeOf(columns[col])
		fields = append(fields, jen.Id(pascal(col)).Add(goType).Tag(map[string]string{"json": col}))
	}

	f.Comment(fmt.Sprintf("%s is the generated binding for the %q table.", structName, table))
	f.Type().Id(structName).Struct(fields...)

	var sb strings.Builder
	if err := f.Render(&sb); err != nil {
		return nil, err
	}
	formatted, err := imports.Process("", []byte(sb.String()), nil)
	if err != nil {
		// Fall back to the unformatted render rather than failing
		// generation outright; callers can still inspect the source.
		return []byte(sb.String()), nil //nolint:nilerr
	}
	return formatted, nil
}

// goTypeOf returns the jennifer statement for a column's Go field type,
// per the TypeMapping in spec.md §3.
func goTypeOf(ct chschema.ColumnType) *jen.Statement {
	switch ct.Kind() {
	case chschema.KindNullable:
		inner, _ := ct.Inner()
		return jen.Op("*").Add(goTypeOf(inner))
	case chschema.KindLowCardinality:
		inner, _ := ct.Inner()
		return goTypeOf(inner)
	case chschema.KindArray:
		inner, _ := ct.Inner()
		return jen.Index().Add(goTypeOf(inner))
	case chschema.KindMap:
		_, value, _ := ct.MapTypes()
		return jen.Map(jen.String()).Add(goTypeOf(value))
	case chschema.KindDate, chschema.KindDateTime:
		return jen.Qual("time", "Time")
	case chschema.KindBool:
		return jen.Bool()
	case chschema.KindUUID, chschema.KindString, chschema.KindFixedString:
		return jen.String()
	case chschema.KindFloat:
		if string(ct) == "Float32" {
			return jen.Float32()
		}
		return jen.Float64()
	case chschema.KindDecimal:
		return jen.Float64()
	case chschema.KindInt:
		return integerGoType(string(ct), true)
	case chschema.KindUInt:
		return integerGoType(string(ct), false)
	default:
		return jen.Any()
	}
}

func integerGoType(name string, signed bool) *jen.Statement {
	switch name {
	case "Int128", "Int256", "UInt128", "UInt256":
		// Wider than 64 bits: rendered as a string at the host level.
		return jen.String()
	case "Int8":
		return jen.Int8()
	case "UInt8":
		return jen.Uint8()
	case "Int16":
		return jen.Int16()
	case "UInt16":
		return jen.Uint16()
	case "Int32":
		return jen.Int32()
	case "UInt32":
		return jen.Uint32()
	case "Int64":
		return jen.Int64()
	case "UInt64":
		return jen.Uint64()
	}
	if signed {
		return jen.Int64()
	}
	return jen.Uint64()
}

// pascal converts a snake_case (or already-pascal) identifier to PascalCase.
func pascal(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	var sb strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		sb.WriteString(titleCaser.String(p))
	}
	if sb.Len() == 0 {
		return s
	}
	return sb.String()
}
