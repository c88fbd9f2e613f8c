package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnType is a string literal drawn from the engine's type vocabulary:
// signed/unsigned integers, floating point, decimal, boolean, fixed and
// variable strings, date and timestamp types, and the composite forms
// Array(T), Nullable(T), Map(K,V), and LowCardinality(T).
type ColumnType string

// Well-known scalar column types. Parameterized types (FixedString(N),
// Decimal(P,S), DateTime64(p[, tz]), Array(T), Nullable(T), Map(K,V),
// LowCardinality(T)) are constructed with the helper functions below.
const (
	Int8    ColumnType = "Int8"
	Int16   ColumnType = "Int16"
	Int32   ColumnType = "Int32"
	Int64   ColumnType = "Int64"
	Int128  ColumnType = "Int128"
	Int256  ColumnType = "Int256"
	UInt8   ColumnType = "UInt8"
	UInt16  ColumnType = "UInt16"
	UInt32  ColumnType = "UInt32"
	UInt64  ColumnType = "UInt64"
	UInt128 ColumnType = "UInt128"
	UInt256 ColumnType = "UInt256"
	Float32 ColumnType = "Float32"
	Float64 ColumnType = "Float64"
	Bool    ColumnType = "Bool"
	String  ColumnType = "String"
	Date    ColumnType = "Date"
	Date32  ColumnType = "Date32"
	UUID    ColumnType = "UUID"
)

// FixedString returns a FixedString(n) column type.
func FixedString(n int) ColumnType { return ColumnType(fmt.Sprintf("FixedString(%d)", n)) }

// Decimal returns a Decimal(precision, scale) column type.
func Decimal(precision, scale int) ColumnType {
	return ColumnType(fmt.Sprintf("Decimal(%d, %d)", precision, scale))
}

// DateTime returns a DateTime column type, optionally with a timezone.
func DateTime(timezone ...string) ColumnType {
	if len(timezone) > 0 && timezone[0] != "" {
		return ColumnType(fmt.Sprintf("DateTime('%s')", timezone[0]))
	}
	return "DateTime"
}

// DateTime64 returns a DateTime64(precision[, timezone]) column type.
func DateTime64(precision int, timezone ...string) ColumnType {
	if len(timezone) > 0 && timezone[0] != "" {
		return ColumnType(fmt.Sprintf("DateTime64(%d, '%s')", precision, timezone[0]))
	}
	return ColumnType(fmt.Sprintf("DateTime64(%d)", precision))
}

// Array returns an Array(inner) column type.
func Array(inner ColumnType) ColumnType { return ColumnType(fmt.Sprintf("Array(%s)", inner)) }

// Nullable returns a Nullable(inner) column type.
func Nullable(inner ColumnType) ColumnType { return ColumnType(fmt.Sprintf("Nullable(%s)", inner)) }

// Map returns a Map(key, value) column type. Map keys are always strings at
// the host-representation level regardless of the declared key type.
func Map(key, value ColumnType) ColumnType {
	return ColumnType(fmt.Sprintf("Map(%s, %s)", key, value))
}

// LowCardinality returns a LowCardinality(inner) column type.
func LowCardinality(inner ColumnType) ColumnType {
	return ColumnType(fmt.Sprintf("LowCardinality(%s)", inner))
}

// Kind classifies a ColumnType into a broad family, independent of any
// parameters (width, precision, timezone) it carries.
type Kind int

const (
	KindUnknown Kind = iota
	KindInt
	KindUInt
	KindFloat
	KindDecimal
	KindBool
	KindFixedString
	KindString
	KindDate
	KindDateTime
	KindUUID
	KindArray
	KindNullable
	KindMap
	KindLowCardinality
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "Int"
	case KindUInt:
		return "UInt"
	case KindFloat:
		return "Float"
	case KindDecimal:
		return "Decimal"
	case KindBool:
		return "Bool"
	case KindFixedString:
		return "FixedString"
	case KindString:
		return "String"
	case KindDate:
		return "Date"
	case KindDateTime:
		return "DateTime"
	case KindUUID:
		return "UUID"
	case KindArray:
		return "Array"
	case KindNullable:
		return "Nullable"
	case KindMap:
		return "Map"
	case KindLowCardinality:
		return "LowCardinality"
	default:
		return "Unknown"
	}
}

var intWidths = map[string]struct{}{
	"Int8": {}, "Int16": {}, "Int32": {}, "Int64": {}, "Int128": {}, "Int256": {},
}

var uintWidths = map[string]struct{}{
	"UInt8": {}, "UInt16": {}, "UInt32": {}, "UInt64": {}, "UInt128": {}, "UInt256": {},
}

// Kind returns the broad family of the column type.
func (t ColumnType) Kind() Kind {
	s := string(t)
	switch {
	case s == "Bool":
		return KindBool
	case s == "UUID":
		return KindUUID
	case s == "String":
		return KindString
	case s == "Date" || s == "Date32":
		return KindDate
	case strings.HasPrefix(s, "DateTime"):
		return KindDateTime
	case strings.HasPrefix(s, "FixedString("):
		return KindFixedString
	case strings.HasPrefix(s, "Decimal("):
		return KindDecimal
	case s == "Float32" || s == "Float64":
		return KindFloat
	case strings.HasPrefix(s, "Array("):
		return KindArray
	case strings.HasPrefix(s, "Nullable("):
		return KindNullable
	case strings.HasPrefix(s, "Map("):
		return KindMap
	case strings.HasPrefix(s, "LowCardinality("):
		return KindLowCardinality
	}
	if _, ok := intWidths[s]; ok {
		return KindInt
	}
	if _, ok := uintWidths[s]; ok {
		return KindUInt
	}
	return KindUnknown
}

// unwrapOne strips the one-argument wrapper "Name(arg)" and returns arg.
func unwrapOne(s, name string) (string, bool) {
	prefix := name + "("
	if !strings.HasPrefix(s, prefix) || !strings.HasSuffix(s, ")") {
		return "", false
	}
	return s[len(prefix) : len(s)-1], true
}

// Inner returns the wrapped type for Array, Nullable, and LowCardinality
// types. It returns ("", false) for any other kind.
func (t ColumnType) Inner() (ColumnType, bool) {
	s := string(t)
	for _, name := range []string{"Array", "Nullable", "LowCardinality"} {
		if inner, ok := unwrapOne(s, name); ok {
			return ColumnType(inner), true
		}
	}
	return "", false
}

// MapTypes returns the key and value types of a Map(K, V) column type.
func (t ColumnType) MapTypes() (key, value ColumnType, ok bool) {
	inner, isMap := unwrapOne(string(t), "Map")
	if !isMap {
		return "", "", false
	}
	depth := 0
	for i, r := range inner {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				key = ColumnType(strings.TrimSpace(inner[:i]))
				value = ColumnType(strings.TrimSpace(inner[i+1:]))
				return key, value, true
			}
		}
	}
	return "", "", false
}

// FixedStringLen returns the declared length of a FixedString(n) type.
func (t ColumnType) FixedStringLen() (int, bool) {
	arg, ok := unwrapOne(string(t), "FixedString")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	return n, err == nil
}

// IsNumeric reports whether the type's host representation is a number
// (integers up to 64 bits, floats, and decimal).
func (t ColumnType) IsNumeric() bool {
	switch t.Kind() {
	case KindFloat, KindDecimal:
		return true
	case KindInt, KindUInt:
		return !t.isWideInteger()
	}
	if inner, ok := t.Inner(); ok {
		return inner.IsNumeric()
	}
	return false
}

// isWideInteger reports whether an Int/UInt type exceeds 64 bits and is
// therefore represented as a string at the host level (spec.md §3).
func (t ColumnType) isWideInteger() bool {
	switch string(t) {
	case "Int128", "Int256", "UInt128", "UInt256":
		return true
	}
	return false
}

// IsOrderable reports whether `<`, `<=`, `>`, `>=` are meaningful for the
// type. Strings, numbers, dates, and their Nullable/LowCardinality
// wrappers are orderable; Array, Map, and Bool are not.
func (t ColumnType) IsOrderable() bool {
	switch t.Kind() {
	case KindInt, KindUInt, KindFloat, KindDecimal, KindString, KindFixedString, KindDate, KindDateTime, KindUUID:
		return true
	case KindNullable, KindLowCardinality:
		inner, _ := t.Inner()
		return inner.IsOrderable()
	}
	return false
}

// IsNullable reports whether the type is wrapped in Nullable(...).
func (t ColumnType) IsNullable() bool { return t.Kind() == KindNullable }

// String implements fmt.Stringer.
func (t ColumnType) String() string { return string(t) }
