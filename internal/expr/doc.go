// Package expr provides the typed expression model that index and transformer
// queries are built from.
//
// This package contains node definitions and small constructors only. It
// imports nothing internal; the compiler in package linq pattern-matches over
// these nodes with exhaustive type switches.
//
// NODE SHAPES:
//
//	*Path        root variable or property/list-element access
//	Constant     string, integer, float or boolean literal
//	*Operation   operator tag plus ordered operands
//	*Lambda      single-parameter lambda (param is always a root)
//	*Projection  anonymous object literal with ordered fields
//	RawTemplate  opaque pre-rendered text
//
// Node is a sealed interface using the marker method pattern, the same way
// the value types are sealed.
//
// IMMUTABILITY:
//
// Nodes are never mutated after construction. Fluent helpers such as
// (*Path).Get or (*Projection).With return new nodes, so one tree may be
// shared by several builders and read from several goroutines once built.
package expr
