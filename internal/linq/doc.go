// Package linq compiles expression trees into chained-method query text.
//
// An IndexSource starts from a collection root and grows one operation per
// fluent call. Operands are wrapped in implicit lambdas over their single
// root variable:
//
//	linq.FromType("Company").Where(company.Get("name").StartsWith("C"))
//	// docs.Companies.Where(company => company.Name.StartsWith("C"))
//
// # Transparent identifiers
//
// SelectMany merges the outer and inner range variables into a synthesized
// wrapper (transId_1, transId_2, ...). Later operands may keep using the
// original variable names; they are re-rooted through the wrapper before
// lambda inference, so person.firstname becomes transId_1.Person.Firstname.
//
// # Rendering
//
// The Serializer looks up each operator in a template table and substitutes
// rendered operands. Operands are parenthesized only when precedence needs it.
// Unknown operators fail with UNSUPPORTED_OPERATOR; no partial text is ever
// returned.
package linq
