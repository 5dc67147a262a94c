// Package harness runs YAML scenarios against the idxc compiler.
//
// A scenario names a directory of CUE definitions, compiles it with the
// given options, and asserts on the rendered query texts, on compile
// errors, and on catalog behavior.
//
// # Scenario Format
//
//	name: companies_by_pets
//	description: "Two-level SelectMany with transparent identifiers"
//	specs: ../specs/sample
//	options:
//	  casing: preserve
//	  docs_root: database
//	assertions:
//	  - type: text_equals
//	    index: Companies/ByPets
//	    field: map[0]
//	    text: "docs.Companies.Where(...)"
//	  - type: text_contains
//	    transformer: PersonNames
//	    text: "person.Firstname"
//	  - type: compile_error
//	    code: E202
//	    contains: unknown variable
//	  - type: definition_count
//	    indexes: 2
//	    transformers: 1
//	  - type: catalog_idempotent
//
// Spec paths are resolved relative to the scenario file.
//
// # Assertion Types
//
//   - text_equals: the rendered text of one definition field equals text
//   - text_contains: the rendered text contains text as a substring
//   - compile_error: some compile error has the code and message substring
//   - definition_count: exact number of compiled indexes and transformers
//   - catalog_idempotent: storing every definition twice changes the
//     catalog only the first time
//
// # Golden Files
//
// RunWithGolden compares the canonical JSON of every compiled definition
// against testdata/golden/{scenario.Name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
