// Package indexdef provides the index and transformer definitions that
// compiled queries are handed to.
//
// A Builder collects map, reduce and transform sources together with
// per-field options and renders them into an IndexDefinition. Definitions
// serialize to the server's PascalCase JSON wire form.
//
// Key design constraints:
//   - At least one map is required (ErrMapRequired)
//   - A field option may be keyed by path or by name, never both (ErrDuplicateField)
//   - Fingerprints hash RFC 8785 canonical JSON with a versioned domain prefix
package indexdef
