package indexdef

import (
	"fmt"
	"strings"
)

// FieldStorage controls whether a field's original value is kept in the index.
type FieldStorage string

const (
	StorageYes      FieldStorage = "Yes"
	StorageNo       FieldStorage = "No"
	StorageCompress FieldStorage = "Compress"
)

// FieldIndexing controls how a field is tokenized.
type FieldIndexing string

const (
	IndexingNo          FieldIndexing = "No"
	IndexingAnalyzed    FieldIndexing = "Analyzed"
	IndexingNotAnalyzed FieldIndexing = "NotAnalyzed"
	IndexingDefault     FieldIndexing = "Default"
)

// SortOptions selects how a field is compared when sorting.
type SortOptions string

const (
	SortNone      SortOptions = "None"
	SortString    SortOptions = "String"
	SortInt       SortOptions = "Int"
	SortFloat     SortOptions = "Float"
	SortLong      SortOptions = "Long"
	SortDouble    SortOptions = "Double"
	SortShort     SortOptions = "Short"
	SortCustom    SortOptions = "Custom"
	SortByte      SortOptions = "Byte"
	SortStringVal SortOptions = "StringVal"
)

var (
	storages  = []FieldStorage{StorageYes, StorageNo, StorageCompress}
	indexings = []FieldIndexing{IndexingNo, IndexingAnalyzed, IndexingNotAnalyzed, IndexingDefault}
	sorts     = []SortOptions{
		SortNone, SortString, SortInt, SortFloat, SortLong,
		SortDouble, SortShort, SortCustom, SortByte, SortStringVal,
	}
)

// normalizeOption folds "not_analyzed", "NotAnalyzed" and "notanalyzed" together.
func normalizeOption(s string) string {
	return strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(s))
}

func parseOption[T ~string](kind, s string, all []T) (T, error) {
	want := normalizeOption(s)
	for _, v := range all {
		if normalizeOption(string(v)) == want {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("unknown %s option %q", kind, s)
}

// ParseFieldStorage parses "yes", "no" or "compress" in any case.
func ParseFieldStorage(s string) (FieldStorage, error) {
	return parseOption("storage", s, storages)
}

// ParseFieldIndexing parses "no", "analyzed", "not_analyzed" or "default".
func ParseFieldIndexing(s string) (FieldIndexing, error) {
	return parseOption("indexing", s, indexings)
}

// ParseSortOptions parses a sort option name such as "int" or "string_val".
func ParseSortOptions(s string) (SortOptions, error) {
	return parseOption("sort", s, sorts)
}

// IndexDefinition is the body of an index PUT. JSON field names follow the
// server's wire form.
type IndexDefinition struct {
	Name             string                   `json:"Name"`
	Maps             []string                 `json:"Maps"`
	Reduce           string                   `json:"Reduce,omitempty"`
	TransformResults string                   `json:"TransformResults,omitempty"`
	Stores           map[string]FieldStorage  `json:"Stores,omitempty"`
	Indexes          map[string]FieldIndexing `json:"Indexes,omitempty"`
	SortOptions      map[string]SortOptions   `json:"SortOptions,omitempty"`
	Analyzers        map[string]string        `json:"Analyzers,omitempty"`
}

// IsMapReduce reports whether the index has a reduce function.
func (d *IndexDefinition) IsMapReduce() bool {
	return d.Reduce != ""
}

// TransformerDefinition is the body of a transformer PUT.
type TransformerDefinition struct {
	Name             string `json:"Name"`
	TransformResults string `json:"TransformResults"`
}
