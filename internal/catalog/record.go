package catalog

import (
	"errors"

	"github.com/roach88/idxc/internal/indexdef"
)

// Kind distinguishes index and transformer records.
type Kind string

const (
	KindIndex       Kind = "index"
	KindTransformer Kind = "transformer"
)

// ErrNotFound is returned by Get when no record has the given name.
var ErrNotFound = errors.New("catalog: definition not found")

// Record is one stored definition. Body is its canonical JSON.
type Record struct {
	Name        string `json:"name"`
	Kind        Kind   `json:"kind"`
	Fingerprint string `json:"fingerprint"`
	Revision    string `json:"revision,omitempty"`
	Body        string `json:"body"`
}

// Revision is one entry of a definition's change history.
type Revision struct {
	Revision    string `json:"revision"`
	Name        string `json:"name"`
	Kind        Kind   `json:"kind"`
	Fingerprint string `json:"fingerprint"`
	Seq         int64  `json:"seq"`
	Deleted     bool   `json:"deleted,omitempty"`
}

// IndexRecord builds a record for an index definition.
func IndexRecord(d *indexdef.IndexDefinition) (Record, error) {
	body, err := indexdef.CanonicalJSON(d)
	if err != nil {
		return Record{}, err
	}
	fp, err := indexdef.Fingerprint(d)
	if err != nil {
		return Record{}, err
	}
	return Record{Name: d.Name, Kind: KindIndex, Fingerprint: fp, Body: string(body)}, nil
}

// TransformerRecord builds a record for a transformer definition.
func TransformerRecord(d *indexdef.TransformerDefinition) (Record, error) {
	body, err := indexdef.TransformerCanonicalJSON(d)
	if err != nil {
		return Record{}, err
	}
	fp, err := indexdef.TransformerFingerprint(d)
	if err != nil {
		return Record{}, err
	}
	return Record{Name: d.Name, Kind: KindTransformer, Fingerprint: fp, Body: string(body)}, nil
}
