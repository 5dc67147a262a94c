package indexdef

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for fingerprints. The version suffix allows the encoding
// to change without colliding with stored fingerprints.
const (
	DomainIndex       = "idxc/index/v1"
	DomainTransformer = "idxc/transformer/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CanonicalObject returns the definition as plain values for MarshalCanonical.
// Empty option maps are omitted, matching the JSON wire form.
func (d *IndexDefinition) CanonicalObject() map[string]any {
	obj := map[string]any{
		"Name": d.Name,
		"Maps": append([]string{}, d.Maps...),
	}
	if d.Reduce != "" {
		obj["Reduce"] = d.Reduce
	}
	if d.TransformResults != "" {
		obj["TransformResults"] = d.TransformResults
	}
	if len(d.Stores) > 0 {
		obj["Stores"] = stringMap(d.Stores)
	}
	if len(d.Indexes) > 0 {
		obj["Indexes"] = stringMap(d.Indexes)
	}
	if len(d.SortOptions) > 0 {
		obj["SortOptions"] = stringMap(d.SortOptions)
	}
	if len(d.Analyzers) > 0 {
		obj["Analyzers"] = stringMap(d.Analyzers)
	}
	return obj
}

func stringMap[T ~string](m map[string]T) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = string(v)
	}
	return out
}

// CanonicalJSON returns the RFC 8785 encoding of the definition.
func CanonicalJSON(d *IndexDefinition) ([]byte, error) {
	return MarshalCanonical(d.CanonicalObject())
}

// TransformerCanonicalJSON returns the RFC 8785 encoding of a transformer.
func TransformerCanonicalJSON(d *TransformerDefinition) ([]byte, error) {
	return MarshalCanonical(d.CanonicalObject())
}

// CanonicalObject returns the transformer as plain values for MarshalCanonical.
func (d *TransformerDefinition) CanonicalObject() map[string]any {
	return map[string]any{
		"Name":             d.Name,
		"TransformResults": d.TransformResults,
	}
}

// Fingerprint returns a content hash of the definition. Two definitions
// with equal fingerprints produce identical PUT bodies up to key order.
func Fingerprint(d *IndexDefinition) (string, error) {
	canonical, err := CanonicalJSON(d)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", d.Name, err)
	}
	return hashWithDomain(DomainIndex, canonical), nil
}

// TransformerFingerprint returns a content hash of a transformer definition.
func TransformerFingerprint(d *TransformerDefinition) (string, error) {
	canonical, err := TransformerCanonicalJSON(d)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", d.Name, err)
	}
	return hashWithDomain(DomainTransformer, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustFingerprint(d *IndexDefinition) string {
	fp, err := Fingerprint(d)
	if err != nil {
		panic(err)
	}
	return fp
}
